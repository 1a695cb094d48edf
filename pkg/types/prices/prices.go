package prices

import "context"

const (
	SourceKraken    = "kraken"
	SourceCoinGecko = "coingecko"
)

// Quote is a spot USD price for one asset symbol.
type Quote struct {
	Symbol string  `json:"symbol"`
	Value  float64 `json:"value"`
	Source string  `json:"source"`
}

// Quoter resolves current USD prices for asset symbols. Implementations
// return a map keyed by the requested symbols; symbols the source cannot
// price are simply absent from the result.
type Quoter interface {
	Quote(ctx context.Context, symbol string) (Quote, error)
	QuoteMany(ctx context.Context, symbols []string) (map[string]Quote, error)
}
