package coingeckoprices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Eddie1114/portfolio-tracker/pkg/types/prices"
)

var (
	_ prices.Quoter = (*Quoter)(nil)
)

// wellKnownIDs maps common ticker symbols to CoinGecko coin IDs. Symbols
// not listed here fall back to the lowercased symbol, which works for a
// surprising number of smaller coins.
var wellKnownIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"SOL":   "solana",
	"ADA":   "cardano",
	"DOGE":  "dogecoin",
	"XRP":   "ripple",
	"DOT":   "polkadot",
	"LTC":   "litecoin",
	"LINK":  "chainlink",
	"MATIC": "matic-network",
	"USDT":  "tether",
	"USDC":  "usd-coin",
}

type Quoter struct {
	BaseURL string
	Client  *http.Client
}

func NewQuoter() *Quoter {
	return &Quoter{
		BaseURL: "https://api.coingecko.com/api/v3",
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Quoter) Quote(ctx context.Context, symbol string) (prices.Quote, error) {
	quotes, err := c.QuoteMany(ctx, []string{symbol})
	if err != nil {
		return prices.Quote{}, err
	}
	quote, ok := quotes[strings.ToUpper(symbol)]
	if !ok {
		return prices.Quote{}, fmt.Errorf("price not found for asset: %s", symbol)
	}
	return quote, nil
}

func (c *Quoter) QuoteMany(ctx context.Context, symbols []string) (map[string]prices.Quote, error) {
	ids := make([]string, 0, len(symbols))
	symbolByID := make(map[string]string, len(symbols))
	for _, symbol := range symbols {
		id := coinID(symbol)
		ids = append(ids, id)
		symbolByID[id] = strings.ToUpper(symbol)
	}

	endpoint := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd",
		c.BaseURL,
		strings.Join(ids, ","),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var result map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	quotes := make(map[string]prices.Quote, len(result))
	for id, values := range result {
		value, ok := values["usd"]
		if !ok {
			continue
		}
		symbol, ok := symbolByID[id]
		if !ok {
			continue
		}
		quotes[symbol] = prices.Quote{Symbol: symbol, Value: value, Source: prices.SourceCoinGecko}
	}

	return quotes, nil
}

func coinID(symbol string) string {
	if id, ok := wellKnownIDs[strings.ToUpper(symbol)]; ok {
		return id
	}
	return strings.ToLower(symbol)
}
