package prices

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Eddie1114/portfolio-tracker/pkg/integrations/prices/coingeckoprices"
	"github.com/Eddie1114/portfolio-tracker/pkg/integrations/prices/krakenprices"
	"github.com/Eddie1114/portfolio-tracker/pkg/types/prices"

	gocache "github.com/patrickmn/go-cache"
)

var (
	_ prices.Quoter = (*PriceService)(nil)
)

const cacheTTL = time.Minute

// PriceService quotes USD prices with a fallback chain across sources and
// a short-lived cache in front, so one sync or metrics run does not hammer
// the public APIs.
type PriceService struct {
	kraken    prices.Quoter
	coingecko prices.Quoter
	cache     *gocache.Cache
}

func NewPriceService() *PriceService {
	return &PriceService{
		kraken:    krakenprices.NewQuoter(),
		coingecko: coingeckoprices.NewQuoter(),
		cache:     gocache.New(cacheTTL, 5*time.Minute),
	}
}

func (p *PriceService) Quote(ctx context.Context, symbol string) (prices.Quote, error) {
	symbol = strings.ToUpper(symbol)
	if cached, ok := p.cache.Get(symbol); ok {
		return cached.(prices.Quote), nil
	}

	quote, krakenErr := p.kraken.Quote(ctx, symbol)
	if krakenErr == nil {
		p.cache.SetDefault(symbol, quote)
		return quote, nil
	}

	quote, cgErr := p.coingecko.Quote(ctx, symbol)
	if cgErr == nil {
		p.cache.SetDefault(symbol, quote)
		return quote, nil
	}

	return prices.Quote{}, fmt.Errorf("kraken error: %w; coingecko error: %w", krakenErr, cgErr)
}

func (p *PriceService) QuoteMany(ctx context.Context, symbols []string) (map[string]prices.Quote, error) {
	quotes := make(map[string]prices.Quote, len(symbols))

	missing := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		symbol = strings.ToUpper(symbol)
		if cached, ok := p.cache.Get(symbol); ok {
			quotes[symbol] = cached.(prices.Quote)
			continue
		}
		missing = append(missing, symbol)
	}

	if len(missing) == 0 {
		return quotes, nil
	}

	fetched, krakenErr := p.kraken.QuoteMany(ctx, missing)
	if krakenErr != nil {
		fetched = map[string]prices.Quote{}
	}

	// fall back per symbol, not per batch
	unresolved := make([]string, 0)
	for _, symbol := range missing {
		if _, ok := fetched[symbol]; !ok {
			unresolved = append(unresolved, symbol)
		}
	}
	if len(unresolved) > 0 {
		cgQuotes, cgErr := p.coingecko.QuoteMany(ctx, unresolved)
		if cgErr == nil {
			for symbol, quote := range cgQuotes {
				fetched[symbol] = quote
			}
		} else if krakenErr != nil {
			return nil, fmt.Errorf("kraken: %w; coingecko: %w", krakenErr, cgErr)
		}
	}

	for symbol, quote := range fetched {
		p.cache.SetDefault(symbol, quote)
		quotes[symbol] = quote
	}

	return quotes, nil
}
