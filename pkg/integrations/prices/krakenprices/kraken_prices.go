package krakenprices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Eddie1114/portfolio-tracker/pkg/types/prices"
)

var (
	_ prices.Quoter = (*Quoter)(nil)
)

type Quoter struct {
	BaseURL string
	Client  *http.Client
}

func NewQuoter() *Quoter {
	return &Quoter{
		BaseURL: "https://api.kraken.com/0/public",
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type tickerResponse struct {
	Error  []string                     `json:"error"`
	Result map[string]tickerResultEntry `json:"result"`
}

type tickerResultEntry struct {
	Close []string `json:"c"` // [price, lot_volume] - last trade closed
}

func (k *Quoter) Quote(ctx context.Context, symbol string) (prices.Quote, error) {
	quotes, err := k.QuoteMany(ctx, []string{symbol})
	if err != nil {
		return prices.Quote{}, err
	}
	quote, ok := quotes[strings.ToUpper(symbol)]
	if !ok {
		return prices.Quote{}, fmt.Errorf("no price found for %s", symbol)
	}
	return quote, nil
}

func (k *Quoter) QuoteMany(ctx context.Context, symbols []string) (map[string]prices.Quote, error) {
	quotes := make(map[string]prices.Quote, len(symbols))

	krakenPairs := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		symbol = strings.ToUpper(symbol)
		if symbol == "USD" || symbol == "USDT" || symbol == "USDC" {
			quotes[symbol] = prices.Quote{Symbol: symbol, Value: 1.0, Source: prices.SourceKraken}
			continue
		}
		krakenPairs = append(krakenPairs, toKrakenPair(symbol))
	}

	if len(krakenPairs) == 0 {
		return quotes, nil
	}

	endpoint := fmt.Sprintf("%s/Ticker?pair=%s", k.BaseURL, strings.Join(krakenPairs, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := k.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var result tickerResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Error) > 0 {
		return nil, fmt.Errorf("kraken API error: %s", strings.Join(result.Error, ", "))
	}

	for pairName, entry := range result.Result {
		if len(entry.Close) == 0 {
			continue
		}
		value, err := strconv.ParseFloat(entry.Close[0], 64)
		if err != nil {
			continue
		}
		symbol := fromKrakenPair(pairName)
		quotes[symbol] = prices.Quote{Symbol: symbol, Value: value, Source: prices.SourceKraken}
	}

	return quotes, nil
}

func toKrakenPair(symbol string) string {
	symbol = strings.ToUpper(symbol)
	if symbol == "BTC" {
		return "XXBTZUSD"
	}
	if symbol == "ETH" {
		return "XETHZUSD"
	}
	return symbol + "USD"
}

func fromKrakenPair(pair string) string {
	pair = strings.ToUpper(pair)
	if strings.HasPrefix(pair, "XXBT") {
		return "BTC"
	}
	if strings.HasPrefix(pair, "XETH") {
		return "ETH"
	}
	if strings.HasPrefix(pair, "X") && len(pair) > 4 {
		pair = pair[1:]
	}
	if strings.HasSuffix(pair, "ZUSD") {
		return pair[:len(pair)-4]
	}
	if strings.HasSuffix(pair, "USD") {
		return pair[:len(pair)-3]
	}
	return pair
}
