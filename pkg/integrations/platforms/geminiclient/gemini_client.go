package geminiclient

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Eddie1114/portfolio-tracker/pkg/types/platforms"
)

var (
	_ platforms.Client = (*Client)(nil)
)

// Client talks to the Gemini exchange private and public REST API.
// Private requests carry a base64 JSON payload signed with HMAC-SHA384.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	apiKey    string
	apiSecret []byte

	mu        sync.Mutex
	lastNonce int64
}

func New(creds platforms.Credentials) *Client {
	return &Client{
		BaseURL:    "https://api.gemini.com/v1",
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		apiKey:     creds.Key,
		apiSecret:  []byte(creds.Secret),
	}
}

func (c *Client) Platform() string {
	return platforms.PlatformGemini
}

// nonce returns a strictly increasing value derived from unix milliseconds.
func (c *Client) nonce() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := time.Now().UnixMilli()
	if n <= c.lastNonce {
		n = c.lastNonce + 1
	}
	c.lastNonce = n
	return strconv.FormatInt(n, 10)
}

func (c *Client) sign(payload map[string]any) (encoded string, signature string, err error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", "", err
	}
	encoded = base64.StdEncoding.EncodeToString(raw)
	mac := hmac.New(sha512.New384, c.apiSecret)
	mac.Write([]byte(encoded))
	return encoded, hex.EncodeToString(mac.Sum(nil)), nil
}

// private issues a signed request against a private endpoint.
func (c *Client) private(ctx context.Context, endpoint string, payload map[string]any, out any) error {
	if payload == nil {
		payload = map[string]any{}
	}
	payload["request"] = "/v1/" + endpoint
	payload["nonce"] = c.nonce()

	encoded, signature, err := c.sign(payload)
	if err != nil {
		return &platforms.DataError{Platform: c.Platform(), Reason: "failed to encode payload", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/"+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Content-Length", "0")
	req.Header.Set("X-GEMINI-APIKEY", c.apiKey)
	req.Header.Set("X-GEMINI-PAYLOAD", encoded)
	req.Header.Set("X-GEMINI-SIGNATURE", signature)
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		body, _ := io.ReadAll(resp.Body)
		return &platforms.AuthError{Platform: c.Platform(), Reason: strings.TrimSpace(string(body))}
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return &platforms.APIError{Platform: c.Platform(), StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &platforms.DataError{Platform: c.Platform(), Reason: "failed to decode response", Err: err}
	}
	return nil
}

type balanceEntry struct {
	Currency string `json:"currency"`
	Amount   string `json:"amount"`
	AvgPrice string `json:"avg_price"`
}

type tickerResponse struct {
	Last string `json:"last"`
}

type tradeEntry struct {
	Symbol    string  `json:"symbol"`
	Type      string  `json:"type"` // Buy or Sell
	Amount    string  `json:"amount"`
	Price     string  `json:"price"`
	Timestamp float64 `json:"timestamp"`
}

// Positions fetches nonzero balances and prices each one with a public
// ticker lookup. One ticker call per asset; fine at this portfolio scale.
func (c *Client) Positions(ctx context.Context) ([]platforms.Position, error) {
	var balances []balanceEntry
	if err := c.private(ctx, "balances", nil, &balances); err != nil {
		return nil, err
	}

	positions := make([]platforms.Position, 0, len(balances))
	for _, b := range balances {
		amount, err := strconv.ParseFloat(b.Amount, 64)
		if err != nil {
			return nil, &platforms.DataError{Platform: c.Platform(), Reason: fmt.Sprintf("invalid amount for %s", b.Currency), Err: err}
		}
		if amount <= 0 {
			continue
		}

		last, err := c.lastPrice(ctx, b.Currency)
		if err != nil {
			return nil, err
		}

		var avgPrice float64
		if b.AvgPrice != "" {
			if avgPrice, err = strconv.ParseFloat(b.AvgPrice, 64); err != nil {
				return nil, &platforms.DataError{Platform: c.Platform(), Reason: fmt.Sprintf("invalid avg_price for %s", b.Currency), Err: err}
			}
		}

		positions = append(positions, platforms.Position{
			AssetSymbol:  strings.ToUpper(b.Currency),
			AssetType:    "crypto",
			Quantity:     amount,
			CurrentPrice: last,
			AveragePrice: avgPrice,
		})
	}
	return positions, nil
}

func (c *Client) lastPrice(ctx context.Context, currency string) (float64, error) {
	endpoint := fmt.Sprintf("%s/pubticker/%susd", c.BaseURL, strings.ToLower(currency))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build ticker request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("ticker request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, &platforms.DataError{Platform: c.Platform(), Reason: fmt.Sprintf("no USD price for %s (status %d)", currency, resp.StatusCode)}
	}

	var ticker tickerResponse
	if err := json.NewDecoder(resp.Body).Decode(&ticker); err != nil {
		return 0, &platforms.DataError{Platform: c.Platform(), Reason: "failed to decode ticker", Err: err}
	}

	last, err := strconv.ParseFloat(ticker.Last, 64)
	if err != nil {
		return 0, &platforms.DataError{Platform: c.Platform(), Reason: fmt.Sprintf("invalid ticker price for %s", currency), Err: err}
	}
	return last, nil
}

// Trades returns the trade history, optionally bounded to trades after since.
func (c *Client) Trades(ctx context.Context, since *time.Time) ([]platforms.Trade, error) {
	payload := map[string]any{}
	if since != nil {
		payload["timestamp"] = since.Unix()
	}

	var entries []tradeEntry
	if err := c.private(ctx, "mytrades", payload, &entries); err != nil {
		return nil, err
	}

	trades := make([]platforms.Trade, 0, len(entries))
	for _, e := range entries {
		amount, err := strconv.ParseFloat(e.Amount, 64)
		if err != nil {
			return nil, &platforms.DataError{Platform: c.Platform(), Reason: "invalid trade amount", Err: err}
		}
		price, err := strconv.ParseFloat(e.Price, 64)
		if err != nil {
			return nil, &platforms.DataError{Platform: c.Platform(), Reason: "invalid trade price", Err: err}
		}

		trades = append(trades, platforms.Trade{
			Type:        strings.ToLower(e.Type),
			AssetSymbol: strings.ToUpper(strings.TrimSuffix(strings.ToLower(e.Symbol), "usd")),
			Quantity:    amount,
			Price:       price,
			Timestamp:   time.Unix(int64(e.Timestamp), 0).UTC(),
		})
	}
	return trades, nil
}
