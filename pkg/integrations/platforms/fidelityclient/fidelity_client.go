package fidelityclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/Eddie1114/portfolio-tracker/pkg/types/platforms"
)

var (
	_ platforms.Client = (*Client)(nil)
)

// Client talks to the Fidelity brokerage REST API. Authentication is OAuth2
// client-credentials; the oauth2 package caches the access token and
// refreshes it on expiry.
type Client struct {
	BaseURL  string
	TokenURL string

	clientID     string
	clientSecret string

	once  sync.Once
	httpc *http.Client
}

func New(creds platforms.Credentials) *Client {
	return &Client{
		BaseURL:      "https://api.fidelity.com/api",
		TokenURL:     "https://api.fidelity.com/api/oauth/token",
		clientID:     creds.Key,
		clientSecret: creds.Secret,
	}
}

func (c *Client) Platform() string {
	return platforms.PlatformFidelity
}

// client builds the token-refreshing HTTP client on first use so tests can
// point TokenURL at a local server before any request is made.
func (c *Client) client() *http.Client {
	c.once.Do(func() {
		conf := &clientcredentials.Config{
			ClientID:     c.clientID,
			ClientSecret: c.clientSecret,
			TokenURL:     c.TokenURL,
		}
		base := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: 10 * time.Second})
		c.httpc = conf.Client(base)
		c.httpc.Timeout = 15 * time.Second
	})
	return c.httpc
}

func (c *Client) get(ctx context.Context, endpoint string, query url.Values, out any) error {
	u := c.BaseURL + "/" + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client().Do(req)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return &platforms.AuthError{Platform: c.Platform(), Reason: "token request rejected"}
		}
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

type positionsResponse struct {
	Positions []positionEntry `json:"positions"`
}

type positionEntry struct {
	Symbol       string  `json:"symbol"`
	SecurityType string  `json:"securityType"`
	Quantity     float64 `json:"quantity"`
	CurrentPrice float64 `json:"currentPrice"`
	CostBasis    float64 `json:"costBasis"`
}

type transactionsResponse struct {
	Transactions []transactionEntry `json:"transactions"`
}

type transactionEntry struct {
	Type            string  `json:"type"`
	Symbol          string  `json:"symbol"`
	Quantity        float64 `json:"quantity"`
	Price           float64 `json:"price"`
	TransactionDate string  `json:"transactionDate"`
}

func (c *Client) Positions(ctx context.Context) ([]platforms.Position, error) {
	var resp positionsResponse
	if err := c.get(ctx, "positions", nil, &resp); err != nil {
		return nil, err
	}

	positions := make([]platforms.Position, 0, len(resp.Positions))
	for _, p := range resp.Positions {
		if p.Symbol == "" {
			return nil, &platforms.DataError{Platform: c.Platform(), Reason: "position without symbol"}
		}

		var avgPrice float64
		if p.Quantity > 0 {
			avgPrice = p.CostBasis / p.Quantity
		}

		positions = append(positions, platforms.Position{
			AssetSymbol:  strings.ToUpper(p.Symbol),
			AssetType:    mapAssetType(p.SecurityType),
			Quantity:     p.Quantity,
			CurrentPrice: p.CurrentPrice,
			AveragePrice: avgPrice,
		})
	}
	return positions, nil
}

func (c *Client) Trades(ctx context.Context, since *time.Time) ([]platforms.Trade, error) {
	query := url.Values{}
	if since != nil {
		query.Set("startDate", since.Format("2006-01-02"))
	}

	var resp transactionsResponse
	if err := c.get(ctx, "transactions", query, &resp); err != nil {
		return nil, err
	}

	trades := make([]platforms.Trade, 0, len(resp.Transactions))
	for _, tx := range resp.Transactions {
		ts, err := time.Parse(time.RFC3339, tx.TransactionDate)
		if err != nil {
			// Some endpoints return bare dates.
			if ts, err = time.Parse("2006-01-02", tx.TransactionDate); err != nil {
				return nil, &platforms.DataError{Platform: c.Platform(), Reason: "invalid transaction date", Err: err}
			}
		}

		trades = append(trades, platforms.Trade{
			Type:        strings.ToLower(tx.Type),
			AssetSymbol: strings.ToUpper(tx.Symbol),
			Quantity:    tx.Quantity,
			Price:       tx.Price,
			Timestamp:   ts.UTC(),
		})
	}
	return trades, nil
}

func mapAssetType(securityType string) string {
	switch strings.ToUpper(securityType) {
	case "ETF":
		return "etf"
	case "MUTUAL_FUND":
		return "mutual_fund"
	case "BOND":
		return "bond"
	case "CASH":
		return "cash"
	default:
		return "stock"
	}
}
