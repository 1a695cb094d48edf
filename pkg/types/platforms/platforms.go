package platforms

import (
	"context"
	"fmt"
	"time"
)

const (
	PlatformGemini   = "gemini"
	PlatformFidelity = "fidelity"
)

// All returns the known platform identifiers in report order.
func All() []string {
	return []string{PlatformGemini, PlatformFidelity}
}

// Credentials is the bundle a client needs to authenticate. Key/Secret map
// to API key/secret for the exchange and client id/secret for the brokerage.
type Credentials struct {
	Key    string
	Secret string
}

func (c Credentials) Empty() bool {
	return c.Key == "" || c.Secret == ""
}

// Position is the platform-agnostic shape of one current holding.
type Position struct {
	AssetSymbol  string
	AssetType    string // stock, crypto, etf, mutual_fund, bond, cash
	Quantity     float64
	CurrentPrice float64
	AveragePrice float64
}

// Trade is the platform-agnostic shape of one historical buy/sell.
type Trade struct {
	Type        string // buy or sell
	AssetSymbol string
	Quantity    float64
	Price       float64
	Timestamp   time.Time
}

// Client fetches normalized data from one external platform.
type Client interface {
	Platform() string
	Positions(ctx context.Context) ([]Position, error)
	Trades(ctx context.Context, since *time.Time) ([]Trade, error)
}

// AuthError means the platform rejected our credentials or signature.
// It is never worth retrying.
type AuthError struct {
	Platform string
	Reason   string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: authentication failed: %s", e.Platform, e.Reason)
}

// APIError is a non-success HTTP response from the platform.
type APIError struct {
	Platform   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: API request failed with status %d: %s", e.Platform, e.StatusCode, e.Body)
}

// DataError means the platform responded but with missing or malformed
// fields we depend on.
type DataError struct {
	Platform string
	Reason   string
	Err      error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: bad response data: %s: %v", e.Platform, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: bad response data: %s", e.Platform, e.Reason)
}

func (e *DataError) Unwrap() error {
	return e.Err
}
