package platforms

import (
	"context"
	"errors"
	"time"

	"github.com/Eddie1114/portfolio-tracker/pkg/integrations/platforms/fidelityclient"
	"github.com/Eddie1114/portfolio-tracker/pkg/integrations/platforms/geminiclient"
	"github.com/Eddie1114/portfolio-tracker/pkg/types/platforms"
)

// Factory builds a platform client from a credential bundle.
type Factory func(creds platforms.Credentials) platforms.Client

// Registry maps platform identifiers to client factories.
type Registry map[string]Factory

// DefaultRegistry wires up every supported platform.
func DefaultRegistry() Registry {
	return Registry{
		platforms.PlatformGemini: func(creds platforms.Credentials) platforms.Client {
			return geminiclient.New(creds)
		},
		platforms.PlatformFidelity: func(creds platforms.Credentials) platforms.Client {
			return fidelityclient.New(creds)
		},
	}
}

var (
	_ platforms.Client = (*retryClient)(nil)
)

type retryClient struct {
	inner    platforms.Client
	attempts int
	backoff  time.Duration
}

// WithRetry wraps a client with bounded exponential-backoff retries.
// Authentication failures are returned immediately; retrying a bad
// signature only burns the rate limit.
func WithRetry(c platforms.Client, attempts int, backoff time.Duration) platforms.Client {
	if attempts < 1 {
		attempts = 1
	}
	return &retryClient{inner: c, attempts: attempts, backoff: backoff}
}

func (r *retryClient) Platform() string {
	return r.inner.Platform()
}

func (r *retryClient) Positions(ctx context.Context) ([]platforms.Position, error) {
	var positions []platforms.Position
	err := r.do(ctx, func() error {
		var err error
		positions, err = r.inner.Positions(ctx)
		return err
	})
	return positions, err
}

func (r *retryClient) Trades(ctx context.Context, since *time.Time) ([]platforms.Trade, error) {
	var trades []platforms.Trade
	err := r.do(ctx, func() error {
		var err error
		trades, err = r.inner.Trades(ctx, since)
		return err
	})
	return trades, err
}

func (r *retryClient) do(ctx context.Context, call func() error) error {
	var lastErr error
	delay := r.backoff
	for attempt := 0; attempt < r.attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		lastErr = call()
		if lastErr == nil {
			return nil
		}

		var authErr *platforms.AuthError
		if errors.As(lastErr, &authErr) {
			return lastErr
		}
		if ctx.Err() != nil {
			return lastErr
		}
	}
	return lastErr
}
