package service

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/Eddie1114/portfolio-tracker/internal/models"
	"github.com/Eddie1114/portfolio-tracker/internal/repo"
	"github.com/Eddie1114/portfolio-tracker/pkg/config"
	integrations "github.com/Eddie1114/portfolio-tracker/pkg/integrations/platforms"
	"github.com/Eddie1114/portfolio-tracker/pkg/types/platforms"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubClient struct {
	platform  string
	positions []platforms.Position
	err       error
}

func (c *stubClient) Platform() string {
	return c.platform
}

func (c *stubClient) Positions(ctx context.Context) ([]platforms.Position, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.positions, nil
}

func (c *stubClient) Trades(ctx context.Context, since *time.Time) ([]platforms.Trade, error) {
	return nil, nil
}

func setupSyncTest(t *testing.T, registry integrations.Registry, opts ...SyncOption) (*SyncService, *repo.Repository) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	r, err := repo.New(db)
	require.NoError(t, err)
	require.NoError(t, r.Migrate())

	cfg := config.Config{
		GeminiAPIKey:         "env-key",
		GeminiAPISecret:      "env-secret",
		FidelityClientID:     "env-id",
		FidelityClientSecret: "env-secret",
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	base := []SyncOption{
		WithSyncRepo(r),
		WithSyncLogger(logger),
		WithSyncResolver(NewCredentialResolver(r, cfg)),
		WithSyncRegistry(registry),
		WithSyncTimeout(time.Second),
	}
	svc, err := NewSyncService(append(base, opts...)...)
	require.NoError(t, err)
	return svc, r
}

func staticRegistry(clients ...*stubClient) integrations.Registry {
	registry := integrations.Registry{}
	for _, c := range clients {
		client := c
		registry[client.platform] = func(creds platforms.Credentials) platforms.Client {
			return client
		}
	}
	return registry
}

func TestSync_FirstRunCreatesPortfolioAndHoldings(t *testing.T) {
	client := &stubClient{
		platform: platforms.PlatformGemini,
		positions: []platforms.Position{
			{AssetSymbol: "BTC", AssetType: "crypto", Quantity: 0.5, AveragePrice: 100},
		},
	}
	svc, r := setupSyncTest(t, staticRegistry(client))

	report := svc.Sync(context.Background(), 1)
	require.Len(t, report.Success, 1)
	assert.Contains(t, report.Success[0], "Gemini")
	// fidelity is not registered, so no entry at all for it
	require.Empty(t, report.Errors)

	portfolio, err := r.GetPortfolioByName(1, "Gemini Portfolio")
	require.NoError(t, err)
	assert.Contains(t, portfolio.Description, "Automatically synced")

	holdings, err := r.GetHoldingsByPortfolio(portfolio.ID)
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, "BTC", holdings[0].AssetSymbol)
	assert.Equal(t, models.AssetCrypto, holdings[0].AssetType)
	assert.Equal(t, 0.5, holdings[0].Quantity)
	assert.Equal(t, models.PlatformGemini, holdings[0].Platform)
}

func TestSync_Idempotent(t *testing.T) {
	client := &stubClient{
		platform: platforms.PlatformGemini,
		positions: []platforms.Position{
			{AssetSymbol: "BTC", AssetType: "crypto", Quantity: 0.5, AveragePrice: 100},
			{AssetSymbol: "ETH", AssetType: "crypto", Quantity: 3, AveragePrice: 20},
		},
	}
	svc, r := setupSyncTest(t, staticRegistry(client))

	svc.Sync(context.Background(), 1)
	svc.Sync(context.Background(), 1)

	portfolio, err := r.GetPortfolioByName(1, "Gemini Portfolio")
	require.NoError(t, err)

	holdings, err := r.GetHoldingsByPortfolio(portfolio.ID)
	require.NoError(t, err)
	require.Len(t, holdings, 2)
	assert.Equal(t, 0.5, holdings[0].Quantity) // BTC sorts first
	assert.Equal(t, 100.0, holdings[0].AveragePrice)
}

func TestSync_ConvergesToUpstreamState(t *testing.T) {
	client := &stubClient{
		platform: platforms.PlatformGemini,
		positions: []platforms.Position{
			{AssetSymbol: "BTC", AssetType: "crypto", Quantity: 0.5, AveragePrice: 100},
		},
	}
	svc, r := setupSyncTest(t, staticRegistry(client))

	svc.Sync(context.Background(), 1)

	client.positions = []platforms.Position{
		{AssetSymbol: "BTC", AssetType: "crypto", Quantity: 0.7, AveragePrice: 100},
	}
	svc.Sync(context.Background(), 1)

	portfolio, err := r.GetPortfolioByName(1, "Gemini Portfolio")
	require.NoError(t, err)

	holdings, err := r.GetHoldingsByPortfolio(portfolio.ID)
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, 0.7, holdings[0].Quantity)
}

func TestSync_PartialFailureIsolation(t *testing.T) {
	gemini := &stubClient{
		platform: platforms.PlatformGemini,
		err:      &platforms.APIError{Platform: platforms.PlatformGemini, StatusCode: 502, Body: "bad gateway"},
	}
	fidelity := &stubClient{
		platform: platforms.PlatformFidelity,
		positions: []platforms.Position{
			{AssetSymbol: "AAPL", AssetType: "stock", Quantity: 10, AveragePrice: 150},
		},
	}
	svc, r := setupSyncTest(t, staticRegistry(gemini, fidelity))

	report := svc.Sync(context.Background(), 1)

	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "Gemini")
	require.Len(t, report.Success, 1)
	assert.Contains(t, report.Success[0], "Fidelity")

	// the failing platform did not block the healthy one
	portfolio, err := r.GetPortfolioByName(1, "Fidelity Portfolio")
	require.NoError(t, err)
	holdings, err := r.GetHoldingsByPortfolio(portfolio.ID)
	require.NoError(t, err)
	require.Len(t, holdings, 1)

	_, err = r.GetPortfolioByName(1, "Gemini Portfolio")
	require.ErrorIs(t, err, repo.ErrNotFound)
}

func TestSync_MissingCredentialsSkipsNetwork(t *testing.T) {
	var factoryCalls int
	registry := integrations.Registry{
		platforms.PlatformGemini: func(creds platforms.Credentials) platforms.Client {
			factoryCalls++
			return &stubClient{platform: platforms.PlatformGemini}
		},
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	r, err := repo.New(db)
	require.NoError(t, err)
	require.NoError(t, r.Migrate())

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	svc, err := NewSyncService(
		WithSyncRepo(r),
		WithSyncLogger(logger),
		WithSyncResolver(NewCredentialResolver(r, config.Config{})), // nothing configured
		WithSyncRegistry(registry),
	)
	require.NoError(t, err)

	report := svc.Sync(context.Background(), 1)
	require.Empty(t, report.Success)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "Gemini")
	assert.Contains(t, report.Errors[0], "credentials")
	assert.Zero(t, factoryCalls)
}

func TestSync_UserCredentialsOverrideDefaults(t *testing.T) {
	var seenKey string
	registry := integrations.Registry{
		platforms.PlatformGemini: func(creds platforms.Credentials) platforms.Client {
			seenKey = creds.Key
			return &stubClient{platform: platforms.PlatformGemini}
		},
	}

	svc, r := setupSyncTest(t, registry)

	require.NoError(t, r.UpsertPlatformCredential(&models.PlatformCredential{
		UserID:    1,
		Platform:  models.PlatformGemini,
		APIKey:    "user-key",
		APISecret: "user-secret",
	}))

	svc.Sync(context.Background(), 1)
	assert.Equal(t, "user-key", seenKey)

	// a user without stored credentials falls back to the environment
	svc.Sync(context.Background(), 2)
	assert.Equal(t, "env-key", seenKey)
}

func TestSync_UpsertOnlyKeepsStaleHoldings(t *testing.T) {
	client := &stubClient{
		platform: platforms.PlatformGemini,
		positions: []platforms.Position{
			{AssetSymbol: "BTC", AssetType: "crypto", Quantity: 0.5},
			{AssetSymbol: "ETH", AssetType: "crypto", Quantity: 2},
		},
	}
	svc, r := setupSyncTest(t, staticRegistry(client))

	svc.Sync(context.Background(), 1)

	// ETH sold to zero upstream; default strategy leaves the row behind
	client.positions = client.positions[:1]
	svc.Sync(context.Background(), 1)

	portfolio, err := r.GetPortfolioByName(1, "Gemini Portfolio")
	require.NoError(t, err)
	holdings, err := r.GetHoldingsByPortfolio(portfolio.ID)
	require.NoError(t, err)
	require.Len(t, holdings, 2)
}

func TestSync_PruneRemovesStaleHoldings(t *testing.T) {
	client := &stubClient{
		platform: platforms.PlatformGemini,
		positions: []platforms.Position{
			{AssetSymbol: "BTC", AssetType: "crypto", Quantity: 0.5},
			{AssetSymbol: "ETH", AssetType: "crypto", Quantity: 2},
		},
	}
	svc, r := setupSyncTest(t, staticRegistry(client), WithSyncPrune(true))

	svc.Sync(context.Background(), 1)

	client.positions = client.positions[:1]
	svc.Sync(context.Background(), 1)

	portfolio, err := r.GetPortfolioByName(1, "Gemini Portfolio")
	require.NoError(t, err)
	holdings, err := r.GetHoldingsByPortfolio(portfolio.ID)
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, "BTC", holdings[0].AssetSymbol)
}

func TestNewSyncService_Validation(t *testing.T) {
	_, err := NewSyncService()
	require.ErrorIs(t, err, ErrInvalidSyncConfig)
}
