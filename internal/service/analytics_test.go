package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Eddie1114/portfolio-tracker/internal/models"
	"github.com/Eddie1114/portfolio-tracker/internal/repo"
	"github.com/Eddie1114/portfolio-tracker/pkg/types/prices"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubQuoter struct {
	quotes map[string]float64
	err    error
}

func (s *stubQuoter) Quote(ctx context.Context, symbol string) (prices.Quote, error) {
	quotes, err := s.QuoteMany(ctx, []string{symbol})
	if err != nil {
		return prices.Quote{}, err
	}
	return quotes[symbol], nil
}

func (s *stubQuoter) QuoteMany(ctx context.Context, symbols []string) (map[string]prices.Quote, error) {
	if s.err != nil {
		return nil, s.err
	}
	quotes := make(map[string]prices.Quote)
	for _, symbol := range symbols {
		if value, ok := s.quotes[symbol]; ok {
			quotes[symbol] = prices.Quote{Symbol: symbol, Value: value}
		}
	}
	return quotes, nil
}

func setupAnalyticsTest(t *testing.T, quoter prices.Quoter) (*AnalyticsService, *repo.Repository) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	r, err := repo.New(db)
	require.NoError(t, err)
	require.NoError(t, r.Migrate())

	svc, err := NewAnalyticsService(
		WithAnalyticsRepo(r),
		WithAnalyticsQuoter(quoter),
		WithAnalyticsLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err)
	return svc, r
}

func seedPortfolio(t *testing.T, r *repo.Repository) *models.Portfolio {
	portfolio := &models.Portfolio{UserID: 1, Name: "Main"}
	require.NoError(t, r.CreatePortfolio(portfolio))

	now := time.Now().UTC()
	holdings := []*models.Holding{
		{PortfolioID: portfolio.ID, AssetSymbol: "BTC", AssetType: models.AssetCrypto, Quantity: 0.5, AveragePrice: 30000, Platform: models.PlatformGemini, LastUpdated: now},
		{PortfolioID: portfolio.ID, AssetSymbol: "AAPL", AssetType: models.AssetStock, Quantity: 10, AveragePrice: 150, Platform: models.PlatformFidelity, LastUpdated: now},
	}
	for _, h := range holdings {
		require.NoError(t, r.CreateHolding(h))
	}
	return portfolio
}

func TestPortfolioMetrics(t *testing.T) {
	quoter := &stubQuoter{quotes: map[string]float64{"BTC": 40000}}
	svc, r := setupAnalyticsTest(t, quoter)
	portfolio := seedPortfolio(t, r)

	metrics, err := svc.PortfolioMetrics(context.Background(), 1, portfolio.ID)
	require.NoError(t, err)

	// BTC marked to market at 40000, AAPL valued at its average price
	assert.InDelta(t, 0.5*40000+10*150, metrics.TotalValue, 1e-9)
	assert.InDelta(t, 0.5*30000+10*150, metrics.TotalCost, 1e-9)
	assert.InDelta(t, 5000, metrics.GainLoss, 1e-9)
	assert.Equal(t, 2, metrics.HoldingCount)

	assert.InDelta(t, 20000.0/21500.0, metrics.ByAssetType["crypto"], 1e-9)
	assert.InDelta(t, 1500.0/21500.0, metrics.ByAssetType["stock"], 1e-9)
	assert.InDelta(t, 20000.0/21500.0, metrics.ByPlatform["gemini"], 1e-9)
}

func TestPortfolioMetrics_QuoterDownFallsBackToCost(t *testing.T) {
	quoter := &stubQuoter{err: errors.New("upstream down")}
	svc, r := setupAnalyticsTest(t, quoter)
	portfolio := seedPortfolio(t, r)

	metrics, err := svc.PortfolioMetrics(context.Background(), 1, portfolio.ID)
	require.NoError(t, err)
	assert.InDelta(t, metrics.TotalCost, metrics.TotalValue, 1e-9)
	assert.Zero(t, metrics.GainLoss)
}

func TestPortfolioMetrics_WrongUser(t *testing.T) {
	svc, r := setupAnalyticsTest(t, &stubQuoter{})
	portfolio := seedPortfolio(t, r)

	_, err := svc.PortfolioMetrics(context.Background(), 99, portfolio.ID)
	require.ErrorIs(t, err, repo.ErrNotFound)
}

func TestPortfolioMetrics_EmptyPortfolio(t *testing.T) {
	svc, r := setupAnalyticsTest(t, &stubQuoter{})
	portfolio := &models.Portfolio{UserID: 1, Name: "Empty"}
	require.NoError(t, r.CreatePortfolio(portfolio))

	metrics, err := svc.PortfolioMetrics(context.Background(), 1, portfolio.ID)
	require.NoError(t, err)
	assert.Zero(t, metrics.TotalValue)
	assert.Zero(t, metrics.GainLossPct)
	assert.Empty(t, metrics.ByAssetType)
}
