package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/Eddie1114/portfolio-tracker/internal/models"
	"github.com/Eddie1114/portfolio-tracker/internal/repo"
	"github.com/Eddie1114/portfolio-tracker/pkg/types/prices"

	"github.com/pkg/errors"
)

var ErrInvalidAnalyticsConfig = errors.New("invalid analytics service config")

// PortfolioMetrics summarizes one portfolio's current valuation and mix.
// Allocations are fractions of total value, not percentages.
type PortfolioMetrics struct {
	PortfolioID  int64              `json:"portfolio_id"`
	TotalValue   float64            `json:"total_value"`
	TotalCost    float64            `json:"total_cost"`
	GainLoss     float64            `json:"gain_loss"`
	GainLossPct  float64            `json:"gain_loss_pct"`
	HoldingCount int                `json:"holding_count"`
	ByAssetType  map[string]float64 `json:"by_asset_type"`
	ByPlatform   map[string]float64 `json:"by_platform"`
	AsOf         time.Time          `json:"as_of"`
}

// AnalyticsService values holdings and computes portfolio metrics. Crypto
// holdings are marked to market through the quoter; assets without a live
// quote are valued at their recorded average price.
type AnalyticsService struct {
	repo   *repo.Repository
	quoter prices.Quoter
	logger *slog.Logger
}

type AnalyticsOption func(*AnalyticsService)

func WithAnalyticsRepo(r *repo.Repository) AnalyticsOption {
	return func(a *AnalyticsService) {
		a.repo = r
	}
}

func WithAnalyticsQuoter(q prices.Quoter) AnalyticsOption {
	return func(a *AnalyticsService) {
		a.quoter = q
	}
}

func WithAnalyticsLogger(l *slog.Logger) AnalyticsOption {
	return func(a *AnalyticsService) {
		a.logger = l
	}
}

func (a *AnalyticsService) IsValid() error {
	switch {
	case a.repo == nil:
		return errors.Wrap(ErrInvalidAnalyticsConfig, "repo cannot be nil")
	case a.quoter == nil:
		return errors.Wrap(ErrInvalidAnalyticsConfig, "quoter cannot be nil")
	case a.logger == nil:
		return errors.Wrap(ErrInvalidAnalyticsConfig, "logger cannot be nil")
	default:
		return nil
	}
}

func NewAnalyticsService(opts ...AnalyticsOption) (*AnalyticsService, error) {
	a := &AnalyticsService{}

	for _, opt := range opts {
		opt(a)
	}

	if err := a.IsValid(); err != nil {
		return nil, err
	}
	return a, nil
}

// PortfolioMetrics computes the metrics for one of the user's portfolios.
// Ownership is enforced through the repo lookup.
func (a *AnalyticsService) PortfolioMetrics(ctx context.Context, userID, portfolioID int64) (*PortfolioMetrics, error) {
	portfolio, err := a.repo.GetUserPortfolioWithHoldings(userID, portfolioID)
	if err != nil {
		return nil, err
	}

	quotes := a.quoteCrypto(ctx, portfolio.Holdings)

	metrics := &PortfolioMetrics{
		PortfolioID:  portfolio.ID,
		HoldingCount: len(portfolio.Holdings),
		ByAssetType:  make(map[string]float64),
		ByPlatform:   make(map[string]float64),
		AsOf:         time.Now().UTC(),
	}

	for _, holding := range portfolio.Holdings {
		price := holding.AveragePrice
		if quote, ok := quotes[holding.AssetSymbol]; ok {
			price = quote.Value
		}

		value := holding.Quantity * price
		metrics.TotalValue += value
		metrics.TotalCost += holding.Quantity * holding.AveragePrice
		metrics.ByAssetType[string(holding.AssetType)] += value
		metrics.ByPlatform[string(holding.Platform)] += value
	}

	metrics.GainLoss = metrics.TotalValue - metrics.TotalCost
	if metrics.TotalCost > 0 {
		metrics.GainLossPct = metrics.GainLoss / metrics.TotalCost * 100
	}

	if metrics.TotalValue > 0 {
		for assetType, value := range metrics.ByAssetType {
			metrics.ByAssetType[assetType] = value / metrics.TotalValue
		}
		for platform, value := range metrics.ByPlatform {
			metrics.ByPlatform[platform] = value / metrics.TotalValue
		}
	}

	return metrics, nil
}

func (a *AnalyticsService) quoteCrypto(ctx context.Context, holdings []models.Holding) map[string]prices.Quote {
	symbols := make([]string, 0, len(holdings))
	for _, holding := range holdings {
		if holding.AssetType == models.AssetCrypto {
			symbols = append(symbols, holding.AssetSymbol)
		}
	}
	if len(symbols) == 0 {
		return nil
	}

	quotes, err := a.quoter.QuoteMany(ctx, symbols)
	if err != nil {
		// stale valuation beats no valuation
		a.logger.Warn("price lookup failed, using recorded prices", "error", err)
		return nil
	}
	return quotes
}
