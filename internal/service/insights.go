package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Eddie1114/portfolio-tracker/internal/models"
	"github.com/Eddie1114/portfolio-tracker/internal/repo"

	"github.com/pkg/errors"
	"google.golang.org/genai"
)

var (
	ErrInvalidInsightConfig = errors.New("invalid insight service config")
	ErrInsightsUnavailable  = errors.New("insights are not configured")
)

// TextGenerator produces a completion for a prompt. The production
// implementation wraps the Gemini API client.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type genaiGenerator struct {
	client *genai.Client
	model  string
}

func (g *genaiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate content")
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("model returned an empty response")
	}
	return text, nil
}

// NewGenaiGenerator builds a TextGenerator backed by the Gemini API.
func NewGenaiGenerator(ctx context.Context, apiKey, model string) (TextGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create genai client")
	}
	return &genaiGenerator{client: client, model: model}, nil
}

// InsightService turns a user's portfolio data into natural-language
// commentary. A nil generator means the feature is switched off; calls
// then fail with ErrInsightsUnavailable instead of reaching the network.
type InsightService struct {
	repo      *repo.Repository
	analytics *AnalyticsService
	generator TextGenerator
	logger    *slog.Logger
}

type InsightOption func(*InsightService)

func WithInsightRepo(r *repo.Repository) InsightOption {
	return func(s *InsightService) {
		s.repo = r
	}
}

func WithInsightAnalytics(a *AnalyticsService) InsightOption {
	return func(s *InsightService) {
		s.analytics = a
	}
}

func WithInsightGenerator(g TextGenerator) InsightOption {
	return func(s *InsightService) {
		s.generator = g
	}
}

func WithInsightLogger(l *slog.Logger) InsightOption {
	return func(s *InsightService) {
		s.logger = l
	}
}

func (s *InsightService) IsValid() error {
	switch {
	case s.repo == nil:
		return errors.Wrap(ErrInvalidInsightConfig, "repo cannot be nil")
	case s.analytics == nil:
		return errors.Wrap(ErrInvalidInsightConfig, "analytics cannot be nil")
	case s.logger == nil:
		return errors.Wrap(ErrInvalidInsightConfig, "logger cannot be nil")
	default:
		return nil
	}
}

func NewInsightService(opts ...InsightOption) (*InsightService, error) {
	s := &InsightService{}

	for _, opt := range opts {
		opt(s)
	}

	if err := s.IsValid(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *InsightService) Enabled() bool {
	return s.generator != nil
}

// PortfolioInsights asks the model for commentary on the portfolio's
// composition and performance.
func (s *InsightService) PortfolioInsights(ctx context.Context, userID, portfolioID int64) (string, error) {
	if s.generator == nil {
		return "", ErrInsightsUnavailable
	}

	portfolio, err := s.repo.GetUserPortfolioWithHoldings(userID, portfolioID)
	if err != nil {
		return "", err
	}
	metrics, err := s.analytics.PortfolioMetrics(ctx, userID, portfolioID)
	if err != nil {
		return "", err
	}

	insight, err := s.generator.Generate(ctx, portfolioPrompt(portfolio, metrics))
	if err != nil {
		s.logger.Warn("insight generation failed", "portfolio_id", portfolioID, "error", err)
		return "", err
	}
	return insight, nil
}

// TransactionAnalysis asks the model to review the portfolio's recent
// trading activity.
func (s *InsightService) TransactionAnalysis(ctx context.Context, userID, portfolioID int64) (string, error) {
	if s.generator == nil {
		return "", ErrInsightsUnavailable
	}

	if _, err := s.repo.GetUserPortfolio(userID, portfolioID); err != nil {
		return "", err
	}
	transactions, err := s.repo.GetTransactionsByPortfolio(portfolioID)
	if err != nil {
		return "", err
	}
	if len(transactions) == 0 {
		return "No transactions to analyze yet.", nil
	}

	insight, err := s.generator.Generate(ctx, transactionPrompt(transactions))
	if err != nil {
		s.logger.Warn("transaction analysis failed", "portfolio_id", portfolioID, "error", err)
		return "", err
	}
	return insight, nil
}

func portfolioPrompt(portfolio *models.Portfolio, metrics *PortfolioMetrics) string {
	var b strings.Builder
	b.WriteString("You are a financial analyst. Review this investment portfolio and provide ")
	b.WriteString("concise insights on diversification, concentration risk, and notable positions.\n\n")
	fmt.Fprintf(&b, "Portfolio: %s\n", portfolio.Name)
	fmt.Fprintf(&b, "Total value: $%.2f (cost basis $%.2f, gain/loss %.2f%%)\n\n", metrics.TotalValue, metrics.TotalCost, metrics.GainLossPct)
	b.WriteString("Holdings:\n")
	for _, holding := range portfolio.Holdings {
		fmt.Fprintf(&b, "- %s (%s, %s): %g units at avg $%.2f\n",
			holding.AssetSymbol, holding.AssetType, holding.Platform, holding.Quantity, holding.AveragePrice)
	}
	return b.String()
}

func transactionPrompt(transactions []models.Transaction) string {
	var b strings.Builder
	b.WriteString("You are a financial analyst. Review this trading activity and point out ")
	b.WriteString("patterns, frequency, and anything a long-term investor should reconsider.\n\n")
	b.WriteString("Transactions:\n")
	for _, tx := range transactions {
		fmt.Fprintf(&b, "- %s: %s %g units at $%.2f\n",
			tx.Timestamp.Format("2006-01-02"), tx.TransactionType, tx.Quantity, tx.Price)
	}
	return b.String()
}
