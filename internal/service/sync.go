package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/Eddie1114/portfolio-tracker/internal/models"
	"github.com/Eddie1114/portfolio-tracker/internal/repo"
	integrations "github.com/Eddie1114/portfolio-tracker/pkg/integrations/platforms"
	"github.com/Eddie1114/portfolio-tracker/pkg/types/platforms"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var ErrInvalidSyncConfig = errors.New("invalid sync service config")

// SyncReport aggregates the per-platform outcomes of one sync run.
type SyncReport struct {
	Success []string `json:"success"`
	Errors  []string `json:"errors"`
}

// SyncService pulls positions from every configured platform and reconciles
// them into the user's holdings. Platform failures never abort the run;
// they become report entries.
type SyncService struct {
	repo     *repo.Repository
	logger   *slog.Logger
	resolver *CredentialResolver
	registry integrations.Registry
	timeout  time.Duration
	retries  int
	backoff  time.Duration
	prune    bool
}

type SyncOption func(*SyncService)

func WithSyncRepo(r *repo.Repository) SyncOption {
	return func(s *SyncService) {
		s.repo = r
	}
}

func WithSyncLogger(l *slog.Logger) SyncOption {
	return func(s *SyncService) {
		s.logger = l
	}
}

func WithSyncResolver(r *CredentialResolver) SyncOption {
	return func(s *SyncService) {
		s.resolver = r
	}
}

func WithSyncRegistry(reg integrations.Registry) SyncOption {
	return func(s *SyncService) {
		s.registry = reg
	}
}

func WithSyncTimeout(d time.Duration) SyncOption {
	return func(s *SyncService) {
		s.timeout = d
	}
}

func WithSyncRetries(attempts int, backoff time.Duration) SyncOption {
	return func(s *SyncService) {
		s.retries = attempts
		s.backoff = backoff
	}
}

// WithSyncPrune enables full reconciliation: holdings no longer reported by
// the platform are deleted instead of left behind.
func WithSyncPrune(prune bool) SyncOption {
	return func(s *SyncService) {
		s.prune = prune
	}
}

func (s *SyncService) IsValid() error {
	switch {
	case s.repo == nil:
		return errors.Wrap(ErrInvalidSyncConfig, "repo cannot be nil")
	case s.logger == nil:
		return errors.Wrap(ErrInvalidSyncConfig, "logger cannot be nil")
	case s.resolver == nil:
		return errors.Wrap(ErrInvalidSyncConfig, "resolver cannot be nil")
	case len(s.registry) == 0:
		return errors.Wrap(ErrInvalidSyncConfig, "registry cannot be empty")
	default:
		return nil
	}
}

func NewSyncService(opts ...SyncOption) (*SyncService, error) {
	s := &SyncService{
		timeout: 30 * time.Second,
		retries: 1,
		backoff: 500 * time.Millisecond,
	}

	for _, opt := range opts {
		opt(s)
	}

	if err := s.IsValid(); err != nil {
		return nil, err
	}
	return s, nil
}

// Sync runs one synchronization pass for the user. Platforms are processed
// independently and sequentially; the report carries one entry per
// platform. Sync itself never fails.
func (s *SyncService) Sync(ctx context.Context, userID int64) SyncReport {
	report := SyncReport{
		Success: []string{},
		Errors:  []string{},
	}

	for _, platform := range s.platformOrder() {
		name := displayName(platform)

		creds, ok := s.resolver.Resolve(userID, platform)
		if !ok {
			report.Errors = append(report.Errors, fmt.Sprintf("%s credentials not configured", name))
			continue
		}

		if err := s.syncPlatform(ctx, userID, platform, creds); err != nil {
			s.logger.Warn("platform sync failed", "platform", platform, "user_id", userID, "error", err)
			report.Errors = append(report.Errors, fmt.Sprintf("Failed to sync %s portfolio: %v", name, err))
			continue
		}

		s.logger.Info("platform synced", "platform", platform, "user_id", userID)
		report.Success = append(report.Success, fmt.Sprintf("Successfully synced %s portfolio", name))
	}

	return report
}

func (s *SyncService) platformOrder() []string {
	order := make([]string, 0, len(s.registry))
	for platform := range s.registry {
		order = append(order, platform)
	}
	sort.Strings(order)
	return order
}

func (s *SyncService) syncPlatform(ctx context.Context, userID int64, platform string, creds platforms.Credentials) error {
	client := s.registry[platform](creds)
	if s.retries > 1 {
		client = integrations.WithRetry(client, s.retries, s.backoff)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	positions, err := client.Positions(fetchCtx)
	if err != nil {
		return err
	}

	return s.reconcile(userID, platform, positions)
}

// reconcile upserts the fetched positions into the platform's canonical
// portfolio inside one database transaction. Holdings are keyed by
// (portfolio_id, asset_symbol), so repeated runs converge instead of
// accumulating rows.
func (s *SyncService) reconcile(userID int64, platform string, positions []platforms.Position) error {
	name := displayName(platform)
	now := time.Now().UTC()

	return s.repo.WithTx(func(tx *repo.Repository) error {
		portfolio, err := tx.GetPortfolioByName(userID, name+" Portfolio")
		if errors.Is(err, gorm.ErrRecordNotFound) {
			portfolio = &models.Portfolio{
				UserID:      userID,
				Name:        name + " Portfolio",
				Description: fmt.Sprintf("Automatically synced %s portfolio", name),
			}
			if err := tx.CreatePortfolio(portfolio); err != nil {
				return errors.Wrap(err, "failed to create portfolio")
			}
		} else if err != nil {
			return errors.Wrap(err, "failed to look up portfolio")
		}

		symbols := make([]string, 0, len(positions))
		for _, position := range positions {
			symbols = append(symbols, position.AssetSymbol)

			holding, err := tx.GetHoldingBySymbol(portfolio.ID, position.AssetSymbol)
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				holding = &models.Holding{
					PortfolioID:  portfolio.ID,
					AssetSymbol:  position.AssetSymbol,
					AssetType:    models.AssetType(position.AssetType),
					Quantity:     position.Quantity,
					AveragePrice: position.AveragePrice,
					Platform:     models.Platform(platform),
					LastUpdated:  now,
				}
				if err := tx.CreateHolding(holding); err != nil {
					return errors.Wrapf(err, "failed to create holding %s", position.AssetSymbol)
				}
			case err != nil:
				return errors.Wrapf(err, "failed to look up holding %s", position.AssetSymbol)
			default:
				// Supersede in place; no history of the prior snapshot.
				holding.Quantity = position.Quantity
				holding.AveragePrice = position.AveragePrice
				holding.LastUpdated = now
				if err := tx.UpdateHolding(holding); err != nil {
					return errors.Wrapf(err, "failed to update holding %s", position.AssetSymbol)
				}
			}
		}

		if s.prune {
			if err := tx.DeleteHoldingsExcept(portfolio.ID, symbols); err != nil {
				return errors.Wrap(err, "failed to prune stale holdings")
			}
		}
		return nil
	})
}

func displayName(platform string) string {
	if platform == "" {
		return platform
	}
	return strings.ToUpper(platform[:1]) + platform[1:]
}
