package controller

import (
	"log/slog"

	"github.com/Eddie1114/portfolio-tracker/internal/auth"
	"github.com/Eddie1114/portfolio-tracker/internal/repo"
	"github.com/Eddie1114/portfolio-tracker/internal/service"

	"github.com/pkg/errors"
)

// Controller holds the HTTP handlers. Everything it needs is injected;
// there is no package-level state.
type Controller struct {
	repo      *repo.Repository
	tokens    *auth.TokenService
	sync      *service.SyncService
	analytics *service.AnalyticsService
	insights  *service.InsightService
	logger    *slog.Logger
}

type Option func(*Controller)

func WithRepo(r *repo.Repository) Option {
	return func(c *Controller) {
		c.repo = r
	}
}

func WithTokens(t *auth.TokenService) Option {
	return func(c *Controller) {
		c.tokens = t
	}
}

func WithSync(s *service.SyncService) Option {
	return func(c *Controller) {
		c.sync = s
	}
}

func WithAnalytics(a *service.AnalyticsService) Option {
	return func(c *Controller) {
		c.analytics = a
	}
}

func WithInsights(i *service.InsightService) Option {
	return func(c *Controller) {
		c.insights = i
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

func (c *Controller) IsValid() error {
	switch {
	case c.repo == nil:
		return errors.Wrap(ErrInvalidControllerConfig, "repo cannot be nil")
	case c.tokens == nil:
		return errors.Wrap(ErrInvalidControllerConfig, "tokens cannot be nil")
	case c.sync == nil:
		return errors.Wrap(ErrInvalidControllerConfig, "sync cannot be nil")
	case c.analytics == nil:
		return errors.Wrap(ErrInvalidControllerConfig, "analytics cannot be nil")
	case c.insights == nil:
		return errors.Wrap(ErrInvalidControllerConfig, "insights cannot be nil")
	case c.logger == nil:
		return errors.Wrap(ErrInvalidControllerConfig, "logger cannot be nil")
	default:
		return nil
	}
}

func New(opts ...Option) (*Controller, error) {
	c := &Controller{}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.IsValid(); err != nil {
		return nil, err
	}
	return c, nil
}
