package handler

import (
	"time"

	"github.com/Eddie1114/portfolio-tracker/internal/auth"
	"github.com/Eddie1114/portfolio-tracker/internal/controller"
	"github.com/Eddie1114/portfolio-tracker/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	swaggerfiles "github.com/swaggo/files"
	ginswagger "github.com/swaggo/gin-swagger"
	"golang.org/x/time/rate"
)

var (
	ErrNilEngine     = errors.New("engine is required")
	ErrNilController = errors.New("controller is required")
	ErrNilTokens     = errors.New("token service is required")
)

// Handler wires the controller's endpoints into a gin engine. Auth routes
// are rate limited; everything else under /api/v1 requires a bearer token.
type Handler struct {
	engine     *gin.Engine
	controller *controller.Controller
	tokens     *auth.TokenService
	authLimit  rate.Limit
	authBurst  int
	swagger    bool
}

func (h *Handler) IsValid() error {
	if h.engine == nil {
		return ErrNilEngine
	}
	if h.controller == nil {
		return ErrNilController
	}
	if h.tokens == nil {
		return ErrNilTokens
	}
	return nil
}

type Option func(*Handler)

func WithEngine(engine *gin.Engine) Option {
	return func(h *Handler) {
		h.engine = engine
	}
}

func WithController(ctrl *controller.Controller) Option {
	return func(h *Handler) {
		h.controller = ctrl
	}
}

func WithTokens(tokens *auth.TokenService) Option {
	return func(h *Handler) {
		h.tokens = tokens
	}
}

func WithAuthRateLimit(r rate.Limit, burst int) Option {
	return func(h *Handler) {
		h.authLimit = r
		h.authBurst = burst
	}
}

func WithSwagger(enabled bool) Option {
	return func(h *Handler) {
		h.swagger = enabled
	}
}

func New(opts ...Option) (*Handler, error) {
	h := &Handler{
		// 10 auth attempts per IP per minute
		authLimit: rate.Every(6 * time.Second),
		authBurst: 10,
	}
	for _, opt := range opts {
		opt(h)
	}
	if err := h.IsValid(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Handler) Setup() error {
	ctrl := h.controller

	h.engine.Use(middleware.RequestID())

	h.engine.GET("/health", ctrl.Health)
	if h.swagger {
		h.engine.GET("/swagger/*any", ginswagger.WrapHandler(swaggerfiles.Handler))
	}

	api := h.engine.Group("/api/v1")

	authRoutes := api.Group("/auth")
	authRoutes.Use(middleware.RateLimit(h.authLimit, h.authBurst))
	authRoutes.POST("/register", ctrl.Register)
	authRoutes.POST("/token", ctrl.Token)
	authRoutes.POST("/refresh", ctrl.Refresh)

	protected := api.Group("")
	protected.Use(middleware.JWTAuth(h.tokens))

	protected.GET("/auth/me", ctrl.Me)

	portfolios := protected.Group("/portfolios")
	portfolios.GET("", ctrl.ListPortfolios)
	portfolios.POST("", ctrl.CreatePortfolio)
	portfolios.GET("/:id", ctrl.GetPortfolio)
	portfolios.PUT("/:id", ctrl.UpdatePortfolio)
	portfolios.DELETE("/:id", ctrl.DeletePortfolio)
	portfolios.GET("/:id/metrics", ctrl.PortfolioMetrics)
	portfolios.GET("/:id/holdings", ctrl.ListHoldings)
	portfolios.POST("/:id/holdings", ctrl.CreateHolding)
	portfolios.GET("/:id/transactions", ctrl.ListTransactions)
	portfolios.GET("/:id/insights", ctrl.PortfolioInsights)
	portfolios.GET("/:id/transaction-analysis", ctrl.TransactionAnalysis)

	holdings := protected.Group("/holdings")
	holdings.PUT("/:id", ctrl.UpdateHolding)
	holdings.DELETE("/:id", ctrl.DeleteHolding)

	protected.POST("/transactions", ctrl.CreateTransaction)

	platforms := protected.Group("/platforms")
	platforms.GET("/credentials", ctrl.ListCredentials)
	platforms.PUT("/credentials", ctrl.UpsertCredential)

	protected.POST("/sync", ctrl.SyncPortfolios)

	return nil
}
