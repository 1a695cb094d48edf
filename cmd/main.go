package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/Eddie1114/portfolio-tracker/docs"
	"github.com/Eddie1114/portfolio-tracker/internal/auth"
	"github.com/Eddie1114/portfolio-tracker/internal/controller"
	"github.com/Eddie1114/portfolio-tracker/internal/handler"
	"github.com/Eddie1114/portfolio-tracker/internal/repo"
	"github.com/Eddie1114/portfolio-tracker/internal/service"
	"github.com/Eddie1114/portfolio-tracker/pkg/config"
	"github.com/Eddie1114/portfolio-tracker/pkg/database"
	integrations "github.com/Eddie1114/portfolio-tracker/pkg/integrations/platforms"
	"github.com/Eddie1114/portfolio-tracker/pkg/integrations/prices"
	"github.com/Eddie1114/portfolio-tracker/pkg/integrations/scheduler"
	"github.com/Eddie1114/portfolio-tracker/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// @title Portfolio Tracker API
// @version 1.0
// @description Multi-platform investment portfolio aggregation API

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	utils.LoadEnv()
	cfg := config.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var dbOpt database.Option
	if cfg.DatabaseURL != "" {
		dbOpt = database.WithDSN(cfg.DatabaseURL)
	} else {
		dbOpt = database.WithPath(cfg.SQLitePath)
	}
	db, err := database.New(dbOpt)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	repository, err := repo.New(db.Get())
	if err != nil {
		log.Fatal("Failed to create repository:", err)
	}
	if err := repository.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	var refreshStore auth.RefreshStore
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal("Failed to connect to redis:", err)
		}
		refreshStore = auth.NewRedisStore(rdb)
	}

	tokens, err := auth.New(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, refreshStore)
	if err != nil {
		log.Fatal("Failed to create token service:", err)
	}

	syncSvc, err := service.NewSyncService(
		service.WithSyncRepo(repository),
		service.WithSyncLogger(logger),
		service.WithSyncResolver(service.NewCredentialResolver(repository, cfg)),
		service.WithSyncRegistry(integrations.DefaultRegistry()),
		service.WithSyncTimeout(cfg.SyncTimeout),
		service.WithSyncRetries(cfg.SyncRetries, cfg.SyncRetryBackoff),
		service.WithSyncPrune(cfg.SyncPrune),
	)
	if err != nil {
		log.Fatal("Failed to create sync service:", err)
	}

	analytics, err := service.NewAnalyticsService(
		service.WithAnalyticsRepo(repository),
		service.WithAnalyticsQuoter(prices.NewPriceService()),
		service.WithAnalyticsLogger(logger),
	)
	if err != nil {
		log.Fatal("Failed to create analytics service:", err)
	}

	var generator service.TextGenerator
	if cfg.InsightsAPIKey != "" {
		generator, err = service.NewGenaiGenerator(ctx, cfg.InsightsAPIKey, cfg.InsightsModel)
		if err != nil {
			log.Fatal("Failed to create insights generator:", err)
		}
	}
	insights, err := service.NewInsightService(
		service.WithInsightRepo(repository),
		service.WithInsightAnalytics(analytics),
		service.WithInsightGenerator(generator),
		service.WithInsightLogger(logger),
	)
	if err != nil {
		log.Fatal("Failed to create insight service:", err)
	}

	if cfg.AutoSyncInterval > 0 {
		autoSync, err := scheduler.New(
			scheduler.WithContext(ctx),
			scheduler.WithLogger(logger),
			scheduler.WithInterval(cfg.AutoSyncInterval),
			scheduler.WithHandler(syncSvc.SyncAll),
		)
		if err != nil {
			log.Fatal("Failed to create auto-sync scheduler:", err)
		}
		if err := autoSync.Start(); err != nil {
			log.Fatal("Failed to start auto-sync scheduler:", err)
		}
		logger.Info("auto-sync enabled", "interval", cfg.AutoSyncInterval)
	}

	ctrl, err := controller.New(
		controller.WithRepo(repository),
		controller.WithTokens(tokens),
		controller.WithSync(syncSvc),
		controller.WithAnalytics(analytics),
		controller.WithInsights(insights),
		controller.WithLogger(logger),
	)
	if err != nil {
		log.Fatal("Failed to create controller:", err)
	}

	r := gin.Default()
	if len(cfg.AllowedOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = cfg.AllowedOrigins
		corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
		r.Use(cors.New(corsCfg))
	}

	h, err := handler.New(
		handler.WithEngine(r),
		handler.WithController(ctrl),
		handler.WithTokens(tokens),
		handler.WithSwagger(true),
	)
	if err != nil {
		log.Fatal("Failed to create handler:", err)
	}
	if err := h.Setup(); err != nil {
		log.Fatal("Failed to setup routes:", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		logger.Info("shutting down...")
		cancel()
		os.Exit(0)
	}()

	logger.Info("starting portfolio tracker", "addr", cfg.Addr, "insights", insights.Enabled())
	if err := r.Run(cfg.Addr); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
