package config

import (
	"strings"
	"time"

	"github.com/Eddie1114/portfolio-tracker/pkg/utils"
)

// Config carries every process-level setting. It is built once in main and
// handed to constructors; nothing reads ambient state after startup.
type Config struct {
	Addr           string
	AllowedOrigins []string

	// Persistence. DatabaseURL takes precedence; SQLitePath is the
	// dev/test fallback.
	DatabaseURL string
	SQLitePath  string

	// Auth
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// Optional refresh-token store
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Platform credentials (process-wide defaults; per-user rows in the
	// platform_credentials table take precedence).
	GeminiAPIKey         string
	GeminiAPISecret      string
	FidelityClientID     string
	FidelityClientSecret string

	// Sync behaviour
	SyncTimeout      time.Duration
	SyncRetries      int
	SyncRetryBackoff time.Duration
	SyncPrune        bool
	AutoSyncInterval time.Duration // 0 disables the background sync

	// AI insights
	InsightsAPIKey string
	InsightsModel  string
}

// Load reads the configuration from the environment.
func Load() Config {
	return Config{
		Addr:           utils.GetEnv("ADDR", ":8080"),
		AllowedOrigins: splitOrigins(utils.GetEnv("ALLOWED_ORIGINS", "")),

		DatabaseURL: utils.GetEnv("DATABASE_URL", ""),
		SQLitePath:  utils.GetEnv("SQLITE_PATH", "./data/portfolio.db"),

		JWTSecret:       utils.GetEnv("JWT_SECRET", ""),
		AccessTokenTTL:  utils.GetEnvDuration("ACCESS_TOKEN_TTL", 30*time.Minute),
		RefreshTokenTTL: utils.GetEnvDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		RedisAddr:     utils.GetEnv("REDIS_ADDR", ""),
		RedisPassword: utils.GetEnv("REDIS_PASSWORD", ""),
		RedisDB:       utils.GetEnvInt("REDIS_DB", 0),

		GeminiAPIKey:         utils.GetEnv("GEMINI_API_KEY", ""),
		GeminiAPISecret:      utils.GetEnv("GEMINI_API_SECRET", ""),
		FidelityClientID:     utils.GetEnv("FIDELITY_CLIENT_ID", ""),
		FidelityClientSecret: utils.GetEnv("FIDELITY_CLIENT_SECRET", ""),

		SyncTimeout:      utils.GetEnvDuration("SYNC_TIMEOUT", 30*time.Second),
		SyncRetries:      utils.GetEnvInt("SYNC_RETRIES", 3),
		SyncRetryBackoff: utils.GetEnvDuration("SYNC_RETRY_BACKOFF", 500*time.Millisecond),
		SyncPrune:        utils.GetEnvBool("SYNC_PRUNE", false),
		AutoSyncInterval: utils.GetEnvDuration("AUTO_SYNC_INTERVAL", 0),

		InsightsAPIKey: utils.GetEnv("GOOGLE_API_KEY", ""),
		InsightsModel:  utils.GetEnv("INSIGHTS_MODEL", "gemini-2.5-flash"),
	}
}

func splitOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	var origins []string
	for _, part := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(part); s != "" {
			origins = append(origins, s)
		}
	}
	return origins
}
