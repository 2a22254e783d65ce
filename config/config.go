package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort                   = "5200"
	defaultDBDriver               = "postgres"
	defaultTokenTTL               = 24 * time.Hour
	defaultLevelReconcileInterval = 15 * time.Minute
	defaultBodyLimitMB            = 10
	defaultShutdownTimeout        = 10 * time.Second
)

var ErrMissingJWTSecret = errors.New("JWT_SECRET environment variable not set")

type Config struct {
	Port     string
	DBDriver string // postgres | sqlite
	DSN      string

	JWTSecret    string
	TokenTTL     time.Duration
	ServiceToken string

	AllowedOrigins []string
	BodyLimitMB    int

	// Jobs run through asynq only when set; otherwise progress events are handled inline.
	RedisURL string

	R2AccountID       string
	R2AccessKeyID     string
	R2AccessKeySecret string
	R2Bucket          string
	CDNBaseURL        string

	LevelReconcileInterval time.Duration
	ShutdownTimeout        time.Duration
}

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	cfg := Config{
		Port:                   envOrDefault("PORT", defaultPort),
		DBDriver:               strings.ToLower(envOrDefault("DB_DRIVER", defaultDBDriver)),
		DSN:                    os.Getenv("DATABASE_URL"),
		JWTSecret:              os.Getenv("JWT_SECRET"),
		TokenTTL:               envDuration("TOKEN_TTL", defaultTokenTTL),
		ServiceToken:           os.Getenv("SERVICE_TOKEN"),
		AllowedOrigins:         splitOrigins(envOrDefault("ALLOWED_ORIGINS", "http://localhost:3000")),
		BodyLimitMB:            envInt("BODY_LIMIT_MB", defaultBodyLimitMB),
		RedisURL:               os.Getenv("REDIS_URL"),
		R2AccountID:            os.Getenv("CLOUDFLARE_ACCOUNT_ID"),
		R2AccessKeyID:          os.Getenv("R2_ACCESS_KEY_ID"),
		R2AccessKeySecret:      os.Getenv("R2_ACCESS_KEY_SECRET"),
		R2Bucket:               os.Getenv("R2_BUCKET_NAME"),
		CDNBaseURL:             os.Getenv("CDN_BASE_URL"),
		LevelReconcileInterval: envDuration("LEVEL_RECONCILE_INTERVAL", defaultLevelReconcileInterval),
		ShutdownTimeout:        defaultShutdownTimeout,
	}

	if cfg.DSN == "" && cfg.DBDriver == "sqlite" {
		cfg.DSN = "file:edu.db?_foreign_keys=on"
	}
	if cfg.JWTSecret == "" {
		return cfg, ErrMissingJWTSecret
	}
	return cfg, nil
}

// R2Enabled reports whether object storage credentials are present.
func (c Config) R2Enabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2AccessKeySecret != "" && c.R2Bucket != ""
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		log.Printf("⚠️  [CONFIG] invalid %s=%q, using %d", key, value, fallback)
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		log.Printf("⚠️  [CONFIG] invalid %s=%q, using %s", key, value, fallback)
		return fallback
	}
	return d
}

func splitOrigins(raw string) []string {
	var out []string
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			out = append(out, origin)
		}
	}
	return out
}
