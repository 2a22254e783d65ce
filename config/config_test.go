package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Run("requires JWT_SECRET", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		if _, err := Load(); !errors.Is(err, ErrMissingJWTSecret) {
			t.Fatalf("expected ErrMissingJWTSecret, got %v", err)
		}
	})

	t.Run("applies defaults", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("PORT", "")
		t.Setenv("DB_DRIVER", "")
		t.Setenv("TOKEN_TTL", "")
		t.Setenv("ALLOWED_ORIGINS", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Port != defaultPort {
			t.Errorf("expected port %s, got %s", defaultPort, cfg.Port)
		}
		if cfg.DBDriver != "postgres" {
			t.Errorf("expected postgres driver, got %s", cfg.DBDriver)
		}
		if cfg.TokenTTL != defaultTokenTTL {
			t.Errorf("expected ttl %s, got %s", defaultTokenTTL, cfg.TokenTTL)
		}
		if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "http://localhost:3000" {
			t.Errorf("unexpected origins %v", cfg.AllowedOrigins)
		}
	})

	t.Run("sqlite gets a default DSN", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("DB_DRIVER", "SQLite")
		t.Setenv("DATABASE_URL", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.DBDriver != "sqlite" || cfg.DSN == "" {
			t.Fatalf("expected sqlite with default dsn, got %s %q", cfg.DBDriver, cfg.DSN)
		}
	})
}

func TestEnvDuration(t *testing.T) {
	t.Run("parses value", func(t *testing.T) {
		t.Setenv("TEST_DURATION", "90s")
		if got := envDuration("TEST_DURATION", time.Minute); got != 90*time.Second {
			t.Errorf("expected 90s, got %s", got)
		}
	})

	t.Run("falls back on garbage", func(t *testing.T) {
		t.Setenv("TEST_DURATION", "soon")
		if got := envDuration("TEST_DURATION", time.Minute); got != time.Minute {
			t.Errorf("expected fallback, got %s", got)
		}
	})
}

func TestEnvInt(t *testing.T) {
	t.Setenv("TEST_INT", "-3")
	if got := envInt("TEST_INT", 7); got != 7 {
		t.Errorf("expected fallback for non-positive value, got %d", got)
	}
	t.Setenv("TEST_INT", "12")
	if got := envInt("TEST_INT", 7); got != 12 {
		t.Errorf("expected 12, got %d", got)
	}
}

func TestSplitOrigins(t *testing.T) {
	got := splitOrigins(" https://a.dev , ,https://b.dev")
	if len(got) != 2 || got[0] != "https://a.dev" || got[1] != "https://b.dev" {
		t.Fatalf("unexpected origins %v", got)
	}
}
