package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yungbote/pearls-backend/internal/pkg/logger"
)

// unset clears key for the test and restores it afterwards.
func unset(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func TestLoadConfigYAMLFillsUnsetKeysOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "port: \"9090\"\nredis_addr: yaml:6379\ncors_allowed_origins:\n  - https://a.example\n  - https://b.example\noverlay_max_age: 30s\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	unset(t, "PORT")
	unset(t, "CORS_ALLOWED_ORIGINS")
	unset(t, "OVERLAY_MAX_AGE")
	unset(t, "APP_ENV")
	unset(t, "LOG_MODE")
	unset(t, "JWT_SECRET_KEY")
	t.Setenv("REDIS_ADDR", "env:6379")
	t.Setenv("CONFIG_FILE", path)

	cfg, err := LoadConfig(logger.Nop())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != "9090" {
		t.Fatalf("port from yaml: got %q", cfg.Port)
	}
	if cfg.RedisAddr != "env:6379" {
		t.Fatalf("env should win over yaml: got %q", cfg.RedisAddr)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("origins: got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.OverlayMaxAge != 30*time.Second {
		t.Fatalf("max age: got %v", cfg.OverlayMaxAge)
	}
	if cfg.JWTSecretKey != devJWTSecret {
		t.Fatalf("expected dev secret outside production")
	}
}

func TestLoadConfigRequiresSecretInProduction(t *testing.T) {
	unset(t, "CONFIG_FILE")
	unset(t, "JWT_SECRET_KEY")
	t.Setenv("APP_ENV", "production")
	if _, err := LoadConfig(logger.Nop()); err == nil {
		t.Fatalf("expected error without JWT_SECRET_KEY in production")
	}
	t.Setenv("JWT_SECRET_KEY", "s3cret")
	cfg, err := LoadConfig(logger.Nop())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.JWTSecretKey != "s3cret" {
		t.Fatalf("secret: got %q", cfg.JWTSecretKey)
	}
}

func TestSeedEnvFromYAMLRejectsBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("port: [unterminated"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := seedEnvFromYAML(path); err == nil {
		t.Fatalf("expected parse error")
	}
	if err := seedEnvFromYAML(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected read error")
	}
}
