package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/pearls-backend/internal/data/db"
	"github.com/yungbote/pearls-backend/internal/overlaystore"
	"github.com/yungbote/pearls-backend/internal/pkg/envutil"
	"github.com/yungbote/pearls-backend/internal/pkg/logger"
)

const devJWTSecret = "pearls-dev-secret"

type Config struct {
	Port        string
	Environment string

	DB db.Config

	CorpusSource      string
	CorpusLoadTimeout time.Duration

	JWTSecretKey      string
	AccessTokenTTL    time.Duration
	AuthCookieName    string
	SessionCookieName string
	OwnerOpenID       string

	RedisAddr    string
	RedisChannel string

	OverlayRefreshSpec  string
	OverlayMaxAge       time.Duration
	OverlayFetchTimeout time.Duration

	SessionTTL            time.Duration
	MutationRatePerMinute int
	CORSAllowedOrigins    []string
}

func (c Config) production() bool {
	return strings.EqualFold(c.Environment, "production")
}

// LoadConfig reads the environment. A .env file and the YAML file named by
// CONFIG_FILE only fill keys the environment leaves unset.
func LoadConfig(log *logger.Logger) (Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Info("Loaded .env")
	}
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := seedEnvFromYAML(path); err != nil {
			return Config{}, err
		}
		log.Info("Loaded config file", "path", path)
	}

	cfg := Config{
		Port:        envutil.String("PORT", "8080"),
		Environment: envutil.String("APP_ENV", envutil.String("LOG_MODE", "development")),
		DB: db.Config{
			Driver:           envutil.String("DB_DRIVER", db.DriverPostgres),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost"),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432"),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres"),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", ""),
			PostgresName:     envutil.String("POSTGRES_NAME", "pearls"),
			PostgresSSLMode:  envutil.String("POSTGRES_SSLMODE", "disable"),
			MySQLDSN:         envutil.String("MYSQL_DSN", ""),
			SQLitePath:       envutil.String("SQLITE_PATH", ""),
			MaxOpenConns:     envutil.Int("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:     envutil.Int("DB_MAX_IDLE_CONNS", 5),
			SlowQuery:        envutil.Duration("DB_SLOW_QUERY", time.Second),
		},
		CorpusSource:          envutil.String("CORPUS_SOURCE", "data/threads.json"),
		CorpusLoadTimeout:     envutil.Duration("CORPUS_LOAD_TIMEOUT", 60*time.Second),
		JWTSecretKey:          envutil.String("JWT_SECRET_KEY", ""),
		AccessTokenTTL:        envutil.Duration("ACCESS_TOKEN_TTL", 30*24*time.Hour),
		AuthCookieName:        envutil.String("AUTH_COOKIE_NAME", "pearls_token"),
		SessionCookieName:     envutil.String("SESSION_COOKIE_NAME", "pearls_session"),
		OwnerOpenID:           envutil.String("OWNER_OPEN_ID", ""),
		RedisAddr:             envutil.String("REDIS_ADDR", ""),
		RedisChannel:          envutil.String("REDIS_CHANNEL", "pearls:overlay"),
		OverlayRefreshSpec:    envutil.String("OVERLAY_REFRESH_SPEC", overlaystore.DefaultRefreshSpec),
		OverlayMaxAge:         envutil.Duration("OVERLAY_MAX_AGE", 5*time.Minute),
		OverlayFetchTimeout:   envutil.Duration("OVERLAY_FETCH_TIMEOUT", 15*time.Second),
		SessionTTL:            envutil.Duration("SESSION_TTL", 24*time.Hour),
		MutationRatePerMinute: envutil.Int("MUTATION_RATE_PER_MINUTE", 60),
		CORSAllowedOrigins:    envutil.List("CORS_ALLOWED_ORIGINS", nil),
	}

	if cfg.JWTSecretKey == "" {
		if cfg.production() {
			return Config{}, fmt.Errorf("JWT_SECRET_KEY is required in production")
		}
		log.Warn("JWT_SECRET_KEY not set, using development secret")
		cfg.JWTSecretKey = devJWTSecret
	}
	return cfg, nil
}

// seedEnvFromYAML applies a flat KEY: value YAML document to unset env vars.
func seedEnvFromYAML(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var kv map[string]interface{}
	if err := yaml.Unmarshal(raw, &kv); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	for k, v := range kv {
		key := strings.ToUpper(strings.TrimSpace(k))
		if key == "" || v == nil {
			continue
		}
		if _, set := os.LookupEnv(key); set {
			continue
		}
		var val string
		switch tv := v.(type) {
		case []interface{}:
			parts := make([]string, 0, len(tv))
			for _, p := range tv {
				parts = append(parts, fmt.Sprint(p))
			}
			val = strings.Join(parts, ",")
		default:
			val = fmt.Sprint(tv)
		}
		if err := os.Setenv(key, val); err != nil {
			return err
		}
	}
	return nil
}
