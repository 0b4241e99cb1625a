package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	DBHost string `env:"DB_HOST" envDefault:"localhost"`
	DBPort string `env:"DB_PORT" envDefault:"5432"`
	DBName string `env:"DB_NAME" envDefault:"bookshelf"`
	DBUser string `env:"DB_USER" envDefault:"bookshelf"`
	DBPass string `env:"DB_PASS" envDefault:"bookshelf"`

	// DBMaxOpenConns is the maximum number of open connections to the database (default 25).
	DBMaxOpenConns int `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	// DBMaxIdleConns is the maximum number of idle connections (default 5).
	DBMaxIdleConns int `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`

	// JWTSecret signs bearer tokens. No default: the API refuses to start without it.
	JWTSecret string `env:"JWT_SECRET"`

	// JWTExpireHours is the token lifetime in hours (default 24). Set via JWT_EXPIRE_HOURS.
	JWTExpireHours int `env:"JWT_EXPIRE_HOURS" envDefault:"24"`

	// Env is "dev" (default) or "prod".
	Env string `env:"ENV" envDefault:"dev"`

	// LogFormat is "text" (default) or "json" for structured logging.
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	// When empty, the API listens with plain HTTP.
	TLSCertFile string `env:"TLS_CERT_FILE"`
	TLSKeyFile  string `env:"TLS_KEY_FILE"`

	// CORSAllowedOrigins is a list of origins allowed for CORS (comma-separated in
	// CORS_ALLOWED_ORIGINS). When empty, no CORS headers are sent (same-origin only).
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	// RatingRefreshCron is the cron expression for the book rating rollup refresh job.
	RatingRefreshCron string `env:"RATING_REFRESH_CRON" envDefault:"0 3 * * *"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present (development convenience).
func Load() (Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return Config{}, fmt.Errorf("load .env: %w", err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks invariants the server cannot run without. Token issuance and
// verification are keyed by JWTSecret, so an empty secret is a startup error,
// not something to paper over with a default.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	if c.JWTExpireHours <= 0 {
		return errors.New("JWT_EXPIRE_HOURS must be positive")
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		return errors.New("TLS_CERT_FILE and TLS_KEY_FILE must be set together")
	}
	return nil
}

// DatabaseURL returns the postgres DSN used by the migration runner.
func (c Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName)
}
