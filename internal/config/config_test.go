package config

import (
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port: got %q, want 8080", cfg.Port)
	}
	if cfg.DBHost != "localhost" || cfg.DBPort != "5432" {
		t.Errorf("DB defaults: got %s:%s", cfg.DBHost, cfg.DBPort)
	}
	if cfg.JWTExpireHours != 24 {
		t.Errorf("JWTExpireHours: got %d, want 24", cfg.JWTExpireHours)
	}
	if cfg.RatingRefreshCron != "0 3 * * *" {
		t.Errorf("RatingRefreshCron: got %q", cfg.RatingRefreshCron)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat: got %q, want text", cfg.LogFormat)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "9000")
	t.Setenv("JWT_EXPIRE_HOURS", "1")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("Port: got %q, want 9000", cfg.Port)
	}
	if cfg.JWTExpireHours != 1 {
		t.Errorf("JWTExpireHours: got %d, want 1", cfg.JWTExpireHours)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Errorf("CORSAllowedOrigins: got %v", cfg.CORSAllowedOrigins)
	}
}

func TestValidate(t *testing.T) {
	base := Config{JWTSecret: "s", JWTExpireHours: 24}

	if err := base.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	noSecret := base
	noSecret.JWTSecret = ""
	if err := noSecret.Validate(); err == nil {
		t.Error("empty JWT_SECRET accepted")
	} else if !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Errorf("unexpected error: %v", err)
	}

	badExpire := base
	badExpire.JWTExpireHours = 0
	if err := badExpire.Validate(); err == nil {
		t.Error("zero JWT_EXPIRE_HOURS accepted")
	}

	halfTLS := base
	halfTLS.TLSCertFile = "cert.pem"
	if err := halfTLS.Validate(); err == nil {
		t.Error("TLS cert without key accepted")
	}
}

func TestDatabaseURL(t *testing.T) {
	cfg := Config{
		DBUser: "app", DBPass: "pw", DBHost: "db", DBPort: "5433", DBName: "books",
	}
	want := "postgres://app:pw@db:5433/books?sslmode=disable"
	if got := cfg.DatabaseURL(); got != want {
		t.Errorf("DatabaseURL: got %q, want %q", got, want)
	}
}
