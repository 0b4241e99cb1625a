package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/bookshelf-app/bookshelf/internal/config"
	"github.com/bookshelf-app/bookshelf/internal/db"
	"github.com/bookshelf-app/bookshelf/internal/repo"
	"github.com/bookshelf-app/bookshelf/internal/scheduler"
)

func main() {

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		// Token signing cannot work without a secret; refuse to start.
		log.Fatalf("Invalid configuration: %v", err)
	}

	setupLogging(cfg.LogFormat)

	// Connect to database FIRST
	database, err := db.Connect(
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBName,
		cfg.DBUser,
		cfg.DBPass,
		cfg.DBMaxOpenConns,
		cfg.DBMaxIdleConns,
	)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	slog.Info("connected to database", "host", cfg.DBHost, "name", cfg.DBName)

	// Apply pending migrations
	if err := db.Run(cfg.DatabaseURL()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Background rating rollup refresher
	cronJob, err := scheduler.Run(repo.NewBookRepo(database), cfg.RatingRefreshCron)
	if err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer cronJob.Stop()

	// Routes
	r := newRouter(database, cfg)

	// Start server LAST
	addr := ":" + cfg.Port
	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		slog.Info("starting server", "addr", addr, "tls", true)
		err = http.ListenAndServeTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile, r)
	} else {
		slog.Info("starting server", "addr", addr, "tls", false)
		err = http.ListenAndServe(addr, r)
	}
	if err != nil {
		log.Fatal(err)
	}
}

// setupLogging configures the process-wide slog default handler.
func setupLogging(format string) {
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	} else {
		handler = slog.NewTextHandler(os.Stdout, nil)
	}
	slog.SetDefault(slog.New(handler))
}
