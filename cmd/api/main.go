package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/ycwei/img2md/internal/config"
	"github.com/ycwei/img2md/internal/db"
	"github.com/ycwei/img2md/internal/gemini"
	"github.com/ycwei/img2md/internal/repo"
	"github.com/ycwei/img2md/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	setupLogger(cfg.LogFormat)

	database, err := db.Connect(cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	slog.Info("connected to database")

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	gateway, err := gemini.New(
		cfg.GeminiAPIKey,
		cfg.GeminiModel,
		cfg.GeminiBaseURL,
		time.Duration(cfg.GeminiTimeoutSeconds)*time.Second,
	)
	if err != nil {
		log.Fatalf("Failed to build gemini client: %v", err)
	}

	scheduler.RunRetention(repo.NewHistoryRepo(database), cfg.HistoryRetentionDays)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: newRouter(database, cfg, gateway),
		// WriteTimeout must outlast the model call budget or slow generations
		// get cut off mid-response.
		ReadTimeout:  30 * time.Second,
		WriteTimeout: time.Duration(cfg.GeminiTimeoutSeconds+30) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	slog.Info("starting img2md API", "port", cfg.Port, "model", cfg.GeminiModel)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on port %s: %v", cfg.Port, err)
	}
}

func setupLogger(format string) {
	if format == "json" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
		return
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))
}
