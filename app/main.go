package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openclaw/newsbrief/app/api"
	"github.com/openclaw/newsbrief/app/briefing"
	"github.com/openclaw/newsbrief/app/cfg"
	"github.com/openclaw/newsbrief/app/collector"
	"github.com/openclaw/newsbrief/app/database"
	"github.com/openclaw/newsbrief/app/scoring"
	"github.com/openclaw/newsbrief/app/tasks"
	"github.com/openclaw/newsbrief/app/vector"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting NewsBrief server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	newsRepo := database.NewNewsRepository(db)
	trendRepo := database.NewTrendRepository(db)
	logRepo := database.NewCollectionLogRepository(db)

	scoringConfig, err := scoring.LoadConfig(appCfg.KeywordsFile)
	if err != nil {
		// Scoring degrades to the default score without configuration.
		slog.Warn("Keyword configuration unavailable", "path", appCfg.KeywordsFile, "error", err)
	}

	sources, err := collector.LoadSources(appCfg.SourcesFile)
	if err != nil {
		slog.Error("Failed to load feed sources", "path", appCfg.SourcesFile, "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded feed sources", "feeds", len(sources.Feeds()))

	encoder := buildEncoder(appCfg)
	index := vector.NewIndex(appCfg.VectorPath, encoder, newsRepo)
	if err := index.Load(); err != nil {
		slog.Error("Failed to load vector index", "path", appCfg.VectorPath, "error", err)
		os.Exit(1)
	}
	slog.Info("Vector index ready", "vectors", index.Size(), "model", encoder.Model())

	httpClient := &http.Client{Timeout: 60 * time.Second}
	ingestor := collector.NewIngestor(newsRepo, logRepo, scoringConfig)
	rssCollector := collector.NewRSSCollector(sources, ingestor, httpClient, appCfg.UserAgent)
	trendsCollector := collector.NewTrendsCollector(trendRepo, ingestor, httpClient, "", appCfg.UserAgent)

	scheduler := tasks.NewScheduler(rssCollector, trendsCollector, index)
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Background scheduler started", "workers", appCfg.WorkerCount, "interval_seconds", appCfg.SchedulerInterval)

	generator := briefing.NewGenerator(newsRepo, trendRepo)
	handler := api.NewHandler(newsRepo, trendRepo, index, generator, scheduler)
	router := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}

// buildEncoder picks the Gemini encoder when an API key is configured
// and falls back to the local hashing encoder otherwise.
func buildEncoder(appCfg *cfg.Cfg) vector.Encoder {
	if appCfg.GeminiAPIKey != "" {
		encoder, err := vector.NewGeminiEncoder(context.Background(), appCfg.GeminiAPIKey, appCfg.GeminiModel, appCfg.EmbeddingDim)
		if err == nil {
			slog.Info("Using Gemini embeddings", "model", appCfg.GeminiModel, "dim", appCfg.EmbeddingDim)
			return encoder
		}
		slog.Warn("Gemini encoder unavailable, falling back to hashing encoder", "error", err)
	}

	encoder, err := vector.NewHashingEncoder(appCfg.EmbeddingDim)
	if err != nil {
		slog.Error("Failed to build hashing encoder", "dim", appCfg.EmbeddingDim, "error", err)
		os.Exit(1)
	}
	slog.Info("Using local hashing embeddings", "dim", appCfg.EmbeddingDim)
	return encoder
}
