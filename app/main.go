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

	"github.com/phishnews/newshub/app/api"
	"github.com/phishnews/newshub/app/auth"
	"github.com/phishnews/newshub/app/cfg"
	"github.com/phishnews/newshub/app/database"
	"github.com/phishnews/newshub/app/engage"
	"github.com/phishnews/newshub/app/geo"
	"github.com/phishnews/newshub/app/news"
	"github.com/phishnews/newshub/app/sources"
	"github.com/phishnews/newshub/app/summarize"
	"github.com/phishnews/newshub/app/tasks"
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

	slog.Info("Starting NewsHub server", "version", appCfg.Version)

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

	feeds, err := sources.LoadFeeds(appCfg.FeedsFile)
	if err != nil {
		slog.Error("Failed to load feed list", "file", appCfg.FeedsFile, "error", err)
		os.Exit(1)
	}
	slog.Info("Feed list loaded", "count", len(feeds))

	articleRepo := database.NewArticleRepository(db)
	userRepo := database.NewUserRepository(db)

	newsAPI := sources.NewNewsAPIClient(appCfg.NewsAPIKey, appCfg.UserAgent)
	gnews := sources.NewGNewsClient(appCfg.GNewsKey, appCfg.UserAgent)
	rss := sources.NewRSSAdapter(appCfg.UserAgent)
	aggregator := sources.NewAggregator(newsAPI, gnews, rss, feeds)

	summarizer := summarize.NewClient(appCfg.SummarizerURL)
	geoClient := geo.NewClient(appCfg.GeoURL, appCfg.FallbackCountry)
	authenticator := auth.NewAuthenticator(appCfg.JWTSecret)

	service := news.NewService(aggregator, articleRepo, userRepo, summarizer)
	engine := engage.NewEngine(articleRepo, userRepo)

	scheduler := tasks.NewScheduler(service, rss, feeds, articleRepo, summarizer)
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(db, articleRepo, userRepo, service, engine, authenticator, geoClient, appCfg.Version)
	router := api.NewServer(handler, appCfg.EnableDebugAPI)

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

	slog.Info("Shutdown complete")
}
