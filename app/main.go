package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bjpl/openlearn/app/api"
	"github.com/bjpl/openlearn/app/cfg"
	"github.com/bjpl/openlearn/app/database"
	"github.com/bjpl/openlearn/app/enrich"
	"github.com/bjpl/openlearn/app/extract"
	"github.com/bjpl/openlearn/app/feed"
	"github.com/bjpl/openlearn/app/fetch"
	"github.com/bjpl/openlearn/app/sources"
	"github.com/bjpl/openlearn/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
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

	slog.Info("Starting OpenLearn Colombia server", "version", appCfg.Version)

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
	slog.Info("Database ready", "path", appCfg.DBPath, "migration_version", version, "dirty", dirty)

	configCache := sources.NewConfigCache(appCfg.SourcesDir)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load source configurations", "dir", appCfg.SourcesDir, "error", err)
		os.Exit(1)
	}
	slog.Info("Source configurations loaded", "count", configCache.GetConfigCount())

	sourceRepo := database.NewSourceRepository(db)
	articleRepo := database.NewArticleRepository(db)

	fetcher := fetch.NewClient(fetch.DefaultHTTPClient(), appCfg.UserAgent, appCfg.RateLimit, appCfg.RateBurst)
	for _, sourceConfig := range configCache.GetConfigs() {
		if sourceConfig.Settings.RateLimit > 0 {
			if u, err := url.Parse(sourceConfig.FeedURL); err == nil && u.Host != "" {
				fetcher.SetDomainLimit(u.Host, sourceConfig.Settings.RateLimit)
			}
		}
	}

	parser := feed.NewParser()
	assembler := extract.NewAssembler(enrich.NewAnalyzer())

	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount, "interval_seconds", appCfg.SchedulerInterval)
	scheduler := tasks.NewScheduler(configCache, sourceRepo, articleRepo, fetcher, parser, assembler)
	scheduler.Start()
	defer scheduler.Stop()

	apiHandler := api.NewHandler(configCache, sourceRepo, articleRepo, scheduler, fetcher, parser, assembler)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
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
