package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/feedhive/feedhive/app/api"
	"github.com/feedhive/feedhive/app/cfg"
	"github.com/feedhive/feedhive/app/config"
	"github.com/feedhive/feedhive/app/database"
	"github.com/feedhive/feedhive/app/feed"
	"github.com/feedhive/feedhive/app/ingest"
	"github.com/feedhive/feedhive/app/search"
	"github.com/feedhive/feedhive/app/tagging"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	appCfg, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	slog.Info("Starting FeedHive", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	loader := config.NewLoader(appCfg.FeedsDir)
	configs, err := loader.LoadAll()
	if err != nil {
		log.Fatalf("Failed to load feed configurations: %v", err)
	}

	configs = feed.ExpandAll(configs)
	slog.Info("Feed configurations loaded", "dir", appCfg.FeedsDir, "feeds", len(configs))

	articleRepo := database.NewArticleRepository(db)
	tagRepo := database.NewTagRepository(db)
	tagStore := database.NewArticleTagStore(db, tagRepo)

	strategy, err := tagging.NewStrategy(appCfg.TaggingStrategy, appCfg.OpenAIKey, appCfg.OpenAIModel)
	if err != nil {
		log.Fatalf("Failed to initialize tagging strategy: %v", err)
	}
	slog.Info("Tagging strategy initialized", "strategy", appCfg.TaggingStrategy)

	var indexer search.Indexer = search.Disabled{}
	if appCfg.RedisAddr != "" {
		redisIndexer, err := search.NewRedisIndexer(appCfg.RedisAddr)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisIndexer.Close()
		indexer = redisIndexer
	}

	client := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	ingestor := ingest.NewIngestor(configs, feed.NewParserSelector(), strategy,
		articleRepo, tagStore, indexer, client, appCfg.UserAgent)

	if appCfg.Once {
		runOnce(ingestor)
		return
	}

	scheduler := ingest.NewScheduler(ingestor, time.Duration(appCfg.SchedulerInterval)*time.Second)
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Scheduler started", "interval", appCfg.SchedulerInterval)

	handler := api.NewHandler(configs, articleRepo, tagRepo, tagStore, scheduler)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port, "api_enabled", appCfg.APIAccessKey != "")
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

	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}

// runOnce performs a single ingestion pass. The process exits non-zero only
// when the run itself is aborted, not when individual feeds fail.
func runOnce(ingestor *ingest.Ingestor) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := ingestor.Run(ctx); err != nil {
		slog.Error("Ingestion run failed", "error", err)
		os.Exit(1)
	}
}
