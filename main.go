package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"jaekwon721/nikewatcher/config"
	"jaekwon721/nikewatcher/internal/crawler"
	"jaekwon721/nikewatcher/logger"
	"jaekwon721/nikewatcher/services/cache"
	"jaekwon721/nikewatcher/services/publisher"
	"jaekwon721/nikewatcher/services/store"
	"jaekwon721/nikewatcher/services/worker"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Int("categories", len(cfg.CategoryURLs)).
		Int("worker_count", cfg.WorkerCount).
		Dur("crawl_interval", cfg.CrawlInterval).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Open the product store
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	// Optional services
	var cacheSvc cache.CacheService
	if cfg.MemcacheAddr != "" {
		cacheSvc = cache.NewMemcacheService(cfg.MemcacheAddr)
		logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
	}

	var pub publisher.Publisher
	if cfg.RedisAddr != "" {
		redisPublisher := publisher.NewRedisPublisher(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
		defer redisPublisher.Close()
		pub = redisPublisher
		logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
			cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
	}

	// Build the per-category pipeline
	pipeline := &crawler.Pipeline{
		Fetcher: &crawler.Fetcher{
			APIBase:     cfg.APIBase,
			Marketplace: cfg.Marketplace,
			Language:    cfg.Language,
			ChannelID:   cfg.ChannelID,
			PageSize:    cfg.PageSize,
			Pace:        crawler.RandomDelay(cfg.DelayMin, cfg.DelayMax),
		},
		Cache:     cacheSvc,
		BlockTime: cfg.BlockTime,
	}

	categories := make([]crawler.Category, 0, len(cfg.CategoryURLs))
	for _, u := range cfg.CategoryURLs {
		categories = append(categories, crawler.NewCategory(u))
	}

	// Create and start worker
	w := worker.NewWorker(ctx, categories, pipeline, db, pub, cfg.WorkerCount, cfg.CrawlInterval)

	workerDone := make(chan error, 1)
	go func() {
		log.Info().Msg("Starting harvest worker")
		workerDone <- w.Start()
	}()

	// Wait for shutdown signal or worker completion
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
		<-workerDone
	case err := <-workerDone:
		if err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("Worker exited with error")
		} else {
			log.Info().Msg("Worker exited normally")
		}
	}

	log.Info().Msg("Shutting down gracefully...")
}
