package worker

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"jaekwon721/nikewatcher/internal/crawler"
	"jaekwon721/nikewatcher/logger"
	"jaekwon721/nikewatcher/services/publisher"
)

// Harvester runs one category's discovery and fetch pipeline
type Harvester interface {
	Run(ctx context.Context, cat crawler.Category) crawler.Result
}

// Store persists one run's aggregated snapshot
type Store interface {
	SaveSnapshot(ctx context.Context, records []crawler.ProductRecord) error
}

// RunSummary describes one completed crawl run
type RunSummary struct {
	StartedAt  time.Time `json:"started_at"`
	DurationMs int64     `json:"duration_ms"`
	Categories int       `json:"categories"`
	Failed     int       `json:"failed"`
	Products   int       `json:"products"`
}

// Worker orchestrates the per-category pipelines and the persistence step
type Worker struct {
	ctx           context.Context
	categories    []crawler.Category
	harvester     Harvester
	store         Store
	publisher     publisher.Publisher
	workerCount   int
	crawlInterval time.Duration
	log           *logger.Logger
}

// NewWorker creates a new worker. A nil publisher disables run summaries;
// crawlInterval zero means a single run.
func NewWorker(
	ctx context.Context,
	categories []crawler.Category,
	harvester Harvester,
	store Store,
	pub publisher.Publisher,
	workerCount int,
	crawlInterval time.Duration,
) *Worker {
	return &Worker{
		ctx:           ctx,
		categories:    categories,
		harvester:     harvester,
		store:         store,
		publisher:     pub,
		workerCount:   workerCount,
		crawlInterval: crawlInterval,
		log:           logger.ForWorker(),
	}
}

// Start runs crawl rounds until the interval loop is exhausted or the context
// is cancelled. With a zero interval it performs exactly one run.
func (w *Worker) Start() error {
	for {
		w.runOnce()

		if w.crawlInterval <= 0 {
			return nil
		}

		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		case <-time.After(w.crawlInterval):
		}
	}
}

// runOnce harvests every category on the bounded pool, aggregates the
// snapshot, and reconciles it into storage
func (w *Worker) runOnce() {
	start := time.Now()
	total := len(w.categories)

	w.log.Info().Int("categories", total).Msg("Starting crawler run")

	results := make(chan crawler.Result, total)
	sem := make(chan struct{}, w.workerCount)
	var completed atomic.Int64

	var wg sync.WaitGroup
	for _, cat := range w.categories {
		wg.Add(1)
		go func(cat crawler.Category) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results <- w.harvester.Run(w.ctx, cat)
		}(cat)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var snapshot []crawler.ProductRecord
	failed := 0

	for result := range results {
		done := completed.Add(1)

		if result.Err != nil {
			failed++
			w.log.Error().
				Err(result.Err).
				Str("category", result.Category.Name).
				Str("url", result.Category.EntryURL).
				Msg("Category failed")
		} else {
			snapshot = append(snapshot, result.Records...)
		}

		w.log.Info().
			Int64("completed", done).
			Int("total", total).
			Str("category", result.Category.Name).
			Msg("Category finished")
	}

	if len(snapshot) == 0 {
		w.log.Warn().Msg("No data collected in this run")
		return
	}

	if err := w.store.SaveSnapshot(w.ctx, snapshot); err != nil {
		w.log.Error().Err(err).Msg("Failed to persist snapshot")
		return
	}

	elapsed := time.Since(start)
	w.publishSummary(RunSummary{
		StartedAt:  start,
		DurationMs: elapsed.Milliseconds(),
		Categories: total,
		Failed:     failed,
		Products:   len(snapshot),
	})

	w.log.Info().
		Dur("duration", elapsed).
		Int("products", len(snapshot)).
		Int("failed_categories", failed).
		Msg("Crawler run completed")
}

// publishSummary emits the run summary to the stream; failures are logged and
// never fail the run
func (w *Worker) publishSummary(summary RunSummary) {
	if w.publisher == nil {
		return
	}

	data, err := json.Marshal(summary)
	if err != nil {
		w.log.Error().Err(err).Msg("Failed to marshal run summary")
		return
	}

	if err := w.publisher.Publish(data); err != nil {
		w.log.Error().Err(err).Msg("Failed to publish run summary")
	}
}
