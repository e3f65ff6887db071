package batch

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/Sternrassler/eve-xmlapi-client/pkg/xmlapi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	batchRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "xmlapi_batch_requests_total",
		Help: "Total requests executed by batch fetches by outcome",
	}, []string{"outcome"})

	batchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "xmlapi_batch_duration_seconds",
		Help:    "Duration of complete batch fetches in seconds",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60},
	})
)

// Config holds batch fetcher configuration.
type Config struct {
	// MaxConcurrency is the maximum number of parallel requests.
	MaxConcurrency int
	// Timeout per request.
	Timeout time.Duration
	// Logger receives progress and failure events.
	Logger zerolog.Logger
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 10,
		Timeout:        30 * time.Second,
		Logger:         log.With().Str("component", "xmlapi-batch").Logger(),
	}
}

// Performer executes a single cached request; *client.Client implements it.
type Performer interface {
	Perform(ctx context.Context, action string, params url.Values) (*xmlapi.Document, error)
}

// Request is one action call in a batch.
type Request struct {
	Action string
	Params url.Values
}

// Result is the outcome of one Request.
type Result struct {
	Index    int
	Request  Request
	Document *xmlapi.Document
	Err      error
}

// Fetcher runs batches of requests in parallel.
type Fetcher struct {
	performer Performer
	config    Config
	logger    zerolog.Logger
}

// NewFetcher creates a new batch fetcher.
func NewFetcher(performer Performer, config Config) *Fetcher {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 10
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return &Fetcher{
		performer: performer,
		config:    config,
		logger:    config.Logger,
	}
}

// FetchAll performs every request and returns their results in request
// order. Individual failures are recorded on their Result; the returned
// error summarizes them. Requests not started before ctx is done carry
// ctx.Err().
func (f *Fetcher) FetchAll(ctx context.Context, requests []Request) ([]Result, error) {
	start := time.Now()
	defer func() {
		batchDuration.Observe(time.Since(start).Seconds())
	}()

	results := make([]Result, len(requests))
	for i, req := range requests {
		results[i] = Result{Index: i, Request: req}
	}
	if len(requests) == 0 {
		return results, nil
	}

	workers := f.config.MaxConcurrency
	if workers > len(requests) {
		workers = len(requests)
	}

	f.logger.Debug().
		Int("requests", len(requests)).
		Int("workers", workers).
		Msg("Starting batch fetch")

	queue := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go f.worker(ctx, queue, results, &wg, i)
	}

	queued := 0
enqueue:
	for ; queued < len(requests); queued++ {
		select {
		case queue <- queued:
		case <-ctx.Done():
			break enqueue
		}
	}
	close(queue)
	wg.Wait()

	for i := queued; i < len(requests); i++ {
		results[i].Err = ctx.Err()
		batchRequestsTotal.WithLabelValues("skipped").Inc()
	}

	var failed int
	var firstErr error
	for _, r := range results {
		if r.Err != nil {
			failed++
			if firstErr == nil {
				firstErr = r.Err
			}
		}
	}

	logEvent := f.logger.Info()
	if failed > 0 {
		logEvent = f.logger.Warn()
	}
	logEvent.
		Int("requests", len(requests)).
		Int("failed", failed).
		Dur("duration", time.Since(start)).
		Msg("Batch fetch complete")

	if failed > 0 {
		return results, fmt.Errorf("batch: %d/%d requests failed: %w", failed, len(requests), firstErr)
	}
	return results, nil
}

// worker processes request indices from the queue. Each index is owned by
// exactly one worker, so results are written without locking.
func (f *Fetcher) worker(ctx context.Context, queue <-chan int, results []Result, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()
	processed := 0

	for idx := range queue {
		req := results[idx].Request

		reqCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
		doc, err := f.performer.Perform(reqCtx, req.Action, req.Params)
		cancel()

		results[idx].Document = doc
		results[idx].Err = err
		processed++

		if err != nil {
			batchRequestsTotal.WithLabelValues("error").Inc()
			f.logger.Warn().
				Err(err).
				Int("worker_id", workerID).
				Int("index", idx).
				Str("action", req.Action).
				Msg("Batch request failed")
			continue
		}
		batchRequestsTotal.WithLabelValues("success").Inc()
	}

	if processed > 0 {
		f.logger.Debug().
			Int("worker_id", workerID).
			Int("processed", processed).
			Msg("Worker completed")
	}
}
