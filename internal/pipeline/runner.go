package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"ProductAdvisor/internal/catalog"
	"ProductAdvisor/internal/collector"
)

// Sink persists scoring output.
type Sink interface {
	// ReplaceClientResults atomically swaps a client's signals, benefits and
	// recommendations for the ones in res.
	ReplaceClientResults(ctx context.Context, res Result, runID string) error
	RecordRun(ctx context.Context, s *Summary) error
}

// Summary describes one batch pass.
type Summary struct {
	RunID           string
	StartedAt       time.Time
	FinishedAt      time.Time
	Clients         int
	Succeeded       int
	Failed          int
	FailedClients   []int
	Signals         int
	Benefits        int
	Recommendations int
}

// Duration is the wall time of the pass.
func (s *Summary) Duration() time.Duration { return s.FinishedAt.Sub(s.StartedAt) }

// Runner scores every client of a Source with a bounded worker pool.
type Runner struct {
	source    collector.Source
	collector *collector.Collector
	catalog   *catalog.Catalog
	sink      Sink
	workers   int
	log       zerolog.Logger
	now       func() time.Time
}

// NewRunner creates a Runner. workers below 1 means one worker.
func NewRunner(src collector.Source, cat *catalog.Catalog, sink Sink, workers int, log zerolog.Logger) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		source:    src,
		collector: collector.NewCollector(src),
		catalog:   cat,
		sink:      sink,
		workers:   workers,
		log:       log.With().Str("component", "runner").Logger(),
		now:       time.Now,
	}
}

// Run scores all clients. A failing client is logged and counted; it never
// stops the others. Errors are returned only when clients cannot be listed
// or ctx is cancelled, in which case the partial summary is still returned.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	codes, err := r.source.ClientCodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}

	sum := &Summary{
		RunID:     uuid.NewString(),
		StartedAt: r.now(),
		Clients:   len(codes),
	}
	log := r.log.With().Str("run_id", sum.RunID).Logger()
	log.Info().Int("clients", len(codes)).Int("workers", r.workers).Msg("scoring pass started")

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(r.workers)

	for _, code := range codes {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, err := r.process(ctx, code, sum.RunID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				sum.Failed++
				sum.FailedClients = append(sum.FailedClients, code)
				log.Error().Err(err).Int("client_code", code).Msg("client scoring failed")
				return nil
			}
			sum.Succeeded++
			sum.Signals += len(res.Signals)
			sum.Benefits += len(res.Benefits)
			sum.Recommendations += len(res.Recommendations)
			return nil
		})
	}
	_ = g.Wait()

	sort.Ints(sum.FailedClients)
	sum.FinishedAt = r.now()

	if err := r.sink.RecordRun(context.WithoutCancel(ctx), sum); err != nil {
		log.Error().Err(err).Msg("record run")
	}

	log.Info().
		Int("succeeded", sum.Succeeded).
		Int("failed", sum.Failed).
		Int("recommendations", sum.Recommendations).
		Dur("took", sum.Duration()).
		Msg("scoring pass finished")

	if err := ctx.Err(); err != nil {
		return sum, fmt.Errorf("scoring pass interrupted: %w", err)
	}
	return sum, nil
}

// RunOne scores and persists a single client.
func (r *Runner) RunOne(ctx context.Context, code int) (Result, error) {
	return r.process(ctx, code, uuid.NewString())
}

func (r *Runner) process(ctx context.Context, code int, runID string) (res Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic scoring client %d: %v", code, p)
		}
	}()

	view, err := r.collector.Collect(ctx, code)
	if err != nil {
		return Result{}, err
	}
	res = Score(view, r.catalog)
	if err := r.sink.ReplaceClientResults(ctx, res, runID); err != nil {
		return Result{}, fmt.Errorf("persist client %d: %w", code, err)
	}
	return res, nil
}
