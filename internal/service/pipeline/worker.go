package pipeline

import (
	"context"
	"time"

	"github.com/imovia/imovia-go/internal/domain"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// JobClaimer hands out pending jobs. Claiming must be safe across concurrent
// workers; a job is handed to at most one of them.
type JobClaimer interface {
	ClaimPending(ctx context.Context, limit int) ([]*domain.CloningJob, error)
}

// Worker polls for pending cloning jobs and runs them through the pipeline
// with bounded parallelism.
type Worker struct {
	pipeline     *Pipeline
	jobs         JobClaimer
	pollInterval time.Duration
	maxParallel  int
	logger       *zap.Logger
}

func NewWorker(p *Pipeline, jobs JobClaimer, pollInterval time.Duration, maxParallel int, logger *zap.Logger) *Worker {
	if maxParallel < 1 {
		maxParallel = 1
	}
	return &Worker{
		pipeline:     p,
		jobs:         jobs,
		pollInterval: pollInterval,
		maxParallel:  maxParallel,
		logger:       logger,
	}
}

// Start blocks until ctx is cancelled, polling for claimable jobs each tick.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Cloning worker started",
		zap.Duration("poll_interval", w.pollInterval),
		zap.Int("max_parallel", w.maxParallel),
	)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Cloning worker stopped")
			return
		case <-ticker.C:
			w.runBatch(ctx)
		}
	}
}

func (w *Worker) runBatch(ctx context.Context) {
	jobs, err := w.jobs.ClaimPending(ctx, w.maxParallel)
	if err != nil {
		w.logger.Error("Failed to claim pending jobs", zap.Error(err))
		return
	}
	if len(jobs) == 0 {
		return
	}

	w.logger.Info("Claimed cloning jobs", zap.Int("count", len(jobs)))

	p := pool.New().WithMaxGoroutines(w.maxParallel)
	for _, job := range jobs {
		p.Go(func() {
			if err := w.pipeline.Run(ctx, job); err != nil {
				w.logger.Error("Cloning job failed",
					zap.String("job_id", job.ID),
					zap.Error(err),
				)
			}
		})
	}
	p.Wait()
}
