package runs

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// ChangeProcessor is the interface the worker uses to drive impact
// analysis over a claimed run's detected changes. It is satisfied by
// impact.RunProcessor but avoids a circular dependency.
type ChangeProcessor interface {
	ProcessRun(ctx context.Context, runID, requestedBy string) (changesAnalyzed, faqsInvalidated int, duration time.Duration, err error)
}

// WorkerPool processes queued detection runs using a pool of goroutines.
type WorkerPool struct {
	store     *RunStore
	processor ChangeProcessor
	cfg       *RunConfig
	logger    *slog.Logger
	wg        sync.WaitGroup
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(store *RunStore, processor ChangeProcessor, cfg *RunConfig, logger *slog.Logger) *WorkerPool {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkerPool{
		store:     store,
		processor: processor,
		cfg:       cfg,
		logger:    logger,
	}
}

// Run starts the worker pool. It spawns cfg.Concurrency goroutines,
// each polling for runs. It blocks until the context is cancelled,
// then waits for all workers to finish.
func (wp *WorkerPool) Run(ctx context.Context) {
	if wp.store == nil || !wp.cfg.Enabled {
		wp.logger.Info("run worker pool disabled")
		return
	}

	wp.logger.Info("run worker pool starting",
		"concurrency", wp.cfg.Concurrency,
		"maxRetries", wp.cfg.MaxRetries,
		"pollInterval", wp.cfg.PollInterval.String())

	// Start stuck run cleanup goroutine.
	wp.wg.Add(1)
	go func() {
		defer wp.wg.Done()
		wp.cleanupLoop(ctx)
	}()

	// Start worker goroutines.
	for i := 0; i < wp.cfg.Concurrency; i++ {
		wp.wg.Add(1)
		go func(workerID int) {
			defer wp.wg.Done()
			wp.workerLoop(ctx, workerID)
		}(i)
	}

	<-ctx.Done()
	wp.logger.Info("run worker pool shutting down, waiting for workers to finish")
	wp.wg.Wait()
	wp.logger.Info("run worker pool stopped")
}

// workerLoop is the main loop for a single worker goroutine.
func (wp *WorkerPool) workerLoop(ctx context.Context, workerID int) {
	ticker := time.NewTicker(wp.cfg.PollInterval)
	defer ticker.Stop()

	wp.logger.Info("worker started", "workerID", workerID)

	for {
		select {
		case <-ctx.Done():
			wp.logger.Info("worker stopped", "workerID", workerID)
			return
		case <-ticker.C:
			wp.processOne(ctx, workerID)
		}
	}
}

// processOne tries to claim and process a single run.
func (wp *WorkerPool) processOne(ctx context.Context, workerID int) {
	run, err := wp.store.Claim(wp.cfg.MaxRetries)
	if err != nil {
		wp.logger.Error("failed to claim run", "workerID", workerID, "error", err)
		return
	}
	if run == nil {
		return // No runs available.
	}

	wp.logger.Info("processing run",
		"workerID", workerID,
		"runID", run.ID,
		"source", run.SourceName,
		"attempt", run.AttemptCount)

	analyzed, invalidated, duration, err := wp.processor.ProcessRun(ctx, run.ID, run.RequestedBy)
	if err != nil {
		wp.logger.Error("run failed",
			"workerID", workerID,
			"runID", run.ID,
			"error", err)
		if failErr := wp.store.Fail(run.ID, err.Error(), wp.cfg.MaxRetries); failErr != nil {
			wp.logger.Error("failed to mark run as failed", "runID", run.ID, "error", failErr)
		}
		return
	}

	wp.logger.Info("run completed",
		"workerID", workerID,
		"runID", run.ID,
		"changesAnalyzed", analyzed,
		"faqsInvalidated", invalidated,
		"duration", duration.String())

	if err := wp.store.Complete(run.ID, analyzed, invalidated, duration.Milliseconds()); err != nil {
		wp.logger.Error("failed to mark run as complete", "runID", run.ID, "error", err)
	}
}

// cleanupLoop periodically recovers stuck runs and deletes old terminal runs.
func (wp *WorkerPool) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if wp.cfg.ClaimTimeout > 0 {
				recovered, err := wp.store.CleanupStuckRuns(wp.cfg.ClaimTimeout)
				if err != nil {
					wp.logger.Error("failed to cleanup stuck runs", "error", err)
				} else if recovered > 0 {
					wp.logger.Info("recovered stuck runs", "count", recovered)
				}
			}

			if wp.cfg.RetentionDays > 0 {
				cutoff := time.Now().AddDate(0, 0, -wp.cfg.RetentionDays)
				deleted, err := wp.store.DeleteOlderThan(cutoff)
				if err != nil {
					wp.logger.Error("failed to delete old runs", "error", err)
				} else if deleted > 0 {
					wp.logger.Info("deleted old runs", "count", deleted)
				}
			}
		}
	}
}
