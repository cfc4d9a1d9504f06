package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cuongbtq/article-worker/internal/worker/domain"
)

// JobQueue hands out jobs and accepts results
type JobQueue interface {
	FetchNext(ctx context.Context) (*domain.Job, error)
	Submit(ctx context.Context, submission domain.Submission) error
}

// Generator turns a prompt into raw article text
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// EventPublisher receives one outcome event per finished job
type EventPublisher interface {
	PublishEvent(ctx context.Context, routingKey string, body []byte) error
}

// Config holds worker configuration
type Config struct {
	Logger    *slog.Logger
	Queue     JobQueue
	Generator Generator
	Publisher EventPublisher
	Clock     Clock

	RunID       string
	WorkerIndex int

	MaxRetries         int
	MinRequestInterval time.Duration
	ErrorRetryDelay    time.Duration
	MaxQuotaRetries    int
	MaxQuotaWait       time.Duration
	FetchRetries       int
	FetchRetryDelay    time.Duration
	MaxJobs            int
}

// Worker pulls jobs one at a time and drives each through generate, parse and submit
type Worker struct {
	logger    *slog.Logger
	queue     JobQueue
	generator Generator
	publisher EventPublisher
	clock     Clock
	pacer     *pacer
	counters  *counters

	runID       string
	workerIndex int
	startedAt   time.Time

	maxRetries      int
	errorRetryDelay time.Duration
	maxQuotaRetries int
	maxQuotaWait    time.Duration
	fetchRetries    int
	fetchRetryDelay time.Duration
	maxJobs         int
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	clock := cfg.Clock
	if clock == nil {
		clock = realClock{}
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = domain.DefaultMaxRetries
	}

	return &Worker{
		logger:          cfg.Logger,
		queue:           cfg.Queue,
		generator:       cfg.Generator,
		publisher:       cfg.Publisher,
		clock:           clock,
		pacer:           newPacer(clock, cfg.MinRequestInterval),
		counters:        newCounters(),
		runID:           cfg.RunID,
		workerIndex:     cfg.WorkerIndex,
		startedAt:       clock.Now(),
		maxRetries:      maxRetries,
		errorRetryDelay: nonNegative(cfg.ErrorRetryDelay),
		maxQuotaRetries: max(cfg.MaxQuotaRetries, 0),
		maxQuotaWait:    nonNegative(cfg.MaxQuotaWait),
		fetchRetries:    max(cfg.FetchRetries, 0),
		fetchRetryDelay: nonNegative(cfg.FetchRetryDelay),
		maxJobs:         max(cfg.MaxJobs, 0),
	}
}

// Run processes jobs until the queue is empty, the context is canceled, or the
// credential is rejected. Only the last case returns an error (domain.ErrWorkerAborted).
func (w *Worker) Run(ctx context.Context) error {
	w.counters.state.Store(StateRunning)
	w.logger.Info("Starting worker",
		slog.String("run_id", w.runID),
		slog.Int("worker_index", w.workerIndex),
		slog.Int("max_retries", w.maxRetries),
		slog.Duration("min_request_interval", w.pacer.minInterval),
	)

	for {
		if ctx.Err() != nil {
			w.logger.Info("Worker context canceled, stopping")
			return w.finish(StateStopped, nil)
		}

		if w.maxJobs > 0 && w.counters.processed.Load() >= int64(w.maxJobs) {
			w.logger.Info("Job limit reached, stopping",
				slog.Int("max_jobs", w.maxJobs),
			)
			return w.finish(StateStopped, nil)
		}

		job, err := w.fetchNext(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return w.finish(StateStopped, nil)
			}
			w.logger.Error("Jobs API unavailable, stopping",
				slog.String("error", err.Error()),
			)
			return w.finish(StateStopped, nil)
		}
		if job == nil {
			w.logger.Info("No more jobs, worker stopping")
			return w.finish(StateStopped, nil)
		}

		w.counters.currentJob.Store(job.ID.String())
		outcome := w.processJob(ctx, job)
		w.counters.currentJob.Store("")

		if outcome.State == "" {
			// canceled mid-job: nothing was reported for it
			return w.finish(StateStopped, nil)
		}

		w.counters.record(outcome.State)
		w.publishOutcome(ctx, outcome)

		if outcome.State == domain.OutcomeAborted {
			return w.finish(StateAborted, domain.ErrWorkerAborted)
		}
	}
}

// Stats returns a point-in-time copy of the worker counters
func (w *Worker) Stats() Stats {
	return Stats{
		RunID:           w.runID,
		WorkerIndex:     w.workerIndex,
		State:           w.counters.state.Load().(string),
		JobsProcessed:   w.counters.processed.Load(),
		JobsSucceeded:   w.counters.succeeded.Load(),
		JobsFailed:      w.counters.failed.Load(),
		GenerationCalls: w.counters.generationCalls.Load(),
		StartedAt:       w.startedAt,
		CurrentJob:      w.counters.currentJob.Load().(string),
	}
}

func (w *Worker) finish(state string, err error) error {
	w.counters.state.Store(state)
	w.logger.Info("Worker finished",
		slog.String("state", state),
		slog.Int64("jobs_processed", w.counters.processed.Load()),
		slog.Int64("jobs_succeeded", w.counters.succeeded.Load()),
		slog.Int64("jobs_failed", w.counters.failed.Load()),
	)
	return err
}

// fetchNext retries transport failures a bounded number of times.
// An empty queue is not retried.
func (w *Worker) fetchNext(ctx context.Context) (*domain.Job, error) {
	var lastErr error
	for attempt := 0; attempt <= w.fetchRetries; attempt++ {
		job, err := w.queue.FetchNext(ctx)
		if err == nil {
			return job, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		w.logger.Warn("Failed to fetch next job",
			slog.Int("attempt", attempt+1),
			slog.Int("max_attempts", w.fetchRetries+1),
			slog.String("error", err.Error()),
		)

		if attempt < w.fetchRetries {
			if err := w.clock.Sleep(ctx, w.fetchRetryDelay); err != nil {
				return nil, err
			}
		}
	}
	return nil, fmt.Errorf("%w: %v", domain.ErrQueueUnavailable, lastErr)
}

func (w *Worker) publishOutcome(ctx context.Context, outcome domain.Outcome) {
	if w.publisher == nil {
		return
	}

	status := domain.StatusFailed
	if outcome.State == domain.OutcomeSucceeded {
		status = domain.StatusDone
	}

	event := domain.OutcomeEvent{
		RunID:       w.runID,
		WorkerIndex: w.workerIndex,
		JobID:       outcome.Job.ID,
		Keyword:     outcome.Job.Keyword,
		Status:      status,
		Slug:        outcome.Slug,
		Attempts:    outcome.Attempts,
		Reason:      outcome.Reason,
		FinishedAt:  w.clock.Now().UTC(),
	}

	body, err := json.Marshal(event)
	if err != nil {
		w.logger.Error("Failed to marshal outcome event",
			slog.String("job_id", outcome.Job.ID.String()),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := w.publisher.PublishEvent(ctx, "article."+status, body); err != nil && !errors.Is(err, context.Canceled) {
		w.logger.Warn("Failed to publish outcome event",
			slog.String("job_id", outcome.Job.ID.String()),
			slog.String("error", err.Error()),
		)
	}
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
