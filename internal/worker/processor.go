package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cuongbtq/article-worker/internal/article"
	"github.com/cuongbtq/article-worker/internal/worker/domain"
)

// processJob runs the attempt loop for one job and reports the result to the queue.
//
// Quota errors re-enter the same attempt number; other errors consume one.
// A zero-value Outcome.State means the context was canceled before the job finished
// and nothing was submitted for it.
func (w *Worker) processJob(ctx context.Context, job *domain.Job) domain.Outcome {
	logger := w.logger.With(
		slog.String("job_id", job.ID.String()),
		slog.String("keyword", job.Keyword),
	)
	logger.Info("Processing job", slog.Int("worker_index", w.workerIndex))

	prompt := article.BuildPrompt(job.Keyword)
	slug := article.Slugify(job.Keyword)

	var (
		quotaRetries int
		quotaWaited  time.Duration
	)

	for attempt := 1; attempt <= w.maxRetries; {
		if _, err := w.pacer.Wait(ctx); err != nil {
			return domain.Outcome{Job: job, Attempts: attempt}
		}

		logger.Info("Requesting article", slog.Int("attempt", attempt))
		w.counters.generationCalls.Add(1)

		raw, err := w.generator.Generate(ctx, prompt)
		if err != nil {
			if ctx.Err() != nil {
				return domain.Outcome{Job: job, Attempts: attempt}
			}

			var credErr *domain.CredentialRejectedError
			if errors.As(err, &credErr) {
				logger.Error("API key rejected (leaked or permission denied), stopping worker",
					slog.String("error", err.Error()),
				)
				w.submit(ctx, logger, domain.NewFailedSubmission(job))
				return domain.Outcome{Job: job, State: domain.OutcomeAborted, Attempts: attempt, Reason: "credential rejected"}
			}

			var rateErr *domain.RateLimitedError
			if errors.As(err, &rateErr) {
				quotaRetries++
				if reason, exhausted := w.quotaBudgetExhausted(quotaRetries, quotaWaited, rateErr.RetryAfter); exhausted {
					logger.Error("Quota retry budget exhausted",
						slog.Int("quota_retries", quotaRetries-1),
						slog.Duration("quota_waited", quotaWaited),
					)
					return w.fail(ctx, logger, job, attempt, reason)
				}

				logger.Warn("Quota or rate limit hit, waiting before retrying the same attempt",
					slog.Int("attempt", attempt),
					slog.Duration("retry_after", rateErr.RetryAfter),
					slog.String("error", err.Error()),
				)
				if err := w.clock.Sleep(ctx, rateErr.RetryAfter); err != nil {
					return domain.Outcome{Job: job, Attempts: attempt}
				}
				quotaWaited += rateErr.RetryAfter
				continue
			}

			logger.Warn("Generation failed",
				slog.Int("attempt", attempt),
				slog.Int("max_retries", w.maxRetries),
				slog.String("error", err.Error()),
			)
			if attempt < w.maxRetries {
				if err := w.clock.Sleep(ctx, w.errorRetryDelay); err != nil {
					return domain.Outcome{Job: job, Attempts: attempt}
				}
			}
			attempt++
			continue
		}

		w.pacer.MarkCall()

		result, err := article.ParseResponse(raw)
		if err != nil {
			// Empty output is not worth retrying for this title.
			logger.Warn("Unusable generation output, giving up on job",
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()),
			)
			return w.fail(ctx, logger, job, attempt, err.Error())
		}

		if result.MetaFromFallback {
			logger.Warn("META_DESC marker missing, meta description derived from article")
		}
		w.inspect(logger, result.HTML)

		w.submit(ctx, logger, domain.NewDoneSubmission(job, slug, result))
		logger.Info("Job completed successfully",
			slog.Int("attempt", attempt),
			slog.String("slug", slug),
			slog.Int64("total_succeeded", w.counters.succeeded.Load()+1),
		)
		return domain.Outcome{Job: job, State: domain.OutcomeSucceeded, Attempts: attempt, Slug: slug}
	}

	logger.Error("Job failed permanently",
		slog.Int("max_retries", w.maxRetries),
	)
	return w.fail(ctx, logger, job, w.maxRetries, "attempts exhausted")
}

// quotaBudgetExhausted applies the per-job caps on quota retries. Zero caps are unlimited.
func (w *Worker) quotaBudgetExhausted(retries int, waited, next time.Duration) (string, bool) {
	if w.maxQuotaRetries > 0 && retries > w.maxQuotaRetries {
		return "quota retries exhausted", true
	}
	if w.maxQuotaWait > 0 && waited+next > w.maxQuotaWait {
		return "quota wait budget exhausted", true
	}
	return "", false
}

func (w *Worker) fail(ctx context.Context, logger *slog.Logger, job *domain.Job, attempts int, reason string) domain.Outcome {
	w.submit(ctx, logger, domain.NewFailedSubmission(job))
	return domain.Outcome{Job: job, State: domain.OutcomeFailed, Attempts: attempts, Reason: reason}
}

// submit reports a result; failures are logged and never retried
func (w *Worker) submit(ctx context.Context, logger *slog.Logger, submission domain.Submission) {
	if err := w.queue.Submit(ctx, submission); err != nil {
		logger.Error("Failed to submit result",
			slog.String("status", submission.Status),
			slog.String("error", err.Error()),
		)
	}
}

func (w *Worker) inspect(logger *slog.Logger, html string) {
	report, err := article.Inspect(html)
	if err != nil {
		logger.Debug("Skipping article inspection", slog.String("error", err.Error()))
		return
	}

	for _, warning := range report.Warnings() {
		logger.Warn("Article format check", slog.String("issue", warning))
	}

	logger.Debug("Article structure",
		slog.Int("h2", report.H2Count),
		slog.Int("h3", report.H3Count),
		slog.Int("words", report.WordCount),
	)
}
