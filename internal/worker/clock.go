package worker

import (
	"context"
	"time"
)

// Clock abstracts time so the retry loop can be driven without real sleeps
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// Sleep blocks for d or until ctx is done
func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// pacer enforces a minimum spacing between successful generation calls.
// One pacer lives for the whole worker process, across jobs.
type pacer struct {
	clock       Clock
	minInterval time.Duration
	lastCall    time.Time
}

func newPacer(clock Clock, minInterval time.Duration) *pacer {
	return &pacer{clock: clock, minInterval: minInterval}
}

// Wait sleeps out the remainder of the interval since the last successful call
// and returns how long it slept.
func (p *pacer) Wait(ctx context.Context) (time.Duration, error) {
	if p.lastCall.IsZero() || p.minInterval <= 0 {
		return 0, ctx.Err()
	}
	remaining := p.minInterval - p.clock.Now().Sub(p.lastCall)
	if remaining <= 0 {
		return 0, ctx.Err()
	}
	return remaining, p.clock.Sleep(ctx, remaining)
}

// MarkCall records a successful generation call
func (p *pacer) MarkCall() {
	p.lastCall = p.clock.Now()
}
