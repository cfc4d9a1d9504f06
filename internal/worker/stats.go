package worker

import (
	"sync/atomic"
	"time"

	"github.com/cuongbtq/article-worker/internal/worker/domain"
)

// Worker lifecycle states reported by Stats
const (
	StateStarting = "starting"
	StateRunning  = "running"
	StateStopped  = "stopped"
	StateAborted  = "aborted"
)

// Stats are read by the status server while the job loop runs
type Stats struct {
	RunID           string    `json:"run_id"`
	WorkerIndex     int       `json:"worker_index"`
	State           string    `json:"state"`
	JobsProcessed   int64     `json:"jobs_processed"`
	JobsSucceeded   int64     `json:"jobs_succeeded"`
	JobsFailed      int64     `json:"jobs_failed"`
	GenerationCalls int64     `json:"generation_calls"`
	StartedAt       time.Time `json:"started_at"`
	CurrentJob      string    `json:"current_job,omitempty"`
}

type counters struct {
	state           atomic.Value
	currentJob      atomic.Value
	processed       atomic.Int64
	succeeded       atomic.Int64
	failed          atomic.Int64
	generationCalls atomic.Int64
}

func newCounters() *counters {
	c := &counters{}
	c.state.Store(StateStarting)
	c.currentJob.Store("")
	return c
}

func (c *counters) record(state string) {
	c.processed.Add(1)
	switch state {
	case domain.OutcomeSucceeded:
		c.succeeded.Add(1)
	default:
		c.failed.Add(1)
	}
}
