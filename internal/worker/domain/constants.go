package domain

import "time"

// Submission status values understood by the jobs API
const (
	StatusDone   = "done"
	StatusFailed = "failed"
)

// Outcome states of a single job
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
	OutcomeAborted   = "aborted"
)

// Worker defaults
const (
	DefaultMaxRetries         = 3
	DefaultMinRequestInterval = 8 * time.Second
	DefaultErrorRetryDelay    = 10 * time.Second
	DefaultQuotaRetryDelay    = 60 * time.Second
	DefaultMaxQuotaRetries    = 20
	DefaultMaxQuotaWait       = 30 * time.Minute
	DefaultFetchRetries       = 2
	DefaultFetchRetryDelay    = 5 * time.Second
)
