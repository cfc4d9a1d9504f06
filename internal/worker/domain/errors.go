package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmptyOutput is returned when the generation service answers with no text
	ErrEmptyOutput = errors.New("empty generation output")

	// ErrEmptyArticle is returned when nothing is left of the article after parsing
	ErrEmptyArticle = errors.New("empty article after parsing")

	// ErrWorkerAborted is returned by the worker loop after a credential rejection
	ErrWorkerAborted = errors.New("worker aborted: credential rejected")

	// ErrQueueUnavailable is returned when the jobs API could not be reached after all fetch retries
	ErrQueueUnavailable = errors.New("job queue unavailable")
)

// CredentialRejectedError means the API key was refused (leaked, revoked, no permission).
// The worker must stop: every further call with the same key fails the same way.
type CredentialRejectedError struct {
	Err error
}

func (e *CredentialRejectedError) Error() string {
	return "credential rejected: " + e.Err.Error()
}

func (e *CredentialRejectedError) Unwrap() error {
	return e.Err
}

// RateLimitedError means the caller hit a quota and should wait RetryAfter
type RateLimitedError struct {
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %s", e.RetryAfter, e.Err.Error())
}

func (e *RateLimitedError) Unwrap() error {
	return e.Err
}

// GenerationError wraps any other generation failure
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return "generation failed: " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// NewRateLimitedError creates a new rate limit error
func NewRateLimitedError(err error, retryAfter time.Duration) error {
	return &RateLimitedError{RetryAfter: retryAfter, Err: err}
}

// NewCredentialRejectedError creates a new credential error
func NewCredentialRejectedError(err error) error {
	return &CredentialRejectedError{Err: err}
}

// NewGenerationError creates a new unclassified generation error
func NewGenerationError(err error) error {
	return &GenerationError{Err: err}
}
