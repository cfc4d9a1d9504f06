package gemini

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuongbtq/article-worker/internal/worker/domain"
)

func TestClassify(t *testing.T) {
	const fallback = 60 * time.Second

	tests := []struct {
		name           string
		err            error
		wantCredential bool
		wantRateLimit  bool
		wantRetryAfter time.Duration
	}{
		{
			name:           "leaked key",
			err:            errors.New("Error 403, Message: Your API key was reported as leaked. Please use another API key., Status: PERMISSION_DENIED"),
			wantCredential: true,
		},
		{
			name:           "permission denied only",
			err:            errors.New("rpc error: code = PermissionDenied desc = permission_denied"),
			wantCredential: true,
		},
		{
			name:           "quota with retry hint",
			err:            errors.New("Error 429, Message: You exceeded your current quota. Please retry in 37.5s., Status: RESOURCE_EXHAUSTED"),
			wantRateLimit:  true,
			wantRetryAfter: 37500 * time.Millisecond,
		},
		{
			name:           "rate limit without hint uses default",
			err:            errors.New("Rate LIMIT reached for requests"),
			wantRateLimit:  true,
			wantRetryAfter: fallback,
		},
		{
			name:           "exceeded keyword",
			err:            errors.New("tokens per minute exceeded"),
			wantRateLimit:  true,
			wantRetryAfter: fallback,
		},
		{
			name: "other error",
			err:  errors.New("Error 500, Message: internal error, Status: INTERNAL"),
		},
		{
			name: "deadline is not a quota error",
			err:  fmt.Errorf("generate: %w", context.DeadlineExceeded),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err, fallback)
			require.Error(t, got)
			assert.ErrorIs(t, got, tt.err)

			var credErr *domain.CredentialRejectedError
			assert.Equal(t, tt.wantCredential, errors.As(got, &credErr))

			var rateErr *domain.RateLimitedError
			isRate := errors.As(got, &rateErr)
			assert.Equal(t, tt.wantRateLimit, isRate)
			if isRate {
				assert.Equal(t, tt.wantRetryAfter, rateErr.RetryAfter)
			}

			if !tt.wantCredential && !tt.wantRateLimit {
				var genErr *domain.GenerationError
				assert.True(t, errors.As(got, &genErr))
			}
		})
	}
}

func TestClassify_PassesThroughCancellation(t *testing.T) {
	err := fmt.Errorf("do request: %w", context.Canceled)
	assert.Equal(t, err, Classify(err, time.Minute))
	assert.NoError(t, Classify(nil, time.Minute))
}

func TestParseRetryDelay(t *testing.T) {
	tests := []struct {
		name string
		text string
		want time.Duration
	}{
		{name: "integer seconds", text: "please retry in 5s", want: 5 * time.Second},
		{name: "fractional seconds", text: "retry in 0.25s.", want: 250 * time.Millisecond},
		{name: "missing hint", text: "quota exceeded", want: time.Minute},
		{name: "malformed number", text: "retry in 1.2.3s", want: time.Minute},
		{name: "case sensitive like the service text", text: "Retry In 5s", want: time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRetryDelay(tt.text, time.Minute))
		})
	}
}
