package gemini

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cuongbtq/article-worker/internal/worker/domain"
)

var retryDelayExpr = regexp.MustCompile(`retry in ([0-9.]+)s`)

var (
	credentialSignals = []string{"reported as leaked", "permission_denied"}
	quotaSignals      = []string{"quota", "limit", "exceeded"}
)

// Classify maps a raw SDK error onto the worker's typed errors.
//
// The service only reports these conditions in free text, so matching is done
// on the lowercased error string. Credential signals are checked first.
// Cancellation passes through untouched; timeouts are never treated as quota
// errors even though their text says "exceeded".
func Classify(err error, defaultRetryAfter time.Duration) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		return domain.NewGenerationError(err)
	}

	text := err.Error()
	lower := strings.ToLower(text)

	if containsAny(lower, credentialSignals) {
		return domain.NewCredentialRejectedError(err)
	}

	if containsAny(lower, quotaSignals) {
		return domain.NewRateLimitedError(err, ParseRetryDelay(text, defaultRetryAfter))
	}

	return domain.NewGenerationError(err)
}

// ParseRetryDelay extracts "retry in <n>s" from the error text.
func ParseRetryDelay(text string, fallback time.Duration) time.Duration {
	m := retryDelayExpr.FindStringSubmatch(text)
	if m == nil {
		return fallback
	}
	seconds, err := strconv.ParseFloat(m[1], 64)
	if err != nil || seconds < 0 {
		return fallback
	}
	return time.Duration(seconds * float64(time.Second))
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

type timeoutError interface{ Timeout() bool }

func isTimeout(err error) bool {
	var te timeoutError
	return errors.As(err, &te) && te.Timeout()
}
