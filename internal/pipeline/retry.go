package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/dgallion1/cvforge/internal/critique"
)

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *critique.RetryableError
	return errors.As(err, &retryErr)
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

const MaxRetries = 3

// AnalyzeWithRetry calls a.Analyze, retrying retryable failures up to
// MaxRetries attempts in total.
func AnalyzeWithRetry(ctx context.Context, a critique.Analyzer, cvHTML, jobPost string, log *slog.Logger) (*critique.Analysis, error) {
	return analyzeWithRetry(ctx, a, cvHTML, jobPost, log, Backoff)
}

func analyzeWithRetry(ctx context.Context, a critique.Analyzer, cvHTML, jobPost string, log *slog.Logger, backoff func(int) time.Duration) (*critique.Analysis, error) {
	var lastErr error
	for attempt := range MaxRetries {
		analysis, err := a.Analyze(ctx, cvHTML, jobPost)
		if err == nil {
			return analysis, nil
		}
		lastErr = err
		if !IsRetryable(err) || attempt == MaxRetries-1 {
			break
		}
		log.Warn("retryable analysis error", "attempt", attempt, "error", err)
		select {
		case <-time.After(backoff(attempt)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}
