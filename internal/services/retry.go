package services

import (
	"context"
	"fmt"
	"time"

	"github.com/justsurfingit/jobtracker/internal/logger"
)

// retryPolicy controls retry: fn runs up to Attempts times, sleeping Backoff
// and doubling it between runs. Errors for which Permanent returns true stop
// immediately and are returned unwrapped.
type retryPolicy struct {
	Attempts  int
	Backoff   time.Duration
	Permanent func(error) bool
}

func retry[T any](ctx context.Context, rp retryPolicy, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	attempts := max(rp.Attempts, 1)
	wait := rp.Backoff
	for i := 0; i < attempts; i++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		if rp.Permanent != nil && rp.Permanent(err) {
			return zero, err
		}
		lastErr = err
		if i == attempts-1 {
			break
		}

		logger.CtxWarn(ctx, "transient error, retrying", "error", err, "attempt", i+1, "wait", wait)
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
	return zero, fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}
