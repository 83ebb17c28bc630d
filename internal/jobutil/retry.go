package jobutil

import (
	"context"
	"log/slog"
	"time"
)

// Retry runs fn up to maxRetries+1 times with exponential backoff
// (baseDelay × 2^attempt). The last error is returned after retries are
// exhausted; context cancellation aborts the wait immediately. Each retry is
// logged at warn level so fetch flakiness shows up in the audit trail.
func Retry[T any](ctx context.Context, maxRetries int, baseDelay time.Duration, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt < maxRetries {
			wait := baseDelay << attempt
			slog.Warn("retrying after error",
				slog.Int("attempt", attempt+1),
				slog.Int("max_retries", maxRetries),
				slog.Duration("wait", wait),
				slog.Any("error", err))
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}
	}
	return zero, lastErr
}
