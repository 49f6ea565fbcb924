package booking

import (
	"context"
	"fmt"
	"log/slog"
)

// MaxRetries bounds the outer locate-and-book loop.
const MaxRetries = 3

// Retry runs fn up to attempts times. It stops early when fn succeeds,
// when retryable rejects the error, or when ctx is done. The retry
// policy lives here, outside the page-interaction code, so it can be
// tested on its own.
func Retry(ctx context.Context, attempts int, retryable func(error) bool, fn func(ctx context.Context, attempt int) error) error {
	var last error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := fn(ctx, attempt)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
		slog.Warn("attempt failed", "attempt", attempt, "max", attempts, "err", err)
		last = err
	}
	return fmt.Errorf("all %d attempts failed, last: %w", attempts, last)
}
