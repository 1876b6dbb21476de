package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNonRetryable marks failures that must not be retried (auth errors,
// malformed requests). Wrap it with fmt.Errorf("...: %w", ErrNonRetryable)
// or combine via Permanent.
var ErrNonRetryable = errors.New("non-retryable error")

// Permanent wraps err so Do gives up immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrNonRetryable, err)
}

// IsPermanent reports whether err was marked non-retryable.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrNonRetryable)
}

// Do runs fn up to maxAttempts times with exponential backoff starting at
// baseDelay (doubling each attempt). It returns nil on the first success,
// the last error on exhaustion, and stops early on context cancellation or
// a permanent error.
func Do(ctx context.Context, maxAttempts int, baseDelay time.Duration, fn func(ctx context.Context) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	delay := baseDelay
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if IsPermanent(lastErr) {
			return lastErr
		}
		if attempt == maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return fmt.Errorf("all %d attempts failed: %w", maxAttempts, lastErr)
}
