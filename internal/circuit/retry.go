package circuit

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// ErrOpen is returned when the breaker refuses the call outright; callers
// switch to their fallback path without waiting.
var ErrOpen = errors.New("circuit open")

// RetryConfig bounds the retry loop for a single logical call.
type RetryConfig struct {
	// MaxRetries is the number of re-attempts after the first try.
	MaxRetries int
	// BaseDelay seeds the exponential backoff (doubled per attempt).
	BaseDelay time.Duration
	// Timeout is the per-call deadline applied to each attempt.
	Timeout time.Duration
}

// DefaultRetry matches the mediator policy: at most 2 retries.
func DefaultRetry(timeout time.Duration) RetryConfig {
	return RetryConfig{MaxRetries: 2, BaseDelay: 100 * time.Millisecond, Timeout: timeout}
}

// Do runs fn under the breaker with the given retry policy. Only errors for
// which transient returns true are retried; others fail fast. Every attempt
// gets its own timeout carved from ctx.
func Do(ctx context.Context, b *Breaker, cfg RetryConfig, transient func(error) bool, fn func(ctx context.Context) error) error {
	if !b.Allow() {
		return ErrOpen
	}

	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				b.Failure()
				return ctx.Err()
			case <-time.After(backoffDelay(cfg.BaseDelay, attempt)):
			}
		}

		attemptCtx := ctx
		var cancel context.CancelFunc
		if cfg.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		}
		err := fn(attemptCtx)
		if cancel != nil {
			cancel()
		}
		if err == nil {
			b.Success()
			return nil
		}
		lastErr = err
		if !transient(err) {
			break
		}
		if ctx.Err() != nil {
			break
		}
	}
	b.Failure()
	return lastErr
}

// backoffDelay returns base * 2^(attempt-1) with 10% jitter.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	d := base << (attempt - 1)
	jitter := time.Duration(rand.Int63n(int64(d)/10 + 1))
	return d + jitter
}
