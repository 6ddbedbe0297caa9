package categorizer

import (
	"context"
	"fmt"
	"time"
)

// Default retry settings.
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// RetryPolicy retries rate limited calls with exponential backoff. Any other
// error stops immediately.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Sleep       SleepFunc
}

// DefaultRetryPolicy makes three attempts, waiting 1s, 2s and 4s (about 7s in
// total) when every attempt is rate limited.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		Sleep:       sleepContext,
	}
}

// Backoff returns the wait after the zero-based attempt: BaseDelay * 2^attempt.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	return p.BaseDelay * time.Duration(1<<uint(attempt))
}

// Do calls op until it succeeds, returns an error IsRateLimited rejects, or
// MaxAttempts calls have been made. op receives the zero-based attempt.
// Every rate limited attempt is followed by a wait, the final one included.
func (p RetryPolicy) Do(ctx context.Context, op func(ctx context.Context, attempt int) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = op(ctx, attempt); err == nil {
			return nil
		}
		if !IsRateLimited(err) {
			return err
		}
		if serr := sleep(ctx, p.Backoff(attempt)); serr != nil {
			return serr
		}
	}
	return fmt.Errorf("max retries (%d) exceeded: %w", attempts, err)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
