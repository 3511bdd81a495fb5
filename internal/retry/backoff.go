// Package retry re-establishes a dropped controller link with
// exponential backoff.  It is used by long-running callers such as
// watch mode; a session never retries on its own.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"piled/config"
)

// PermanentError stops the retry loop immediately.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// ErrExhausted is wrapped by Do when MaxAttempts is used up.
var ErrExhausted = errors.New("reconnect attempts exhausted")

// Backoff is an exponential retry policy.
type Backoff struct {
	// InitialDelay before the second attempt (default 500ms).
	InitialDelay time.Duration
	// MaxDelay caps the wait (default config.DefaultMaxReconnectBackoff).
	MaxDelay time.Duration
	// Multiplier grows the delay per attempt (default 2).
	Multiplier float64
	// MaxAttempts counts all tries including the first; 0 is unlimited.
	MaxAttempts int
	// Jitter spreads each wait by ±25%.
	Jitter bool

	// Retryable decides whether a non-permanent error is retried.  nil
	// retries everything.
	Retryable func(error) bool

	// Notify, if set, is called before each wait with the attempt that
	// just failed.
	Notify func(attempt int, err error, wait time.Duration)
}

// ForReconnect returns the policy watch mode uses: jittered, capped at
// config.DefaultMaxReconnectBackoff, maxAttempts tries (0 = forever).
func ForReconnect(maxAttempts int) *Backoff {
	return &Backoff{
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     config.DefaultMaxReconnectBackoff,
		Multiplier:   2,
		MaxAttempts:  maxAttempts,
		Jitter:       true,
	}
}

// Delay returns the un-jittered wait after the given 1-based attempt.
func (b *Backoff) Delay(attempt int) time.Duration {
	initial := b.InitialDelay
	if initial <= 0 {
		initial = 500 * time.Millisecond
	}
	mult := b.Multiplier
	if mult <= 1 {
		mult = 2
	}
	ceiling := b.MaxDelay
	if ceiling <= 0 {
		ceiling = config.DefaultMaxReconnectBackoff
	}
	d := float64(initial) * math.Pow(mult, float64(attempt-1))
	if d > float64(ceiling) {
		return ceiling
	}
	return time.Duration(d)
}

// Do calls fn until it returns nil, a permanent or non-retryable error,
// ctx ends, or MaxAttempts is reached.  attempt is 1-based.
func (b *Backoff) Do(ctx context.Context, fn func(attempt int) error) error {
	for attempt := 1; ; attempt++ {
		err := fn(attempt)
		if err == nil {
			return nil
		}
		if IsPermanent(err) {
			return errors.Unwrap(err)
		}
		if b.Retryable != nil && !b.Retryable(err) {
			return err
		}
		if b.MaxAttempts > 0 && attempt >= b.MaxAttempts {
			return fmt.Errorf("%w after %d tries: %w", ErrExhausted, attempt, err)
		}

		wait := b.Delay(attempt)
		if b.Jitter {
			wait = addJitter(wait)
		}
		if b.Notify != nil {
			b.Notify(attempt, err, wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-timer.C:
		}
	}
}

func addJitter(d time.Duration) time.Duration {
	quarter := float64(d) * 0.25
	delta := (rand.Float64() * 2 * quarter) - quarter
	return time.Duration(math.Max(float64(d)+delta, float64(time.Millisecond)))
}
