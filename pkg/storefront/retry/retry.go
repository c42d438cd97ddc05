// Package retry retries operations that fail with transient errors, using
// exponential backoff with jitter.
//
// Errors are permanent unless marked with Transient (or matched by a custom
// Config.Retryable), so wrapping a call never retries by accident:
//
//	res := retry.Do(ctx, retry.Default, func(ctx context.Context) (Result, error) {
//	    r, err := api.Call(ctx)
//	    if isUnavailable(err) {
//	        return r, retry.Transient(err)
//	    }
//	    return r, err
//	})
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// Config configures retry behavior.
type Config struct {
	// MaxAttempts is the maximum number of attempts, including the first.
	MaxAttempts int `validate:"gte=1"`

	// InitialBackoff is the wait before the second attempt.
	InitialBackoff time.Duration `validate:"gte=0"`

	// MaxBackoff caps the wait between attempts.
	MaxBackoff time.Duration `validate:"gte=0"`

	// Factor multiplies the backoff after each attempt.
	Factor float64 `validate:"gte=1"`

	// Jitter is the random jitter factor (0.0-1.0).
	Jitter float64 `validate:"gte=0,lte=1"`

	// Retryable overrides IsTransient.
	Retryable func(error) bool
}

// Default retries three times, starting at half a second.
var Default = Config{
	MaxAttempts:    3,
	InitialBackoff: 500 * time.Millisecond,
	MaxBackoff:     5 * time.Second,
	Factor:         2.0,
	Jitter:         0.1,
}

// Never makes a single attempt.
var Never = Config{MaxAttempts: 1, Factor: 1}

type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient marks err as worth retrying. Transient(nil) is nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err, or any error it wraps, was marked with
// Transient.
func IsTransient(err error) bool {
	var t *transientError
	return errors.As(err, &t)
}

// Error is returned when Do gives up.
type Error struct {
	Err      error // last attempt's error
	Attempts int
	Reason   string
}

// Error implements error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s after %d attempt(s): %v", e.Reason, e.Attempts, e.Err)
}

// Unwrap returns the last attempt's error.
func (e *Error) Unwrap() error { return e.Err }

// Result is the outcome of Do.
type Result[T any] struct {
	Value    T
	Err      error // nil on success, otherwise *Error
	Attempts int
	Duration time.Duration
}

// Do calls fn until it succeeds, returns a non-retryable error, runs out of
// attempts, or ctx is done.
func Do[T any](ctx context.Context, cfg Config, fn func(context.Context) (T, error)) Result[T] {
	start := time.Now()
	retryable := cfg.Retryable
	if retryable == nil {
		retryable = IsTransient
	}
	attempts := max(cfg.MaxAttempts, 1)
	backoff := cfg.InitialBackoff

	giveUp := func(err error, n int, reason string) Result[T] {
		return Result[T]{
			Err:      &Error{Err: err, Attempts: n, Reason: reason},
			Attempts: n,
			Duration: time.Since(start),
		}
	}

	var lastErr error
	for attempt := range attempts {
		if err := ctx.Err(); err != nil {
			return giveUp(err, attempt, "cancelled")
		}

		v, err := fn(ctx)
		if err == nil {
			return Result[T]{Value: v, Attempts: attempt + 1, Duration: time.Since(start)}
		}
		lastErr = err
		if !retryable(err) {
			return giveUp(err, attempt+1, "permanent failure")
		}
		if attempt == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return giveUp(ctx.Err(), attempt+1, "cancelled during backoff")
		case <-time.After(jittered(backoff, cfg.Jitter)):
		}
		backoff = time.Duration(float64(backoff) * max(cfg.Factor, 1))
		if cfg.MaxBackoff > 0 && backoff > cfg.MaxBackoff {
			backoff = cfg.MaxBackoff
		}
	}
	return giveUp(lastErr, attempts, "max attempts exceeded")
}

func jittered(base time.Duration, jitter float64) time.Duration {
	if jitter <= 0 || base <= 0 {
		return base
	}
	delta := float64(base) * jitter * (rand.Float64()*2 - 1)
	return time.Duration(float64(base) + delta)
}
