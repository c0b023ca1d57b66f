// Package retry provides a bounded retry combinator with fixed or
// exponential delays, interruptible via context.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Policy bounds a retried operation. Delay is the wait before the second
// attempt; each subsequent wait is scaled by Multiplier. A Multiplier of 1
// gives fixed-delay retries, which is the default strategy.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
	Multiplier  float64
}

// DefaultPolicy matches the fetcher defaults: three attempts, five seconds
// apart, no backoff.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		Delay:       5 * time.Second,
		Multiplier:  1,
	}
}

func (p Policy) normalized() Policy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.Multiplier < 1 {
		p.Multiplier = 1
	}
	return p
}

// permanentError marks an error that must not be retried.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so Do returns it immediately instead of retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// sleep blocks for d or until ctx is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Do runs fn up to p.MaxAttempts times, waiting between attempts per the
// policy. The wait is interruptible: cancelling ctx returns ctx.Err()
// without starting another attempt. A Permanent-wrapped error stops the
// loop immediately. On exhaustion the last error is returned wrapped.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	p = p.normalized()

	var lastErr error
	delay := p.Delay

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, delay); err != nil {
				return err
			}
			delay = time.Duration(float64(delay) * p.Multiplier)
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}

		lastErr = err
	}

	return fmt.Errorf("all %d attempts failed: %w", p.MaxAttempts, lastErr)
}
