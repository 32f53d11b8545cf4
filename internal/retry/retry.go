// Package retry provides a bounded retry combinator with an injectable
// backoff policy so callers can test retry behavior deterministically.
package retry

import (
	"context"
	"time"
)

// Policy bounds the attempts of an operation. Backoff maps the 1-based
// attempt number that just failed to the wait before the next attempt.
type Policy struct {
	Attempts int
	Backoff  func(attempt int) time.Duration
	Sleep    func(ctx context.Context, d time.Duration) error
}

// Linear returns a backoff of attempt*step: 2s, 4s, 6s for step=2s.
func Linear(step time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return time.Duration(attempt) * step
	}
}

// Default matches the external-call discipline used across the pipeline:
// 3 attempts with linear 2s/4s/6s backoff.
func Default() Policy {
	return Policy{Attempts: 3, Backoff: Linear(2 * time.Second)}
}

func (p Policy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Do runs fn up to p.Attempts times, sleeping per the backoff between
// failures. It returns the last error if all attempts fail, or the context
// error if the wait is interrupted.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		wait := time.Duration(0)
		if p.Backoff != nil {
			wait = p.Backoff(attempt)
		}
		if wait > 0 {
			if err := p.sleep(ctx, wait); err != nil {
				return err
			}
		}
	}
	return lastErr
}
