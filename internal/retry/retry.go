// Package retry implements a small, explicit retry policy for remote calls.
//
// The policy is a value passed to each call site, parameterized by a max
// attempt count and a retryable-error predicate. Only errors the predicate
// accepts are retried; everything else surfaces on the first occurrence.
package retry

import (
	"context"
	"fmt"
)

// Policy controls how an operation is retried.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int

	// Retryable reports whether an error is transient. A nil predicate
	// retries nothing.
	Retryable func(error) bool
}

// DefaultMaxAttempts matches the client-side transport retry budget.
const DefaultMaxAttempts = 5

// Do runs op up to MaxAttempts times, retrying immediately on errors the
// predicate accepts. Context cancellation stops further attempts.
func (p Policy) Do(ctx context.Context, op func(context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if p.Retryable == nil || !p.Retryable(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("retries exhausted after %d attempts: %w", attempts, lastErr)
}
