// Package resilience wraps calls to external services with bounded retry,
// exponential backoff and a consecutive-failure circuit breaker. Every
// provider client in this service (routing matrix, inventory search, text
// generation, auth verification) runs its calls through one Policy.
package resilience

import (
	"context"
	"log"
	"math"
	"math/rand"
	"time"
)

// Policy composes retry-with-backoff and a circuit breaker for one named
// service. Auth errors are surfaced immediately; transient errors are
// retried up to MaxAttempts; every outcome feeds the breaker.
type Policy struct {
	name           string
	maxAttempts    int
	initialBackoff time.Duration
	breaker        *CircuitBreaker

	// sleepFunc allows test injection; defaults to a context-aware sleep.
	sleepFunc func(ctx context.Context, d time.Duration) error
}

// NewPolicy creates a resilience policy for the named service.
func NewPolicy(name string, maxAttempts int, initialBackoff time.Duration, failureThreshold int, resetTimeout time.Duration) *Policy {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if initialBackoff <= 0 {
		initialBackoff = 500 * time.Millisecond
	}
	return &Policy{
		name:           name,
		maxAttempts:    maxAttempts,
		initialBackoff: initialBackoff,
		breaker:        NewCircuitBreaker(failureThreshold, resetTimeout),
		sleepFunc:      sleepCtx,
	}
}

// Name returns the service name this policy guards.
func (p *Policy) Name() string {
	return p.name
}

// Breaker exposes the underlying circuit breaker for observability.
func (p *Policy) Breaker() *CircuitBreaker {
	return p.breaker
}

// Do executes fn under the policy. The call is rejected with ErrCircuitOpen
// when the breaker is open. Transient failures are retried with exponential
// backoff and jitter; auth errors and context cancellation stop retries
// immediately.
func (p *Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := p.breaker.Allow(); err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt < p.maxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			p.breaker.Record(nil)
			return nil
		}

		if ctx.Err() != nil {
			break
		}
		if !IsTransient(lastErr) {
			break
		}
		if attempt >= p.maxAttempts-1 {
			break
		}

		delay := backoff(p.initialBackoff, attempt)
		log.Printf("Warning: %s call failed (attempt %d/%d), retrying in %s: %v",
			p.name, attempt+1, p.maxAttempts, delay.Round(time.Millisecond), lastErr)
		if err := p.sleepFunc(ctx, delay); err != nil {
			break
		}
	}

	p.breaker.Record(lastErr)
	return lastErr
}

// DoVal is like Do but preserves a return value.
func DoVal[T any](ctx context.Context, p *Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var val T
	err := p.Do(ctx, func(ctx context.Context) error {
		var innerErr error
		val, innerErr = fn(ctx)
		return innerErr
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return val, nil
}

// backoff computes the delay before retry number attempt+1: base doubling
// per attempt with up to 25% random jitter.
func backoff(base time.Duration, attempt int) time.Duration {
	delay := float64(base) * math.Pow(2, float64(attempt))
	delay += delay * 0.25 * rand.Float64()
	return time.Duration(delay)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
