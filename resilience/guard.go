package resilience

import (
	"context"
)

// Guard wraps a call to a peer service with a circuit breaker and an
// explicit fallback. The fallback receives the error that tripped the call
// (including ErrCircuitOpen) and decides what the caller sees; for
// token-gated writes it refuses to complete rather than proceed without
// validation.
type Guard[T any] struct {
	breaker  *CircuitBreaker
	call     func(ctx context.Context) (T, error)
	fallback func(ctx context.Context, err error) (T, error)
}

// NewGuard builds a guard around call with the given breaker and fallback.
func NewGuard[T any](
	breaker *CircuitBreaker,
	call func(ctx context.Context) (T, error),
	fallback func(ctx context.Context, err error) (T, error),
) *Guard[T] {
	return &Guard[T]{breaker: breaker, call: call, fallback: fallback}
}

// Do executes the guarded call. When the circuit is open the inner call is
// never attempted; the fallback runs immediately.
func (g *Guard[T]) Do(ctx context.Context) (T, error) {
	var result T
	err := g.breaker.Execute(func() error {
		var callErr error
		result, callErr = g.call(ctx)
		return callErr
	})
	if err != nil {
		return g.fallback(ctx, err)
	}
	return result, nil
}

// Breaker exposes the underlying circuit breaker for state inspection.
func (g *Guard[T]) Breaker() *CircuitBreaker { return g.breaker }
