package llm

import (
	"context"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/coursewise/coursewise/pkg/config"
	"github.com/coursewise/coursewise/pkg/logging"
)

// Breaker fails fast once the wrapped provider keeps failing. An open
// breaker surfaces gobreaker.ErrOpenState to the caller.
type Breaker struct {
	next Completer
	cb   *gobreaker.CircuitBreaker[string]
}

// NewBreaker wraps next in a circuit breaker configured by cfg.
func NewBreaker(next Completer, cfg config.BreakerConfig) *Breaker {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	settings := gobreaker.Settings{
		Name:        "llm",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	}
	return &Breaker{next: next, cb: gobreaker.NewCircuitBreaker[string](settings)}
}

// Complete implements Completer.
func (b *Breaker) Complete(ctx context.Context, req Request) (string, error) {
	return b.cb.Execute(func() (string, error) {
		return b.next.Complete(ctx, req)
	})
}

// State reports the breaker state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

// BreakerState reports the state of c's circuit breaker, or an empty
// string when c is not wrapped in one.
func BreakerState(c Completer) string {
	b, ok := c.(*Breaker)
	if !ok {
		return ""
	}
	return b.State().String()
}
