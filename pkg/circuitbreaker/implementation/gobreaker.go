package implementation

import (
	"context"
	"errors"
	"time"

	"github.com/jt828/go-observer/pkg/circuitbreaker"
	"github.com/jt828/go-observer/pkg/observability"
	"github.com/sony/gobreaker/v2"
)

type gobreakerCircuitBreaker struct {
	cb *gobreaker.CircuitBreaker[any]
}

func NewCircuitBreaker(settings gobreaker.Settings) circuitbreaker.CircuitBreaker {
	return &gobreakerCircuitBreaker{
		cb: gobreaker.NewCircuitBreaker[any](settings),
	}
}

// QueueSettings trips after failures consecutive failed deliveries and probes
// again after openTimeout. Cancelled calls do not count as failures. State
// changes are logged at warn level.
func QueueSettings(name string, failures uint32, openTimeout time.Duration, log observability.Logger) gobreaker.Settings {
	if log == nil {
		log = observability.NopLogger{}
	}
	if failures == 0 {
		failures = 1
	}

	return gobreaker.Settings{
		Name:    name,
		Timeout: openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				observability.String("breaker", name),
				observability.String("from", toState(from).String()),
				observability.String("to", toState(to).String()),
			)
		},
	}
}

func (g *gobreakerCircuitBreaker) Execute(fn func() (any, error)) (any, error) {
	return g.cb.Execute(fn)
}

func (g *gobreakerCircuitBreaker) Name() string {
	return g.cb.Name()
}

func (g *gobreakerCircuitBreaker) State() circuitbreaker.State {
	return toState(g.cb.State())
}

func toState(s gobreaker.State) circuitbreaker.State {
	switch s {
	case gobreaker.StateClosed:
		return circuitbreaker.Closed
	case gobreaker.StateHalfOpen:
		return circuitbreaker.HalfOpen
	case gobreaker.StateOpen:
		return circuitbreaker.Open
	default:
		return circuitbreaker.Closed
	}
}
