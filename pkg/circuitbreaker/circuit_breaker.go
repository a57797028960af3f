package circuitbreaker

type State int

const (
	Closed State = iota
	HalfOpen
	Open
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case HalfOpen:
		return "half-open"
	case Open:
		return "open"
	default:
		return "unknown"
	}
}

// CircuitBreaker guards calls to a dependency that may be down. While open,
// Execute fails fast without calling fn.
type CircuitBreaker interface {
	Execute(fn func() (any, error)) (any, error)
	State() State
	Name() string
}
