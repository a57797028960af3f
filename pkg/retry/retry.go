package retry

import (
	"context"
	"time"
)

// Retry runs fn until it succeeds, returns a non-retryable error, the retry
// budget is spent or ctx is done.
type Retry interface {
	Execute(ctx context.Context, fn func() error) error
}

type Config struct {
	RetryableFn func(err error) bool
	Interval    time.Duration
	MaxInterval time.Duration
	OnRetry     func(attempt uint64, err error)
}

type Option func(*Config)

func WithRetryable(fn func(err error) bool) Option {
	return func(c *Config) {
		c.RetryableFn = fn
	}
}

func WithInterval(d time.Duration) Option {
	return func(c *Config) {
		c.Interval = d
	}
}

// WithMaxInterval caps the exponential backoff between two attempts.
func WithMaxInterval(d time.Duration) Option {
	return func(c *Config) {
		c.MaxInterval = d
	}
}

// WithOnRetry registers a hook called with the attempt number and error each
// time a failed attempt is about to be retried.
func WithOnRetry(fn func(attempt uint64, err error)) Option {
	return func(c *Config) {
		c.OnRetry = fn
	}
}

func ApplyOptions(opts ...Option) *Config {
	c := &Config{Interval: 100 * time.Millisecond}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
