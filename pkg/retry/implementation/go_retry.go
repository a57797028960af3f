package implementation

import (
	"context"

	"github.com/jt828/go-observer/pkg/retry"
	goretry "github.com/sethvargo/go-retry"
)

type goRetry struct {
	maxRetries  uint64
	cfg         *retry.Config
	retryableFn func(err error) bool
}

func NewRetry(maxRetries uint64, opts ...retry.Option) retry.Retry {
	cfg := retry.ApplyOptions(opts...)

	return &goRetry{
		maxRetries:  maxRetries,
		cfg:         cfg,
		retryableFn: cfg.RetryableFn,
	}
}

// backoff is built per call: go-retry backoffs are stateful and must not be
// shared between concurrent Execute calls.
func (r *goRetry) backoff() goretry.Backoff {
	b := goretry.NewExponential(r.cfg.Interval)
	if r.cfg.MaxInterval > 0 {
		b = goretry.WithCappedDuration(r.cfg.MaxInterval, b)
	}
	return goretry.WithMaxRetries(r.maxRetries, b)
}

func (r *goRetry) Execute(ctx context.Context, fn func() error) error {
	var attempt uint64
	return goretry.Do(ctx, r.backoff(), func(ctx context.Context) error {
		attempt++
		err := fn()
		if err == nil {
			return nil
		}

		if r.retryableFn != nil && !r.retryableFn(err) {
			return err
		}

		if r.cfg.OnRetry != nil && attempt <= r.maxRetries {
			r.cfg.OnRetry(attempt, err)
		}
		return goretry.RetryableError(err)
	})
}
