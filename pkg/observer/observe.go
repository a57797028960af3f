package observer

import (
	"context"
	"fmt"

	"github.com/jt828/go-observer/pkg/observability"
)

type observerKey struct{}

// ContextWithObserver returns a copy of ctx carrying o.
func ContextWithObserver(ctx context.Context, o *Observer) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, observerKey{}, o)
}

// ObserverFromContext returns the Observer carried by ctx, or nil.
func ObserverFromContext(ctx context.Context) *Observer {
	if ctx == nil {
		return nil
	}
	o, _ := ctx.Value(observerKey{}).(*Observer)
	return o
}

// Observe runs work inside a span named spanID, creating the context
// contextID first if none is active. The span succeeds when work returns a
// nil error and records the returned value as its result. work's value and
// error are returned unchanged; a panic in work ends the span unsuccessfully
// and is re-raised. Failures of the observer itself are only logged.
//
// The ctx passed to work carries o, so nested calls can use ObserveContext.
func Observe[T any](
	ctx context.Context,
	o *Observer,
	contextID, spanID string,
	critical bool,
	work func(ctx context.Context) (T, error),
) (T, error) {
	return observe(ctx, o, contextID, spanID, critical, true, work)
}

// ObserveErr is Observe for work that produces no value. The frame result is
// left empty.
func ObserveErr(
	ctx context.Context,
	o *Observer,
	contextID, spanID string,
	critical bool,
	work func(ctx context.Context) error,
) error {
	_, err := observe(ctx, o, contextID, spanID, critical, false, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, work(ctx)
	})
	return err
}

func observe[T any](
	ctx context.Context,
	o *Observer,
	contextID, spanID string,
	critical, recordResult bool,
	work func(ctx context.Context) (T, error),
) (T, error) {
	if o == nil {
		return work(ctx)
	}
	ctx = ContextWithObserver(ctx, o)

	if err := o.CreateContext(ctx, contextID); err != nil {
		o.log.Error("context creation notification failed", observability.String("context_id", contextID), observability.Err(err))
	}
	if err := o.CreateSpan(ctx, spanID); err != nil {
		o.log.Error("span creation notification failed", observability.String("span_id", spanID), observability.Err(err))
	}

	completed := false
	defer func() {
		if completed {
			return
		}
		r := recover()
		o.endSpan(ctx, spanID, critical, panicError(ctx, r), nil)
		if r != nil {
			panic(r)
		}
	}()

	result, err := work(ctx)
	completed = true

	var value any
	if err == nil && recordResult {
		value = result
	}
	o.endSpan(ctx, spanID, critical, err, value)
	return result, err
}

// ObserveContext is Observe with the Observer carried by ctx. Without one,
// work runs unobserved.
func ObserveContext[T any](
	ctx context.Context,
	contextID, spanID string,
	critical bool,
	work func(ctx context.Context) (T, error),
) (T, error) {
	return Observe(ctx, ObserverFromContext(ctx), contextID, spanID, critical, work)
}

// Breadcrumb annotates the current span of the Observer carried by ctx.
func Breadcrumb(ctx context.Context, key string, value any) {
	o := ObserverFromContext(ctx)
	if o == nil {
		return
	}
	if err := o.AddBreadcrumb(ctx, key, value); err != nil {
		o.log.Error("span data notification failed", observability.String("key", key), observability.Err(err))
	}
}

func (o *Observer) endSpan(ctx context.Context, spanID string, critical bool, spanErr error, result any) {
	if err := o.EndSpan(ctx, critical, spanErr, result); err != nil {
		o.log.Error("span end notification failed", observability.String("span_id", spanID), observability.Err(err))
	}
}

// panicError records the panic value on the open span and converts it into
// the span error. A nil value means work called runtime.Goexit.
func panicError(ctx context.Context, r any) error {
	if r == nil {
		return fmt.Errorf("work exited without returning")
	}
	Breadcrumb(ctx, "panic", fmt.Sprint(r))
	return fmt.Errorf("panic: %v", r)
}
