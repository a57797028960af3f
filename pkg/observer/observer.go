// Package observer coordinates observation of instrumented code: it owns the
// active Context of one goroutine, fans lifecycle events out to the
// registered backends and hands completed frames to the persister.
//
// An Observer is not safe for concurrent use. Create one with New at process
// start and give every other goroutine its own with Fork.
package observer

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/jt828/go-observer/pkg/backend"
	"github.com/jt828/go-observer/pkg/frame"
	"github.com/jt828/go-observer/pkg/observability"
)

type Observer struct {
	scope     string
	backends  []backend.Backend
	persister *frame.Persister
	log       observability.Logger
	spanOpts  []frame.SpanOption

	active *Context
}

type Option func(*Observer)

func WithPersister(p *frame.Persister) Option {
	return func(o *Observer) {
		o.persister = p
	}
}

func WithLogger(log observability.Logger) Option {
	return func(o *Observer) {
		if log != nil {
			o.log = log
		}
	}
}

func WithSpanOptions(opts ...frame.SpanOption) Option {
	return func(o *Observer) {
		o.spanOpts = append(o.spanOpts, opts...)
	}
}

// New registers backends and calls AppStarted on each of them in order. The
// first failure aborts construction.
func New(ctx context.Context, backends []backend.Backend, opts ...Option) (*Observer, error) {
	o := &Observer{
		scope:    uuid.NewString(),
		backends: slices.Clone(backends),
		log:      observability.NopLogger{},
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.persister == nil {
		o.persister = frame.NewPersister(frame.NewLocalStore(frame.DefaultLogRoot), nil, o.log)
	}

	ctx = o.scoped(ctx)
	for i, b := range o.backends {
		if err := b.AppStarted(ctx); err != nil {
			return nil, fmt.Errorf("start backend %d (%T): %w", i, b, err)
		}
	}
	return o, nil
}

// Fork returns an Observer for another goroutine. It shares backends,
// persister and logger, has its own scope and no active context, and does
// not notify AppStarted again.
func (o *Observer) Fork() *Observer {
	return &Observer{
		scope:     uuid.NewString(),
		backends:  o.backends,
		persister: o.persister,
		log:       o.log,
		spanOpts:  o.spanOpts,
	}
}

func (o *Observer) Scope() string { return o.scope }

// ActiveContext returns the active context or nil.
func (o *Observer) ActiveContext() *Context { return o.active }

func (o *Observer) scoped(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return backend.WithScope(ctx, o.scope)
}

func (o *Observer) broadcast(ctx context.Context, fn func(context.Context, backend.Backend) error) error {
	ctx = o.scoped(ctx)
	return backend.Broadcast(o.backends, func(b backend.Backend) error {
		return fn(ctx, b)
	})
}

// CreateContext activates a context named id. It is a no-op while an explicit
// context is active. A transient context holding open spans is adopted.
func (o *Observer) CreateContext(ctx context.Context, id string) error {
	switch {
	case o.active == nil:
		o.active = newContext(id, false, o.spanOpts)
	case o.active.transient:
		o.active.id = id
		o.active.transient = false
	default:
		return nil
	}

	return o.broadcast(ctx, func(ctx context.Context, b backend.Backend) error {
		return b.ContextCreated(ctx, id)
	})
}

// EndContext notifies ContextEnded and drops the active context. Spans still
// open in it are discarded.
func (o *Observer) EndContext(ctx context.Context) error {
	if o.active == nil {
		o.log.Warn("end context called without an active context", observability.String("scope", o.scope))
		return nil
	}
	if d := o.active.Depth(); d > 0 {
		o.log.Warn("context ended with open spans, discarding them",
			observability.String("context_id", o.active.id),
			observability.Int("open_spans", d),
		)
	}

	err := o.broadcast(ctx, func(ctx context.Context, b backend.Backend) error {
		return b.ContextEnded(ctx)
	})
	o.active = nil
	return err
}

// CreateSpan starts a span named id and notifies SpanCreated. Without an
// active context the span lives in a transient one that disappears when the
// span ends.
func (o *Observer) CreateSpan(ctx context.Context, id string) error {
	if o.active == nil {
		o.active = newContext("", true, o.spanOpts)
	}
	o.active.StartSpan(id)

	return o.broadcast(ctx, func(ctx context.Context, b backend.Backend) error {
		return b.SpanCreated(ctx, id)
	})
}

// AddBreadcrumb annotates the innermost open span and notifies SpanData.
func (o *Observer) AddBreadcrumb(ctx context.Context, key string, value any) error {
	if o.active == nil {
		o.log.Warn("breadcrumb without an open span", observability.String("key", key))
		return nil
	}
	if err := o.active.AddBreadcrumb(key, value); err != nil {
		o.log.Warn("breadcrumb dropped", observability.String("key", key), observability.Err(err))
		return nil
	}

	return o.broadcast(ctx, func(ctx context.Context, b backend.Backend) error {
		return b.SpanData(ctx, key, value)
	})
}

// EndSpan ends the innermost span. Completed root frames are persisted
// according to critical; a critical nested frame is also enqueued on its own
// when it ends. Backends are notified after persistence. Ending with no open
// span is logged and ignored.
func (o *Observer) EndSpan(ctx context.Context, critical bool, spanErr error, result any) error {
	if o.active == nil {
		o.log.Warn("end span called without an open span", observability.String("scope", o.scope))
		return nil
	}

	f, root, err := o.active.EndSpan(spanErr, result)
	if err != nil {
		o.log.Warn("end span ignored",
			observability.String("context_id", o.active.id),
			observability.Err(err),
		)
		return nil
	}

	if root || critical {
		o.persister.Persist(o.scoped(ctx), f, critical)
	}
	if root && o.active.transient {
		o.active = nil
	}

	return o.broadcast(ctx, func(ctx context.Context, b backend.Backend) error {
		return b.SpanEnded(ctx, f)
	})
}

// Shutdown notifies AppEnded on every backend. Call it once, on the Observer
// returned by New, when the process stops.
func (o *Observer) Shutdown(ctx context.Context) error {
	if o.active != nil && o.active.Depth() > 0 {
		o.log.Warn("shutdown with open spans",
			observability.String("context_id", o.active.id),
			observability.Int("open_spans", o.active.Depth()),
		)
	}
	return o.broadcast(ctx, func(ctx context.Context, b backend.Backend) error {
		return b.AppEnded(ctx)
	})
}
