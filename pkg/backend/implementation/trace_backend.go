package implementation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jt828/go-observer/pkg/backend"
	"github.com/jt828/go-observer/pkg/frame"
	"github.com/jt828/go-observer/pkg/observability"
)

var errNoTraceSpan = errors.New("no trace span open for scope")

type traceEntry struct {
	ctx  context.Context
	span observability.Span
}

// traceScope mirrors the span stack of one Observer. The context span, when
// present, sits at the bottom and floor is 1. A context adopted while spans
// are already open gets no span of its own, and the scope then lives until
// ContextEnded even after its stack empties.
type traceScope struct {
	stack      []traceEntry
	hasContext bool
	floor      int
}

type traceBackend struct {
	tracer observability.Tracer

	mu     sync.Mutex
	scopes map[string]*traceScope
}

// NewTraceBackend opens one tracer span per observation context and one child
// span per observed span.
func NewTraceBackend(tracer observability.Tracer) backend.Backend {
	return &traceBackend{tracer: tracer, scopes: make(map[string]*traceScope)}
}

func (b *traceBackend) scope(ctx context.Context) *traceScope {
	key := backend.ScopeFromContext(ctx)
	s, ok := b.scopes[key]
	if !ok {
		s = &traceScope{}
		b.scopes[key] = s
	}
	return s
}

func (b *traceBackend) start(ctx context.Context, s *traceScope, name string) {
	parent := context.Background()
	if n := len(s.stack); n > 0 {
		parent = s.stack[n-1].ctx
	}
	spanCtx, span := b.tracer.Start(parent, name)
	s.stack = append(s.stack, traceEntry{ctx: spanCtx, span: span})
}

func (b *traceBackend) AppStarted(context.Context) error { return nil }

func (b *traceBackend) AppEnded(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for key, s := range b.scopes {
		for i := len(s.stack) - 1; i >= 0; i-- {
			s.stack[i].span.End()
		}
		delete(b.scopes, key)
	}
	return nil
}

func (b *traceBackend) ContextCreated(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.scope(ctx)
	if s.hasContext {
		return fmt.Errorf("context %q created while another is active", id)
	}
	if len(s.stack) == 0 {
		b.start(ctx, s, id)
		s.floor = 1
	}
	s.hasContext = true
	return nil
}

func (b *traceBackend) ContextEnded(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := backend.ScopeFromContext(ctx)
	s, ok := b.scopes[key]
	if !ok || !s.hasContext {
		return errNoTraceSpan
	}
	for i := len(s.stack) - 1; i >= 0; i-- {
		s.stack[i].span.End()
	}
	delete(b.scopes, key)
	return nil
}

func (b *traceBackend) SpanCreated(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.start(ctx, b.scope(ctx), id)
	return nil
}

func (b *traceBackend) SpanData(ctx context.Context, key string, value any) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.scope(ctx)
	if len(s.stack) == 0 {
		return errNoTraceSpan
	}
	s.stack[len(s.stack)-1].span.SetAttribute(key, value)
	return nil
}

func (b *traceBackend) SpanEnded(ctx context.Context, f frame.Frame) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := backend.ScopeFromContext(ctx)
	s, ok := b.scopes[key]
	if !ok || len(s.stack) <= s.floor {
		return errNoTraceSpan
	}

	top := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]

	top.span.SetAttribute("frame.key", f.Key)
	if msg, ok := f.Breadcrumbs["error"].(string); ok {
		top.span.RecordError(errors.New(msg))
	}
	top.span.SetSuccess(f.Succeeded())
	top.span.End()

	if len(s.stack) == 0 && !s.hasContext {
		delete(b.scopes, key)
	}
	return nil
}
