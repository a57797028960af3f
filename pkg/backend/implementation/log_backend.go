package implementation

import (
	"context"

	"github.com/jt828/go-observer/pkg/backend"
	"github.com/jt828/go-observer/pkg/frame"
	"github.com/jt828/go-observer/pkg/observability"
)

type logBackend struct {
	log observability.Logger
}

// NewLogBackend writes every lifecycle transition to log. Span data is logged
// at debug level, everything else at info.
func NewLogBackend(log observability.Logger) backend.Backend {
	return &logBackend{log: log}
}

func (b *logBackend) scoped(ctx context.Context) observability.Logger {
	return b.log.With(observability.String("scope", backend.ScopeFromContext(ctx)))
}

func (b *logBackend) AppStarted(ctx context.Context) error {
	b.scoped(ctx).Info("app started")
	return nil
}

func (b *logBackend) AppEnded(ctx context.Context) error {
	b.scoped(ctx).Info("app ended")
	return nil
}

func (b *logBackend) ContextCreated(ctx context.Context, id string) error {
	b.scoped(ctx).Info("context created", observability.String("context_id", id))
	return nil
}

func (b *logBackend) ContextEnded(ctx context.Context) error {
	b.scoped(ctx).Info("context ended")
	return nil
}

func (b *logBackend) SpanCreated(ctx context.Context, id string) error {
	b.scoped(ctx).Info("span created", observability.String("span_id", id))
	return nil
}

func (b *logBackend) SpanData(ctx context.Context, key string, value any) error {
	b.scoped(ctx).Debug("span data", observability.String("key", key), observability.Any("value", value))
	return nil
}

func (b *logBackend) SpanEnded(ctx context.Context, f frame.Frame) error {
	b.scoped(ctx).Info("span ended",
		observability.String("span_id", f.ID),
		observability.String("span_key", f.Key),
		observability.Bool("success", f.Succeeded()),
		observability.Duration("duration", f.Duration()),
		observability.Int("sub_frames", len(f.SubFrames)),
	)
	return nil
}
