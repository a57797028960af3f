// Package backend defines the monitoring sinks notified of observation
// lifecycle transitions.
//
// Backends are registered once and shared by every Observer of the process,
// so implementations must be safe for concurrent use. The context passed to
// each hook carries the scope of the notifying Observer; backends that keep
// per-observer state key it by ScopeFromContext.
package backend

import (
	"context"
	"fmt"

	"github.com/jt828/go-observer/pkg/frame"
	"go.uber.org/multierr"
)

type Backend interface {
	AppStarted(ctx context.Context) error
	AppEnded(ctx context.Context) error
	ContextCreated(ctx context.Context, id string) error
	ContextEnded(ctx context.Context) error
	SpanCreated(ctx context.Context, id string) error
	SpanData(ctx context.Context, key string, value any) error
	SpanEnded(ctx context.Context, f frame.Frame) error
}

// Broadcast calls fn for every backend in order. A failing backend does not
// stop the remaining ones; all failures are combined in the returned error.
func Broadcast(backends []Backend, fn func(Backend) error) error {
	var errs error
	for i, b := range backends {
		if err := fn(b); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("backend %d (%T): %w", i, b, err))
		}
	}
	return errs
}

// Nop implements every hook as a no-op. Embed it to implement only some hooks.
type Nop struct{}

func (Nop) AppStarted(context.Context) error             { return nil }
func (Nop) AppEnded(context.Context) error               { return nil }
func (Nop) ContextCreated(context.Context, string) error { return nil }
func (Nop) ContextEnded(context.Context) error           { return nil }
func (Nop) SpanCreated(context.Context, string) error    { return nil }
func (Nop) SpanData(context.Context, string, any) error  { return nil }
func (Nop) SpanEnded(context.Context, frame.Frame) error { return nil }
