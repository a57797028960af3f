package event

import (
	"context"

	"github.com/jt828/go-observer/pkg/observer"
)

// Observe runs work as a span named after event, with the criticality
// declared in the catalog.
func Observe[T any](
	ctx context.Context,
	c *Catalog,
	o *observer.Observer,
	contextID, event string,
	work func(ctx context.Context) (T, error),
) (T, error) {
	return observer.Observe(ctx, o, contextID, event, c.IsCritical(event), work)
}

// Record type-checks value against the schema of event and, when it matches,
// attaches it as a breadcrumb to the current span of the Observer in ctx.
func (c *Catalog) Record(ctx context.Context, event, field string, value any) error {
	if err := c.CheckField(event, field, value); err != nil {
		return err
	}
	observer.Breadcrumb(ctx, field, value)
	return nil
}
