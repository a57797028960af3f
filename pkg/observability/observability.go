package observability

import "context"

// Observability bundles the process-wide logger, meter and tracer. Start
// exposes the metrics endpoint; Close flushes and stops everything Start and
// the constructor opened.
type Observability interface {
	Close(ctx context.Context) error
	Logger() Logger
	Meter() Meter
	Start(ctx context.Context) error
	Tracer() Tracer
}
