package implementation

import (
	"context"

	"github.com/jt828/go-observer/pkg/observability"
)

type Config struct {
	ServiceName    string
	LogLevel       string
	TracingEnabled bool
	OTLPEndpoint   string
	MetricsAddr    string
}

func NewObservability(ctx context.Context, cfg Config) (observability.Observability, error) {
	log, err := NewZapLoggerWithLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	meter := NewPrometheusMeter()

	if !cfg.TracingEnabled {
		return &observabilityImplementation{
			log:         log,
			meter:       meter,
			tracer:      NewNoopTracer(),
			metricsAddr: cfg.MetricsAddr,
		}, nil
	}

	tracer, shutdown, err := NewOtelTracer(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		return nil, err
	}

	return &observabilityImplementation{
		log:         log,
		meter:       meter,
		tracer:      tracer,
		traceClose:  shutdown,
		metricsAddr: cfg.MetricsAddr,
	}, nil
}
