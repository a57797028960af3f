package implementation

import (
	"context"
	"sync"

	"github.com/jt828/go-observer/pkg/backend"
	"github.com/jt828/go-observer/pkg/frame"
	"github.com/jt828/go-observer/pkg/observability"
)

type metricsBackend struct {
	appUp        observability.Gauge
	contexts     observability.Counter
	activeSpans  observability.Gauge
	spansStarted observability.Counter
	spansEnded   observability.Counter
	spanDuration observability.Histogram
	breadcrumbs  observability.Counter

	mu   sync.Mutex
	open map[string]int
}

// NewMetricsBackend registers the observer metrics on meter, each carrying
// constLabels. It must be called once per meter.
func NewMetricsBackend(meter observability.Meter, constLabels ...observability.Label) backend.Backend {
	opt := func(o observability.MetricOpt) observability.MetricOpt {
		o.ConstLabels = constLabels
		return o
	}

	return &metricsBackend{
		open: make(map[string]int),
		appUp: meter.Gauge("observer_app_up", opt(observability.MetricOpt{
			Help: "1 while the observed application is running",
		})),
		contexts: meter.Counter("observer_contexts_total", opt(observability.MetricOpt{
			Help: "Total number of observation contexts created",
		})),
		activeSpans: meter.Gauge("observer_active_spans", opt(observability.MetricOpt{
			Help: "Number of spans currently open",
		})),
		spansStarted: meter.Counter("observer_spans_started_total", opt(observability.MetricOpt{
			Help:      "Total number of spans started",
			LabelKeys: []string{"span"},
		})),
		spansEnded: meter.Counter("observer_spans_ended_total", opt(observability.MetricOpt{
			Help:      "Total number of spans ended",
			LabelKeys: []string{"span", "outcome"},
		})),
		spanDuration: meter.Histogram("observer_span_duration_seconds", opt(observability.MetricOpt{
			Help:      "Duration of observed spans in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			LabelKeys: []string{"span"},
		})),
		breadcrumbs: meter.Counter("observer_breadcrumbs_total", opt(observability.MetricOpt{
			Help: "Total number of breadcrumbs recorded",
		})),
	}
}

func (b *metricsBackend) AppStarted(context.Context) error {
	b.appUp.Set(1)
	return nil
}

func (b *metricsBackend) AppEnded(context.Context) error {
	b.appUp.Set(0)
	return nil
}

func (b *metricsBackend) ContextCreated(context.Context, string) error {
	b.contexts.Inc(1)
	return nil
}

// ContextEnded drops the spans its scope left open from the active gauge.
func (b *metricsBackend) ContextEnded(ctx context.Context) error {
	key := backend.ScopeFromContext(ctx)

	b.mu.Lock()
	n := b.open[key]
	delete(b.open, key)
	b.mu.Unlock()

	if n > 0 {
		b.activeSpans.Add(float64(-n))
	}
	return nil
}

func (b *metricsBackend) SpanCreated(ctx context.Context, id string) error {
	key := backend.ScopeFromContext(ctx)

	b.mu.Lock()
	b.open[key]++
	b.mu.Unlock()

	b.spansStarted.Inc(1, observability.Label{Key: "span", Value: id})
	b.activeSpans.Add(1)
	return nil
}

func (b *metricsBackend) SpanData(context.Context, string, any) error {
	b.breadcrumbs.Inc(1)
	return nil
}

func (b *metricsBackend) SpanEnded(ctx context.Context, f frame.Frame) error {
	key := backend.ScopeFromContext(ctx)

	b.mu.Lock()
	if b.open[key] > 1 {
		b.open[key]--
	} else {
		delete(b.open, key)
	}
	b.mu.Unlock()

	outcome := "success"
	if !f.Succeeded() {
		outcome = "failure"
	}

	span := observability.Label{Key: "span", Value: f.ID}
	b.spansEnded.Inc(1, span, observability.Label{Key: "outcome", Value: outcome})
	b.spanDuration.Observe(f.Duration().Seconds(), span)
	b.activeSpans.Add(-1)
	return nil
}
