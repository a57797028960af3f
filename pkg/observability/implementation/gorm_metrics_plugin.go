package implementation

import (
	"context"
	"time"

	"github.com/jt828/go-observer/pkg/observability"
	"gorm.io/gorm"
)

type statementStartKey struct{}

// GormMetricsPlugin records latency and outcome of the statements issued by
// the postgres queue.
type GormMetricsPlugin struct {
	statementLatency observability.Histogram
	statementTotal   observability.Counter
	statementErrors  observability.Counter
}

func NewGormMetricsPlugin(meter observability.Meter) *GormMetricsPlugin {
	return &GormMetricsPlugin{
		statementLatency: meter.Histogram("observer_queue_statement_duration_seconds", observability.MetricOpt{
			Help:      "Duration of queue database statements in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			LabelKeys: []string{"operation"},
		}),
		statementTotal: meter.Counter("observer_queue_statements_total", observability.MetricOpt{
			Help:      "Total number of queue database statements",
			LabelKeys: []string{"operation"},
		}),
		statementErrors: meter.Counter("observer_queue_statement_errors_total", observability.MetricOpt{
			Help:      "Total number of failed queue database statements",
			LabelKeys: []string{"operation"},
		}),
	}
}

func (p *GormMetricsPlugin) Name() string {
	return "observer:queue-metrics"
}

func (p *GormMetricsPlugin) Initialize(db *gorm.DB) error {
	if err := db.Callback().Create().Before("gorm:create").Register("observer:before_create", p.before); err != nil {
		return err
	}
	if err := db.Callback().Create().After("gorm:create").Register("observer:after_create", p.after("create")); err != nil {
		return err
	}
	if err := db.Callback().Query().Before("gorm:query").Register("observer:before_query", p.before); err != nil {
		return err
	}
	if err := db.Callback().Query().After("gorm:query").Register("observer:after_query", p.after("query")); err != nil {
		return err
	}
	if err := db.Callback().Delete().Before("gorm:delete").Register("observer:before_delete", p.before); err != nil {
		return err
	}
	return db.Callback().Delete().After("gorm:delete").Register("observer:after_delete", p.after("delete"))
}

func (p *GormMetricsPlugin) before(db *gorm.DB) {
	db.Statement.Context = context.WithValue(db.Statement.Context, statementStartKey{}, time.Now())
}

func (p *GormMetricsPlugin) after(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		opLabel := observability.Label{Key: "operation", Value: operation}

		p.statementTotal.Inc(1, opLabel)

		if db.Error != nil {
			p.statementErrors.Inc(1, opLabel)
		}

		startTime, ok := db.Statement.Context.Value(statementStartKey{}).(time.Time)
		if ok {
			p.statementLatency.Observe(time.Since(startTime).Seconds(), opLabel)
		}
	}
}
