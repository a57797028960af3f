package bootstrap

import (
	"context"
	"fmt"

	"github.com/jt828/go-observer/internal/config"
	"github.com/jt828/go-observer/pkg/backend"
	backendImpl "github.com/jt828/go-observer/pkg/backend/implementation"
	"github.com/jt828/go-observer/pkg/event"
	"github.com/jt828/go-observer/pkg/frame"
	"github.com/jt828/go-observer/pkg/observability"
	"github.com/jt828/go-observer/pkg/observer"
)

type Runtime struct {
	Observer *observer.Observer
	Catalog  *event.Catalog

	closeQueue func() error
}

// InitializeObserver wires the log, metrics and trace backends, the frame
// persister and the event catalog into the root Observer.
func InitializeObserver(ctx context.Context, cfg *config.Config, obs observability.Observability) (*Runtime, error) {
	log := obs.Logger()

	keys, err := InitializeKeyGenerator(cfg.KeyStrategy)
	if err != nil {
		return nil, err
	}

	q, closeQueue, err := InitializeQueue(cfg.Queue, obs.Meter(), log)
	if err != nil {
		return nil, fmt.Errorf("initialize queue: %w", err)
	}

	catalog, err := event.New(nil)
	if err != nil {
		return nil, err
	}
	if cfg.EventsPath != "" {
		if catalog, err = event.Load(cfg.EventsPath); err != nil {
			_ = closeQueue()
			return nil, err
		}
	}

	var constLabels []observability.Label
	if cfg.ServiceName != "" {
		constLabels = append(constLabels, observability.Label{Key: "service", Value: cfg.ServiceName})
	}

	backends := []backend.Backend{
		backendImpl.NewLogBackend(log),
		backendImpl.NewMetricsBackend(obs.Meter(), constLabels...),
		backendImpl.NewTraceBackend(obs.Tracer()),
	}

	persister := frame.NewPersister(frame.NewLocalStore(cfg.LogRoot), q, log)

	o, err := observer.New(ctx, backends,
		observer.WithLogger(log),
		observer.WithPersister(persister),
		observer.WithSpanOptions(frame.WithKeyGenerator(keys)),
	)
	if err != nil {
		_ = closeQueue()
		return nil, fmt.Errorf("start observer: %w", err)
	}

	log.Info("observer started",
		observability.String("log_root", cfg.LogRoot),
		observability.String("queue_driver", cfg.Queue.Driver),
		observability.Int("events", len(catalog.Names())),
	)

	return &Runtime{Observer: o, Catalog: catalog, closeQueue: closeQueue}, nil
}

func (r *Runtime) Close(ctx context.Context) error {
	err := r.Observer.Shutdown(ctx)
	if e := r.closeQueue(); err == nil {
		err = e
	}
	return err
}
