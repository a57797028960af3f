package frame

import (
	"context"

	"github.com/jt828/go-observer/pkg/observability"
	"github.com/jt828/go-observer/pkg/queue"
)

// Persister ships completed root frames: critical frames go to the queue,
// everything else to the local store. Failures are logged and never returned,
// and a failed enqueue does not fall back to the local store.
type Persister struct {
	store *LocalStore
	queue queue.Queue
	log   observability.Logger
}

func NewPersister(store *LocalStore, q queue.Queue, log observability.Logger) *Persister {
	if log == nil {
		log = observability.NopLogger{}
	}
	return &Persister{store: store, queue: q, log: log}
}

func (p *Persister) Persist(ctx context.Context, f Frame, critical bool) {
	log := p.log.With(
		observability.String("frame_id", f.ID),
		observability.String("frame_key", f.Key),
		observability.Bool("critical", critical),
	)

	if critical {
		p.enqueue(ctx, f, log)
		return
	}

	if p.store == nil {
		log.Warn("no local store configured, frame dropped")
		return
	}
	if err := p.store.Save(f); err != nil {
		log.Error("failed to save frame locally", observability.Err(err))
		return
	}
	log.Debug("frame saved", observability.String("path", p.store.Path(f)))
}

func (p *Persister) enqueue(ctx context.Context, f Frame, log observability.Logger) {
	if p.queue == nil {
		log.Error("no queue configured for critical frame, frame dropped")
		return
	}

	data, err := f.Marshal()
	if err != nil {
		log.Error("failed to serialize critical frame", observability.Err(err))
		return
	}

	if err := p.queue.Enqueue(ctx, data); err != nil {
		log.Error("failed to enqueue critical frame", observability.Err(err))
		return
	}
	log.Debug("frame enqueued")
}
