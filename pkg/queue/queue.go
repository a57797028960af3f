package queue

import "context"

// Queue is the durable delivery channel for critical frames. Enqueue receives
// one fully serialized frame record; the delivery guarantee belongs to the
// implementation.
type Queue interface {
	Enqueue(ctx context.Context, record []byte) error
}

// Func adapts a plain function to Queue.
type Func func(ctx context.Context, record []byte) error

func (f Func) Enqueue(ctx context.Context, record []byte) error {
	return f(ctx, record)
}
