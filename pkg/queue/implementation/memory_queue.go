package implementation

import (
	"context"
	"errors"
	"sync"

	ring "github.com/eapache/queue"
)

var ErrQueueFull = errors.New("queue is full")

// MemoryQueue is a bounded in-process FIFO. It is safe for concurrent use and
// loses its content when the process exits.
type MemoryQueue struct {
	mu       sync.Mutex
	buf      *ring.Queue
	capacity int
}

// NewMemoryQueue returns a queue holding at most capacity records; zero means
// unbounded.
func NewMemoryQueue(capacity int) *MemoryQueue {
	return &MemoryQueue{buf: ring.New(), capacity: capacity}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, record []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.capacity > 0 && q.buf.Length() >= q.capacity {
		return ErrQueueFull
	}

	cp := make([]byte, len(record))
	copy(cp, record)
	q.buf.Add(cp)
	return nil
}

func (q *MemoryQueue) Dequeue() ([]byte, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.buf.Length() == 0 {
		return nil, false
	}
	return q.buf.Remove().([]byte), true
}

// Drain removes and returns every queued record in FIFO order.
func (q *MemoryQueue) Drain() [][]byte {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([][]byte, 0, q.buf.Length())
	for q.buf.Length() > 0 {
		out = append(out, q.buf.Remove().([]byte))
	}
	return out
}

func (q *MemoryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.buf.Length()
}
