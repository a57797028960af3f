package implementation_test

import (
	"context"
	"sync"
	"testing"

	queueImpl "github.com/jt828/go-observer/pkg/queue/implementation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryQueue(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers records in FIFO order", func(t *testing.T) {
		q := queueImpl.NewMemoryQueue(0)
		require.NoError(t, q.Enqueue(ctx, []byte("a")))
		require.NoError(t, q.Enqueue(ctx, []byte("b")))

		first, ok := q.Dequeue()
		require.True(t, ok)
		assert.Equal(t, "a", string(first))
		assert.Equal(t, 1, q.Len())

		assert.Equal(t, [][]byte{[]byte("b")}, q.Drain())
		_, ok = q.Dequeue()
		assert.False(t, ok)
	})

	t.Run("copies the record", func(t *testing.T) {
		q := queueImpl.NewMemoryQueue(0)
		record := []byte("frame")
		require.NoError(t, q.Enqueue(ctx, record))
		record[0] = 'X'

		got, ok := q.Dequeue()
		require.True(t, ok)
		assert.Equal(t, "frame", string(got))
	})

	t.Run("rejects records beyond capacity", func(t *testing.T) {
		q := queueImpl.NewMemoryQueue(1)
		require.NoError(t, q.Enqueue(ctx, []byte("a")))

		assert.ErrorIs(t, q.Enqueue(ctx, []byte("b")), queueImpl.ErrQueueFull)
		assert.Equal(t, 1, q.Len())
	})

	t.Run("honours a cancelled context", func(t *testing.T) {
		q := queueImpl.NewMemoryQueue(0)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		assert.ErrorIs(t, q.Enqueue(cctx, []byte("a")), context.Canceled)
		assert.Equal(t, 0, q.Len())
	})

	t.Run("safe for concurrent producers", func(t *testing.T) {
		q := queueImpl.NewMemoryQueue(0)
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, q.Enqueue(ctx, []byte("x")))
			}()
		}
		wg.Wait()

		assert.Equal(t, 50, q.Len())
	})
}
