package backend_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jt828/go-observer/pkg/backend"
	"github.com/jt828/go-observer/pkg/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

type failingBackend struct {
	backend.Nop
	err error
}

func (b failingBackend) SpanCreated(context.Context, string) error { return b.err }

func TestBroadcast(t *testing.T) {
	t.Run("visits every backend in order", func(t *testing.T) {
		var visited []int
		backends := []backend.Backend{backend.Nop{}, backend.Nop{}, backend.Nop{}}
		i := 0

		err := backend.Broadcast(backends, func(b backend.Backend) error {
			visited = append(visited, i)
			i++
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, []int{0, 1, 2}, visited)
	})

	t.Run("keeps going after failures and combines them", func(t *testing.T) {
		first := errors.New("first")
		second := errors.New("second")
		backends := []backend.Backend{
			failingBackend{err: first},
			backend.Nop{},
			failingBackend{err: second},
		}
		calls := 0

		err := backend.Broadcast(backends, func(b backend.Backend) error {
			calls++
			return b.SpanCreated(context.Background(), "span")
		})

		assert.Equal(t, 3, calls)
		assert.ErrorIs(t, err, first)
		assert.ErrorIs(t, err, second)
		assert.Len(t, multierr.Errors(err), 2)
		assert.ErrorContains(t, err, "backend 0")
		assert.ErrorContains(t, err, "backend 2")
	})

	t.Run("no backends is fine", func(t *testing.T) {
		assert.NoError(t, backend.Broadcast(nil, func(backend.Backend) error {
			return errors.New("never called")
		}))
	})
}

func TestNop(t *testing.T) {
	var b backend.Backend = backend.Nop{}
	ctx := context.Background()

	assert.NoError(t, b.AppStarted(ctx))
	assert.NoError(t, b.ContextCreated(ctx, "c"))
	assert.NoError(t, b.SpanCreated(ctx, "s"))
	assert.NoError(t, b.SpanData(ctx, "k", 1))
	assert.NoError(t, b.SpanEnded(ctx, frame.Frame{}))
	assert.NoError(t, b.ContextEnded(ctx))
	assert.NoError(t, b.AppEnded(ctx))
}

func TestScope(t *testing.T) {
	ctx := backend.WithScope(context.Background(), "worker-1")

	assert.Equal(t, "worker-1", backend.ScopeFromContext(ctx))
	assert.Equal(t, "", backend.ScopeFromContext(context.Background()))
}
