package interceptor_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jt828/go-observer/internal/interceptor"
	"github.com/jt828/go-observer/pkg/backend"
	"github.com/jt828/go-observer/pkg/event"
	"github.com/jt828/go-observer/pkg/frame"
	"github.com/jt828/go-observer/pkg/observability"
	"github.com/jt828/go-observer/pkg/observer"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

type contextBackend struct {
	backend.Nop
	created []string
	ended   int
}

func (b *contextBackend) ContextCreated(_ context.Context, id string) error {
	b.created = append(b.created, id)
	return nil
}

func (b *contextBackend) ContextEnded(context.Context) error {
	b.ended++
	return nil
}

type recordingQueue struct {
	records [][]byte
}

func (q *recordingQueue) Enqueue(_ context.Context, record []byte) error {
	q.records = append(q.records, record)
	return nil
}

func TestObserveInterceptor(t *testing.T) {
	const method = "/billing.Billing/Charge"
	info := &grpc.UnaryServerInfo{FullMethod: method}

	setup := func(t *testing.T, catalog *event.Catalog) (afero.Fs, *recordingQueue, *contextBackend, grpc.UnaryServerInterceptor) {
		t.Helper()
		fs := afero.NewMemMapFs()
		require.NoError(t, fs.MkdirAll("/logs", 0o755))
		q := &recordingQueue{}
		b := &contextBackend{}

		root, err := observer.New(context.Background(), []backend.Backend{b},
			observer.WithPersister(frame.NewPersister(frame.NewLocalStore("/logs", frame.WithFs(fs)), q, nil)),
		)
		require.NoError(t, err)
		return fs, q, b, interceptor.ObserveInterceptor(root, catalog, observability.NopLogger{})
	}

	t.Run("each call gets its own context named after the request id", func(t *testing.T) {
		fs, _, b, i := setup(t, nil)
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(interceptor.RequestIDHeader, "req-42"))

		resp, err := i(ctx, "payload", info, func(ctx context.Context, req any) (any, error) {
			assert.NotNil(t, observer.ObserverFromContext(ctx))
			observer.Breadcrumb(ctx, "amount", 12)
			return "charged", nil
		})

		require.NoError(t, err)
		assert.Equal(t, "charged", resp)
		assert.Equal(t, []string{"req-42"}, b.created)
		assert.Equal(t, 1, b.ended)

		files, err := afero.ReadDir(fs, filepath.Join("/logs", "_billing.Billing_Charge"))
		require.NoError(t, err)
		require.Len(t, files, 1)

		data, err := afero.ReadFile(fs, filepath.Join("/logs", "_billing.Billing_Charge", files[0].Name()))
		require.NoError(t, err)
		f, err := frame.Unmarshal(data)
		require.NoError(t, err)
		assert.Equal(t, method, f.ID)
		assert.Equal(t, "req-42", f.Breadcrumbs["request_id"])
		assert.Equal(t, float64(12), f.Breadcrumbs["amount"])
		assert.Equal(t, "charged", f.Result)
	})

	t.Run("critical methods are enqueued", func(t *testing.T) {
		catalog, err := event.New(map[string]event.Event{method: {Critical: true}})
		require.NoError(t, err)
		_, q, _, i := setup(t, catalog)

		_, err = i(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
			return nil, nil
		})

		require.NoError(t, err)
		assert.Len(t, q.records, 1)
	})

	t.Run("handler errors are returned and the context still ends", func(t *testing.T) {
		_, _, b, i := setup(t, nil)
		handlerErr := errors.New("card declined")

		_, err := i(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
			return nil, handlerErr
		})

		assert.ErrorIs(t, err, handlerErr)
		assert.Equal(t, 1, b.ended)
	})

	t.Run("missing request id is generated", func(t *testing.T) {
		_, _, b, i := setup(t, nil)

		_, err := i(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
			return nil, nil
		})

		require.NoError(t, err)
		require.Len(t, b.created, 1)
		assert.Len(t, b.created[0], 36)
	})
}

func TestRequestID(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-request-id", "abc"))
	assert.Equal(t, "abc", interceptor.RequestID(ctx))
	assert.NotEqual(t, interceptor.RequestID(context.Background()), interceptor.RequestID(context.Background()))
}
