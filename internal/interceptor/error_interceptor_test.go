package interceptor_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jt828/go-observer/internal/interceptor"
	"github.com/jt828/go-observer/pkg/event"
	"github.com/jt828/go-observer/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type mockLogger struct {
	observability.NopLogger
	errorCalls []struct {
		msg    string
		fields []observability.Field
	}
}

func (m *mockLogger) Error(msg string, fields ...observability.Field) {
	m.errorCalls = append(m.errorCalls, struct {
		msg    string
		fields []observability.Field
	}{msg, fields})
}
func (m *mockLogger) With(fields ...observability.Field) observability.Logger { return m }

func TestErrorInterceptor(t *testing.T) {
	info := &grpc.UnaryServerInfo{FullMethod: "/test.Service/Method"}

	t.Run("no error passes through unchanged", func(t *testing.T) {
		log := &mockLogger{}
		i := interceptor.ErrorInterceptor(log)

		resp, err := i(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
			return "ok", nil
		})

		require.NoError(t, err)
		assert.Equal(t, "ok", resp)
		assert.Len(t, log.errorCalls, 0)
	})

	t.Run("status errors pass through", func(t *testing.T) {
		log := &mockLogger{}
		i := interceptor.ErrorInterceptor(log)

		_, err := i(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
			return nil, status.Error(codes.NotFound, "no such user")
		})

		st, ok := status.FromError(err)
		require.True(t, ok)
		assert.Equal(t, codes.NotFound, st.Code())
		assert.Equal(t, "no such user", st.Message())
		assert.Len(t, log.errorCalls, 0)
	})

	t.Run("field type mismatch maps to codes.InvalidArgument", func(t *testing.T) {
		log := &mockLogger{}
		i := interceptor.ErrorInterceptor(log)

		_, err := i(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
			return nil, fmt.Errorf("record amount: %w", event.ErrFieldType)
		})

		st, ok := status.FromError(err)
		require.True(t, ok)
		assert.Equal(t, codes.InvalidArgument, st.Code())
		assert.Len(t, log.errorCalls, 0)
	})

	t.Run("deadline maps to codes.DeadlineExceeded", func(t *testing.T) {
		log := &mockLogger{}
		i := interceptor.ErrorInterceptor(log)

		_, err := i(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
			return nil, fmt.Errorf("enqueue: %w", context.DeadlineExceeded)
		})

		st, ok := status.FromError(err)
		require.True(t, ok)
		assert.Equal(t, codes.DeadlineExceeded, st.Code())
	})

	t.Run("unknown error maps to codes.Internal with generic message", func(t *testing.T) {
		log := &mockLogger{}
		i := interceptor.ErrorInterceptor(log)

		unknownErr := errors.New("database exploded")
		_, err := i(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
			return nil, unknownErr
		})

		st, ok := status.FromError(err)
		require.True(t, ok)
		assert.Equal(t, codes.Internal, st.Code())
		assert.Equal(t, "internal server error", st.Message())
		require.Len(t, log.errorCalls, 1)
		assert.Equal(t, "unhandled error", log.errorCalls[0].msg)
		assert.Contains(t, log.errorCalls[0].fields, observability.Err(unknownErr))
		assert.Contains(t, log.errorCalls[0].fields, observability.String("method", info.FullMethod))
	})

	t.Run("panic is recovered as codes.Internal", func(t *testing.T) {
		log := &mockLogger{}
		i := interceptor.ErrorInterceptor(log)

		_, err := i(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
			panic("nil map")
		})

		st, ok := status.FromError(err)
		require.True(t, ok)
		assert.Equal(t, codes.Internal, st.Code())
		require.Len(t, log.errorCalls, 1)
		assert.Equal(t, "panic recovered", log.errorCalls[0].msg)
	})
}
