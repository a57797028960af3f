package interceptor

import (
	"context"

	"github.com/google/uuid"
	"github.com/jt828/go-observer/pkg/event"
	"github.com/jt828/go-observer/pkg/observability"
	"github.com/jt828/go-observer/pkg/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

const RequestIDHeader = "x-request-id"

// ObserveInterceptor runs every unary RPC in its own observation context,
// named after the request id, with one span named after the full method.
// Criticality comes from the event catalog.
func ObserveInterceptor(root *observer.Observer, catalog *event.Catalog, log observability.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		o := root.Fork()
		requestID := RequestID(ctx)

		defer func() {
			if err := o.EndContext(ctx); err != nil {
				log.Error("context end notification failed", observability.String("request_id", requestID), observability.Err(err))
			}
		}()

		return observer.Observe(ctx, o, requestID, info.FullMethod, catalog.IsCritical(info.FullMethod),
			func(ctx context.Context) (any, error) {
				observer.Breadcrumb(ctx, "request_id", requestID)
				return handler(ctx, req)
			})
	}
}

// RequestID returns the x-request-id metadata value, or a fresh uuid.
func RequestID(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(RequestIDHeader); len(v) > 0 && v[0] != "" {
			return v[0]
		}
	}
	return uuid.NewString()
}
