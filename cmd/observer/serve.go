package main

import (
	"context"
	"net"
	"os/signal"
	"syscall"
	"time"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/jt828/go-observer/internal/bootstrap"
	"github.com/jt828/go-observer/internal/config"
	"github.com/jt828/go-observer/internal/interceptor"
	"github.com/jt828/go-observer/pkg/observability"
	"github.com/jt828/go-observer/pkg/observability/implementation"
	"github.com/jt828/go-observer/pkg/observer"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the gRPC server with every call observed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}
}

func runServe(parent context.Context, cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	obs, err := implementation.NewObservability(ctx, implementation.Config{
		ServiceName:    cfg.ServiceName,
		LogLevel:       cfg.LogLevel,
		TracingEnabled: cfg.Tracing.Enabled,
		OTLPEndpoint:   cfg.Tracing.Endpoint,
		MetricsAddr:    cfg.Metrics.Addr,
	})
	if err != nil {
		return err
	}
	log := obs.Logger()

	reg := implementation.PromRegistry(obs.Meter())
	if reg == nil {
		log.Fatal("prometheus registry not available")
	}
	grpcMetrics := grpc_prometheus.NewServerMetrics()
	reg.MustRegister(grpcMetrics)

	if err := obs.Start(ctx); err != nil {
		log.Error("failed to start observability", observability.Err(err))
	}

	rt, err := bootstrap.InitializeObserver(ctx, cfg, obs)
	if err != nil {
		log.Error("failed to initialize observer", observability.Err(err))
		return err
	}

	boot := rt.Observer.Fork()
	lis, err := observer.Observe(ctx, boot, "startup", "grpc.listen", false,
		func(ctx context.Context) (net.Listener, error) {
			observer.Breadcrumb(ctx, "addr", cfg.GRPCAddr)
			return net.Listen("tcp", cfg.GRPCAddr)
		})
	if e := boot.EndContext(ctx); e != nil {
		log.Error("startup context end notification failed", observability.Err(e))
	}
	if err != nil {
		log.Error("failed to listen", observability.Err(err))
		return err
	}

	server := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			grpcMetrics.UnaryServerInterceptor(),
			interceptor.ErrorInterceptor(log),
			interceptor.ObserveInterceptor(rt.Observer, rt.Catalog, log),
		),
		grpc.StreamInterceptor(grpcMetrics.StreamServerInterceptor()),
	)

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	grpc_health_v1.RegisterHealthServer(server, healthServer)

	grpcMetrics.InitializeMetrics(server)

	go func() {
		log.Info("gRPC server running", observability.String("addr", cfg.GRPCAddr))
		if err := server.Serve(lis); err != nil {
			log.Error("failed to serve", observability.Err(err))
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("Graceful stopping gRPC server...")
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	server.GracefulStop()
	log.Info("gRPC server stopped")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := rt.Close(shutdownCtx); err != nil {
		log.Error("failed to close observer", observability.Err(err))
	}
	if err := obs.Close(shutdownCtx); err != nil {
		log.Error("failed to close observability", observability.Err(err))
	}
	return nil
}
