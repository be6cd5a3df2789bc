package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"

	"github.com/aerosync/vertiport-routing/engine"
	"github.com/aerosync/vertiport-routing/internal/config"
	"github.com/aerosync/vertiport-routing/internal/logging"
	"github.com/aerosync/vertiport-routing/internal/observability"
	"github.com/aerosync/vertiport-routing/rpcapi"
	"github.com/aerosync/vertiport-routing/store"
	"github.com/aerosync/vertiport-routing/store/memory"
	pgstore "github.com/aerosync/vertiport-routing/store/postgres"
)

func main() {
	log := logging.NewFromEnv()
	ctx := context.Background()
	cfg := config.FromEnv()

	collector, err := observability.NewEngineCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.String("error", err.Error()))
		os.Exit(1)
	}
	routingCollector, err := observability.NewRoutingCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise routing metrics collector", logging.String("error", err.Error()))
		os.Exit(1)
	}

	metricsSrv := serveMetrics(":9090", collector, log)

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Warn(ctx, "tracing disabled", logging.String("error", err.Error()))
	}

	backend, err := buildStore(ctx, cfg, collector)
	if err != nil {
		log.Error(ctx, "failed to initialise spatial backend", logging.String("error", err.Error()))
		os.Exit(1)
	}

	eng := engine.New(backend, engine.WithMetrics(routingCollector))

	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			rpcapi.RequestIDUnaryServerInterceptor(log),
			collector.UnaryServerInterceptor(),
		),
	)
	rpcapi.RegisterRoutingServiceServer(grpcServer, rpcapi.NewGRPCService(eng))

	grpcAddr := fmt.Sprintf(":%d", cfg.GRPCPort)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		log.Error(ctx, "failed to listen for gRPC", logging.String("addr", grpcAddr), logging.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info(ctx, "starting gRPC server", logging.String("addr", grpcAddr))
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			log.Error(ctx, "gRPC server exited", logging.String("error", err.Error()))
		}
	}()

	restAddr := fmt.Sprintf(":%d", cfg.RESTPort)
	restSrv := &http.Server{Addr: restAddr, Handler: rpcapi.NewRESTServer(eng, log)}
	log.Info(ctx, "starting REST server", logging.String("addr", restAddr))
	go func() {
		if err := restSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "REST server exited", logging.String("error", err.Error()))
		}
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	<-stopCtx.Done()

	log.Info(ctx, "shutting down")
	grpcServer.GracefulStop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = restSrv.Shutdown(shutdownCtx)
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	if shutdownTracing != nil {
		observability.ShutdownWithTimeout(shutdownCtx, shutdownTracing, log)
	}
}

func buildStore(ctx context.Context, cfg config.Config, collector *observability.EngineCollector) (store.SpatialStore, error) {
	if !cfg.UsePostgres() {
		return memory.New(memory.WithMetricsRecorder(collector)), nil
	}

	pgCfg := pgstore.Config{
		User: cfg.PGUser, DBName: cfg.PGDBName, Host: cfg.PGHost, Port: cfg.PGPort,
		SSLMode: cfg.PGSSLMode, CACert: cfg.DBCACert, ClientCert: cfg.DBClientCert, ClientKey: cfg.DBClientKey,
	}
	db, err := pgstore.Open(pgCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres backend: %w", err)
	}
	return pgstore.New(ctx, db, memory.WithMetricsRecorder(collector))
}

func serveMetrics(addr string, collector *observability.EngineCollector, log logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.String("error", err.Error()))
		}
	}()
	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
