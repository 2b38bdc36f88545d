package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vladislavdragonenkov/shop/internal/service/idempotency"
	"github.com/vladislavdragonenkov/shop/internal/transport/httpapi"
)

// Run поднимает HTTP API, сервер метрик, gRPC health и фоновые воркеры.
// Возвращает ctx.Err() после штатной остановки по сигналу.
func Run(ctx context.Context, cfg Config) error {
	return run(ctx, cfg, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

func run(ctx context.Context, cfg Config, registerer prometheus.Registerer, gatherer prometheus.Gatherer) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}

	logger := log.WithField("component", "app")

	producer := initKafkaProducer(cfg.KafkaBrokers, logger)
	defer closeKafka(producer, logger)

	deps := NewDependencies(cfg, registerer, producer != nil, logger)

	listeners, err := listenAll(cfg)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	router := httpapi.NewRouter(httpapi.RouterConfig{
		Service:     deps.Service,
		Logger:      logger.WithField("layer", "http"),
		Idempotency: deps.Guard,
		Recorder:    deps.Metrics,
		CORSOrigins: cfg.CORSOrigins,
	})
	apiSrv := &http.Server{Handler: router, ReadHeaderTimeout: 5 * time.Second}
	metricsSrv := &http.Server{Handler: newMetricsMux(gatherer, deps.Health), ReadHeaderTimeout: 5 * time.Second}
	grpcServer, grpcHealth := newGRPCServer(registerer, logger)

	cleanup := idempotency.NewCleanupWorker(
		deps.IdempotencyRepo,
		idempotency.WithLogger(logger.WithField("worker", "idempotency-cleanup")),
		idempotency.WithMetrics(deps.Metrics),
		idempotency.WithInterval(cfg.IdempotencyCleanupInterval),
		idempotency.WithBatchSize(cfg.IdempotencyCleanupBatchSize),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return serveHTTP(gctx, apiSrv, listeners.http, "http", cfg.ShutdownTimeout, logger)
	})
	g.Go(func() error {
		return serveHTTP(gctx, metricsSrv, listeners.metrics, "metrics", cfg.ShutdownTimeout, logger)
	})
	g.Go(func() error {
		return serveGRPC(gctx, grpcServer, listeners.grpc, cfg.ShutdownTimeout, logger)
	})
	g.Go(func() error {
		syncGRPCHealth(gctx, deps.Health, grpcHealth, healthSyncInterval)
		grpcHealth.Shutdown()
		return nil
	})
	g.Go(func() error {
		cleanup.Run(gctx)
		return nil
	})
	if deps.OutboxRepo != nil {
		worker := newOutboxWorker(cfg, deps.OutboxRepo, producer, deps.Metrics, logger)
		g.Go(func() error {
			worker.Run(gctx)
			return nil
		})
	}

	logger.WithFields(log.Fields{
		"http_addr":    listeners.http.Addr().String(),
		"grpc_addr":    listeners.grpc.Addr().String(),
		"metrics_addr": listeners.metrics.Addr().String(),
		"events":       deps.OutboxRepo != nil,
	}).Info("shop service started")

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

type appListeners struct {
	http    net.Listener
	grpc    net.Listener
	metrics net.Listener
}

// listenAll открывает все порты заранее, чтобы занятый адрес обнаруживался до старта воркеров.
func listenAll(cfg Config) (appListeners, error) {
	var (
		result appListeners
		opened []net.Listener
	)
	closeOpened := func() {
		for _, lis := range opened {
			_ = lis.Close()
		}
	}

	targets := []struct {
		addr string
		dst  *net.Listener
	}{
		{cfg.HTTPAddr, &result.http},
		{cfg.GRPCAddr, &result.grpc},
		{cfg.MetricsAddr, &result.metrics},
	}
	for _, target := range targets {
		lis, err := net.Listen("tcp", target.addr)
		if err != nil {
			closeOpened()
			return appListeners{}, fmt.Errorf("listen %s: %w", target.addr, err)
		}
		opened = append(opened, lis)
		*target.dst = lis
	}
	return result, nil
}
