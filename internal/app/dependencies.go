package app

import (
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/shop/internal/health"
	"github.com/vladislavdragonenkov/shop/internal/metrics"
	"github.com/vladislavdragonenkov/shop/internal/service/idempotency"
	"github.com/vladislavdragonenkov/shop/internal/service/shop"
	"github.com/vladislavdragonenkov/shop/internal/storage/memory"
	"github.com/vladislavdragonenkov/shop/internal/version"
)

// Dependencies содержит все зависимости приложения.
type Dependencies struct {
	Repo domain.ShopRepository
	// OutboxRepo равен nil, если события отключены.
	OutboxRepo      domain.OutboxRepository
	IdempotencyRepo domain.IdempotencyRepository
	Metrics         *metrics.ShopMetrics
	Service         *shop.Service
	Guard           *idempotency.Guard
	Health          *healthcheck.Handler
	Logger          *log.Entry
}

// NewDependencies создаёт in-memory хранилища и сервисы поверх них.
// withEvents включает outbox: без паблишера события копились бы бесконечно.
func NewDependencies(cfg Config, registerer prometheus.Registerer, withEvents bool, logger *log.Entry) *Dependencies {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	deps := &Dependencies{
		Repo:            memory.NewShopRepository(),
		IdempotencyRepo: memory.NewIdempotencyRepository(),
		Metrics:         metrics.NewShopMetricsWithRegisterer(registerer),
		Health:          healthcheck.NewHandler(version.GetVersion()),
		Logger:          logger,
	}

	options := []shop.Option{
		shop.WithMetrics(deps.Metrics),
		shop.WithLogger(logger.WithField("layer", "service")),
	}
	if withEvents {
		deps.OutboxRepo = memory.NewOutboxRepository()
		options = append(options, shop.WithOutbox(deps.OutboxRepo))
	}

	deps.Service = shop.NewService(deps.Repo, options...)
	deps.Guard = idempotency.NewGuard(deps.IdempotencyRepo, cfg.IdempotencyTTL)

	deps.Health.RegisterChecker("store", healthcheck.NewStoreChecker(deps.Repo))
	if deps.OutboxRepo != nil {
		deps.Health.RegisterChecker("outbox", healthcheck.NewOutboxChecker(deps.OutboxRepo, cfg.OutboxMaxAge))
	}

	return deps
}
