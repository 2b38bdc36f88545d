package metrics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// Значения label result для операций.
const (
	ResultOK         = "ok"
	ResultNotFound   = "not_found"
	ResultConflict   = "conflict"
	ResultValidation = "validation"
	ResultCanceled   = "canceled"
	ResultError      = "error"
)

// ShopMetrics содержит метрики магазина и его фоновых воркеров.
// Методы безопасны для nil-получателя: без метрик сервис работает как обычно.
type ShopMetrics struct {
	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	cascadeDeleted    *prometheus.CounterVec
	entities          *prometheus.GaugeVec

	outboxPublishAttempts  *prometheus.CounterVec
	outboxPendingRecords   prometheus.Gauge
	outboxOldestPendingAge prometheus.Gauge

	idempotencyRequests       *prometheus.CounterVec
	idempotencyCleanupRuns    *prometheus.CounterVec
	idempotencyCleanupDeleted prometheus.Counter
	idempotencyCleanupLast    prometheus.Gauge
}

// NewShopMetrics регистрирует метрики в prometheus.DefaultRegisterer.
func NewShopMetrics() *ShopMetrics {
	return NewShopMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewShopMetricsWithRegisterer регистрирует метрики в переданном registerer.
// Повторная регистрация возвращает уже существующие коллекторы.
func NewShopMetricsWithRegisterer(registerer prometheus.Registerer) *ShopMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &ShopMetrics{
		operations: register(registerer, "shop_operations_total", prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shop_operations_total",
			Help: "Total number of shop operations grouped by operation and result.",
		}, []string{"op", "result"})),
		operationDuration: register(registerer, "shop_operation_duration_seconds", prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shop_operation_duration_seconds",
			Help:    "Duration of shop operations in seconds.",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"op"})),
		cascadeDeleted: register(registerer, "shop_cascade_removed_total", prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shop_cascade_removed_total",
			Help: "Total number of dependents removed by cascading deletes grouped by kind.",
		}, []string{"kind"})),
		entities: register(registerer, "shop_entities", prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "shop_entities",
			Help: "Current number of stored entities grouped by kind.",
		}, []string{"kind"})),
		outboxPublishAttempts: register(registerer, "shop_outbox_publish_attempts_total", prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shop_outbox_publish_attempts_total",
			Help: "Total number of outbox publish attempts grouped by result.",
		}, []string{"result"})),
		outboxPendingRecords: register(registerer, "shop_outbox_pending_records", prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "shop_outbox_pending_records",
			Help: "Current number of pending records in outbox.",
		})),
		outboxOldestPendingAge: register(registerer, "shop_outbox_oldest_pending_age_seconds", prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "shop_outbox_oldest_pending_age_seconds",
			Help: "Age in seconds of the oldest pending outbox record.",
		})),
		idempotencyRequests: register(registerer, "shop_idempotency_requests_total", prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shop_idempotency_requests_total",
			Help: "Total number of requests with Idempotency-Key grouped by outcome.",
		}, []string{"outcome"})),
		idempotencyCleanupRuns: register(registerer, "shop_idempotency_cleanup_runs_total", prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shop_idempotency_cleanup_runs_total",
			Help: "Total number of idempotency cleanup runs grouped by result.",
		}, []string{"result"})),
		idempotencyCleanupDeleted: register(registerer, "shop_idempotency_cleanup_deleted_total", prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shop_idempotency_cleanup_deleted_total",
			Help: "Total number of deleted expired idempotency records.",
		})),
		idempotencyCleanupLast: register(registerer, "shop_idempotency_cleanup_last_deleted", prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "shop_idempotency_cleanup_last_deleted",
			Help: "Number of deleted records during the last cleanup run.",
		})),
	}
}

// register регистрирует коллектор; при AlreadyRegisteredError возвращает существующий того же типа.
func register[C prometheus.Collector](registerer prometheus.Registerer, name string, collector C) C {
	if err := registerer.Register(collector); err != nil {
		var alreadyRegistered prometheus.AlreadyRegisteredError
		if errors.As(err, &alreadyRegistered) {
			existing, ok := alreadyRegistered.ExistingCollector.(C)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", name))
			}
			return existing
		}
		panic(fmt.Sprintf("register collector %q: %v", name, err))
	}
	return collector
}

// ResultOf сводит ошибку операции к значению label result.
func ResultOf(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ResultCanceled
	case domain.IsNotFound(err):
		return ResultNotFound
	case domain.IsConflict(err):
		return ResultConflict
	case domain.IsValidation(err):
		return ResultValidation
	default:
		return ResultError
	}
}

// RecordOperation учитывает завершение операции и её длительность.
func (m *ShopMetrics) RecordOperation(op string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, ResultOf(err)).Inc()
	m.operationDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordUserCascade учитывает адреса и корзину, удалённые вместе с пользователем.
func (m *ShopMetrics) RecordUserCascade(cascade domain.UserCascade) {
	if m == nil {
		return
	}
	m.cascadeDeleted.WithLabelValues("address").Add(float64(len(cascade.AddressIDs)))
	if cascade.Cart != nil {
		m.cascadeDeleted.WithLabelValues("cart").Inc()
	}
}

// RecordProductCascade учитывает ссылки, вычищенные из корзин при удалении товара.
func (m *ShopMetrics) RecordProductCascade(cascade domain.ProductCascade) {
	if m == nil {
		return
	}
	m.cascadeDeleted.WithLabelValues("cart_item").Add(float64(cascade.RemovedRefs))
}

// SetEntities обновляет gauge размеров коллекций.
func (m *ShopMetrics) SetEntities(stats domain.StoreStats) {
	if m == nil {
		return
	}
	m.entities.WithLabelValues("user").Set(float64(stats.Users))
	m.entities.WithLabelValues("address").Set(float64(stats.Addresses))
	m.entities.WithLabelValues("product").Set(float64(stats.Products))
	m.entities.WithLabelValues("cart").Set(float64(stats.Carts))
}

// RecordOutboxPublish учитывает попытку публикации из outbox.
func (m *ShopMetrics) RecordOutboxPublish(result string) {
	if m == nil {
		return
	}
	m.outboxPublishAttempts.WithLabelValues(result).Inc()
}

// SetOutboxBacklog обновляет размер backlog и возраст самой старой записи.
func (m *ShopMetrics) SetOutboxBacklog(pending int, oldestAge time.Duration) {
	if m == nil {
		return
	}
	if oldestAge < 0 {
		oldestAge = 0
	}
	m.outboxPendingRecords.Set(float64(pending))
	m.outboxOldestPendingAge.Set(oldestAge.Seconds())
}

// RecordIdempotentRequest учитывает исход запроса с Idempotency-Key.
func (m *ShopMetrics) RecordIdempotentRequest(outcome string) {
	if m == nil {
		return
	}
	m.idempotencyRequests.WithLabelValues(outcome).Inc()
}

// RecordIdempotencyCleanup учитывает цикл очистки просроченных ключей.
func (m *ShopMetrics) RecordIdempotencyCleanup(err error, deleted int) {
	if m == nil {
		return
	}
	if err != nil {
		m.idempotencyCleanupRuns.WithLabelValues("error").Inc()
		return
	}
	m.idempotencyCleanupRuns.WithLabelValues("ok").Inc()
	m.idempotencyCleanupLast.Set(float64(deleted))
	m.idempotencyCleanupDeleted.Add(float64(deleted))
}
