package health

import (
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// StoreInspector — часть хранилища, нужная для проверки целостности.
type StoreInspector interface {
	Stats() domain.StoreStats
	CheckConsistency() error
}

// StoreChecker сообщает unhealthy, если в графе сущностей есть висячие ссылки
// или агрегаты корзин разошлись с товарами.
type StoreChecker struct {
	store StoreInspector
}

// NewStoreChecker создаёт проверку хранилища.
func NewStoreChecker(store StoreInspector) *StoreChecker {
	return &StoreChecker{store: store}
}

// Check выполняет проверку
func (c *StoreChecker) Check() Check {
	start := time.Now()
	err := c.store.CheckConsistency()
	stats := c.store.Stats()

	check := Check{
		Name:       "store",
		Status:     StatusHealthy,
		Message:    fmt.Sprintf("users=%d addresses=%d products=%d carts=%d", stats.Users, stats.Addresses, stats.Products, stats.Carts),
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		check.Status = StatusUnhealthy
		check.Message = err.Error()
	}
	return check
}

// OutboxStatsSource отдаёт состояние backlog outbox.
type OutboxStatsSource interface {
	Stats() (domain.OutboxStats, error)
}

// OutboxChecker переводит сервис в degraded, когда события застревают в outbox дольше maxAge.
type OutboxChecker struct {
	outbox OutboxStatsSource
	maxAge time.Duration
	now    func() time.Time
}

// NewOutboxChecker создаёт проверку outbox backlog.
func NewOutboxChecker(outbox OutboxStatsSource, maxAge time.Duration) *OutboxChecker {
	return &OutboxChecker{
		outbox: outbox,
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Check выполняет проверку
func (c *OutboxChecker) Check() Check {
	start := time.Now()
	stats, err := c.outbox.Stats()
	check := Check{Name: "outbox", Status: StatusHealthy}

	switch {
	case err != nil:
		check.Status = StatusUnhealthy
		check.Message = err.Error()
	case stats.PendingCount > 0 && c.maxAge > 0 && c.now().Sub(stats.OldestPendingAt) > c.maxAge:
		check.Status = StatusDegraded
		check.Message = fmt.Sprintf("%d pending, oldest since %s", stats.PendingCount, stats.OldestPendingAt.Format(time.RFC3339))
	default:
		check.Message = fmt.Sprintf("%d pending", stats.PendingCount)
	}

	check.DurationMs = time.Since(start).Milliseconds()
	return check
}
