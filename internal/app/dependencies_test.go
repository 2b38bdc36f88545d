package app

import (
	"context"
	"io"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/shop/internal/health"
	"github.com/vladislavdragonenkov/shop/internal/service/shop"
)

func loggerForTests() *log.Entry {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return logger.WithField("test", "app")
}

func TestNewDependencies_WithoutEvents(t *testing.T) {
	deps := NewDependencies(DefaultConfig(), prometheus.NewRegistry(), false, loggerForTests())

	if deps.Repo == nil || deps.IdempotencyRepo == nil || deps.Service == nil || deps.Guard == nil {
		t.Fatalf("dependencies must be initialized: %+v", deps)
	}
	if deps.OutboxRepo != nil {
		t.Fatal("outbox must be nil when events are disabled")
	}

	response := deps.Health.Evaluate()
	if response.Status != healthcheck.StatusHealthy {
		t.Fatalf("expected healthy, got %+v", response)
	}
	if _, ok := response.Checks["store"]; !ok {
		t.Fatal("expected store checker to be registered")
	}
	if _, ok := response.Checks["outbox"]; ok {
		t.Fatal("outbox checker must not be registered without events")
	}
}

func TestNewDependencies_WithEventsRecordsOutbox(t *testing.T) {
	deps := NewDependencies(DefaultConfig(), prometheus.NewRegistry(), true, loggerForTests())

	if deps.OutboxRepo == nil {
		t.Fatal("expected outbox repo when events are enabled")
	}

	_, err := deps.Service.RegisterUser(context.Background(), shop.RegisterUserInput{
		Name:     "ana",
		Email:    "ana@example.com",
		Password: "secret",
	})
	if err != nil {
		t.Fatalf("register user: %v", err)
	}

	stats, err := deps.OutboxRepo.Stats()
	if err != nil {
		t.Fatalf("outbox stats: %v", err)
	}
	if stats.PendingCount != 1 {
		t.Fatalf("expected 1 pending event, got %d", stats.PendingCount)
	}

	if _, ok := deps.Health.Evaluate().Checks["outbox"]; !ok {
		t.Fatal("expected outbox checker to be registered")
	}
}

func TestNewDependencies_SharedRegistererReusesCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()

	first := NewDependencies(DefaultConfig(), registry, false, loggerForTests())
	second := NewDependencies(DefaultConfig(), registry, false, loggerForTests())

	if first.Metrics == nil || second.Metrics == nil {
		t.Fatal("metrics must be initialized")
	}
}
