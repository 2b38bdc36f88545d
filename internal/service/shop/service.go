// Package shop реализует бизнес-правила магазина поверх ShopRepository:
// валидацию, проверку предусловий, события в outbox и метрики операций.
package shop

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/events"
	"github.com/vladislavdragonenkov/shop/internal/metrics"
)

// Имена операций для метрик и логов.
const (
	opRegisterUser   = "register_user"
	opGetUser        = "get_user"
	opFindUserByName = "find_user_by_name"
	opDeleteUser     = "delete_user"
	opListAddresses  = "list_addresses"
	opEmailsByDomain = "emails_by_domain"
	opEmailDomains   = "email_domains"
	opCreateAddress  = "create_address"
	opDeleteAddress  = "delete_address"
	opCreateProduct  = "create_product"
	opGetProduct     = "get_product"
	opDeleteProduct  = "delete_product"
	opAddToCart      = "add_to_cart"
	opGetCart        = "get_cart"
	opGetCartSummary = "get_cart_summary"
	opDeleteCart     = "delete_cart"
)

// Service — точка входа во все операции магазина.
type Service struct {
	repo    domain.ShopRepository
	outbox  domain.OutboxRepository
	metrics *metrics.ShopMetrics
	logger  *log.Entry
}

// Option настраивает Service.
type Option func(*Service)

// WithOutbox включает запись доменных событий. Без outbox события не создаются.
func WithOutbox(outbox domain.OutboxRepository) Option {
	return func(s *Service) {
		s.outbox = outbox
	}
}

// WithMetrics задаёт метрики операций.
func WithMetrics(m *metrics.ShopMetrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLogger задаёт logger сервиса.
func WithLogger(logger *log.Entry) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService создаёт сервис поверх хранилища.
func NewService(repo domain.ShopRepository, options ...Option) *Service {
	s := &Service{repo: repo}
	for _, option := range options {
		option(s)
	}
	if s.logger == nil {
		s.logger = log.New().WithField("component", "shop-service")
	}
	return s
}

// begin проверяет, не отменён ли запрос до начала операции.
// Начатая мутация ctx больше не смотрит и всегда доводится до конца.
func (s *Service) begin(ctx context.Context) error {
	return ctx.Err()
}

// finish записывает метрики и логирует отказ операции.
func (s *Service) finish(op string, started time.Time, err error, fields log.Fields) {
	s.metrics.RecordOperation(op, err, time.Since(started))
	if err == nil {
		return
	}

	entry := s.logger.WithError(err).WithField("op", op)
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	switch {
	case domain.IsNotFound(err), domain.IsConflict(err), domain.IsValidation(err):
		entry.Info("operation rejected")
	default:
		entry.Warn("operation failed")
	}
}

// afterMutation обновляет gauge размеров коллекций.
func (s *Service) afterMutation() {
	if s.metrics == nil {
		return
	}
	s.metrics.SetEntities(s.repo.Stats())
}

// emit ставит событие в outbox. Мутация к этому моменту уже применена,
// поэтому ошибка только логируется.
func (s *Service) emit(aggregateType string, aggregateID int64, eventType events.EventType, fields map[string]any) {
	if s.outbox == nil {
		return
	}

	msg, err := events.NewMessage(aggregateType, aggregateID, eventType, fields)
	if err == nil {
		_, err = s.outbox.Enqueue(msg)
	}
	if err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"event_type":   eventType,
			"aggregate_id": aggregateID,
		}).Warn("failed to enqueue domain event")
	}
}
