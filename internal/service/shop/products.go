package shop

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/events"
)

// ProductInput — товар с id, выбранным клиентом.
type ProductInput struct {
	ID          int64
	Name        string
	Description string
	PriceMinor  int64
}

// CreateProduct сохраняет товар. Занятый id даёт ErrProductAlreadyExists.
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (product domain.Product, err error) {
	started := time.Now()
	defer func() { s.finish(opCreateProduct, started, err, log.Fields{"product_id": in.ID}) }()

	if err = s.begin(ctx); err != nil {
		return domain.Product{}, err
	}

	product = domain.Product{
		ID:          in.ID,
		Name:        in.Name,
		Description: in.Description,
		PriceMinor:  in.PriceMinor,
	}
	if err = errors.Join(product.Validate()...); err != nil {
		return domain.Product{}, err
	}

	product, err = s.repo.CreateProduct(product)
	if err != nil {
		return domain.Product{}, err
	}

	s.logger.WithFields(log.Fields{"product_id": product.ID}).Info("product created")
	s.emit(events.AggregateProduct, product.ID, events.ProductCreated, map[string]any{
		"product_id":  product.ID,
		"name":        product.Name,
		"price_minor": product.PriceMinor,
	})
	s.afterMutation()
	return product, nil
}

// GetProduct возвращает товар по id.
func (s *Service) GetProduct(ctx context.Context, id int64) (product domain.Product, err error) {
	started := time.Now()
	defer func() { s.finish(opGetProduct, started, err, log.Fields{"product_id": id}) }()

	if err = s.begin(ctx); err != nil {
		return domain.Product{}, err
	}
	return s.repo.GetProduct(id)
}

// DeleteProduct удаляет товар и пересчитывает все корзины, где он был.
func (s *Service) DeleteProduct(ctx context.Context, id int64) (cascade domain.ProductCascade, err error) {
	started := time.Now()
	defer func() { s.finish(opDeleteProduct, started, err, log.Fields{"product_id": id}) }()

	if err = s.begin(ctx); err != nil {
		return domain.ProductCascade{}, err
	}

	cascade, err = s.repo.DeleteProduct(id)
	if err != nil {
		return domain.ProductCascade{}, err
	}

	s.logger.WithFields(log.Fields{
		"product_id":     id,
		"affected_carts": len(cascade.Carts),
		"removed_refs":   cascade.RemovedRefs,
	}).Info("product deleted")
	s.metrics.RecordProductCascade(cascade)

	s.emit(events.AggregateProduct, id, events.ProductDeleted, map[string]any{
		"product_id":     id,
		"removed_refs":   cascade.RemovedRefs,
		"affected_carts": len(cascade.Carts),
	})
	for _, cart := range cascade.Carts {
		s.emitCartUpdated(cart)
	}
	s.afterMutation()
	return cascade, nil
}
