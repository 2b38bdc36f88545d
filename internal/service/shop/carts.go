package shop

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/events"
)

// AddToCart добавляет товар в корзину пользователя, создавая её при первом добавлении.
func (s *Service) AddToCart(ctx context.Context, userID, productID int64) (cart domain.Cart, err error) {
	started := time.Now()
	defer func() {
		s.finish(opAddToCart, started, err, log.Fields{"user_id": userID, "product_id": productID})
	}()

	if err = s.begin(ctx); err != nil {
		return domain.Cart{}, err
	}

	cart, err = s.repo.AddProductToCart(userID, productID)
	if err != nil {
		return domain.Cart{}, err
	}

	s.logger.WithFields(log.Fields{
		"user_id":     userID,
		"product_id":  productID,
		"item_count":  cart.ItemCount,
		"total_price": cart.TotalPriceMinor,
	}).Debug("product added to cart")
	s.emitCartUpdated(cart)
	s.afterMutation()
	return cart, nil
}

// GetCart возвращает корзину целиком.
func (s *Service) GetCart(ctx context.Context, userID int64) (cart domain.Cart, err error) {
	started := time.Now()
	defer func() { s.finish(opGetCart, started, err, log.Fields{"user_id": userID}) }()

	if err = s.begin(ctx); err != nil {
		return domain.Cart{}, err
	}
	return s.repo.GetCart(userID)
}

// GetCartSummary возвращает только количество позиций и сумму.
func (s *Service) GetCartSummary(ctx context.Context, userID int64) (summary domain.CartSummary, err error) {
	started := time.Now()
	defer func() { s.finish(opGetCartSummary, started, err, log.Fields{"user_id": userID}) }()

	if err = s.begin(ctx); err != nil {
		return domain.CartSummary{}, err
	}

	cart, err := s.repo.GetCart(userID)
	if err != nil {
		return domain.CartSummary{}, err
	}
	return cart.Summary(), nil
}

// DeleteCart удаляет корзину пользователя. Товары каталога остаются.
func (s *Service) DeleteCart(ctx context.Context, userID int64) (cart domain.Cart, err error) {
	started := time.Now()
	defer func() { s.finish(opDeleteCart, started, err, log.Fields{"user_id": userID}) }()

	if err = s.begin(ctx); err != nil {
		return domain.Cart{}, err
	}

	cart, err = s.repo.DeleteCart(userID)
	if err != nil {
		return domain.Cart{}, err
	}

	s.emit(events.AggregateCart, userID, events.CartDeleted, map[string]any{
		"user_id": userID,
		"cascade": false,
	})
	s.afterMutation()
	return cart, nil
}

func (s *Service) emitCartUpdated(cart domain.Cart) {
	s.emit(events.AggregateCart, cart.UserID, events.CartUpdated, map[string]any{
		"user_id":           cart.UserID,
		"product_ids":       cart.ProductIDs,
		"item_count":        cart.ItemCount,
		"total_price_minor": cart.TotalPriceMinor,
	})
}
