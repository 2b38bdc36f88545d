package memory

import (
	"sort"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// Каскады выполняются в два шага: plan* только собирает зависимые сущности,
// apply* их удаляет. Оба шага вызываются под r.mu.Lock вместе с удалением
// владельца, поэтому частичный каскад снаружи не наблюдаем.

type userCascadePlan struct {
	userID     int64
	addressIDs []int64
	hasCart    bool
}

type productCascadePlan struct {
	productID int64
	// cartOwners — пользователи, в корзинах которых есть ссылка на товар.
	cartOwners []int64
}

func (r *shopRepositoryInMemory) planUserCascade(userID int64) userCascadePlan {
	plan := userCascadePlan{userID: userID}
	for id, address := range r.addresses {
		if address.UserID == userID {
			plan.addressIDs = append(plan.addressIDs, id)
		}
	}
	sort.Slice(plan.addressIDs, func(i, j int) bool { return plan.addressIDs[i] < plan.addressIDs[j] })
	_, plan.hasCart = r.carts[userID]
	return plan
}

func (r *shopRepositoryInMemory) applyUserCascade(plan userCascadePlan) domain.UserCascade {
	result := domain.UserCascade{AddressIDs: make([]int64, 0, len(plan.addressIDs))}
	for _, id := range plan.addressIDs {
		if _, ok := r.addresses[id]; !ok {
			continue
		}
		delete(r.addresses, id)
		result.AddressIDs = append(result.AddressIDs, id)
	}
	if plan.hasCart {
		if cart, ok := r.carts[plan.userID]; ok {
			delete(r.carts, plan.userID)
			result.Cart = &cart
		}
	}
	return result
}

func (r *shopRepositoryInMemory) planProductCascade(productID int64) productCascadePlan {
	plan := productCascadePlan{productID: productID}
	for userID, cart := range r.carts {
		if cart.Contains(productID) {
			plan.cartOwners = append(plan.cartOwners, userID)
		}
	}
	sort.Slice(plan.cartOwners, func(i, j int) bool { return plan.cartOwners[i] < plan.cartOwners[j] })
	return plan
}

// applyProductCascade вычищает товар из корзин и пересчитывает их агрегаты.
// Опустевшая корзина остаётся в хранилище.
func (r *shopRepositoryInMemory) applyProductCascade(plan productCascadePlan) domain.ProductCascade {
	result := domain.ProductCascade{Carts: make([]domain.Cart, 0, len(plan.cartOwners))}
	now := r.now()
	for _, userID := range plan.cartOwners {
		cart, ok := r.carts[userID]
		if !ok {
			continue
		}
		result.RemovedRefs += cart.RemoveAll(plan.productID)
		cart.UpdatedAt = now
		// Цены неотрицательны, поэтому сумма оставшихся ссылок не больше прежней
		// и переполниться не может.
		_ = r.recalculate(&cart)
		r.carts[userID] = cart
		result.Carts = append(result.Carts, cart.Clone())
	}
	return result
}
