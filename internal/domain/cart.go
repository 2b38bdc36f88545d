package domain

import (
	"math"
	"time"
)

// PriceLookup возвращает текущую цену товара; ok=false, если товара нет.
type PriceLookup func(productID int64) (priceMinor int64, ok bool)

// Cart — корзина пользователя. Не больше одной на пользователя.
//
// ItemCount и TotalPriceMinor — производные значения: их выставляет только
// Recalculate по текущему списку ProductIDs.
type Cart struct {
	UserID int64
	// ProductIDs хранит ссылки на товары в порядке добавления, дубликаты допустимы.
	ProductIDs      []int64
	ItemCount       int
	TotalPriceMinor int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CartSummary — краткое представление корзины: количество и сумма.
type CartSummary struct {
	UserID          int64
	ItemCount       int
	TotalPriceMinor int64
}

// NewCart создаёт пустую корзину пользователя.
func NewCart(userID int64, now time.Time) Cart {
	return Cart{
		UserID:     userID,
		ProductIDs: []int64{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Add добавляет ссылку на товар в конец списка. Агрегаты нужно пересчитать отдельно.
func (c *Cart) Add(productID int64) {
	c.ProductIDs = append(c.ProductIDs, productID)
}

// RemoveAll удаляет все вхождения товара и возвращает число удалённых ссылок.
func (c *Cart) RemoveAll(productID int64) int {
	kept := c.ProductIDs[:0]
	removed := 0
	for _, id := range c.ProductIDs {
		if id == productID {
			removed++
			continue
		}
		kept = append(kept, id)
	}
	c.ProductIDs = kept
	return removed
}

// Contains проверяет, есть ли в корзине ссылка на товар.
func (c *Cart) Contains(productID int64) bool {
	for _, id := range c.ProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}

// Recalculate пересчитывает агрегаты по текущим ценам товаров.
// Ссылки на отсутствующие товары в сумму не входят. Если сумма не помещается
// в int64, возвращает ErrCartTotalOverflow и оставляет агрегаты прежними.
func (c *Cart) Recalculate(prices PriceLookup) error {
	var total int64
	for _, id := range c.ProductIDs {
		price, ok := prices(id)
		if !ok {
			continue
		}
		next, ok := addPrice(total, price)
		if !ok {
			return ErrCartTotalOverflow
		}
		total = next
	}
	c.ItemCount = len(c.ProductIDs)
	c.TotalPriceMinor = total
	return nil
}

// ValidateInvariants сверяет агрегаты со ссылками и проверяет, что все товары существуют.
func (c *Cart) ValidateInvariants(prices PriceLookup) []error {
	var errs []error

	var (
		total    int64
		overflow bool
	)
	for _, id := range c.ProductIDs {
		price, ok := prices(id)
		if !ok {
			errs = append(errs, ErrDanglingReference)
			continue
		}
		if next, ok := addPrice(total, price); ok {
			total = next
		} else {
			overflow = true
		}
	}
	if overflow {
		errs = append(errs, ErrCartTotalOverflow)
	} else if c.ItemCount != len(c.ProductIDs) || c.TotalPriceMinor != total {
		errs = append(errs, ErrCartAggregateMismatch)
	}

	return errs
}

// addPrice складывает с проверкой переполнения int64.
func addPrice(total, price int64) (int64, bool) {
	if (price > 0 && total > math.MaxInt64-price) || (price < 0 && total < math.MinInt64-price) {
		return total, false
	}
	return total + price, true
}

// Summary возвращает количество позиций и сумму корзины.
func (c Cart) Summary() CartSummary {
	return CartSummary{
		UserID:          c.UserID,
		ItemCount:       c.ItemCount,
		TotalPriceMinor: c.TotalPriceMinor,
	}
}

// Clone возвращает копию корзины с независимым срезом ссылок.
func (c Cart) Clone() Cart {
	dst := c
	dst.ProductIDs = append([]int64{}, c.ProductIDs...)
	return dst
}
