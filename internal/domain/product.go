package domain

import "time"

// Product — товар каталога. ID задаёт клиент и он должен быть уникален.
type Product struct {
	ID          int64
	Name        string
	Description string
	// PriceMinor — цена в минимальных денежных единицах (например, копейки).
	PriceMinor int64
	CreatedAt  time.Time
}

// Validate проверяет поля товара.
func (p *Product) Validate() []error {
	var errs []error

	if p.PriceMinor < 0 {
		errs = append(errs, ErrPriceNegative)
	}

	return errs
}
