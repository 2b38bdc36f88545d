package domain

import (
	"errors"
	"fmt"
)

// Базовые виды ошибок. Конкретные ошибки оборачивают их через %w,
// поэтому транспорт может сопоставлять ответы по виду, а не по тексту.
var (
	// ErrNotFound — сущность с указанным идентификатором отсутствует.
	ErrNotFound = errors.New("not found")
	// ErrConflict — попытка создать сущность с уже занятым идентификатором.
	ErrConflict = errors.New("already exists")
	// ErrValidation — значение поля нарушает бизнес-правила.
	ErrValidation = errors.New("validation failed")
)

var (
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)
	ErrAddressNotFound = fmt.Errorf("address %w", ErrNotFound)
	ErrProductNotFound = fmt.Errorf("product %w", ErrNotFound)
	ErrCartNotFound    = fmt.Errorf("cart %w", ErrNotFound)

	// ErrProductAlreadyExists возвращается при повторном использовании id товара.
	ErrProductAlreadyExists = fmt.Errorf("product %w", ErrConflict)

	// Ошибка, если email не содержит ровно один символ @.
	ErrEmailInvalid = fmt.Errorf("%w: email must contain exactly one @", ErrValidation)
	// Ошибка слишком короткого пароля.
	ErrPasswordTooShort = fmt.Errorf("%w: password must be at least %d characters", ErrValidation, MinPasswordLength)
	// Ошибка отрицательной цены товара.
	ErrPriceNegative = fmt.Errorf("%w: price_minor must be non-negative", ErrValidation)
	// ErrCartTotalOverflow — сумма корзины не помещается в int64.
	ErrCartTotalOverflow = fmt.Errorf("%w: cart total exceeds the int64 range", ErrValidation)

	// ErrCartAggregateMismatch сигнализирует о рассинхронизации item_count/total_price с позициями корзины.
	ErrCartAggregateMismatch = errors.New("cart aggregates do not match product references")
	// ErrDanglingReference — в хранилище осталась ссылка на удалённую сущность.
	ErrDanglingReference = errors.New("dangling reference")

	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// IsNotFound проверяет, относится ли ошибка к отсутствующей сущности.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict проверяет, является ли ошибка конфликтом идентификаторов.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsValidation проверяет, является ли ошибка нарушением правил валидации.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
