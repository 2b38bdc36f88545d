package domain

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// MinPasswordLength — минимальная длина пароля в символах.
const MinPasswordLength = 3

// User — зарегистрированный покупатель. ID назначает хранилище.
type User struct {
	ID        int64
	Name      string
	Email     string
	Password  string
	CreatedAt time.Time
}

// Validate проверяет email и пароль. Проверки выполняются до любой мутации хранилища.
func (u *User) Validate() []error {
	var errs []error

	if _, ok := EmailDomain(u.Email); !ok {
		errs = append(errs, ErrEmailInvalid)
	}
	if utf8.RuneCountInString(u.Password) < MinPasswordLength {
		errs = append(errs, ErrPasswordTooShort)
	}

	return errs
}

// EmailDomain возвращает часть email после @.
// ok=false, если символ @ встречается не ровно один раз.
func EmailDomain(email string) (string, bool) {
	if strings.Count(email, "@") != 1 {
		return "", false
	}
	_, domain, _ := strings.Cut(email, "@")
	return domain, true
}

// EmailsByDomain отбирает email пользователей, домен которых в точности равен domain.
// Пустой результат — не ошибка.
func EmailsByDomain(users []User, domain string) []string {
	result := make([]string, 0)
	for _, user := range users {
		if d, ok := EmailDomain(user.Email); ok && d == domain {
			result = append(result, user.Email)
		}
	}
	return result
}

// GroupEmailsByDomain группирует email всех пользователей по домену.
// Email внутри группы отсортированы для детерминированного ответа.
func GroupEmailsByDomain(users []User) map[string][]string {
	groups := make(map[string][]string)
	for _, user := range users {
		d, ok := EmailDomain(user.Email)
		if !ok {
			continue
		}
		groups[d] = append(groups[d], user.Email)
	}
	for d := range groups {
		sort.Strings(groups[d])
	}
	return groups
}
