package shop

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/events"
)

// RegisterUserInput — данные для регистрации пользователя.
type RegisterUserInput struct {
	Name     string
	Email    string
	Password string
}

// RegisterUser проверяет email и пароль и сохраняет пользователя с новым id.
// Все ошибки валидации возвращаются вместе, хранилище при этом не меняется.
func (s *Service) RegisterUser(ctx context.Context, in RegisterUserInput) (user domain.User, err error) {
	started := time.Now()
	defer func() { s.finish(opRegisterUser, started, err, registrationFields(in.Email)) }()

	if err = s.begin(ctx); err != nil {
		return domain.User{}, err
	}

	candidate := domain.User{Name: in.Name, Email: in.Email, Password: in.Password}
	if err = errors.Join(candidate.Validate()...); err != nil {
		return domain.User{}, err
	}

	user, err = s.repo.CreateUser(in.Name, in.Email, in.Password)
	if err != nil {
		return domain.User{}, err
	}

	s.logger.WithFields(log.Fields{"user_id": user.ID}).Info("user registered")
	s.emit(events.AggregateUser, user.ID, events.UserRegistered, map[string]any{
		"user_id":    user.ID,
		"name":       user.Name,
		"email":      user.Email,
		"created_at": user.CreatedAt,
	})
	s.afterMutation()
	return user, nil
}

// registrationFields не пишет email целиком, в лог попадает только домен.
func registrationFields(email string) log.Fields {
	if emailDomain, ok := domain.EmailDomain(email); ok {
		return log.Fields{"email_domain": emailDomain}
	}
	return nil
}

// GetUser возвращает пользователя по id.
func (s *Service) GetUser(ctx context.Context, id int64) (user domain.User, err error) {
	started := time.Now()
	defer func() { s.finish(opGetUser, started, err, log.Fields{"user_id": id}) }()

	if err = s.begin(ctx); err != nil {
		return domain.User{}, err
	}
	return s.repo.GetUser(id)
}

// FindUserByName ищет пользователя по точному совпадению имени.
// При нескольких совпадениях возвращается зарегистрированный раньше всех.
func (s *Service) FindUserByName(ctx context.Context, name string) (user domain.User, err error) {
	started := time.Now()
	defer func() { s.finish(opFindUserByName, started, err, log.Fields{"name": name}) }()

	if err = s.begin(ctx); err != nil {
		return domain.User{}, err
	}
	return s.repo.FindUserByName(name)
}

// DeleteUser удаляет пользователя вместе с адресами и корзиной.
func (s *Service) DeleteUser(ctx context.Context, id int64) (cascade domain.UserCascade, err error) {
	started := time.Now()
	defer func() { s.finish(opDeleteUser, started, err, log.Fields{"user_id": id}) }()

	if err = s.begin(ctx); err != nil {
		return domain.UserCascade{}, err
	}

	cascade, err = s.repo.DeleteUser(id)
	if err != nil {
		return domain.UserCascade{}, err
	}

	s.logger.WithFields(log.Fields{
		"user_id":           id,
		"removed_addresses": len(cascade.AddressIDs),
		"removed_cart":      cascade.Cart != nil,
	}).Info("user deleted")
	s.metrics.RecordUserCascade(cascade)

	s.emit(events.AggregateUser, id, events.UserDeleted, map[string]any{
		"user_id":      id,
		"address_ids":  cascade.AddressIDs,
		"cart_removed": cascade.Cart != nil,
	})
	for _, addressID := range cascade.AddressIDs {
		s.emit(events.AggregateAddress, addressID, events.AddressDeleted, map[string]any{
			"address_id": addressID,
			"user_id":    id,
			"cascade":    true,
		})
	}
	if cascade.Cart != nil {
		s.emit(events.AggregateCart, id, events.CartDeleted, map[string]any{
			"user_id": id,
			"cascade": true,
		})
	}
	s.afterMutation()
	return cascade, nil
}

// EmailsByDomain возвращает email пользователей с доменом emailDomain.
// Пустой список — нормальный результат.
func (s *Service) EmailsByDomain(ctx context.Context, emailDomain string) (emails []string, err error) {
	started := time.Now()
	defer func() { s.finish(opEmailsByDomain, started, err, log.Fields{"domain": emailDomain}) }()

	if err = s.begin(ctx); err != nil {
		return nil, err
	}

	users, err := s.repo.ListUsers()
	if err != nil {
		return nil, err
	}
	return domain.EmailsByDomain(users, emailDomain), nil
}

// EmailDomains группирует email всех пользователей по домену.
func (s *Service) EmailDomains(ctx context.Context) (groups map[string][]string, err error) {
	started := time.Now()
	defer func() { s.finish(opEmailDomains, started, err, nil) }()

	if err = s.begin(ctx); err != nil {
		return nil, err
	}

	users, err := s.repo.ListUsers()
	if err != nil {
		return nil, err
	}
	return domain.GroupEmailsByDomain(users), nil
}
