package shop

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/events"
)

// AddressInput — поля нового адреса.
type AddressInput struct {
	Street     string
	PostalCode string
	City       string
	State      string
}

// CreateAddress привязывает адрес к существующему пользователю.
func (s *Service) CreateAddress(ctx context.Context, userID int64, in AddressInput) (address domain.Address, err error) {
	started := time.Now()
	defer func() { s.finish(opCreateAddress, started, err, log.Fields{"user_id": userID}) }()

	if err = s.begin(ctx); err != nil {
		return domain.Address{}, err
	}

	address, err = s.repo.CreateAddress(userID, domain.Address{
		Street:     in.Street,
		PostalCode: in.PostalCode,
		City:       in.City,
		State:      in.State,
	})
	if err != nil {
		return domain.Address{}, err
	}

	s.logger.WithFields(log.Fields{"user_id": userID, "address_id": address.ID}).Debug("address created")
	s.emit(events.AggregateAddress, address.ID, events.AddressCreated, map[string]any{
		"address_id":  address.ID,
		"user_id":     userID,
		"postal_code": address.PostalCode,
		"city":        address.City,
		"state":       address.State,
	})
	s.afterMutation()
	return address, nil
}

// DeleteAddress удаляет адрес. Пользователь не затрагивается.
func (s *Service) DeleteAddress(ctx context.Context, id int64) (address domain.Address, err error) {
	started := time.Now()
	defer func() { s.finish(opDeleteAddress, started, err, log.Fields{"address_id": id}) }()

	if err = s.begin(ctx); err != nil {
		return domain.Address{}, err
	}

	address, err = s.repo.DeleteAddress(id)
	if err != nil {
		return domain.Address{}, err
	}

	s.emit(events.AggregateAddress, id, events.AddressDeleted, map[string]any{
		"address_id": id,
		"user_id":    address.UserID,
		"cascade":    false,
	})
	s.afterMutation()
	return address, nil
}

// ListAddresses возвращает адреса пользователя; пустой список не ошибка.
func (s *Service) ListAddresses(ctx context.Context, userID int64) (addresses []domain.Address, err error) {
	started := time.Now()
	defer func() { s.finish(opListAddresses, started, err, log.Fields{"user_id": userID}) }()

	if err = s.begin(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListAddresses(userID)
}
