package memory

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// shopRepositoryInMemory владеет всеми четырьмя коллекциями.
// Один RWMutex покрывает весь граф сущностей: каждая операция, включая каскады,
// выполняется целиком под ним и не чередуется с другими.
type shopRepositoryInMemory struct {
	mu sync.RWMutex

	users     map[int64]domain.User
	addresses map[int64]domain.Address
	products  map[int64]domain.Product
	carts     map[int64]domain.Cart

	userIDs    sequence
	addressIDs sequence

	now func() time.Time
}

// NewShopRepository возвращает пустое in-memory хранилище магазина.
func NewShopRepository() domain.ShopRepository {
	return newShopRepository()
}

func newShopRepository() *shopRepositoryInMemory {
	return &shopRepositoryInMemory{
		users:     make(map[int64]domain.User),
		addresses: make(map[int64]domain.Address),
		products:  make(map[int64]domain.Product),
		carts:     make(map[int64]domain.Cart),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateUser назначает id и сохраняет пользователя.
func (r *shopRepositoryInMemory) CreateUser(name, email, password string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user := domain.User{
		ID:        r.userIDs.next(),
		Name:      name,
		Email:     email,
		Password:  password,
		CreatedAt: r.now(),
	}
	r.users[user.ID] = user
	return user, nil
}

// GetUser возвращает пользователя или ErrUserNotFound.
func (r *shopRepositoryInMemory) GetUser(id int64) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

// FindUserByName сравнивает имя каждого пользователя и возвращает самого раннего из совпавших.
func (r *shopRepositoryInMemory) FindUserByName(name string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		found domain.User
		ok    bool
	)
	for _, user := range r.users {
		if user.Name != name {
			continue
		}
		if !ok || user.ID < found.ID {
			found, ok = user, true
		}
	}
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return found, nil
}

// ListUsers возвращает пользователей по возрастанию id (порядок регистрации).
func (r *shopRepositoryInMemory) ListUsers() ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		result = append(result, user)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// DeleteUser удаляет пользователя и запускает каскад по адресам и корзине.
func (r *shopRepositoryInMemory) DeleteUser(id int64) (domain.UserCascade, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return domain.UserCascade{}, domain.ErrUserNotFound
	}

	plan := r.planUserCascade(id)
	delete(r.users, id)
	cascade := r.applyUserCascade(plan)
	cascade.User = user
	return cascade, nil
}

// CreateAddress сохраняет адрес, если пользователь существует.
func (r *shopRepositoryInMemory) CreateAddress(userID int64, address domain.Address) (domain.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[userID]; !ok {
		return domain.Address{}, domain.ErrUserNotFound
	}

	address.ID = r.addressIDs.next()
	address.UserID = userID
	address.CreatedAt = r.now()
	r.addresses[address.ID] = address
	return address, nil
}

// DeleteAddress удаляет адрес без дальнейших каскадов.
func (r *shopRepositoryInMemory) DeleteAddress(id int64) (domain.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	address, ok := r.addresses[id]
	if !ok {
		return domain.Address{}, domain.ErrAddressNotFound
	}
	delete(r.addresses, id)
	return address, nil
}

// ListAddresses возвращает адреса пользователя в порядке создания.
func (r *shopRepositoryInMemory) ListAddresses(userID int64) ([]domain.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.users[userID]; !ok {
		return nil, domain.ErrUserNotFound
	}

	result := make([]domain.Address, 0)
	for _, address := range r.addresses {
		if address.UserID == userID {
			result = append(result, address)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// CreateProduct сохраняет товар, если его id ещё не занят.
func (r *shopRepositoryInMemory) CreateProduct(product domain.Product) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[product.ID]; exists {
		return domain.Product{}, domain.ErrProductAlreadyExists
	}
	product.CreatedAt = r.now()
	r.products[product.ID] = product
	return product, nil
}

// GetProduct возвращает товар или ErrProductNotFound.
func (r *shopRepositoryInMemory) GetProduct(id int64) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return product, nil
}

// DeleteProduct удаляет товар и вычищает ссылки на него из корзин.
func (r *shopRepositoryInMemory) DeleteProduct(id int64) (domain.ProductCascade, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return domain.ProductCascade{}, domain.ErrProductNotFound
	}

	plan := r.planProductCascade(id)
	delete(r.products, id)
	cascade := r.applyProductCascade(plan)
	cascade.Product = product
	return cascade, nil
}

// AddProductToCart добавляет ссылку на товар, создавая корзину при необходимости.
func (r *shopRepositoryInMemory) AddProductToCart(userID, productID int64) (domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[userID]; !ok {
		return domain.Cart{}, domain.ErrUserNotFound
	}
	if _, ok := r.products[productID]; !ok {
		return domain.Cart{}, domain.ErrProductNotFound
	}

	now := r.now()
	stored, ok := r.carts[userID]
	cart := stored.Clone()
	if !ok {
		cart = domain.NewCart(userID, now)
	}
	cart.Add(productID)
	// Корзина сохраняется только после успешного пересчёта.
	if err := r.recalculate(&cart); err != nil {
		return domain.Cart{}, err
	}
	cart.UpdatedAt = now
	r.carts[userID] = cart

	return cart.Clone(), nil
}

// GetCart возвращает копию корзины пользователя.
func (r *shopRepositoryInMemory) GetCart(userID int64) (domain.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[userID]
	if !ok {
		return domain.Cart{}, domain.ErrCartNotFound
	}
	return cart.Clone(), nil
}

// DeleteCart удаляет корзину; товары каталога не затрагиваются.
func (r *shopRepositoryInMemory) DeleteCart(userID int64) (domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[userID]
	if !ok {
		return domain.Cart{}, domain.ErrCartNotFound
	}
	delete(r.carts, userID)
	return cart, nil
}

// Stats возвращает размеры коллекций.
func (r *shopRepositoryInMemory) Stats() domain.StoreStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return domain.StoreStats{
		Users:     len(r.users),
		Addresses: len(r.addresses),
		Products:  len(r.products),
		Carts:     len(r.carts),
	}
}

// CheckConsistency проверяет, что адреса и корзины ссылаются на живых пользователей,
// а агрегаты корзин совпадают с пересчитанными.
func (r *shopRepositoryInMemory) CheckConsistency() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var errs []error
	for id, address := range r.addresses {
		if _, ok := r.users[address.UserID]; !ok {
			errs = append(errs, fmt.Errorf("address %d -> user %d: %w", id, address.UserID, domain.ErrDanglingReference))
		}
	}
	for userID, cart := range r.carts {
		if _, ok := r.users[userID]; !ok {
			errs = append(errs, fmt.Errorf("cart -> user %d: %w", userID, domain.ErrDanglingReference))
		}
		for _, err := range cart.ValidateInvariants(r.priceOf) {
			errs = append(errs, fmt.Errorf("cart of user %d: %w", userID, err))
		}
	}
	return errors.Join(errs...)
}

// priceOf — источник текущих цен для агрегации. Вызывается под блокировкой.
func (r *shopRepositoryInMemory) priceOf(productID int64) (int64, bool) {
	product, ok := r.products[productID]
	if !ok {
		return 0, false
	}
	return product.PriceMinor, true
}

// recalculate пересчитывает агрегаты корзины по текущим ценам.
func (r *shopRepositoryInMemory) recalculate(cart *domain.Cart) error {
	return cart.Recalculate(r.priceOf)
}

var _ domain.ShopRepository = (*shopRepositoryInMemory)(nil)
