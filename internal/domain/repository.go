package domain

// UserRepository описывает хранение пользователей.
type UserRepository interface {
	// CreateUser назначает следующий id и сохраняет пользователя. Валидация выполняется выше.
	CreateUser(name, email, password string) (User, error)
	// GetUser возвращает пользователя или ErrUserNotFound.
	GetUser(id int64) (User, error)
	// FindUserByName линейно ищет первого пользователя с точно совпадающим именем.
	FindUserByName(name string) (User, error)
	// ListUsers возвращает всех пользователей в порядке создания.
	ListUsers() ([]User, error)
	// DeleteUser удаляет пользователя вместе с его адресами и корзиной.
	DeleteUser(id int64) (UserCascade, error)
}

// AddressRepository описывает хранение адресов.
type AddressRepository interface {
	// CreateAddress привязывает адрес к существующему пользователю.
	CreateAddress(userID int64, address Address) (Address, error)
	// DeleteAddress удаляет только сам адрес.
	DeleteAddress(id int64) (Address, error)
	// ListAddresses возвращает адреса пользователя; ErrUserNotFound, если пользователя нет.
	ListAddresses(userID int64) ([]Address, error)
}

// ProductRepository описывает хранение каталога.
type ProductRepository interface {
	// CreateProduct сохраняет товар или возвращает ErrProductAlreadyExists.
	CreateProduct(product Product) (Product, error)
	GetProduct(id int64) (Product, error)
	// DeleteProduct удаляет товар и вычищает его из всех корзин.
	DeleteProduct(id int64) (ProductCascade, error)
}

// CartRepository описывает хранение корзин.
type CartRepository interface {
	// AddProductToCart создаёт корзину при первом добавлении и пересчитывает агрегаты.
	AddProductToCart(userID, productID int64) (Cart, error)
	GetCart(userID int64) (Cart, error)
	// DeleteCart удаляет корзину; товары не затрагиваются.
	DeleteCart(userID int64) (Cart, error)
}

// ShopRepository объединяет все коллекции: каскады пересекают границы сущностей,
// поэтому одна реализация владеет всем графом и сериализует операции над ним.
type ShopRepository interface {
	UserRepository
	AddressRepository
	ProductRepository
	CartRepository

	// Stats возвращает текущие размеры коллекций.
	Stats() StoreStats
	// CheckConsistency проверяет ссылочную целостность и агрегаты всех корзин.
	CheckConsistency() error
}

// UserCascade описывает, что было удалено вместе с пользователем.
type UserCascade struct {
	User       User
	AddressIDs []int64
	// Cart заполнена, только если у пользователя была корзина.
	Cart *Cart
}

// ProductCascade описывает корзины, из которых был вычищен удалённый товар.
type ProductCascade struct {
	Product Product
	// Carts — состояния затронутых корзин после пересчёта агрегатов.
	Carts []Cart
	// RemovedRefs — общее число удалённых ссылок на товар.
	RemovedRefs int
}

// StoreStats — размеры коллекций хранилища.
type StoreStats struct {
	Users     int
	Addresses int
	Products  int
	Carts     int
}
