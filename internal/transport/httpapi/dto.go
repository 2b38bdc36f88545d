package httpapi

import (
	"time"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

type registerUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type addressRequest struct {
	Street     string `json:"street"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	State      string `json:"state"`
}

// Указатели отличают отсутствующее поле от нулевого значения.
type productRequest struct {
	ID          *int64 `json:"id" binding:"required"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceMinor  *int64 `json:"price_minor" binding:"required"`
}

// userResponse не содержит пароль.
type userResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type addressResponse struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Street     string    `json:"street"`
	PostalCode string    `json:"postal_code"`
	City       string    `json:"city"`
	State      string    `json:"state"`
	CreatedAt  time.Time `json:"created_at"`
}

type productResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PriceMinor  int64     `json:"price_minor"`
	CreatedAt   time.Time `json:"created_at"`
}

type cartResponse struct {
	UserID          int64     `json:"user_id"`
	ProductIDs      []int64   `json:"product_ids"`
	ItemCount       int       `json:"item_count"`
	TotalPriceMinor int64     `json:"total_price_minor"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type cartSummaryResponse struct {
	UserID          int64 `json:"user_id"`
	ItemCount       int   `json:"item_count"`
	TotalPriceMinor int64 `json:"total_price_minor"`
}

type deleteProductResponse struct {
	Status        string `json:"status"`
	AffectedCarts int    `json:"affected_carts"`
	RemovedRefs   int    `json:"removed_refs"`
}

func toUserResponse(user domain.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

func toAddressResponse(address domain.Address) addressResponse {
	return addressResponse{
		ID:         address.ID,
		UserID:     address.UserID,
		Street:     address.Street,
		PostalCode: address.PostalCode,
		City:       address.City,
		State:      address.State,
		CreatedAt:  address.CreatedAt,
	}
}

func toProductResponse(product domain.Product) productResponse {
	return productResponse{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		PriceMinor:  product.PriceMinor,
		CreatedAt:   product.CreatedAt,
	}
}

func toCartResponse(cart domain.Cart) cartResponse {
	productIDs := cart.ProductIDs
	if productIDs == nil {
		productIDs = []int64{}
	}
	return cartResponse{
		UserID:          cart.UserID,
		ProductIDs:      productIDs,
		ItemCount:       cart.ItemCount,
		TotalPriceMinor: cart.TotalPriceMinor,
		CreatedAt:       cart.CreatedAt,
		UpdatedAt:       cart.UpdatedAt,
	}
}
