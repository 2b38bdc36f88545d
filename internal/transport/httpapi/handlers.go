package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/shop/internal/service/shop"
)

const welcomeMessage = "Seja bem vinda"

// Handler связывает HTTP-маршруты с операциями shop.Service.
type Handler struct {
	svc *shop.Service
}

func NewHandler(svc *shop.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Welcome(c *gin.Context) {
	RespondOK(c, welcomeMessage)
}

func (h *Handler) RegisterUser(c *gin.Context) {
	var req registerUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, codeBadRequest, err)
		return
	}

	user, err := h.svc.RegisterUser(c.Request.Context(), shop.RegisterUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toUserResponse(user))
}

func (h *Handler) GetUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	user, err := h.svc.GetUser(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, toUserResponse(user))
}

func (h *Handler) FindUserByName(c *gin.Context) {
	user, err := h.svc.FindUserByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, toUserResponse(user))
}

func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if _, err := h.svc.DeleteUser(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, okResponse)
}

func (h *Handler) ListAddresses(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	addresses, err := h.svc.ListAddresses(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	result := make([]addressResponse, 0, len(addresses))
	for _, address := range addresses {
		result = append(result, toAddressResponse(address))
	}
	RespondOK(c, result)
}

func (h *Handler) EmailsByDomain(c *gin.Context) {
	// Пустой домен допустим: он совпадает с адресами вида "a@".
	emailDomain, ok := c.GetQuery("domain")
	if !ok {
		RespondError(c, http.StatusBadRequest, codeBadRequest, errors.New("query parameter domain is required"))
		return
	}

	emails, err := h.svc.EmailsByDomain(c.Request.Context(), emailDomain)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, emails)
}

func (h *Handler) EmailDomains(c *gin.Context) {
	groups, err := h.svc.EmailDomains(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, groups)
}

func (h *Handler) CreateAddress(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, codeBadRequest, err)
		return
	}

	address, err := h.svc.CreateAddress(c.Request.Context(), userID, shop.AddressInput{
		Street:     req.Street,
		PostalCode: req.PostalCode,
		City:       req.City,
		State:      req.State,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAddressResponse(address))
}

func (h *Handler) DeleteAddress(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if _, err := h.svc.DeleteAddress(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, okResponse)
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, codeBadRequest, err)
		return
	}

	product, err := h.svc.CreateProduct(c.Request.Context(), shop.ProductInput{
		ID:          *req.ID,
		Name:        req.Name,
		Description: req.Description,
		PriceMinor:  *req.PriceMinor,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProductResponse(product))
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	product, err := h.svc.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, toProductResponse(product))
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	cascade, err := h.svc.DeleteProduct(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, deleteProductResponse{
		Status:        okResponse.Status,
		AffectedCarts: len(cascade.Carts),
		RemovedRefs:   cascade.RemovedRefs,
	})
}

func (h *Handler) AddToCart(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	productID, ok := pathID(c, "productId")
	if !ok {
		return
	}

	cart, err := h.svc.AddToCart(c.Request.Context(), userID, productID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, toCartResponse(cart))
}

func (h *Handler) GetCart(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	cart, err := h.svc.GetCart(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, toCartResponse(cart))
}

func (h *Handler) GetCartSummary(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	summary, err := h.svc.GetCartSummary(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, cartSummaryResponse{
		UserID:          summary.UserID,
		ItemCount:       summary.ItemCount,
		TotalPriceMinor: summary.TotalPriceMinor,
	})
}

func (h *Handler) DeleteCart(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	if _, err := h.svc.DeleteCart(c.Request.Context(), userID); err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, okResponse)
}

// pathID разбирает целочисленный параметр пути и отвечает 400, если он некорректен.
func pathID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		RespondError(c, http.StatusBadRequest, codeBadRequest, errors.New(name+" must be an integer, got "+strconv.Quote(raw)))
		return 0, false
	}
	return id, true
}
