package httpapi_test

import (
	"io"
	"net/http"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/shop/internal/service/idempotency"
	"github.com/vladislavdragonenkov/shop/internal/service/shop"
	"github.com/vladislavdragonenkov/shop/internal/storage/memory"
	"github.com/vladislavdragonenkov/shop/internal/transport/httpapi"
)

type recordedOutcomes struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *recordedOutcomes) RecordIdempotentRequest(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func TestIdempotencyReplaysResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := memory.NewShopRepository()
	recorder := &recordedOutcomes{}
	router := httpapi.NewRouter(httpapi.RouterConfig{
		Service:     shop.NewService(repo, shop.WithLogger(loggerForTests())),
		Logger:      loggerForTests(),
		Idempotency: idempotency.NewGuard(memory.NewIdempotencyRepository(), 0),
		Recorder:    recorder,
	})

	register := call{
		method:  http.MethodPost,
		path:    "/users",
		body:    `{"name":"ana","email":"ana@example.com","password":"secret"}`,
		headers: map[string]string{httpapi.HeaderIdempotencyKey: "signup-1"},
	}

	first := do(t, router, register)
	require.Equal(t, http.StatusCreated, first.Code)

	second := do(t, router, register)
	require.Equal(t, http.StatusCreated, second.Code)
	require.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	require.JSONEq(t, first.Body.String(), second.Body.String())
	require.Equal(t, 1, repo.Stats().Users)

	reused := register
	reused.body = `{"name":"bob","email":"bob@example.com","password":"secret"}`
	rec := do(t, router, reused)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "idempotency_key_reused", decode[errorBody](t, rec).Error.Code)

	without := register
	without.headers = nil
	rec = do(t, router, without)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, 2, repo.Stats().Users)

	require.Equal(t, []string{"proceed", "replayed", "mismatch"}, recorder.outcomes)
}

func TestIdempotencyReplaysErrors(t *testing.T) {
	router := newTestRouter(t)

	addToCart := call{
		method:  http.MethodPost,
		path:    "/carts/1/products/1",
		headers: map[string]string{httpapi.HeaderIdempotencyKey: "cart-1"},
	}

	first := do(t, router, addToCart)
	require.Equal(t, http.StatusNotFound, first.Code)

	do(t, router, call{method: http.MethodPost, path: "/users", body: `{"name":"ana","email":"ana@example.com","password":"secret"}`})
	do(t, router, call{method: http.MethodPost, path: "/products", body: `{"id":1,"price_minor":10}`})

	// Ключ уже связан с ответом 404, поэтому запрос не выполняется повторно.
	second := do(t, router, addToCart)
	require.Equal(t, http.StatusNotFound, second.Code)

	addToCart.headers = map[string]string{httpapi.HeaderIdempotencyKey: "cart-2"}
	third := do(t, router, addToCart)
	require.Equal(t, http.StatusOK, third.Code)
}

func TestIdempotencyReleasesKeyAfterPanic(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := &recordedOutcomes{}
	guard := idempotency.NewGuard(memory.NewIdempotencyRepository(), 0)

	var calls int
	router := gin.New()
	router.Use(gin.RecoveryWithWriter(io.Discard))
	router.POST("/explode", httpapi.Idempotency(guard, recorder, loggerForTests()), func(c *gin.Context) {
		calls++
		panic("boom")
	})

	explode := call{
		method:  http.MethodPost,
		path:    "/explode",
		body:    `{}`,
		headers: map[string]string{httpapi.HeaderIdempotencyKey: "explode-1"},
	}

	first := do(t, router, explode)
	require.Equal(t, http.StatusInternalServerError, first.Code)

	second := do(t, router, explode)
	require.Equal(t, http.StatusInternalServerError, second.Code)
	require.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	require.Equal(t, "internal", decode[errorBody](t, second).Error.Code)
	require.Equal(t, 1, calls)

	require.Equal(t, []string{"proceed", "replayed"}, recorder.outcomes)
}
