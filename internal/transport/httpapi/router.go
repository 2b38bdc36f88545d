// Package httpapi — HTTP-транспорт магазина на gin.
package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/service/idempotency"
	"github.com/vladislavdragonenkov/shop/internal/service/shop"
)

// RouterConfig задаёт зависимости HTTP API.
type RouterConfig struct {
	Service *shop.Service
	Logger  *log.Entry
	// Idempotency включает обработку Idempotency-Key; nil отключает её.
	Idempotency *idempotency.Guard
	Recorder    IdempotencyRecorder
	// CORSOrigins — разрешённые origin; пустой список разрешает любые.
	CORSOrigins []string
}

// NewRouter собирает gin.Engine со всеми маршрутами магазина.
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = log.WithField("component", "http-api")
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger), corsMiddleware(cfg.CORSOrigins))

	h := NewHandler(cfg.Service)
	idem := Idempotency(cfg.Idempotency, cfg.Recorder, logger)

	router.GET("/", h.Welcome)

	users := router.Group("/users")
	{
		users.POST("", idem, h.RegisterUser)
		users.GET("/emails", h.EmailsByDomain)
		users.GET("/domains", h.EmailDomains)
		users.GET("/by-name/:name", h.FindUserByName)
		users.GET("/:id", h.GetUser)
		users.DELETE("/:id", h.DeleteUser)
		users.GET("/:id/addresses", h.ListAddresses)
		users.POST("/:id/addresses", idem, h.CreateAddress)
	}

	router.DELETE("/addresses/:id", h.DeleteAddress)

	products := router.Group("/products")
	{
		products.POST("", idem, h.CreateProduct)
		products.GET("/:id", h.GetProduct)
		products.DELETE("/:id", h.DeleteProduct)
	}

	carts := router.Group("/carts/:userId")
	{
		carts.GET("", h.GetCart)
		carts.GET("/summary", h.GetCartSummary)
		carts.DELETE("", h.DeleteCart)
		carts.POST("/products/:productId", idem, h.AddToCart)
	}

	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "X-Requested-With", HeaderIdempotencyKey},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

func requestLogger(logger *log.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		entry := logger.WithFields(log.Fields{
			"method":      c.Request.Method,
			"path":        path,
			"status":      status,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		switch {
		case status >= 500:
			entry.Error("HTTP request")
		case status >= 400:
			entry.Warn("HTTP request")
		default:
			entry.Debug("HTTP request")
		}
	}
}
