package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamipapa/store-backend/internal/handlers"
	"github.com/mamipapa/store-backend/internal/middleware"
)

// Handlers collects everything the router needs.
type Handlers struct {
	Auth        *handlers.AuthHandler
	User        *handlers.UserHandler
	Product     *handlers.ProductHandler
	Order       *handlers.OrderHandler
	Payment     *handlers.PaymentHandler
	Webhook     *handlers.PaymentWebhookHandler
	RateLimiter *middleware.RateLimiter
}

// Register wires all API routes onto the router
func Register(router *gin.Engine, h Handlers) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Auth routes with tighter rate limiting
	authGroup := router.Group("/api/auth")
	authGroup.Use(h.RateLimiter.Middleware())
	{
		authGroup.POST("/signup", h.Auth.Signup)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
	}

	// Public storefront routes
	api := router.Group("/api")
	{
		api.GET("/products", h.Product.List)
		api.GET("/products/:slug", h.Product.GetBySlug)

		api.POST("/orders", h.Order.Create)
		api.GET("/orders/:id", h.Order.Get)

		api.POST("/payments/collect", h.Payment.Collect)
		api.GET("/payments/services", h.Payment.ListServices)
		api.GET("/payments/:reference", h.Payment.GetByReference)

		// Gateway callback, authenticated by obscurity of the callback
		// URL configured at the gateway.
		api.POST("/payments/webhook", h.Webhook.Notify)
	}

	// Routes for signed-in customers
	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/me", h.User.Me)
		protected.GET("/me/orders", h.Order.ListMine)
	}

	// Admin routes
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.POST("/products", h.Product.Create)
		admin.PUT("/products/:id", h.Product.Update)
		admin.DELETE("/products/:id", h.Product.Delete)

		admin.GET("/orders", h.Order.List)
		admin.POST("/orders/:id/cancel", h.Order.Cancel)

		admin.GET("/payments", h.Payment.List)
		admin.GET("/users", h.User.List)
	}
}
