// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/ecommerce-core/internal/interfaces/http/handlers"
	"github.com/your-org/ecommerce-core/internal/interfaces/http/middleware"
)

// Handlers groups the endpoint handlers mounted by SetupRoutes
type Handlers struct {
	Auth      *handlers.AuthHandler
	Profile   *handlers.UserProfileHandler
	UserAdmin *handlers.UserAdminHandler
	Cart      *handlers.CartHandler
	Order     *handlers.OrderHandler
	Payment   *handlers.PaymentHandler
	Product   *handlers.ProductHandler
}

// SetupRoutes mounts every API route on rg
func SetupRoutes(rg *gin.RouterGroup, h Handlers, tokens middleware.TokenValidator) {
	SetupAuthRoutes(rg, h)
	SetupUserRoutes(rg, h, tokens)
	SetupProductRoutes(rg, h)
	SetupCartRoutes(rg, h, tokens)
	SetupOrderRoutes(rg, h, tokens)
	SetupAdminRoutes(rg, h, tokens)
}

// SetupAuthRoutes sets up registration and sign-in routes
func SetupAuthRoutes(rg *gin.RouterGroup, h Handlers) {
	rg.POST("/users", h.Auth.Register)
	rg.POST("/auth/token", h.Auth.Login)
}

// SetupUserRoutes sets up the caller's profile routes
func SetupUserRoutes(rg *gin.RouterGroup, h Handlers, tokens middleware.TokenValidator) {
	profile := rg.Group("/profile")
	profile.Use(middleware.AuthMiddleware(tokens))
	{
		profile.GET("", h.Profile.GetProfile)
		profile.PUT("", h.Profile.UpdateProfile)
	}
}

// SetupProductRoutes sets up public catalog routes
func SetupProductRoutes(rg *gin.RouterGroup, h Handlers) {
	products := rg.Group("/products")
	{
		products.GET("/:slug", h.Product.GetProductBySlug)
	}
}

// SetupCartRoutes sets up cart routes; they work for guest sessions and
// authenticated users alike
func SetupCartRoutes(rg *gin.RouterGroup, h Handlers, tokens middleware.TokenValidator) {
	cart := rg.Group("/cart")
	cart.Use(middleware.OptionalAuthMiddleware(tokens))
	{
		cart.GET("", h.Cart.GetCart)
		cart.POST("/items", h.Cart.AddToCart)
		cart.DELETE("/items/:product_id", h.Cart.RemoveFromCart)
		cart.DELETE("", h.Cart.ClearCart)
	}
}

// SetupOrderRoutes sets up order and payment routes
func SetupOrderRoutes(rg *gin.RouterGroup, h Handlers, tokens middleware.TokenValidator) {
	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(tokens))
	{
		orders.POST("", h.Order.CreateOrder)
		orders.GET("", h.Order.GetOrders)
		orders.GET("/slug/:slug", h.Order.GetOrder)
		orders.GET("/:id", h.Order.GetOrder)
		orders.GET("/:id/total", h.Order.GetOrderTotal)
		orders.POST("/:id/complete", h.Order.CompleteOrder)
		orders.POST("/:id/payments", h.Payment.RecordPayment)
		orders.GET("/:id/payments", h.Payment.GetPayment)
	}
}

// SetupAdminRoutes sets up admin routes
func SetupAdminRoutes(rg *gin.RouterGroup, h Handlers, tokens middleware.TokenValidator) {
	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(tokens))
	admin.Use(middleware.AdminMiddleware())
	{
		products := admin.Group("/products")
		{
			products.POST("", h.Product.AdminCreateProduct)
			products.POST("/:id/restock", h.Product.AdminRestock)
			products.GET("/:id/stock", h.Product.AdminStockLevel)
		}

		users := admin.Group("/users")
		{
			users.POST("/:id/score", h.UserAdmin.CreditScore)
			users.PUT("/:id/discount-percent", h.UserAdmin.SetDiscountPercent)
		}
	}
}
