package server

import (
	"net/http"
	"time"

	"github.com/fekuna/storefront-service/internal/auth"
	categoryhandler "github.com/fekuna/storefront-service/internal/category/handler"
	discounthandler "github.com/fekuna/storefront-service/internal/discount/handler"
	inventoryhandler "github.com/fekuna/storefront-service/internal/inventory/handler"
	"github.com/fekuna/storefront-service/internal/middleware"
	"github.com/fekuna/storefront-service/internal/model"
	orderhandler "github.com/fekuna/storefront-service/internal/order/handler"
	producthandler "github.com/fekuna/storefront-service/internal/product/handler"
	userhandler "github.com/fekuna/storefront-service/internal/user/handler"
	"github.com/fekuna/storefront-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Users      *userhandler.UserHandler
	Categories *categoryhandler.CategoryHandler
	Products   *producthandler.ProductHandler
	Inventory  *inventoryhandler.InventoryHandler
	Discounts  *discounthandler.DiscountHandler
	Orders     *orderhandler.OrderHandler
}

// OrderRateLimit throttles order placement per client IP. A nil Limiter
// disables it.
type OrderRateLimit struct {
	Limiter middleware.Limiter
	Limit   int
	Window  time.Duration
}

func NewRouter(h Handlers, tm *auth.TokenManager, rl OrderRateLimit, log logger.ZapLogger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log), middleware.SecurityHeaders())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "ok"})
	})

	authn := auth.Authenticate(tm)
	admin := []gin.HandlerFunc{authn, auth.RequireRole(model.RoleAdmin)}
	user := []gin.HandlerFunc{authn, auth.RequireRole(model.RoleUser)}

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.Users.Register)
	authGroup.POST("/login", h.Users.Login)

	users := api.Group("/users", user...)
	users.GET("/me", h.Users.GetProfile)
	users.PUT("/me", h.Users.UpdateProfile)

	categories := api.Group("/categories")
	categories.GET("", h.Categories.ListCategories)
	categories.GET("/:id", h.Categories.GetCategory)
	categories.POST("", append(admin, h.Categories.CreateCategory)...)
	categories.PUT("/:id", append(admin, h.Categories.UpdateCategory)...)
	categories.DELETE("/:id", append(admin, h.Categories.DeleteCategory)...)

	products := api.Group("/products")
	products.GET("", h.Products.ListProducts)
	products.GET("/:id", h.Products.GetProduct)
	products.POST("", append(admin, h.Products.CreateProduct)...)
	products.PUT("/:id", append(admin, h.Products.UpdateProduct)...)
	products.DELETE("/:id", append(admin, h.Products.DeleteProduct)...)

	adminGroup := api.Group("/admin", admin...)
	adminGroup.GET("/categories", h.Categories.ListAllCategories)
	adminGroup.GET("/products", h.Products.ListAllProducts)

	inventory := api.Group("/inventory", admin...)
	inventory.GET("/movements", h.Inventory.ListMovements)
	inventory.GET("/low-stock", h.Inventory.ListLowStock)
	inventory.POST("/adjust", h.Inventory.AdjustStock)

	discounts := api.Group("/discounts", admin...)
	discounts.GET("", h.Discounts.ListDiscounts)
	discounts.GET("/:id", h.Discounts.GetDiscount)
	discounts.POST("", h.Discounts.CreateDiscount)
	discounts.PUT("/:id", h.Discounts.UpdateDiscount)
	discounts.DELETE("/:id", h.Discounts.DeleteDiscount)

	orders := api.Group("/orders")
	orders.POST("",
		middleware.RateLimit(rl.Limiter, "orders", rl.Limit, rl.Window, log),
		auth.OptionalAuthenticate(tm),
		h.Orders.PlaceOrder,
	)
	orders.POST("/check-discount", append(user, h.Orders.CheckDiscount)...)
	orders.GET("/track/:orderNumber", h.Orders.TrackOrder)
	orders.GET("/my", append(user, h.Orders.MyOrders)...)
	orders.GET("", append(admin, h.Orders.ListOrders)...)
	orders.GET("/admin/stats", append(admin, h.Orders.Stats)...)
	orders.GET("/:id", authn, h.Orders.GetOrder)
	orders.PATCH("/:id/status", append(admin, h.Orders.UpdateStatus)...)
	orders.PUT("/:id", append(admin, h.Orders.UpdateOrder)...)
	orders.DELETE("/:id", append(admin, h.Orders.DeleteOrder)...)

	return r
}
