package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"supply_order_back_end/internal/cache"
	"supply_order_back_end/internal/handlers/admin"
	"supply_order_back_end/internal/handlers/carts"
	"supply_order_back_end/internal/handlers/catalog"
	"supply_order_back_end/internal/handlers/orders"
	"supply_order_back_end/internal/middleware"
)

// Deps regroupe les handlers et les ressources partagées par les routes
type Deps struct {
	Catalog *catalog.Handler
	Carts   *carts.Handler
	Orders  *orders.Handler
	Admin   *admin.Handler

	JWTSecret   string
	CORSOrigins []string
	Redis       *redis.Client     // nil : pas de limite sur les connexions admin
	APILimiter  *cache.RateLimiter // nil : pas de limite globale
	Backend     string
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.Use(cors.New(corsConfig(d.CORSOrigins)))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "backend": d.Backend})
	})

	// WebSockets hors du limiteur : la connexion reste ouverte
	r.GET("/ws/orders", d.Orders.LedgerWebSocket)
	r.GET("/ws/carts/:cartId", d.Carts.CartWebSocket)

	api := r.Group("/api")
	api.Use(middleware.APIRateLimit(d.APILimiter))

	// Catalogue
	api.GET("/products", d.Catalog.ListProducts)
	api.GET("/products/search", d.Catalog.SearchProducts)
	api.GET("/employees", d.Catalog.ListEmployees)
	api.GET("/employees/:code", d.Catalog.GetEmployee)

	// Paniers
	cartsGroup := api.Group("/carts")
	{
		cartsGroup.POST("", d.Carts.CreateCart)
		cartsGroup.GET("/:cartId", d.Carts.GetCart)
		cartsGroup.DELETE("/:cartId", d.Carts.ClearCart)
		cartsGroup.POST("/:cartId/items", d.Carts.AddItem)
		cartsGroup.PATCH("/:cartId/items/:productId", d.Carts.UpdateItem)
		cartsGroup.POST("/:cartId/items/:productId/urgency", d.Carts.ToggleUrgency)
		cartsGroup.DELETE("/:cartId/items/:productId", d.Carts.RemoveItem)
		cartsGroup.POST("/:cartId/checkout", d.Carts.Checkout)
	}

	// Commandes et réception
	ordersGroup := api.Group("/orders")
	{
		ordersGroup.POST("", d.Orders.SubmitOrder)
		ordersGroup.GET("", d.Orders.ListOrders)
		ordersGroup.GET("/pending", d.Orders.PendingOrders)
		ordersGroup.POST("/scan", d.Orders.ScanOrder)
		ordersGroup.GET("/:id", d.Orders.GetOrder)
		ordersGroup.POST("/:id/receive", d.Orders.ReceiveOrder)
		ordersGroup.GET("/:id/qrcode", d.Orders.OrderQRCode)
		ordersGroup.GET("/:id/document", d.Orders.OrderDocument)
	}

	// Administration
	api.POST("/admin/login", middleware.LoginRateLimit(d.Redis), d.Admin.Login)

	adminGroup := api.Group("/admin")
	adminGroup.Use(middleware.AdminAuth(d.JWTSecret), middleware.RequireAdmin)
	{
		adminGroup.POST("/products", d.Admin.CreateProduct)
		adminGroup.PUT("/products/:id", d.Admin.UpdateProduct)
		adminGroup.POST("/products/image", d.Admin.UploadImage)
		adminGroup.GET("/audit", d.Admin.ListAudit)
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
