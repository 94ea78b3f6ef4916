package main

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/handlers"
	"backend/internal/logger"
	"backend/internal/metrics"
	"backend/internal/middleware"
	"backend/internal/models"
	"backend/internal/stream"
)

func main() {
	config.Load()
	logger.Init(config.AppEnv.LogLevel)

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		logger.Fatal().Err(err).Msg("mongodb connect failed")
	}

	db := client.Database(config.AppEnv.DBName)
	logger.Info().Str("db", db.Name()).Msg("mongodb connected")

	if err := database.EnsureProductIndexes(db); err != nil {
		logger.Warn().Err(err).Msg("product index warning")
	}
	if err := database.EnsureCartIndexes(db); err != nil {
		logger.Warn().Err(err).Msg("cart index warning")
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		logger.Warn().Err(err).Msg("order index warning")
	}
	if err := database.EnsureNotificationIndexes(db); err != nil {
		logger.Warn().Err(err).Msg("notification index warning")
	}
	if err := database.EnsureUserIndexes(db); err != nil {
		logger.Warn().Err(err).Msg("user index warning")
	}

	hub := stream.NewHub()

	pricing := handlers.Pricing{
		ShippingFee:     config.AppEnv.ShippingFee,
		FreeShippingMin: config.AppEnv.FreeShippingMin,
		TaxRate:         config.AppEnv.TaxRate,
	}

	secret := config.AppEnv.JWTSecret

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.GinMiddleware())
	r.Use(metrics.GinMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     config.AppEnv.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public catalog
	r.GET("/products", handlers.GetProducts(db))
	r.GET("/products/:sku", handlers.GetProduct(db))
	r.GET("/categories", handlers.GetCategories(db))

	// Payment gateway callback (shared-secret header, no bearer token)
	r.POST("/payments/webhook", handlers.PaymentWebhook(db, hub, config.AppEnv.WebhookSecret))

	// SSE stream authenticates via ?token= because EventSource cannot set
	// headers.
	r.GET("/notifications/stream",
		middleware.StreamAuth(secret),
		handlers.NotificationStream(hub, config.AppEnv.StreamHeartbeat),
	)

	authed := r.Group("/")
	authed.Use(middleware.AuthGuard(secret))
	{
		authed.POST("/orders", handlers.CreateOrder(db, hub, pricing))
		authed.GET("/orders", handlers.GetOrders(db))
		authed.GET("/orders/:id", handlers.GetOrder(db))
		authed.POST("/orders/:id/cancel", handlers.CancelOrder(db, hub))

		authed.GET("/cart", handlers.GetCart(db))
		authed.PUT("/cart", handlers.ReplaceCart(db))
		authed.DELETE("/cart", handlers.ClearCart(db))
		authed.POST("/cart/items", handlers.AddCartItem(db))
		authed.PATCH("/cart/items/:key/quantity", handlers.UpdateCartItemQuantity(db))
		authed.DELETE("/cart/items/:key", handlers.RemoveCartItem(db))

		authed.GET("/notifications/my", handlers.GetMyNotifications(db))
		authed.PATCH("/notifications/:id/read", handlers.MarkNotificationRead(db))
	}

	// Status transitions are open to managers and admins.
	r.PATCH("/orders/:id/status",
		middleware.AuthGuard(secret, models.RoleManager, models.RoleAdmin),
		handlers.UpdateOrderStatus(db, hub),
	)

	staff := r.Group("/admin")
	staff.Use(middleware.AuthGuard(secret, models.RoleManager, models.RoleAdmin))
	{
		staff.PATCH("/orders/:id", handlers.UpdateOrderStatus(db, hub))
	}

	admin := r.Group("/admin")
	admin.Use(middleware.AuthGuard(secret, models.RoleAdmin))
	{
		admin.GET("/products", handlers.GetAllProducts(db))
		admin.POST("/products", handlers.CreateProduct(db))
		admin.PUT("/products/:sku", handlers.UpdateProduct(db))
		admin.DELETE("/products/:sku", handlers.DeleteProduct(db))

		admin.GET("/users", handlers.GetUsers(db))
		admin.POST("/users", handlers.CreateUser(db))
		admin.PATCH("/users/:id", handlers.UpdateUser(db))
	}

	if err := r.Run(":" + config.AppEnv.Port); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
