package main

import (
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"edupay/internal/handlers"
	"edupay/internal/middleware"
	"edupay/internal/models"
	"edupay/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	// Initialize Database
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	db, err := services.InitDB(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := services.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Redis is optional; without it per-order locks stay in-process and
	// status lookups skip the cache.
	var cache *services.RedisCache
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cache, err = services.NewRedisCache(redisURL)
		if err != nil {
			log.Printf("Warning: Redis initialization failed: %v", err)
			cache = nil
		}
	} else {
		log.Println("Warning: REDIS_URL not set, running without cache")
	}

	// Gateways: the REST collect API is the default, Midtrans is
	// selected by gateway name.
	gateways := services.NewGatewayRegistry(services.NewCollectGateway())
	gateways.Register("midtrans", services.NewMidtransGateway())

	locker := services.NewOrderLocker(cache)
	collectionService := services.NewCollectionService(db, gateways)
	reconcileService := services.NewReconcileService(db, locker, cache)
	transactionService := services.NewTransactionService(db, cache)

	// Create Echo instance
	e := echo.New()
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.HTTPErrorHandler = middleware.JSONErrorHandler

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db)
	schoolHandler := handlers.NewSchoolHandler(db)
	paymentHandler := handlers.NewPaymentHandler(collectionService)
	webhookHandler := handlers.NewWebhookHandler(reconcileService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)

	api := e.Group("/api/v1")

	// Auth routes
	api.POST("/auth/signup", authHandler.Signup)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/auth/verify-token", authHandler.VerifyToken, middleware.RequireAuth())

	// School routes
	api.POST("/school/createSchool", schoolHandler.CreateSchool, middleware.RequireAuth(), middleware.RequireRole(models.RoleSchoolAdmin))
	api.GET("/school/getSchool/:id", schoolHandler.GetSchool)
	api.GET("/school/getAllSchool", schoolHandler.GetAllSchools)

	// Payment routes
	api.POST("/payment/createPayment", paymentHandler.CreatePayment, middleware.RequireAuth(), middleware.RequireRole(models.RoleTrustee))

	// Webhook route: called by the gateway, no auth
	api.POST("/webhook/processWebhook", webhookHandler.ProcessWebhook)

	// Transaction routes
	transactions := api.Group("/transactions", middleware.RequireAuth())
	transactions.GET("/getAllTransactions", transactionHandler.GetAllTransactions)
	transactions.GET("/getTransactionsBySchool/:schoolId", transactionHandler.GetTransactionsBySchool)
	transactions.GET("/transaction-status/:customOrderId", transactionHandler.TransactionStatus)

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Server is running",
		})
	})

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	e.Logger.Fatal(e.Start(":" + port))
}
