package main

import (
	"fmt"
	"net/http"
	"os"

	"saldo/internal/config"
	"saldo/internal/database"
	"saldo/internal/handlers"
	"saldo/internal/logger"
	"saldo/internal/middleware"
	"saldo/internal/services"
	"saldo/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "saldo/internal/docs" // Import swagger docs
)

// @title           Saldo API
// @version         1.0
// @description     Saldo is a personal finance API for tracking income and expense transactions, monthly summaries, and per-user preferences.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Register custom request validators
	validator.Register()

	// Connect to the database
	dbManager, err := database.Shared()
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	transactionService := services.NewTransactionService(db)
	settingsService := services.NewSettingsService(db)
	exportService := services.NewExportService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, exportService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/signin", authHandler.SignIn)
	auth.POST("/refresh", authHandler.RefreshToken)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.Profile)

	// User-scoped routes; every handler verifies the path owner matches
	// the authenticated identity before touching the store.
	users := protected.Group("/users/:userId")
	users.POST("/transaction", transactionHandler.Create)
	users.GET("/transaction", transactionHandler.ListCurrentMonth)
	users.GET("/transaction/:transactionId", transactionHandler.Get)
	users.PUT("/transaction/:transactionId", transactionHandler.Update)
	users.DELETE("/transaction/:transactionId", transactionHandler.Delete)
	users.GET("/transactions", transactionHandler.List)
	users.GET("/transactions/export", transactionHandler.Export)
	users.GET("/dashboard", transactionHandler.Dashboard)
	users.GET("/settings", settingsHandler.Get)
	users.POST("/settings", settingsHandler.Update)
	users.PUT("/settings", settingsHandler.Update)

	log.Infof("Starting Saldo backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
