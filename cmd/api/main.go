package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"folio/internal/config"
	"folio/internal/database"
	"folio/internal/handlers"
	"folio/internal/ledger"
	"folio/internal/logger"
	"folio/internal/middleware"
	"folio/internal/services"
	"folio/internal/validator"
)

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Register custom request validators
	validator.Register()

	// Create database manager
	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Initialize the ledger engine and services
	db := dbManager.DB()
	engine := ledger.NewEngine(db, appConfig.CompanionDateWindow)
	userService := services.NewUserService(db)
	marketDataService := services.NewMarketDataService(db, appConfig.SnapshotTTL)
	portfolioService := services.NewPortfolioService(db, engine, marketDataService)
	institutionService := services.NewInstitutionService(db)
	assetService := services.NewAssetService(db)
	transactionService := services.NewTransactionService(db, engine, marketDataService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	portfolioHandler := handlers.NewPortfolioHandler(portfolioService)
	institutionHandler := handlers.NewInstitutionHandler(institutionService)
	assetHandler := handlers.NewAssetHandler(assetService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	marketDataHandler := handlers.NewMarketDataHandler(marketDataService)

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

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.RefreshToken)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Portfolio routes
	portfolios := protected.Group("/portfolios")
	portfolios.POST("", portfolioHandler.CreatePortfolio)
	portfolios.GET("", portfolioHandler.GetPortfolios)
	portfolios.GET("/:id", portfolioHandler.GetPortfolio)
	portfolios.PUT("/:id", portfolioHandler.UpdatePortfolio)
	portfolios.DELETE("/:id", portfolioHandler.DeletePortfolio)
	portfolios.GET("/:id/holdings", portfolioHandler.GetHoldings)
	portfolios.GET("/:id/cash-balances", portfolioHandler.GetCashBalances)
	portfolios.POST("/:id/recompute", portfolioHandler.RecomputeTotals)
	portfolios.POST("/:id/assets", assetHandler.CreateAsset)
	portfolios.GET("/:id/assets", assetHandler.GetAssets)
	portfolios.POST("/:id/transactions", transactionHandler.RecordTransaction)
	portfolios.POST("/:id/deposit-transfers", transactionHandler.RecordDepositTransfer)
	portfolios.GET("/:id/transactions", transactionHandler.GetTransactions)

	// Institution routes
	institutions := protected.Group("/institutions")
	institutions.POST("", institutionHandler.CreateInstitution)
	institutions.GET("", institutionHandler.GetInstitutions)
	institutions.GET("/:id", institutionHandler.GetInstitution)
	institutions.PUT("/:id", institutionHandler.UpdateInstitution)
	institutions.DELETE("/:id", institutionHandler.DeleteInstitution)

	// Asset routes
	assets := protected.Group("/assets")
	assets.GET("/:id", assetHandler.GetAsset)
	assets.PUT("/:id", assetHandler.UpdateAsset)
	assets.PUT("/:id/surrender-value", assetHandler.UpdateSurrenderValue)
	assets.POST("/:id/prices", middleware.RateLimit(5, 20), marketDataHandler.RecordAssetPrice)

	// Transaction routes
	transactions := protected.Group("/transactions")
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	// Market data routes
	marketData := protected.Group("/market-data")
	marketData.PUT("/exchange-rates", middleware.RateLimit(5, 20), marketDataHandler.UpsertExchangeRate)
	marketData.GET("/exchange-rates", marketDataHandler.GetExchangeRates)

	// Start the server
	addr := ":" + appConfig.Port
	logger.Get().Infow("starting server", "addr", addr)
	return router.Run(addr)
}
