package main

import (
	"context"
	"log"
	"strings"

	_ "facturation/api/swagger" // swagger docs
	"facturation/internal/config"
	"facturation/internal/database"
	"facturation/internal/handler"
	"facturation/internal/logger"
	"facturation/internal/middleware"
	"facturation/internal/repository"
	"facturation/internal/service"
	"facturation/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Facturation API
// @version         1.0
// @description     Invoicing API for small businesses: invoices with automatic VAT computation, clients, categories, creation audit trail and statistics.
// @host            localhost:8080
// @BasePath        /
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration failed: %v", err)
	}

	logger.Init(cfg.Env)
	defer logger.Sync()

	db, err := database.NewConnection(cfg.DSN())
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	clientRepo := repository.NewClientRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	logRepo := repository.NewCreationLogRepository(db)
	txManager := repository.NewTransactionManager(db)

	clientService := service.NewClientService(clientRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	invoiceService := service.NewInvoiceService(invoiceRepo, clientRepo, categoryRepo, txManager)
	logService := service.NewCreationLogService(logRepo)
	statisticsService := service.NewStatisticsService(invoiceRepo)

	// Every successful invoice creation feeds the audit trail and the
	// realtime dashboard.
	invoiceService.Subscribe(logService)
	invoiceService.Subscribe(websocket.NewInvoiceNotifier(wsHub))

	// Make sure the fallback category exists before the first request
	if _, err := categoryService.EnsureFallback(context.Background()); err != nil {
		log.Printf("WARNING: failed to ensure fallback category: %v", err)
	}

	// Initialize Handlers
	clientHandler := handler.NewClientHandler(clientService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, logService)
	logHandler := handler.NewCreationLogHandler(logService)
	statisticsHandler := handler.NewStatisticsHandler(statisticsService)

	// Set up Gin Router
	router := gin.Default()
	router.Use(middleware.RequestLogging())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.CORSOrigins, ",")
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c)
	})

	// Register API Routes
	clientHandler.RegisterRoutes(router.Group(""))
	categoryHandler.RegisterRoutes(router.Group(""))
	invoiceHandler.RegisterRoutes(router.Group(""))
	logHandler.RegisterRoutes(router.Group(""))
	statisticsHandler.RegisterRoutes(router.Group(""))

	log.Printf("Server listening on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
