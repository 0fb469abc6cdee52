package main

import (
	"log"
	"os"

	_ "docflow/api/swagger" // swagger docs
	"docflow/internal/database"
	"docflow/internal/handler"
	"docflow/internal/middleware"
	"docflow/internal/repository"
	"docflow/internal/service"
	"docflow/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title           Document Workflow API
// @version         1.0
// @description     Multi-stage document approval, derived storage aggregation, projects and file archive.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	logger, err := newLogger()
	if err != nil {
		log.Fatalf("Logger init failed: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		logger.Fatal("Database connection failed", zap.Error(err))
	}
	logger.Info("Connected to PostgreSQL")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	refreshRepo := repository.NewRefreshTokenRepository(db)
	productRepo := repository.NewProductRepository(db)
	docRepo := repository.NewDocumentRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	ccRepo := repository.NewCostCenterRepository(db)
	fileRepo := repository.NewFileRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	userService := service.NewUserService(userRepo, refreshRepo)
	storageService := service.NewStorageService(productRepo, docRepo, logger)
	productService := service.NewProductService(txManager, productRepo, docRepo, auditRepo, storageService, logger)
	documentService := service.NewDocumentService(txManager, docRepo, userRepo, ccRepo, auditRepo, wsHub)
	projectService := service.NewProjectService(txManager, projectRepo, userRepo, auditRepo, wsHub)
	ccService := service.NewCostCenterService(ccRepo)
	fileService := service.NewFileService(txManager, fileRepo, userRepo, auditRepo, service.NewNoopFileStore(logger), logger)
	auditService := service.NewAuditService(auditRepo)

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	productHandler := handler.NewProductHandler(productService)
	documentHandler := handler.NewDocumentHandler(documentService)
	projectHandler := handler.NewProjectHandler(projectService)
	ccHandler := handler.NewCostCenterHandler(ccService)
	fileHandler := handler.NewFileHandler(fileService)
	storageHandler := handler.NewStorageHandler(storageService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"} // Frontend URL
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
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	api := router.Group("/api")
	userHandler.RegisterRoutes(api)
	productHandler.RegisterRoutes(api)
	documentHandler.RegisterRoutes(api)
	projectHandler.RegisterRoutes(api)
	ccHandler.RegisterRoutes(api)
	fileHandler.RegisterRoutes(api)
	storageHandler.RegisterRoutes(api)
	auditHandler.RegisterRoutes(api)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info("Server listening", zap.String("port", port))
	if err := router.Run(":" + port); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func newLogger() (*zap.Logger, error) {
	if os.Getenv("GIN_MODE") == "release" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
