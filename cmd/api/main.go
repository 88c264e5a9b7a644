package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"splitledger/internal/config"
	"splitledger/internal/database"
	"splitledger/internal/handlers"
	"splitledger/internal/logger"
	"splitledger/internal/middleware"
	"splitledger/internal/services"
	"splitledger/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "splitledger/internal/docs" // Import swagger docs
)

// @title           SplitLedger API
// @version         1.0
// @description     SplitLedger is a shared budget tracker: multi-member budgets with role-based access, income/expense entries, and atomic transfers between budgets.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(appConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	validator.Register()

	tokens := middleware.NewTokenManager(appConfig)

	// Services
	db := dbManager.DB()
	authzService := services.NewAuthzService(db)
	userService := services.NewUserService(db)
	notificationService := services.NewNotificationService(db)
	auditService := services.NewAuditService(db)
	budgetService := services.NewBudgetService(db, authzService)
	memberService := services.NewMemberService(db, authzService, userService, notificationService)
	categoryService := services.NewCategoryService(db, authzService)
	entryService := services.NewEntryService(db, authzService)
	transferService := services.NewTransferService(db, authzService)
	commentService := services.NewCommentService(db, authzService, notificationService)
	cleanupService := services.NewCleanupService(db)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, tokens)
	budgetHandler := handlers.NewBudgetHandler(budgetService, auditService)
	memberHandler := handlers.NewMemberHandler(memberService, auditService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	entryHandler := handlers.NewEntryHandler(entryService)
	transferHandler := handlers.NewTransferHandler(transferService, auditService)
	commentHandler := handlers.NewCommentHandler(commentService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	startCleanupLoop(cleanupService, appConfig.CleanupRetentionDays)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
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
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(tokens.Middleware())

	// User profile
	protected.GET("/profile", authHandler.Me)
	protected.PUT("/profile", authHandler.UpdateProfile)

	// Budget routes
	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)
	budgets.GET("/:id/balance", budgetHandler.GetBalance)

	// Membership routes
	budgets.GET("/:id/members", memberHandler.ListMembers)
	budgets.POST("/:id/members", memberHandler.InviteMember)
	budgets.PUT("/:id/members/:userId", memberHandler.UpdateMemberRole)
	budgets.DELETE("/:id/members/:userId", memberHandler.RemoveMember)

	// Category routes
	budgets.GET("/:id/categories", categoryHandler.ListCategories)
	budgets.POST("/:id/categories", categoryHandler.CreateCategory)
	budgets.PUT("/:id/categories/:categoryId", categoryHandler.UpdateCategory)
	budgets.DELETE("/:id/categories/:categoryId", categoryHandler.DeleteCategory)

	// Entry routes
	budgets.GET("/:id/entries", entryHandler.ListEntries)
	budgets.POST("/:id/entries", entryHandler.CreateEntry)
	budgets.GET("/:id/summary/monthly", entryHandler.MonthlySummary)
	budgets.GET("/:id/entries/:entryId", entryHandler.GetEntry)
	budgets.PUT("/:id/entries/:entryId", entryHandler.UpdateEntry)
	budgets.DELETE("/:id/entries/:entryId", entryHandler.DeleteEntry)

	// Transfer routes
	protected.POST("/transfers", transferHandler.CreateTransfer)
	budgets.GET("/:id/transfers", transferHandler.ListBudgetTransfers)

	// Comment routes
	budgets.GET("/:id/entries/:entryId/comments", commentHandler.ListComments)
	budgets.POST("/:id/entries/:entryId/comments", commentHandler.CreateComment)
	protected.PUT("/comments/:commentId", commentHandler.UpdateComment)
	protected.DELETE("/comments/:commentId", commentHandler.DeleteComment)

	// Notification routes
	protected.GET("/notifications", notificationHandler.ListNotifications)
	protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
	protected.POST("/notifications/mark-read", notificationHandler.MarkRead)
	protected.POST("/notifications/mark-all-read", notificationHandler.MarkAllRead)

	log.Infof("Starting SplitLedger API server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}

// startCleanupLoop purges soft-deleted entries and stale read notifications
// once a day in the background.
func startCleanupLoop(cleanup services.CleanupServicer, retentionDays int) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
			if _, err := cleanup.PurgeSoftDeletedEntries(cutoff); err != nil {
				logger.Get().Errorw("Failed to purge soft-deleted entries", "error", err)
			}
			if _, err := cleanup.PurgeReadNotifications(cutoff); err != nil {
				logger.Get().Errorw("Failed to purge read notifications", "error", err)
			}
		}
	}()
}
