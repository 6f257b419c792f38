package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"budgie/internal/config"
	"budgie/internal/database"
	apperrors "budgie/internal/errors"
	"budgie/internal/handlers"
	"budgie/internal/logger"
	"budgie/internal/middleware"
	"budgie/internal/queue"
	"budgie/internal/services"
	"budgie/internal/validator"
)

// @title           Budgie API
// @version         1.0
// @description     Budgie is a single-account expense and income ledger with categories, daily views and search.

// @host      localhost:8080
// @BasePath  /api/v1
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

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if appConfig.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnw("failed to close database", "error", err)
		}
	}()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Deferred work (selection stamps) runs on a single loop.
	loop := queue.New(0)
	loop.Start()
	defer loop.Stop()

	// Initialize services
	db := dbManager.DB()
	auditService := services.NewAuditService(db)
	accountService := services.NewAccountService(db)
	categoryService := services.NewCategoryService(db, loop, appConfig.SelectionDelay)
	ledgerService := services.NewLedgerService(db, accountService)
	viewService := services.NewViewService(db, appConfig.Location)

	if appConfig.SeedDefaultCategories {
		if _, err := categoryService.SeedDefaults(); err != nil {
			return fmt.Errorf("failed to seed default categories: %w", err)
		}
	}
	if err := ensureAccount(accountService, appConfig.AccountName); err != nil {
		return err
	}

	validator.Register()

	// Initialize handlers
	accountHandler := handlers.NewAccountHandler(accountService, auditService)
	categoryHandler := handlers.NewCategoryHandler(categoryService, auditService)
	logHandler := handlers.NewLogHandler(ledgerService, viewService, auditService)
	auditHandler := handlers.NewAuditHandler(auditService)

	router := gin.New()
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")

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

	v1 := router.Group("/api/v1")

	account := v1.Group("/account")
	account.POST("", accountHandler.SetupAccount)
	account.GET("", accountHandler.GetAccount)
	account.GET("/verify", accountHandler.VerifyBalance)

	categories := v1.Group("/categories")
	categories.GET("", categoryHandler.ListCategories)
	categories.POST("", categoryHandler.CreateCategory)
	categories.POST("/cleanup", categoryHandler.CleanupCategories)
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.PUT("/:id", categoryHandler.RenameCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)
	categories.POST("/:id/subcategories", categoryHandler.CreateSubcategory)
	categories.POST("/:id/select", categoryHandler.SelectCategory)

	logs := v1.Group("/logs")
	logs.POST("", logHandler.CreateLog)
	logs.GET("", logHandler.ListLogs)
	logs.GET("/days", logHandler.ListDays)
	logs.GET("/:id", logHandler.GetLog)
	logs.PUT("/:id", logHandler.UpdateLog)
	logs.DELETE("/:id", logHandler.DeleteLog)

	v1.GET("/audit", auditHandler.ListAuditLogs)

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting Budgie server on port %s", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	// Category cleanup belongs to the management view, not to shutdown.
	categoryHandler.Close()
	loop.Flush()
	return nil
}

// ensureAccount creates the ledger account on first start.
func ensureAccount(accountService services.AccountServicer, name string) error {
	if _, err := accountService.GetAccount(); err == nil {
		return nil
	} else if !errors.Is(err, apperrors.ErrAccountNotFound) {
		return fmt.Errorf("failed to load account: %w", err)
	}

	var accountName *string
	if name != "" {
		accountName = &name
	}
	account, err := accountService.SetupAccount(accountName)
	if err != nil {
		return fmt.Errorf("failed to set up account: %w", err)
	}
	logger.Get().Infow("account set up", "account_id", account.ID, "name", account.DisplayName())
	return nil
}
