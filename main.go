package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Banyel3/iayos-sub011/config"
	"github.com/Banyel3/iayos-sub011/handler"
	"github.com/Banyel3/iayos-sub011/middleware"
	"github.com/Banyel3/iayos-sub011/pkg/logger"
	"github.com/Banyel3/iayos-sub011/service"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("configuration loaded successfully")
	if cfg.Backend.BaseURL == "" {
		// Not fatal: requests degrade to the service-unavailable category
		// until an origin is configured.
		slog.Warn("backend base_url not configured")
	}

	// Initialize services
	store, err := service.OpenLocalStore(cfg.Store.Path)
	if err != nil {
		slog.Error("failed to open local store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	documentSvc, err := service.NewDocumentService(&cfg.Minio)
	if err != nil {
		slog.Error("failed to initialize document storage", "error", err)
		os.Exit(1)
	}
	if err := documentSvc.EnsureBucket(context.Background()); err != nil {
		slog.Error("failed to ensure document bucket", "error", err)
		os.Exit(1)
	}

	backend := service.NewBackend(&cfg.Backend)
	cache := service.NewQueryCache()
	lockouts := service.NewLockoutService(store)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(backend, lockouts, cfg)
	dashboardHandler := handler.NewDashboardHandler(backend, cache)
	jobHandler := handler.NewJobHandler(backend, cache, documentSvc)
	applicationHandler := handler.NewApplicationHandler(backend, cache)
	notificationHandler := handler.NewNotificationHandler(backend, cache)
	walletHandler := handler.NewWalletHandler(backend, cache)
	kycHandler := handler.NewKYCHandler(backend, cache, documentSvc)
	messageHandler := handler.NewMessageHandler(backend, cache)
	preferencesHandler := handler.NewPreferencesHandler(store)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New() // Use New() instead of Default() to avoid default middleware

	// Add custom middleware
	router.Use(middleware.RequestID())     // Request ID for tracing
	router.Use(middleware.Recovery())      // Panic recovery
	router.Use(middleware.RequestLogger()) // Access logging
	router.Use(corsMiddleware())           // CORS
	router.Use(middleware.RateLimit(cfg.Security.RateLimitPerMinute, time.Minute))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Public routes
	api := router.Group("/api")
	{
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/verify-otp", authHandler.VerifyOTP)
		api.POST("/auth/resend-otp", authHandler.ResendOTP)
	}

	// Protected routes
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(&cfg.Auth))
	{
		protected.GET("/auth/me", authHandler.GetCurrentUser)
		protected.POST("/auth/change-password", authHandler.ChangePassword)

		protected.GET("/dashboard", dashboardHandler.Resolve)
		protected.GET("/dashboard/summary", dashboardHandler.Summary)

		protected.GET("/jobs", jobHandler.List)
		protected.GET("/jobs/categories", jobHandler.Categories)
		protected.GET("/jobs/:id", jobHandler.Get)
		protected.POST("/jobs/:id/confirm-start", jobHandler.ConfirmWorkStarted)
		protected.POST("/jobs/:id/mark-complete", jobHandler.MarkComplete)
		protected.POST("/jobs/:id/approve-completion", jobHandler.ApproveCompletion)
		protected.POST("/jobs/:id/completion-photos", jobHandler.UploadCompletionPhoto)
		protected.GET("/jobs/:id/applications", applicationHandler.ListForJob)
		protected.POST("/applications/:id/manage", applicationHandler.Manage)

		protected.GET("/notifications", notificationHandler.List)
		protected.POST("/notifications/:id/read", notificationHandler.MarkRead)
		protected.DELETE("/notifications/:id", notificationHandler.Delete)

		protected.GET("/wallet/pending-earnings", walletHandler.PendingEarnings)

		protected.GET("/kyc/status", kycHandler.Status)
		protected.POST("/kyc/upload", kycHandler.Upload)
		protected.POST("/kyc/submit", kycHandler.Submit)

		protected.GET("/conversations", messageHandler.Conversations)
		protected.GET("/conversations/:id/messages", messageHandler.Messages)
		protected.POST("/conversations/:id/messages", messageHandler.Send)

		protected.GET("/preferences", preferencesHandler.Get)
		protected.POST("/preferences", preferencesHandler.Update)
	}

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}

// corsMiddleware handles CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
