package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"notably/internal/authz"
	"notably/internal/caching"
	"notably/internal/config"
	"notably/internal/handlers"
	"notably/internal/jobs/background"
	"notably/internal/metrics"
	"notably/internal/middleware"
	"notably/internal/models"
	"notably/internal/repositories"
	"notably/internal/services"
	"notably/pkg/database"
	"notably/pkg/logger"
)

const serviceName = "notably"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(&logger.LogConfig{
		Level:       cfg.LogLevel,
		Environment: cfg.Environment,
		ServiceName: serviceName,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	log := logger.Get()
	defer log.Sync()

	ctx := context.Background()

	// Database connection, schema, and seed data -- all before the server
	// accepts its first request.
	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}
	if err := database.Seed(ctx, pool); err != nil {
		log.Fatal("failed to seed database", zap.Error(err))
	}

	// Cache is optional; without Redis every lookup goes to the store.
	var cacheSvc caching.CacheService
	if cfg.RedisAddr != "" {
		cacheSvc = caching.NewRedisCacheService(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	} else {
		cacheSvc = caching.NewNoopCacheService()
	}

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	tenantRepo := repositories.NewTenantRepo(pool)
	noteRepo := repositories.NewNoteRepo(pool)

	// Services
	authSvc := services.NewAuthService(userRepo, cfg.JWTSecret)
	noteSvc := services.NewNoteService(noteRepo, cacheSvc)
	tenantSvc := services.NewTenantService(tenantRepo, cacheSvc)

	// Handlers
	authHandlers := handlers.NewAuthHandlers(authSvc, userRepo)
	noteHandlers := handlers.NewNoteHandlers(noteSvc)
	tenantHandlers := handlers.NewTenantHandlers(tenantSvc)

	// Background jobs
	scheduler, err := background.NewJobScheduler(tenantRepo, noteRepo)
	if err != nil {
		log.Fatal("failed to create job scheduler", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	// HTTP server
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handlers.HTTPErrorHandler

	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())
	e.Use(logger.Middleware())
	e.Use(metrics.NewHTTPMetrics(serviceName).Middleware())

	// Unauthenticated surface
	e.GET("/health", handlers.HealthCheck)
	e.GET("/health/ready", func(c echo.Context) error {
		return handlers.ReadinessCheck(c, pool)
	})
	e.GET("/metrics", metrics.Handler())
	e.POST("/auth/login", authHandlers.Login)

	// Protected surface
	protected := e.Group("", middleware.JWTMiddleware(authSvc))
	protected.GET("/auth/me", authHandlers.Me)

	protected.GET("/notes", noteHandlers.ListNotes)
	protected.POST("/notes", noteHandlers.CreateNote)
	protected.GET("/notes/:id", noteHandlers.GetNote)
	protected.PUT("/notes/:id", noteHandlers.UpdateNote)
	protected.DELETE("/notes/:id", noteHandlers.DeleteNote)

	protected.GET("/tenants/me", tenantHandlers.Me)
	protected.POST("/tenants/:slug/upgrade", tenantHandlers.Upgrade,
		middleware.Require(authz.RoleIs(models.RoleAdmin), "Admin access required"))

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		log.Info("server starting", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
}
