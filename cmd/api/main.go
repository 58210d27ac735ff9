package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/adminforge/backoffice-api/api/swagger"
	"github.com/adminforge/backoffice-api/internal/repository"
	"github.com/adminforge/backoffice-api/internal/router"
	"github.com/adminforge/backoffice-api/internal/seed"
	"github.com/adminforge/backoffice-api/internal/service"
	"github.com/adminforge/backoffice-api/pkg/cache"
	"github.com/adminforge/backoffice-api/pkg/config"
	"github.com/adminforge/backoffice-api/pkg/database"
	"github.com/adminforge/backoffice-api/pkg/logger"
)

// @title Backoffice API
// @version 1.0.0
// @description Super-admin back office for user, role and audit management
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	metrics := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Analytics.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, analytics cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close() //nolint:errcheck
			cacheRepo = repository.NewCacheRepository(redisClient)
		}
	}
	cacheService := service.NewCacheService(cacheRepo, metrics, cfg.Analytics.CacheTTL, logr, cfg.Analytics.CacheEnabled)

	hasher := service.NewBcryptHasher(cfg.Password.BcryptCost)
	validate := validator.New()

	authService := service.NewAuthService(userRepo, roleRepo, hasher, validate, logr, service.AuthConfig{
		Secret:      cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	userService := service.NewUserService(userRepo, roleRepo, hasher, validate, logr)
	roleService := service.NewRoleService(roleRepo, userRepo, validate, logr)
	auditService := service.NewAuditService(auditRepo, metrics, logr, service.AuditQueueConfig{
		Workers:    cfg.Audit.Workers,
		BufferSize: cfg.Audit.BufferSize,
	})
	analyticsService := service.NewAnalyticsService(userRepo, roleRepo, auditRepo, cacheService, logr)

	auditService.Start(context.Background())

	if err := seed.Run(ctx, cfg.Seed, userRepo, roleRepo, hasher, logr); err != nil {
		logr.Fatal("failed to seed superadmin", zap.Error(err))
	}

	engine := router.New(router.Deps{
		Config:     cfg,
		Logger:     logr,
		Auth:       authService,
		Users:      userService,
		Roles:      roleService,
		Audit:      auditService,
		Analytics:  analyticsService,
		Metrics:    metrics,
		Identities: userRepo,
		RoleLoader: roleRepo,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("server shutdown failed", zap.Error(err))
	}

	// Drain pending audit writes after the server stops accepting requests.
	auditService.Stop()
	logr.Info("server stopped")
}
