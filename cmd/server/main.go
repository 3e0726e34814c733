package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "tokenauth/docs" // swagger docs

	"github.com/labstack/echo/v4"

	"tokenauth/internal/auth"
	"tokenauth/internal/cache"
	"tokenauth/internal/config"
	"tokenauth/internal/credential"
	"tokenauth/internal/db"
	"tokenauth/internal/events"
	"tokenauth/internal/handler"
	"tokenauth/internal/logging"
	"tokenauth/internal/repository"
	"tokenauth/internal/role"
	"tokenauth/internal/router"
	"tokenauth/internal/service"
)

// @title Token Auth API
// @version 1.0
// @description Account registration, bearer token issuance and role management.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	logger := logging.New("tokenauth", os.Stdout, cfg.LogLevel)
	ctx := context.Background()

	if err := cfg.Validate(); err != nil {
		logger.Error(ctx, "invalid configuration", "error", err)
		os.Exit(1)
	}

	e := echo.New()
	e.HideBanner = true
	e.Logger = logger.Backend()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		logger.Error(ctx, "database init", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(gormDB); err != nil {
		logger.Error(ctx, "database migrate", "error", err)
		os.Exit(1)
	}

	userRepo := repository.NewUserRepository(gormDB)
	roleRepo := repository.NewRoleRepository(gormDB)
	if err := roleRepo.EnsureRoles(ctx, role.Strings()); err != nil {
		logger.Error(ctx, "provision roles", "error", err)
		os.Exit(1)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if err := cacheClient.Ping(ctx); err != nil {
		logger.Warn(ctx, "redis unavailable, role cache disabled until it recovers", "error", err)
	}

	store, err := credential.NewStore(userRepo, roleRepo, cacheClient, credential.Options{
		BcryptCost:   cfg.BcryptCost,
		RoleCacheTTL: cfg.RoleCacheTTL(),
	})
	if err != nil {
		logger.Error(ctx, "credential store init", "error", err)
		os.Exit(1)
	}

	signer, err := auth.NewTokenSigner(cfg.Signing())
	if err != nil {
		logger.Error(ctx, "token signer init", "error", err)
		os.Exit(1)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.RabbitMQURL, events.DefaultQueue)
		if err != nil {
			logger.Error(ctx, "rabbitmq init", "error", err)
			os.Exit(1)
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
	}

	authService := service.NewAuthService(store, signer, cfg.DefaultRoleName(), publisher, logger)

	router.Register(e, cfg, signer, router.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Admin:   handler.NewAdminHandler(authService),
		Secured: handler.NewSecuredHandler(),
	})

	runCtx, cancel := context.WithCancel(ctx)
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sigs
		cancel()
	}()

	go func() {
		addr := ":" + cfg.ServerPort
		logger.Info(ctx, "server starting", "addr", addr, "swagger", "/swagger/index.html")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "server start", "error", err)
			cancel()
		}
	}()

	<-runCtx.Done()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "server shutdown", "error", err)
	}
	logger.Info(ctx, "server stopped")
}
