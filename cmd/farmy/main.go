package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Lucaamst/farmy/internal/app"
	"github.com/Lucaamst/farmy/internal/auth"
	"github.com/Lucaamst/farmy/internal/companies"
	"github.com/Lucaamst/farmy/internal/couriers"
	"github.com/Lucaamst/farmy/internal/customers"
	"github.com/Lucaamst/farmy/internal/observability"
	"github.com/Lucaamst/farmy/internal/orders"
	"github.com/Lucaamst/farmy/internal/platform/cache"
	"github.com/Lucaamst/farmy/internal/platform/db"
	"github.com/Lucaamst/farmy/internal/security"
	"github.com/Lucaamst/farmy/internal/sms"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, tokens, logger)
	authHandler := auth.NewHandler(logger, authService)
	authMiddleware := auth.Middleware{Service: authService, Logger: logger}

	if err := authService.EnsureSuperAdmin(ctx, cfg.SuperAdminUsername, cfg.SuperAdminPassword); err != nil {
		logger.Error("seed super admin", slog.Any("error", err))
		os.Exit(1)
	}

	var provider sms.Provider
	if cfg.TwilioConfigured() {
		provider = sms.NewTwilioProvider(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFrom)
	} else {
		logger.Info("sms credentials absent, using mock provider")
		provider = sms.NewNoopProvider(logger)
	}
	smsRepo := sms.NewRepository(pool)
	smsService := sms.NewService(smsRepo, provider, logger, metrics)
	smsHandler := sms.NewHandler(logger, smsService)

	companiesService := companies.NewService(companies.NewRepository(pool), logger)
	companiesHandler := companies.NewHandler(logger, companiesService)

	couriersService := couriers.NewService(couriers.NewRepository(pool), logger)
	couriersHandler := couriers.NewHandler(logger, couriersService)

	customersRepo := customers.NewRepository(pool)
	customersService := customers.NewService(customersRepo, logger)
	customersHandler := customers.NewHandler(logger, customersService)

	ordersService := orders.NewService(orders.NewRepository(pool), customers.NewDirectory(customersRepo), smsService, logger)
	ordersHandler := orders.NewHandler(logger, ordersService)

	securityService := security.NewService(
		security.NewRepository(pool), security.NewRedisStore(redisClient), smsService, logger)
	securityHandler := security.NewHandler(logger, securityService)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		AuthHandler:      authHandler,
		AuthMiddleware:   authMiddleware,
		CompaniesHandler: companiesHandler,
		CouriersHandler:  couriersHandler,
		CustomersHandler: customersHandler,
		OrdersHandler:    ordersHandler,
		SMSHandler:       smsHandler,
		SecurityHandler:  securityHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
