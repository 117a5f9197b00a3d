package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/odyssey-erp/odyssey-catalog/internal/app"
	"github.com/odyssey-erp/odyssey-catalog/internal/auth"
	"github.com/odyssey-erp/odyssey-catalog/internal/observability"
	"github.com/odyssey-erp/odyssey-catalog/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-catalog/internal/products"
	"github.com/odyssey-erp/odyssey-catalog/internal/rbac"
	"github.com/odyssey-erp/odyssey-catalog/internal/users"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	store, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("open store", slog.String("driver", cfg.StoreDriver), slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			logger.Warn("store close", slog.Any("error", err))
		}
	}()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, product cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	metrics := observability.NewMetrics()

	hasher, err := auth.NewHasher(cfg.BcryptCost)
	if err != nil {
		logger.Error("password hasher", slog.Any("error", err))
		os.Exit(1)
	}
	issuer, err := auth.NewIssuer([]byte(cfg.AuthKey), cfg.AuthTokenTTL)
	if err != nil {
		logger.Error("token issuer", slog.Any("error", err))
		os.Exit(1)
	}
	policy, err := rbac.LoadPolicy(cfg.AuthPolicyFile)
	if err != nil {
		logger.Error("load access policy", slog.String("path", cfg.AuthPolicyFile), slog.Any("error", err))
		os.Exit(1)
	}

	usersService := users.NewService(users.NewRepository(store.Users), hasher)
	usersHandler := users.NewHandler(logger, usersService)

	productsRepo := products.NewCachedRepository(products.NewRepository(store.Products), redisClient, cfg.CacheTTL, logger, metrics)
	productsHandler := products.NewHandler(logger, products.NewService(productsRepo))

	authService := auth.NewService(usersService, hasher, issuer)
	authHandler := auth.NewHandler(logger, authService, metrics)

	gate := rbac.Middleware{
		Policy:    policy,
		Validator: issuer,
		Header:    cfg.AuthTokenHeader,
		Logger:    logger,
		Metrics:   metrics,
	}

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		AuthHandler:     authHandler,
		UsersHandler:    usersHandler,
		ProductsHandler: productsHandler,
		Gate:            gate,
		Store:           store.Pinger,
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("store", store.Driver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
