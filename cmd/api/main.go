package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/vitrinebr/loja-api/api/routes"
	"github.com/vitrinebr/loja-api/internal/auth"
	"github.com/vitrinebr/loja-api/internal/cart"
	"github.com/vitrinebr/loja-api/internal/categories"
	"github.com/vitrinebr/loja-api/internal/checkout"
	"github.com/vitrinebr/loja-api/internal/orders"
	product "github.com/vitrinebr/loja-api/internal/products"
	"github.com/vitrinebr/loja-api/internal/reviews"
	"github.com/vitrinebr/loja-api/internal/users"
	"github.com/vitrinebr/loja-api/internal/wishlist"
	"github.com/vitrinebr/loja-api/pkg/auth/session"
	"github.com/vitrinebr/loja-api/pkg/config"
	"github.com/vitrinebr/loja-api/pkg/db"
	"github.com/vitrinebr/loja-api/pkg/logger"
	"github.com/vitrinebr/loja-api/pkg/mercadopago"
	"github.com/vitrinebr/loja-api/pkg/metrics"
	"github.com/vitrinebr/loja-api/pkg/migrate"
	"github.com/vitrinebr/loja-api/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: cfg.App.Name,
		Level:       cfg.App.LogLevel,
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	storefrontMetrics := metrics.NewStorefront(registry)

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	gateway, err := mercadopago.NewClient(
		cfg.MercadoPago.AccessToken,
		mercadopago.WithBaseURL(cfg.MercadoPago.BaseURL),
		mercadopago.WithTimeout(cfg.MercadoPago.Timeout),
		mercadopago.WithSandbox(cfg.MercadoPago.Sandbox),
		mercadopago.WithMetrics(storefrontMetrics),
	)
	if err != nil {
		return err
	}

	gormDB := dbClient.DB()
	userRepo := users.NewRepository(gormDB)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		return err
	}
	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		UserRepo:       userRepo,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return err
	}
	userService, err := users.NewService(userRepo)
	if err != nil {
		return err
	}

	categoryService, err := categories.NewService(categories.NewRepository(gormDB))
	if err != nil {
		return err
	}
	productRepo := product.NewRepository(gormDB)
	reviewService, err := reviews.NewService(reviews.NewRepository(gormDB), productRepo)
	if err != nil {
		return err
	}
	productService, err := product.NewService(productRepo, categoryService, reviewService, cfg.Checkout.MaxInstallments)
	if err != nil {
		return err
	}
	wishlistService, err := wishlist.NewService(wishlist.NewRepository(gormDB), productService)
	if err != nil {
		return err
	}

	cartRepo, err := cart.NewRepository(redisClient, cfg.Cart)
	if err != nil {
		return err
	}
	cartService, err := cart.NewService(cartRepo, productService)
	if err != nil {
		return err
	}

	orderService, err := orders.NewService(orders.NewRepository(gormDB), dbClient)
	if err != nil {
		return err
	}
	checkoutService, err := checkout.NewService(cartService, orderService, gateway, cfg.Checkout, storefrontMetrics, logg)
	if err != nil {
		return err
	}

	addr := ":" + cfg.App.Port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"sandbox": cfg.MercadoPago.Sandbox,
	})

	server := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
		Handler: routes.NewRouter(
			cfg, logg, storefrontMetrics, registry,
			dbClient, redisClient, sessionManager,
			authService, registerService, userService,
			categoryService, productService, reviewService, wishlistService,
			cartService, checkoutService, orderService,
		),
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(logCtx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
