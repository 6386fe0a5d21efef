package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dehaan/tannery/internal"
	"github.com/dehaan/tannery/internal/billing"
	"github.com/dehaan/tannery/internal/email"
	"github.com/dehaan/tannery/internal/handler/admin"
	"github.com/dehaan/tannery/internal/handler/storefront"
	"github.com/dehaan/tannery/internal/handler/webhook"
	"github.com/dehaan/tannery/internal/middleware"
	"github.com/dehaan/tannery/internal/postgres"
	"github.com/dehaan/tannery/internal/pricing"
	"github.com/dehaan/tannery/internal/redisx"
	"github.com/dehaan/tannery/internal/router"
	"github.com/dehaan/tannery/internal/routes"
	"github.com/dehaan/tannery/internal/service"
	"github.com/dehaan/tannery/internal/session"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize pgx connection pool
	logger.Info("Connecting to database...")
	pool, err := postgres.Connect(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer pool.Close()
	logger.Info("Database connection established")

	// Initialize Redis for sessions and webhook dedup
	logger.Info("Connecting to Redis...")
	redisClient, err := redisx.New(ctx, cfg.RedisAddr)
	if err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	defer redisClient.Close()
	logger.Info("Redis connection established")

	// Pricing engine
	freeShippingThreshold, err := decimal.NewFromString(cfg.Pricing.FreeShippingThreshold)
	if err != nil {
		return fmt.Errorf("invalid FREE_SHIPPING_THRESHOLD: %w", err)
	}
	vatRate, err := decimal.NewFromString(cfg.Pricing.VATRate)
	if err != nil {
		return fmt.Errorf("invalid VAT_RATE: %w", err)
	}
	engine := pricing.NewEngine(freeShippingThreshold, vatRate)

	// Stores
	catalogStore := postgres.NewCatalogStore(pool)
	orderStore := postgres.NewOrderStore(pool)
	sessionStore := session.NewRedisStore(redisClient)
	deduper := redisx.NewDeduper(redisClient)

	// Order emails over SMTP
	sender := email.NewSMTPSender(&email.SMTPConfig{
		Host:     cfg.Email.Host,
		Port:     int(cfg.Email.Port),
		Username: cfg.Email.Username,
		Password: cfg.Email.Password,
		From:     cfg.Email.From,
		FromName: cfg.Email.FromName,
	}, logger)
	notifier := email.NewNotifier(sender, cfg.Email.FromName, logger)

	// Stripe billing provider
	billingProvider := billing.NewStripeProvider(cfg.Stripe.SecretKey)

	// Services
	cartService := service.NewCartService(sessionStore, catalogStore, logger)
	orderService := service.NewOrderService(orderStore, cartService, engine, notifier, logger)
	paymentService := service.NewPaymentService(service.PaymentServiceConfig{
		Repo:          orderStore,
		Provider:      billingProvider,
		Deduper:       deduper,
		Notifier:      notifier,
		Currency:      cfg.Currency,
		WebhookSecret: cfg.Stripe.WebhookSecret,
		Logger:        logger,
	})

	// Route dependencies
	storefrontDeps := routes.StorefrontDeps{
		ProductHandler:  storefront.NewProductHandler(catalogStore, logger),
		CartHandler:     storefront.NewCartHandler(cartService, engine, logger),
		CheckoutHandler: storefront.NewCheckoutHandler(cartService, engine, logger),
		OrderHandler:    storefront.NewOrderHandler(orderService, logger),
		PaymentHandler:  storefront.NewPaymentHandler(paymentService, cfg.Stripe.PublishableKey, logger),
	}
	adminDeps := routes.AdminDeps{
		OrderHandler: admin.NewOrderHandler(orderService, logger),
	}
	webhookDeps := routes.WebhookDeps{
		StripeHandler: webhook.NewStripeHandler(paymentService, logger),
	}

	// Prometheus metrics
	metrics := middleware.NewMetrics("tannery")

	r := router.New(
		router.Recovery(logger),
		middleware.RequestID,
		metrics.Middleware,
		router.Logger(logger),
		middleware.WithUser,
		middleware.WithRequestLogger(logger),
	)

	// Metrics endpoint; protect at the network layer in production
	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		metrics.Handler().ServeHTTP(w, req)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	routes.RegisterStorefrontRoutes(r, storefrontDeps)
	routes.RegisterAdminRoutes(r, adminDeps)
	routes.RegisterWebhookRoutes(r, webhookDeps)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "address", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		logger.Info("Shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
