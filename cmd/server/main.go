package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/greenseam/storefront/internal"
	"github.com/greenseam/storefront/internal/address"
	"github.com/greenseam/storefront/internal/cart"
	"github.com/greenseam/storefront/internal/checkout"
	"github.com/greenseam/storefront/internal/domain"
	"github.com/greenseam/storefront/internal/handler/storefront"
	"github.com/greenseam/storefront/internal/identity"
	"github.com/greenseam/storefront/internal/middleware"
	"github.com/greenseam/storefront/internal/order"
	"github.com/greenseam/storefront/internal/payment"
	"github.com/greenseam/storefront/internal/pricing"
	"github.com/greenseam/storefront/internal/reviews"
	"github.com/greenseam/storefront/internal/routes"
	"github.com/greenseam/storefront/internal/storage"
	"github.com/greenseam/storefront/internal/telemetry"
	"github.com/greenseam/storefront/internal/wishlist"
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

	// Initialize storage
	var kv storage.KV
	switch cfg.Storage.Provider {
	case "redis":
		logger.Info("Connecting to Redis...")
		redisStore, err := storage.NewRedisStore(ctx, cfg.Storage.RedisURL)
		if err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
		defer redisStore.Close()
		kv = redisStore
		logger.Info("Redis connection established")
	default:
		kv = storage.NewMemoryStore()
		logger.Info("Using in-memory storage")
	}

	// Initialize catalog
	catalog := domain.NewStaticCatalog(domain.DemoProducts())

	// Initialize cart manager
	carts := cart.NewManager(kv, logger)

	// Initialize pricing calculator
	calc := pricing.NewCalculator(
		cfg.Pricing.TaxRate,
		cfg.Pricing.ShippingFlatFee,
		cfg.Pricing.FreeShippingThreshold,
	)

	// Initialize payment gateway
	var gateway payment.Gateway
	switch cfg.Payment.Provider {
	case "stripe":
		logger.Info("Initializing Stripe gateway...")
		gateway = payment.NewStripeGateway(cfg.Payment.StripeSecretKey)
	default:
		logger.Info("Using mock payment gateway", "delay", cfg.Payment.MockDelay)
		gateway = payment.NewMockGateway(cfg.Payment.MockDelay)
	}

	// Initialize address verifier
	verifier := address.NewBasicVerifier(postalLengthFor(cfg.Locale))

	// Initialize order service
	orders := order.NewService(kv, logger)

	// Initialize wishlist and review services
	wishlists := wishlist.NewService(kv)
	productReviews := reviews.NewService(kv)

	// Identity: guest-only until an auth provider is wired in
	var ident identity.Provider = identity.Guest{}

	// Initialize checkout wizard
	wizard := checkout.NewWizard(checkout.Config{
		Locale:     checkout.LocaleFor(cfg.Locale),
		Calculator: &calc,
		Gateway:    gateway,
		Verifier:   verifier,
		Orders:     orders,
		Identity:   ident,
		Currency:   currencyFor(cfg.Locale),
		Logger:     logger,
	})

	// Metrics
	httpMetrics := middleware.NewMetrics("storefront")
	businessMetrics := telemetry.NewBusinessMetrics("storefront")

	secure := cfg.Env == "prod"

	r := routes.New(routes.Deps{
		Logger:   logger,
		Metrics:  httpMetrics,
		Products: storefront.NewProductHandler(catalog),
		Cart:     storefront.NewCartHandler(carts, catalog, businessMetrics, secure),
		Checkout: storefront.NewCheckoutHandler(wizard, carts, businessMetrics),
		Orders:   storefront.NewOrderHandler(orders, ident),
		Wishlist: storefront.NewWishlistHandler(wishlists, ident, businessMetrics),
		Reviews:  storefront.NewReviewHandler(productReviews, catalog, ident, businessMetrics),
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("Starting storefront server", "address", addr, "env", cfg.Env)

	if err := http.ListenAndServe(addr, r); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

func currencyFor(locale string) string {
	if locale == "IN" {
		return "inr"
	}
	return "usd"
}

func postalLengthFor(locale string) int {
	if locale == "IN" {
		return 6
	}
	return 5
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
