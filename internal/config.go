package internal

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Env           string
	LogLevel      string
	Port          uint16
	BaseURL       string
	SessionSecret string
	Locale        string // Validation locale for shipping forms ("US", "IN")

	Pricing PricingConfig
	Payment PaymentConfig
	Storage StorageConfig
}

// PricingConfig holds the money policy applied uniformly across cart display
// and order totals.
type PricingConfig struct {
	// TaxRate is the estimated sales tax rate, e.g. 0.08 for 8%.
	TaxRate decimal.Decimal

	// ShippingFlatFee is charged when the subtotal is below FreeShippingThreshold.
	ShippingFlatFee decimal.Decimal

	// FreeShippingThreshold is the subtotal at which shipping becomes free.
	FreeShippingThreshold decimal.Decimal
}

// PaymentConfig selects and configures the payment gateway.
type PaymentConfig struct {
	// Provider is "mock" or "stripe".
	Provider string

	// MockDelay simulates gateway latency for the mock provider.
	MockDelay time.Duration

	StripeSecretKey      string
	StripePublishableKey string
}

// StorageConfig selects the key-value store backing carts, wishlists and orders.
type StorageConfig struct {
	// Provider is "memory" or "redis".
	Provider string
	RedisURL string
}

func NewConfig() (*Config, error) {
	// Try to load .env from current directory, then walk up to find it (max 2 levels)
	err := godotenv.Load()
	if err != nil {
		dir, _ := os.Getwd()
		found := false
		for i := 0; i < 2; i++ {
			dir = filepath.Join(dir, "..")
			if err := godotenv.Load(filepath.Join(dir, ".env")); err == nil {
				found = true
				break
			}
		}
		if !found {
			slog.Default().Warn("Warning: .env file not found, using environment variables and defaults")
		}
	}

	cfg := &Config{
		Env:           getEnv("ENV", "dev"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		Port:          getEnvInt("PORT", 3000),
		BaseURL:       getEnv("BASE_URL", "http://localhost:3000"),
		SessionSecret: getEnv("SESSION_SECRET", "dev-secret-change-in-production"),
		Locale:        getEnv("SHIPPING_LOCALE", "US"),
		Pricing: PricingConfig{
			TaxRate:               getEnvDecimal("TAX_RATE", "0.08"),
			ShippingFlatFee:       getEnvDecimal("SHIPPING_FLAT_FEE", "9.99"),
			FreeShippingThreshold: getEnvDecimal("FREE_SHIPPING_THRESHOLD", "75"),
		},
		Payment: PaymentConfig{
			Provider:             getEnv("PAYMENT_PROVIDER", "mock"),
			MockDelay:            getEnvDuration("PAYMENT_MOCK_DELAY", 2*time.Second),
			StripeSecretKey:      getEnv("STRIPE_SECRET_KEY", "sk_test_your_key_here"),
			StripePublishableKey: getEnv("STRIPE_PUBLISHABLE_KEY", "pk_test_your_key_here"),
		},
		Storage: StorageConfig{
			Provider: getEnv("STORAGE_PROVIDER", "memory"),
			RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),
		},
	}

	// Validate env
	validEnv := cfg.Env == "dev" || cfg.Env == "prod"
	if !validEnv {
		slog.Default().Warn("Invalid environment. Using default: prod", slog.String("env", cfg.Env))
		cfg.Env = "prod"
	}

	// Validate log level
	validLevel := cfg.LogLevel == "info" || cfg.LogLevel == "debug" || cfg.LogLevel == "warn" || cfg.LogLevel == "error"
	if !validLevel {
		slog.Default().Warn("Invalid log level. Using default: info", slog.String("value", cfg.LogLevel))
		cfg.LogLevel = "info"
	}

	if cfg.Payment.Provider != "mock" && cfg.Payment.Provider != "stripe" {
		return nil, fmt.Errorf("invalid PAYMENT_PROVIDER %q: must be \"mock\" or \"stripe\"", cfg.Payment.Provider)
	}

	if cfg.Storage.Provider != "memory" && cfg.Storage.Provider != "redis" {
		return nil, fmt.Errorf("invalid STORAGE_PROVIDER %q: must be \"memory\" or \"redis\"", cfg.Storage.Provider)
	}

	if cfg.Env == "prod" {
		if cfg.SessionSecret == "dev-secret-change-in-production" {
			return nil, fmt.Errorf("SESSION_SECRET must be set in production environment")
		}
		if cfg.Payment.Provider == "stripe" && cfg.Payment.StripeSecretKey == "sk_test_your_key_here" {
			return nil, fmt.Errorf("STRIPE_SECRET_KEY must be set when using the stripe provider in production")
		}
	}

	if cfg.Pricing.TaxRate.IsNegative() {
		return nil, fmt.Errorf("TAX_RATE must not be negative")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue uint16) uint16 {
	if value := os.Getenv(key); value != "" {
		var intValue uint16
		if _, err := fmt.Sscanf(value, "%d", &intValue); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDecimal(key string, defaultValue string) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
		slog.Default().Warn("Invalid decimal value for env var. Using default", slog.String("key", key), slog.String("default", defaultValue))
	}
	return decimal.RequireFromString(defaultValue)
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
