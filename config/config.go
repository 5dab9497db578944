package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values. It is built once in main and handed
// to every client, adapter and store.
type Config struct {
	AppPort            string   `mapstructure:"APP_PORT"`
	Env                string   `mapstructure:"ENV"`
	LogLevel           string   `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin  int      `mapstructure:"MAX_REQUESTS_PER_MIN"`
	CORSAllowedOrigins []string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	// Tracing. none still propagates trace context to the backends.
	TracingExporter    string  `mapstructure:"TRACING_EXPORTER"`
	TracingSampleRatio float64 `mapstructure:"TRACING_SAMPLE_RATIO"`

	// Commerce backend.
	CommerceURL            string `mapstructure:"COMMERCE_URL"`
	CommercePublishableKey string `mapstructure:"COMMERCE_PUBLISHABLE_KEY"`
	ServiceVariantID       string `mapstructure:"SERVICE_VARIANT_ID"`
	RegionCurrency         string `mapstructure:"REGION_CURRENCY"`

	// Scheduling webhook and the catalog triple it is queried with.
	SchedulingURL string `mapstructure:"SCHEDULING_URL"`
	TherapistID   string `mapstructure:"THERAPIST_ID"`
	LocationID    string `mapstructure:"LOCATION_ID"`
	ServiceID     string `mapstructure:"SERVICE_ID"`

	// Payment vendor.
	PaymentVendor           string `mapstructure:"PAYMENT_VENDOR"`
	PaymentFallbackProvider string `mapstructure:"PAYMENT_FALLBACK_PROVIDER"`
	PaymentEnvironment      string `mapstructure:"PAYMENT_ENVIRONMENT"`
	CashfreeWebhookSecret   string `mapstructure:"CASHFREE_WEBHOOK_SECRET"`
	StripePublishableKey    string `mapstructure:"STRIPE_PUBLISHABLE_KEY"`
	StripeWebhookSecret     string `mapstructure:"STRIPE_WEBHOOK_SECRET"`

	// Shipping placeholder bound to every cart; bookings are not shipped.
	PlaceholderAddressLine string `mapstructure:"PLACEHOLDER_ADDRESS_LINE"`
	PlaceholderCity        string `mapstructure:"PLACEHOLDER_CITY"`
	PlaceholderCountry     string `mapstructure:"PLACEHOLDER_COUNTRY"`
	PlaceholderPostalCode  string `mapstructure:"PLACEHOLDER_POSTAL"`

	// Checkout state storage.
	StoreBackend      string        `mapstructure:"STORE_BACKEND"`
	RedisAddr         string        `mapstructure:"REDIS_ADDR"`
	RedisPassword     string        `mapstructure:"REDIS_PASSWORD"`
	RedisCheckoutDB   int           `mapstructure:"REDIS_CHECKOUT_DB"`
	DatabaseURL       string        `mapstructure:"DATABASE_URL"`
	DatabaseName      string        `mapstructure:"DATABASE_NAME"`
	CheckoutRetention time.Duration `mapstructure:"CHECKOUT_RETENTION"`

	// Outbound HTTP.
	HTTPTimeout        time.Duration `mapstructure:"HTTP_TIMEOUT"`
	BreakerMaxFailures uint32        `mapstructure:"BREAKER_MAX_FAILURES"`
	BreakerOpenTimeout time.Duration `mapstructure:"BREAKER_OPEN_TIMEOUT"`
}

const (
	VendorCashfree = "cashfree"
	VendorStripe   = "stripe"

	StoreRedis  = "redis"
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	v.SetDefault("CORS_ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("TRACING_EXPORTER", "none")
	v.SetDefault("TRACING_SAMPLE_RATIO", 1.0)

	v.SetDefault("COMMERCE_URL", "http://localhost:9000")
	v.SetDefault("COMMERCE_PUBLISHABLE_KEY", "")
	v.SetDefault("SERVICE_VARIANT_ID", "")
	v.SetDefault("REGION_CURRENCY", "inr")

	v.SetDefault("SCHEDULING_URL", "https://knightsbridge.heartitout.in/webhook/api/hio/services/get_all_slots")
	v.SetDefault("THERAPIST_ID", "10")
	v.SetDefault("LOCATION_ID", "2")
	v.SetDefault("SERVICE_ID", "13")

	v.SetDefault("PAYMENT_VENDOR", VendorCashfree)
	v.SetDefault("PAYMENT_FALLBACK_PROVIDER", "pp_cashfree_cashfree")
	v.SetDefault("PAYMENT_ENVIRONMENT", "SANDBOX")
	v.SetDefault("CASHFREE_WEBHOOK_SECRET", "")
	v.SetDefault("STRIPE_PUBLISHABLE_KEY", "")
	v.SetDefault("STRIPE_WEBHOOK_SECRET", "")

	v.SetDefault("PLACEHOLDER_ADDRESS_LINE", "Online")
	v.SetDefault("PLACEHOLDER_CITY", "Online")
	v.SetDefault("PLACEHOLDER_COUNTRY", "in")
	v.SetDefault("PLACEHOLDER_POSTAL", "110001")

	v.SetDefault("STORE_BACKEND", StoreRedis)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_CHECKOUT_DB", 3)
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "bookcheckout")
	v.SetDefault("CHECKOUT_RETENTION", "168h")

	v.SetDefault("HTTP_TIMEOUT", "15s")
	v.SetDefault("BREAKER_MAX_FAILURES", 5)
	v.SetDefault("BREAKER_OPEN_TIMEOUT", "30s")
}

// LoadConfig reads config.yaml from the given directories (or "." and
// "./config" when none are given), overlays environment variables and
// validates the result.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Println("No config file found, using environment variables only")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.PaymentVendor = strings.ToLower(cfg.PaymentVendor)
	cfg.PaymentEnvironment = strings.ToUpper(cfg.PaymentEnvironment)
	cfg.RegionCurrency = strings.ToLower(cfg.RegionCurrency)
	cfg.CommerceURL = strings.TrimRight(cfg.CommerceURL, "/")
	cfg.TracingExporter = strings.ToLower(cfg.TracingExporter)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first missing or unknown setting.
func (c *Config) Validate() error {
	if c.CommercePublishableKey == "" {
		return errors.New("config: COMMERCE_PUBLISHABLE_KEY is required")
	}
	if c.ServiceVariantID == "" {
		return errors.New("config: SERVICE_VARIANT_ID is required")
	}
	if c.CommerceURL == "" || c.SchedulingURL == "" {
		return errors.New("config: COMMERCE_URL and SCHEDULING_URL are required")
	}
	switch c.PaymentVendor {
	case VendorCashfree:
	case VendorStripe:
		if c.StripePublishableKey == "" {
			return errors.New("config: STRIPE_PUBLISHABLE_KEY is required for the stripe vendor")
		}
	default:
		return fmt.Errorf("config: unknown PAYMENT_VENDOR %q", c.PaymentVendor)
	}
	switch c.PaymentEnvironment {
	case "SANDBOX", "PRODUCTION":
	default:
		return fmt.Errorf("config: unknown PAYMENT_ENVIRONMENT %q", c.PaymentEnvironment)
	}
	switch c.StoreBackend {
	case StoreRedis, StoreMongo, StoreMemory:
	default:
		return fmt.Errorf("config: unknown STORE_BACKEND %q", c.StoreBackend)
	}
	switch c.TracingExporter {
	case "", "none", "stdout":
	default:
		return fmt.Errorf("config: unknown TRACING_EXPORTER %q", c.TracingExporter)
	}
	if c.TracingSampleRatio < 0 || c.TracingSampleRatio > 1 {
		return fmt.Errorf("config: TRACING_SAMPLE_RATIO must be within [0, 1], got %v", c.TracingSampleRatio)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
