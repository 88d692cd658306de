package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const EnvironmentProduction = "production"

type Config struct {
	App               AppConfig
	HTTP              ServerConfig
	GRPC              ServerConfig
	MySQL             MySQLConfig
	Redis             RedisConfig
	Log               LogConfig
	InternalEndpoints InternalEndpointsConfig
	Stripe            StripeConfig
	Marketplace       MarketplaceConfig
	Jobs              JobsConfig
}

type AppConfig struct {
	ServiceName string
	APIKey      string
	Environment string
}

func (c AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Environment, EnvironmentProduction)
}

type ServerConfig struct {
	Host string
	Port string
}

type MySQLConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	EntitlementTTL time.Duration
}

type LogConfig struct {
	Level string
}

type InternalEndpointsConfig struct {
	AuthGRPCAddr string
}

type StripeConfig struct {
	SecretKey                 string
	WebhookSecret             string
	WebhooksDisabled          bool
	SignatureToleranceSeconds int64
	HTTPTimeout               time.Duration
	MaxNetworkRetries         int64
	APIBaseURL                string
}

// MarketplaceConfig holds the checkout and onboarding settings. URL templates
// may contain {video_id} or {creator_id} placeholders.
type MarketplaceConfig struct {
	Currency               string
	CheckoutSuccessURL     string
	CheckoutCancelURL      string
	OnboardingReturnURL    string
	OnboardingRefreshURL   string
	AccountCountry         string
	MetadataTitleMaxLength int
}

type JobsConfig struct {
	AccountRefreshInterval   time.Duration
	AccountRefreshStaleAfter time.Duration
	BatchSize                int32
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		return nil, errors.New("MYSQL_DSN environment variable is required")
	}

	return &Config{
		App: AppConfig{
			ServiceName: getEnv("APP_SERVICE_NAME", "purchases-service"),
			APIKey:      getEnv("APP_API_KEY", ""),
			Environment: strings.ToLower(getEnv("APP_ENV", "development")),
		},
		HTTP: ServerConfig{
			Host: getEnv("HTTP_HOST", "0.0.0.0"),
			Port: getEnv("HTTP_PORT", "8080"),
		},
		GRPC: ServerConfig{
			Host: getEnv("GRPC_HOST", "0.0.0.0"),
			Port: getEnv("GRPC_PORT", "9090"),
		},
		MySQL: MySQLConfig{
			DSN:             mysqlDSN,
			MaxOpenConns:    getIntEnv("MYSQL_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getIntEnv("MYSQL_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getMinutesEnv("MYSQL_CONN_MAX_LIFETIME_MINUTES", 30*time.Minute),
		},
		Redis: RedisConfig{
			Addr:           getEnv("REDIS_ADDR", ""),
			Password:       getEnv("REDIS_PASSWORD", ""),
			DB:             getIntEnv("REDIS_DB", 0),
			EntitlementTTL: getMinutesEnv("REDIS_ENTITLEMENT_TTL_MINUTES", 24*time.Hour),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		InternalEndpoints: InternalEndpointsConfig{
			AuthGRPCAddr: getEnv("AUTH_SERVICE_GRPC_ADDR", "localhost:9090"),
		},
		Stripe: StripeConfig{
			SecretKey:                 getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret:             getEnv("STRIPE_WEBHOOK_SECRET", ""),
			WebhooksDisabled:          getBoolEnv("STRIPE_WEBHOOKS_DISABLED", false),
			SignatureToleranceSeconds: int64(getIntEnv("STRIPE_SIGNATURE_TOLERANCE_SECONDS", 300)),
			HTTPTimeout:               getSecondsEnv("STRIPE_HTTP_TIMEOUT_SECONDS", 10*time.Second),
			MaxNetworkRetries:         int64(getIntEnv("STRIPE_MAX_NETWORK_RETRIES", 1)),
			APIBaseURL:                getEnv("STRIPE_API_BASE_URL", ""),
		},
		Marketplace: MarketplaceConfig{
			Currency:               strings.ToLower(getEnv("MARKETPLACE_CURRENCY", "usd")),
			CheckoutSuccessURL:     getEnv("MARKETPLACE_CHECKOUT_SUCCESS_URL", "http://localhost:3000/videos/{video_id}?checkout=success"),
			CheckoutCancelURL:      getEnv("MARKETPLACE_CHECKOUT_CANCEL_URL", "http://localhost:3000/videos/{video_id}?checkout=cancel"),
			OnboardingReturnURL:    getEnv("MARKETPLACE_ONBOARDING_RETURN_URL", "http://localhost:3000/creators/{creator_id}/payments?onboarding=done"),
			OnboardingRefreshURL:   getEnv("MARKETPLACE_ONBOARDING_REFRESH_URL", "http://localhost:3000/creators/{creator_id}/payments?onboarding=retry"),
			AccountCountry:         strings.ToUpper(getEnv("MARKETPLACE_ACCOUNT_COUNTRY", "")),
			MetadataTitleMaxLength: getIntEnv("MARKETPLACE_METADATA_TITLE_MAX_LENGTH", 100),
		},
		Jobs: JobsConfig{
			AccountRefreshInterval:   getMinutesEnv("JOBS_ACCOUNT_REFRESH_INTERVAL_MINUTES", 10*time.Minute),
			AccountRefreshStaleAfter: getMinutesEnv("JOBS_ACCOUNT_REFRESH_STALE_AFTER_MINUTES", 60*time.Minute),
			BatchSize:                int32(getIntEnv("JOBS_BATCH_SIZE", 100)),
		},
	}, nil
}

// ValidateWebhooks refuses configurations that would leave the webhook
// endpoint without a signing secret. Disabling webhooks is only allowed
// outside production.
func (c *Config) ValidateWebhooks() error {
	if c.Stripe.WebhooksDisabled {
		if c.App.IsProduction() {
			return errors.New("STRIPE_WEBHOOKS_DISABLED cannot be set in production")
		}
		return nil
	}
	if strings.TrimSpace(c.Stripe.WebhookSecret) == "" {
		return errors.New("STRIPE_WEBHOOK_SECRET is required to serve the webhook endpoint")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getMinutesEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}

func getSecondsEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}
