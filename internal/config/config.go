package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"
)

const (
	defaultHTTPAddr      = ":8080"
	defaultJWTAccessTTL  = "24h"
	defaultJWTSecret     = "change-me-jwt-secret"
	defaultGatewayURL    = "https://api.paygate.example.com/v3"
	defaultCheckoutURL   = "https://checkout.paygate.example.com/pay"
	defaultPublicBaseURL = "http://localhost:8080"
)

// Config holds runtime settings for the API. Values come from the
// environment; cmd binaries load a .env file first via godotenv.
type Config struct {
	AppEnv        string
	HTTPAddr      string
	DatabaseURL   string
	JWTSecret     string
	JWTAccessTTL  time.Duration
	PublicBaseURL string

	// Payment gateway credentials.
	GatewayBaseURL     string
	GatewaySecretKey   string
	GatewayWebhookHash string
	CheckoutPageURL    string
}

func Load() (*Config, error) {
	cfg := &Config{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", "admarket.db"))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.PublicBaseURL = strings.TrimRight(strings.TrimSpace(getEnv("PUBLIC_BASE_URL", defaultPublicBaseURL)), "/")

	cfg.GatewayBaseURL = strings.TrimRight(strings.TrimSpace(getEnv("GATEWAY_BASE_URL", defaultGatewayURL)), "/")
	cfg.GatewaySecretKey = strings.TrimSpace(os.Getenv("GATEWAY_SECRET_KEY"))
	cfg.GatewayWebhookHash = strings.TrimSpace(os.Getenv("GATEWAY_WEBHOOK_HASH"))
	cfg.CheckoutPageURL = strings.TrimSpace(getEnv("GATEWAY_CHECKOUT_URL", defaultCheckoutURL))

	var err error
	cfg.JWTAccessTTL, err = parseDurationEnv("JWT_ACCESS_TTL", defaultJWTAccessTTL)
	if err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	log.Printf("config loaded: env=%s addr=%s gateway=%s", cfg.AppEnv, cfg.HTTPAddr, cfg.GatewayBaseURL)

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.JWTAccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be > 0")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}

	if IsProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if cfg.GatewaySecretKey == "" {
			return fmt.Errorf("in prod/release GATEWAY_SECRET_KEY must be set")
		}
		if cfg.GatewayWebhookHash == "" {
			return fmt.Errorf("in prod/release GATEWAY_WEBHOOK_HASH must be set")
		}
	}

	return nil
}

func IsProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
