package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for the application.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string

	// WhatsApp Cloud API webhook secrets, provisioned out-of-band.
	WhatsAppAppSecret   string
	WhatsAppVerifyToken string

	// InsecureSkipVerification disables webhook signature checks entirely.
	// Bootstrap-only escape hatch; must never be set in production.
	InsecureSkipVerification bool

	NumSyncWorkers int
	OrderRateLimit int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	port := getEnv("PORT", "8080")
	dbURL := getEnv("DATABASE_URL", "")
	redisURL := getEnv("REDIS_URL", "")
	appSecret := getEnv("WHATSAPP_APP_SECRET", "")
	verifyToken := getEnv("WHATSAPP_VERIFY_TOKEN", "")
	skipVerify := getEnvBool("INSECURE_SKIP_VERIFICATION", false)
	numWorkers := getEnvInt("NUM_SYNC_WORKERS", 10)
	orderRateLimit := getEnvInt("ORDER_RATE_LIMIT", 5)

	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}
	if verifyToken == "" {
		return nil, fmt.Errorf("WHATSAPP_VERIFY_TOKEN is required")
	}
	if appSecret == "" && !skipVerify {
		return nil, fmt.Errorf("WHATSAPP_APP_SECRET is required unless INSECURE_SKIP_VERIFICATION=true")
	}

	return &Config{
		Port:                     port,
		DatabaseURL:              dbURL,
		RedisURL:                 redisURL,
		WhatsAppAppSecret:        appSecret,
		WhatsAppVerifyToken:      verifyToken,
		InsecureSkipVerification: skipVerify,
		NumSyncWorkers:           numWorkers,
		OrderRateLimit:           orderRateLimit,
	}, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
