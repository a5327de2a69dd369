package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process-level configuration for the credential platform.
type Server struct {
	Addr            string
	DatabaseURL     string
	RedisURL        string
	KafkaBrokers    string
	IssuerSeed      string // hex-encoded Ed25519 seed; generated when empty
	ShareBaseURL    string
	AdminAPIKeyHash string // bcrypt hash guarding admin endpoints

	ClientTokenTTL time.Duration
	ShareTTL       time.Duration
	ShareMaxTTL    time.Duration
	CleanupEvery   time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:            getEnv("GYMPASS_ADDR", ":8080"),
		DatabaseURL:     os.Getenv("GYMPASS_DATABASE_URL"),
		RedisURL:        os.Getenv("GYMPASS_REDIS_URL"),
		KafkaBrokers:    os.Getenv("GYMPASS_KAFKA_BROKERS"),
		IssuerSeed:      os.Getenv("GYMPASS_ISSUER_SEED"),
		ShareBaseURL:    getEnv("GYMPASS_SHARE_BASE_URL", "http://localhost:8080"),
		AdminAPIKeyHash: os.Getenv("GYMPASS_ADMIN_API_KEY_HASH"),
		ClientTokenTTL:  getDuration("GYMPASS_CLIENT_TOKEN_TTL", 60*time.Second),
		ShareTTL:        getHours("GYMPASS_SHARE_TTL_HOURS", 24*time.Hour),
		ShareMaxTTL:     getHours("GYMPASS_SHARE_MAX_TTL_HOURS", 168*time.Hour),
		CleanupEvery:    getDuration("GYMPASS_CLEANUP_INTERVAL", 5*time.Minute),
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getHours(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if h, err := strconv.Atoi(v); err == nil && h > 0 {
			return time.Duration(h) * time.Hour
		}
	}
	return fallback
}
