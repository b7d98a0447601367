package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	DatabaseURL     string
	PlaidClientID   string
	PlaidSecret     string
	PlaidEnv        string
	ProviderTimeout time.Duration
	// FreshnessWindow bounds upstream call volume: a connection synced more
	// recently than this is skipped entirely.
	FreshnessWindow time.Duration
	DefaultPageSize int
	MaxPageSize     int
	KafkaBrokers    []string
}

func Load() Config {
	// Load .env file if present
	_ = godotenv.Load()

	cfg := Config{
		Port:            getEnv("PORT", "8080"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		PlaidClientID:   getEnv("PLAID_CLIENT_ID", ""),
		PlaidSecret:     getEnv("PLAID_SECRET", ""),
		PlaidEnv:        getEnv("PLAID_ENV", "sandbox"),
		ProviderTimeout: time.Duration(getEnvInt("PROVIDER_TIMEOUT_SECONDS", 30)) * time.Second,
		FreshnessWindow: time.Duration(getEnvInt("SYNC_FRESHNESS_HOURS", 24)) * time.Hour,
		DefaultPageSize: getEnvInt("PAGE_SIZE_DEFAULT", 25),
		MaxPageSize:     getEnvInt("PAGE_SIZE_MAX", 100),
	}

	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Fatalf("%s must be an integer, got %q", key, value)
	}
	return n
}
