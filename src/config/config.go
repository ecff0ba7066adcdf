package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string

	YNABBaseURL     string
	YNABAccessToken string
	YNABBudgetID    string
	YNABAccountID   string

	// DuplicateDays is the date window for server-side duplicate
	// detection against existing ledger transactions.
	DuplicateDays int

	// AIServiceURL is optional; empty disables AI categorization.
	AIServiceURL   string
	AIServiceToken string

	DemoMode bool
}

func Load() Config {
	// Load .env file if present
	_ = godotenv.Load()

	cfg := Config{
		Port:            getEnv("PORT", "8080"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		YNABBaseURL:     getEnv("YNAB_BASE_URL", ""),
		YNABAccessToken: getEnv("YNAB_ACCESS_TOKEN", ""),
		YNABBudgetID:    getEnv("YNAB_BUDGET_ID", ""),
		YNABAccountID:   getEnv("YNAB_ACCOUNT_ID", ""),
		DuplicateDays:   getEnvInt("YNAB_DUPLICATE_DAYS", 5),
		AIServiceURL:    getEnv("AI_SERVICE_URL", ""),
		AIServiceToken:  getEnv("AI_SERVICE_TOKEN", ""),
		DemoMode:        getEnv("DEMO_MODE", "") == "true",
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	if cfg.YNABAccessToken == "" {
		log.Fatal("YNAB_ACCESS_TOKEN is required")
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
