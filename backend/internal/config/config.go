package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Config holds all deployment configuration, loaded from the environment.
type Config struct {
	ListenAddr string
	JWTSecret  string

	// Settlement collaborator (TON JSON-RPC endpoint).
	SettlementURL    string
	SettlementAPIKey string
	PlatformAddress  string
	PlatformSecret   string

	// Fixed fraction deducted from every gross amount.
	FeeRate decimal.Decimal

	DefaultLocale string
}

// LoadEnv loads a .env file if present. Missing files are not an error;
// deployments may rely on real environment variables.
func LoadEnv() error {
	return godotenv.Load()
}

// Load reads configuration from the environment, logging any defaults used.
func Load(log *zap.Logger) (*Config, error) {
	cfg := &Config{
		ListenAddr:       getEnv(log, "LISTEN_ADDR", ":8080"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		SettlementURL:    getEnv(log, "TON_API_URL", "http://localhost:9090/jsonrpc"),
		SettlementAPIKey: os.Getenv("TON_API_KEY"),
		PlatformAddress:  os.Getenv("TON_WALLET_ADDRESS"),
		PlatformSecret:   os.Getenv("TON_PRIVATE_KEY"),
		DefaultLocale:    getEnv(log, "DEFAULT_LOCALE", "en"),
	}

	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET not set, using insecure development secret")
		cfg.JWTSecret = "!!REPLACE_THIS_WITH_A_STRONG_SECRET_KEY!!"
	}

	rate := getEnv(log, "FEE_RATE", "0.01")
	feeRate, err := decimal.NewFromString(rate)
	if err != nil {
		return nil, fmt.Errorf("invalid FEE_RATE %q: %w", rate, err)
	}
	if feeRate.IsNegative() || feeRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("FEE_RATE %s out of range [0,1)", feeRate)
	}
	cfg.FeeRate = feeRate

	return cfg, nil
}

func getEnv(log *zap.Logger, key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	log.Info("environment variable not set, using default",
		zap.String("key", key), zap.String("default", fallback))
	return fallback
}
