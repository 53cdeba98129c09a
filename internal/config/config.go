package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// RPC settings
	RPCUrl        string
	BroadcastURLs []string

	// External APIs
	JupiterBaseURL string
	JupiterAPIKey  string
	RaydiumAPIURL  string

	// Wallet
	PrivateKey string

	// Redis settings
	RedisAddr string

	// ClickHouse settings
	ClickHouseAddr     string
	ClickHouseDatabase string
	ClickHouseUsername string
	ClickHousePassword string

	// HTTP client settings
	HTTPTimeout  time.Duration
	RetryBackoff time.Duration

	// Fee settings
	Accelerate    float64
	SkipPreflight bool

	// HTTP server
	ServerAddr string
	APIKey     string
	DevMode    bool
}

func Load() *Config {
	return &Config{
		// RPC
		RPCUrl:        getEnv("SOLANA_RPC_URL", "https://api.mainnet-beta.solana.com"),
		BroadcastURLs: getListEnv("BROADCAST_RPC_URLS"),

		// External APIs
		JupiterBaseURL: getEnv("JUPITER_BASE_URL", ""),
		JupiterAPIKey:  getEnv("JUPITER_API_KEY", ""),
		RaydiumAPIURL:  getEnv("RAYDIUM_API_URL", ""),

		// Wallet
		PrivateKey: getEnv("WALLET_PRIVATE_KEY", ""),

		// Redis
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),

		// ClickHouse
		ClickHouseAddr:     getEnv("CLICKHOUSE_ADDR", "localhost:9000"),
		ClickHouseDatabase: getEnv("CLICKHOUSE_DATABASE", "solana"),
		ClickHouseUsername: getEnv("CLICKHOUSE_USERNAME", "default"),
		ClickHousePassword: getEnv("CLICKHOUSE_PASSWORD", ""),

		// HTTP
		HTTPTimeout:  getDurationEnv("HTTP_TIMEOUT", 30*time.Second),
		RetryBackoff: getDurationEnv("RETRY_BACKOFF", 1*time.Second),

		// Fees
		Accelerate:    getFloatEnv("FEE_ACCELERATE", 0),
		SkipPreflight: getEnv("SKIP_PREFLIGHT", "") == "true",

		// Server
		ServerAddr: getEnv("SERVER_ADDR", ":8090"),
		APIKey:     getEnv("API_KEY", ""),
		DevMode:    getEnv("DEV_MODE", "") == "true",
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getListEnv(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getFloatEnv(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
