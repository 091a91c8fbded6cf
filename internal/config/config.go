package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Wallet   WalletConfig
	Analyzer AnalyzerConfig
	Attest   AttestConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode + "&prepare_threshold=0"
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	PASSWORD string
}

// JWTConfig holds session token configuration. Wallet sessions outlive
// password logins on purpose; keep the two knobs separate.
type JWTConfig struct {
	Secret       string
	WalletExpiry time.Duration
	LoginExpiry  time.Duration
}

// WalletConfig holds wallet authentication configuration
type WalletConfig struct {
	ChallengeTTL time.Duration
}

// AnalyzerConfig holds transaction analyzer configuration.
// Source is "synthetic" (deterministic, no network) or "rpc".
type AnalyzerConfig struct {
	Source    string
	RPCURL    string
	ScanDepth int
	CacheTTL  time.Duration
}

// AttestConfig holds risk report attestation configuration.
// Attestation is disabled when the key is empty.
type AttestConfig struct {
	SigningKey string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "nexacred"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			PASSWORD: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:       getEnv("JWT_SECRET", "change-this-in-production"),
			WalletExpiry: getEnvAsDuration("JWT_WALLET_EXPIRY", 24*time.Hour),
			LoginExpiry:  getEnvAsDuration("JWT_LOGIN_EXPIRY", time.Hour),
		},
		Wallet: WalletConfig{
			ChallengeTTL: getEnvAsDuration("WALLET_CHALLENGE_TTL", 5*time.Minute),
		},
		Analyzer: AnalyzerConfig{
			Source:    getEnv("ANALYZER_SOURCE", "synthetic"),
			RPCURL:    getEnv("ANALYZER_RPC_URL", ""),
			ScanDepth: getEnvAsInt("ANALYZER_SCAN_DEPTH", 128),
			CacheTTL:  getEnvAsDuration("ANALYZER_CACHE_TTL", 15*time.Minute),
		},
		Attest: AttestConfig{
			SigningKey: getEnv("REPORT_ATTEST_KEY", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
