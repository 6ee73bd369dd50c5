package internal

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env         string
	Port        int
	LogLevel    string
	DatabaseUrl string

	// Database pool
	DBMaxOpenConns int
	DBConnMaxIdle  time.Duration

	// Scheduler Configuration
	SchedulerEnabled   bool
	RenewalInterval    time.Duration
	UsageResetInterval time.Duration
	SweepTimeout       time.Duration
	SweepRunOnStart    bool

	// Simulated payment gateway used by renewals
	PaymentSuccessRate float64

	// AI Provider Configuration
	AIProvider string // only "mock" is supported
	AIMinDelay time.Duration
	AIMaxDelay time.Duration

	// HTTP
	ChatRateLimit      int // chat sends per client per minute, 0 disables
	CORSAllowedOrigins []string

	// Storage Configuration (sweep report archive)
	StorageProvider string // "local", "r2" or "none"

	// Local Storage (development)
	LocalStoragePath string

	// R2 Storage (production)
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2Endpoint        string // optional, overrides the account endpoint

	// Metrics endpoint authentication
	// If both are empty, the /metrics endpoint will be unprotected (not recommended)
	MetricsUsername string
	MetricsPassword string
}

// IsDevelopment reports whether development-only routes and logging apply.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func NewConfig() (*Config, error) {
	// Load .env file if it exists (ignored in production)
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnvInt("PORT", 3000),
		LogLevel: getEnv("LOG_LEVEL", "debug"),

		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 20),
		DBConnMaxIdle:  getEnvDuration("DB_CONN_MAX_IDLE", 30*time.Second),

		// Scheduler defaults: hourly renewals, daily reset check
		SchedulerEnabled:   getEnvBool("SCHEDULER_ENABLED", true),
		RenewalInterval:    getEnvDuration("RENEWAL_INTERVAL", time.Hour),
		UsageResetInterval: getEnvDuration("USAGE_RESET_INTERVAL", 24*time.Hour),
		SweepTimeout:       getEnvDuration("SWEEP_TIMEOUT", 5*time.Minute),
		SweepRunOnStart:    getEnvBool("SWEEP_RUN_ON_START", true),

		PaymentSuccessRate: getEnvFloat("PAYMENT_SUCCESS_RATE", 0.9),

		AIProvider: getEnv("AI_PROVIDER", "mock"),
		AIMinDelay: getEnvDuration("AI_MIN_DELAY", time.Second),
		AIMaxDelay: getEnvDuration("AI_MAX_DELAY", 3*time.Second),

		ChatRateLimit:      getEnvInt("CHAT_RATE_LIMIT", 30),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		// Storage defaults to local filesystem for development
		StorageProvider:  getEnv("STORAGE_PROVIDER", "local"),
		LocalStoragePath: getEnv("LOCAL_STORAGE_PATH", "./storage"),

		// R2 configuration (production only)
		R2AccountID:       getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2BucketName:      getEnv("R2_BUCKET_NAME", ""),
		R2Endpoint:        getEnv("R2_ENDPOINT", ""),

		// Metrics authentication
		MetricsUsername: getEnv("METRICS_USERNAME", ""),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),
	}

	// Required
	cfg.DatabaseUrl = os.Getenv("DATABASE_URL")
	if cfg.DatabaseUrl == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageProvider {
	case "r2":
		if c.R2AccountID == "" {
			return fmt.Errorf("R2_ACCOUNT_ID is required when STORAGE_PROVIDER is 'r2'")
		}
		if c.R2AccessKeyID == "" {
			return fmt.Errorf("R2_ACCESS_KEY_ID is required when STORAGE_PROVIDER is 'r2'")
		}
		if c.R2SecretAccessKey == "" {
			return fmt.Errorf("R2_SECRET_ACCESS_KEY is required when STORAGE_PROVIDER is 'r2'")
		}
		if c.R2BucketName == "" {
			return fmt.Errorf("R2_BUCKET_NAME is required when STORAGE_PROVIDER is 'r2'")
		}
	case "local", "none":
	default:
		return fmt.Errorf("STORAGE_PROVIDER must be one of 'local', 'r2' or 'none', got: %s", c.StorageProvider)
	}

	if c.AIProvider != "mock" {
		return fmt.Errorf("AI_PROVIDER must be 'mock', got: %s", c.AIProvider)
	}
	if c.AIMinDelay < 0 || c.AIMaxDelay < c.AIMinDelay {
		return fmt.Errorf("AI_MAX_DELAY (%s) must be >= AI_MIN_DELAY (%s) >= 0", c.AIMaxDelay, c.AIMinDelay)
	}

	if c.PaymentSuccessRate < 0 || c.PaymentSuccessRate > 1 {
		return fmt.Errorf("PAYMENT_SUCCESS_RATE must be within [0, 1], got: %v", c.PaymentSuccessRate)
	}

	if c.SchedulerEnabled {
		if c.RenewalInterval <= 0 || c.UsageResetInterval <= 0 {
			return fmt.Errorf("RENEWAL_INTERVAL and USAGE_RESET_INTERVAL must be positive")
		}
		if c.SweepTimeout <= 0 {
			return fmt.Errorf("SWEEP_TIMEOUT must be positive")
		}
	}

	if c.ChatRateLimit < 0 {
		return fmt.Errorf("CHAT_RATE_LIMIT must not be negative")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvList splits a comma-separated variable, dropping blanks.
func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
