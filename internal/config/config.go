package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	PublicBaseURL      string
	LogLevel           string
	DatabaseURL        string
	CORSAllowedOrigins []string

	PartnerJWTSecret string

	// Sniper feed
	ProspectFeedChannel   string
	ProspectPageSize      int
	FeedReconnectBaseWait time.Duration
	FeedReconnectMaxWait  time.Duration

	// Outreach dispatch
	UseMemoryQueue           bool
	OutreachQueueURL         string
	OutreachDispatchInterval time.Duration
	OutreachBatchSize        int

	// AWS
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Notifications
	NotifyFromEmail string
	NotifyFromName  string
	NotifyToEmail   string

	// Redis (triage rollups)
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
	RollupTTL     time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		PublicBaseURL:      getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		CORSAllowedOrigins: splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", "")),

		PartnerJWTSecret: getEnv("PARTNER_JWT_SECRET", ""),

		ProspectFeedChannel:   getEnv("PROSPECT_FEED_CHANNEL", "prospect_inserts"),
		ProspectPageSize:      getEnvAsInt("PROSPECT_PAGE_SIZE", 50),
		FeedReconnectBaseWait: getEnvAsDuration("FEED_RECONNECT_BASE_WAIT", 1*time.Second),
		FeedReconnectMaxWait:  getEnvAsDuration("FEED_RECONNECT_MAX_WAIT", 30*time.Second),

		UseMemoryQueue:           getEnvAsBool("USE_MEMORY_QUEUE", false),
		OutreachQueueURL:         getEnv("OUTREACH_QUEUE_URL", ""),
		OutreachDispatchInterval: getEnvAsDuration("OUTREACH_DISPATCH_INTERVAL", 5*time.Second),
		OutreachBatchSize:        getEnvAsInt("OUTREACH_BATCH_SIZE", 25),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		NotifyFromEmail: getEnv("NOTIFY_FROM_EMAIL", ""),
		NotifyFromName:  getEnv("NOTIFY_FROM_NAME", "PuntaLuxe Partners"),
		NotifyToEmail:   getEnv("NOTIFY_TO_EMAIL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
		RollupTTL:     getEnvAsDuration("ROLLUP_TTL", 90*24*time.Hour),
	}
}

// Validate checks the fields the service cannot run without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("config: DATABASE_URL is required")
	}
	if c.ProspectPageSize <= 0 {
		return fmt.Errorf("config: PROSPECT_PAGE_SIZE must be positive")
	}
	if !c.UseMemoryQueue && strings.TrimSpace(c.OutreachQueueURL) == "" {
		return fmt.Errorf("config: OUTREACH_QUEUE_URL is required unless USE_MEMORY_QUEUE is set")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
