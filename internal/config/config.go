package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort   string
	AppEnv    string
	LogLevel  string
	LogFormat string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	// DynamoBootstrap creates missing tables on startup (LocalStack).
	DynamoBootstrap bool

	// NotificationsStreamARN is resolved from the table description when empty.
	NotificationsStreamARN string
	StreamPollInterval     time.Duration
	StreamShardRefresh     time.Duration

	ServiceAccountFile string
	FCMProjectID       string // overrides project_id from the service-account file
	FCMBaseURL         string
	TokenCache         bool
	HTTPTimeout        time.Duration

	Timezone       string
	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Notifications string
	Users         string
	Subjects      string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:   getEnv("APP_PORT", "8080"),
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Notifications: getEnv("DYNAMO_TABLE_NOTIFICATIONS", "notifications"),
			Users:         getEnv("DYNAMO_TABLE_USERS", "users"),
			Subjects:      getEnv("DYNAMO_TABLE_SUBJECTS", "subjects"),
		},
		DynamoBootstrap: getEnvBool("DYNAMO_BOOTSTRAP", false),

		NotificationsStreamARN: getEnv("NOTIFICATIONS_STREAM_ARN", ""),
		StreamPollInterval:     time.Duration(getEnvInt("STREAM_POLL_INTERVAL_MS", 1000)) * time.Millisecond,
		StreamShardRefresh:     time.Duration(getEnvInt("STREAM_SHARD_REFRESH_SECONDS", 60)) * time.Second,

		ServiceAccountFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", "./service-account.json"),
		FCMProjectID:       getEnv("FCM_PROJECT_ID", ""),
		FCMBaseURL:         getEnv("FCM_BASE_URL", "https://fcm.googleapis.com"),
		TokenCache:         getEnvBool("TOKEN_CACHE", false),
		HTTPTimeout:        time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 30)) * time.Second,

		Timezone:       getEnv("NOTIFY_TIMEZONE", "UTC"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

// Location returns the time zone used to render notification dates.
// Unknown zone names fall back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
