package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	ServerPort string

	// Database
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	DBAutoMigrate bool

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// RabbitMQ
	RabbitMQHost     string
	RabbitMQPort     string
	RabbitMQUser     string
	RabbitMQPassword string

	// JWT
	JWTSecret string

	// AWS S3
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSEndpoint        string
	S3UseSSL           string
	S3BucketName       string

	// Reminders
	ReminderThresholds []int
	ReminderHour       int
	SweepTime          string
	Timezone           string
	SweepReportArchive bool

	// Notifications and live stream
	HeartbeatInterval      time.Duration
	MainNotificationExpiry time.Duration
	PushRelay              string
	RateLimitPerMinute     int
}

func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	thresholds, err := getEnvIntList("REMINDER_THRESHOLDS", []int{7, 3, 1, 0})
	if err != nil {
		return nil, err
	}

	config := &Config{
		ServerPort: getEnv("SERVER_PORT", "8006"),

		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "postgres"),
		DBPassword:    getEnv("DB_PASSWORD", "postgres"),
		DBName:        getEnv("DB_NAME", "tasktracker"),
		DBSSLMode:     getEnv("DB_SSLMODE", "disable"),
		DBAutoMigrate: getEnvBool("DB_AUTO_MIGRATE", false),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		RabbitMQHost:     getEnv("RABBITMQ_HOST", "localhost"),
		RabbitMQPort:     getEnv("RABBITMQ_PORT", "5672"),
		RabbitMQUser:     getEnv("RABBITMQ_USER", "guest"),
		RabbitMQPassword: getEnv("RABBITMQ_PASSWORD", "guest"),

		JWTSecret: getEnv("JWT_SECRET", "your-secret-key-change-in-production"),

		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpoint:        getEnv("AWS_ENDPOINT", ""),
		S3UseSSL:           getEnv("S3_USE_SSL", "true"),
		S3BucketName:       getEnv("S3_BUCKET_NAME", "task-tracker-reports"),

		ReminderThresholds: thresholds,
		ReminderHour:       getEnvInt("REMINDER_HOUR", 9),
		SweepTime:          getEnv("REMINDER_SWEEP_TIME", "09:00"),
		Timezone:           getEnv("TIMEZONE", "UTC"),
		SweepReportArchive: getEnvBool("SWEEP_REPORT_ARCHIVE", false),

		HeartbeatInterval:      getEnvDuration("STREAM_HEARTBEAT_INTERVAL", 30*time.Second),
		MainNotificationExpiry: getEnvDuration("MAIN_NOTIFICATION_EXPIRY", 30*24*time.Hour),
		PushRelay:              getEnv("PUSH_RELAY", "local"),
		RateLimitPerMinute:     getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
	}

	if config.ReminderHour < 0 || config.ReminderHour > 23 {
		return nil, fmt.Errorf("REMINDER_HOUR must be between 0 and 23, got %d", config.ReminderHour)
	}
	if _, _, err := config.SweepClock(); err != nil {
		return nil, err
	}
	if _, err := config.Location(); err != nil {
		return nil, err
	}

	return config, nil
}

// DSN returns the Postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}

// Location resolves Timezone; calendar-day arithmetic for reminders happens in it.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// SweepClock parses SweepTime ("HH:MM").
func (c *Config) SweepClock() (hour, minute int, err error) {
	t, err := time.Parse("15:04", c.SweepTime)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid REMINDER_SWEEP_TIME %q: %w", c.SweepTime, err)
	}
	return t.Hour(), t.Minute(), nil
}

// SweepCronSpec returns the cron expression for the daily sweep.
func (c *Config) SweepCronSpec() string {
	hour, minute, err := c.SweepClock()
	if err != nil {
		hour, minute = 9, 0
	}
	return fmt.Sprintf("%d %d * * *", minute, hour)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getEnvIntList(key string, defaultValue []int) ([]int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	var out []int
	seen := make(map[int]bool)
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid %s entry %q", key, part)
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	if len(out) == 0 {
		return defaultValue, nil
	}
	return out, nil
}
