package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	PostgresDSN string
	SQLitePath  string
	AuthSecret  string

	TaskWorkers     int
	TaskQueueSize   int
	TaskMaxAttempts int
	TaskRetryDelay  time.Duration

	BillingRefreshInterval time.Duration
}

func Load() (Config, error) {
	// A local .env is a convenience, not a requirement.
	_ = godotenv.Load()

	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "meridian"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	return Config{
		ServiceName: service,
		HTTPPort:    port,
		PostgresDSN: os.Getenv("POSTGRES_DSN"),
		SQLitePath:  os.Getenv("SQLITE_PATH"),
		AuthSecret:  os.Getenv("AUTH_SECRET"),

		TaskWorkers:     envInt("TASK_WORKERS", 4),
		TaskQueueSize:   envInt("TASK_QUEUE_SIZE", 256),
		TaskMaxAttempts: envInt("TASK_MAX_ATTEMPTS", 5),
		TaskRetryDelay:  envDuration("TASK_RETRY_DELAY", 2*time.Second),

		BillingRefreshInterval: envDuration("BILLING_REFRESH_INTERVAL", time.Hour),
	}, nil
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
