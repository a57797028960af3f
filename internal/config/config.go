package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	QueueDriverNone     = "none"
	QueueDriverMemory   = "memory"
	QueueDriverPostgres = "postgres"

	KeyStrategyUUID      = "uuid"
	KeyStrategySnowflake = "snowflake"
)

// Config is the process configuration, read from the environment and an
// optional .env file.
type Config struct {
	ServiceName string
	LogLevel    string

	// LogRoot is the directory routine frames are written under.
	LogRoot    string
	EventsPath string

	KeyStrategy string

	Queue    QueueConfig
	Tracing  TracingConfig
	Metrics  MetricsConfig
	GRPCAddr string
}

type QueueConfig struct {
	Driver           string
	DSN              string
	MemoryLimit      int
	Retries          uint64
	RetryInterval    time.Duration
	RetryMaxInterval time.Duration
	BreakerFailures  uint32
	BreakerTimeout   time.Duration
}

type TracingConfig struct {
	Enabled  bool
	Endpoint string
}

type MetricsConfig struct {
	Addr string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServiceName: getEnv("SERVICE_NAME", "go-observer"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogRoot:     getEnv("OBSERVER_LOGS", "/var/log/"),
		EventsPath:  getEnv("EVENTS_PATH", ""),
		KeyStrategy: getEnv("KEY_STRATEGY", KeyStrategyUUID),
		Queue: QueueConfig{
			Driver:           getEnv("QUEUE_DRIVER", QueueDriverMemory),
			DSN:              getEnv("DATABASE_DSN", ""),
			MemoryLimit:      getEnvAsInt("QUEUE_MEMORY_LIMIT", 10000),
			Retries:          uint64(max(getEnvAsInt("QUEUE_RETRIES", 3), 0)),
			RetryInterval:    getEnvAsDuration("QUEUE_RETRY_INTERVAL", 100*time.Millisecond),
			RetryMaxInterval: getEnvAsDuration("QUEUE_RETRY_MAX_INTERVAL", 2*time.Second),
			BreakerFailures:  uint32(max(getEnvAsInt("QUEUE_BREAKER_FAILURES", 5), 1)),
			BreakerTimeout:   getEnvAsDuration("QUEUE_BREAKER_TIMEOUT", 30*time.Second),
		},
		Tracing: TracingConfig{
			Enabled:  getEnvAsBool("TRACING_ENABLED", false),
			Endpoint: getEnv("OTLP_ENDPOINT", "localhost:4317"),
		},
		Metrics: MetricsConfig{
			Addr: getEnv("METRICS_ADDR", ":9090"),
		},
		GRPCAddr: getEnv("GRPC_ADDR", ":50051"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Queue.Driver {
	case QueueDriverNone, QueueDriverMemory:
	case QueueDriverPostgres:
		if c.Queue.DSN == "" {
			return fmt.Errorf("DATABASE_DSN is required for the postgres queue")
		}
	default:
		return fmt.Errorf("unknown queue driver %q", c.Queue.Driver)
	}

	switch c.KeyStrategy {
	case KeyStrategyUUID, KeyStrategySnowflake:
	default:
		return fmt.Errorf("unknown key strategy %q", c.KeyStrategy)
	}

	if c.Queue.MemoryLimit < 0 {
		return fmt.Errorf("queue memory limit must not be negative")
	}
	if c.LogRoot == "" {
		return fmt.Errorf("log root is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
