package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/caarlos0/env/v10"
)

// Store backends
const (
	StoreBackendFile   = "file"
	StoreBackendRedis  = "redis"
	StoreBackendMemory = "memory"
)

// Event bus backends
const (
	EventBackendMemory = "memory"
	EventBackendRedis  = "redis"
)

// Config holds all configuration for CloudEdu Services
type Config struct {
	// Server configuration
	HTTPHost string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	HTTPPort int    `env:"PORT" envDefault:"5000"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Instance identity
	Hostname    string `env:"HOSTNAME" envDefault:"unknown"`
	Environment string `env:"ENVIRONMENT" envDefault:"production"`

	// Storage configuration
	DataDir      string `env:"DATA_DIR" envDefault:"/app/data"`
	StoreBackend string `env:"STORE_BACKEND" envDefault:"file"`
	EventBackend string `env:"EVENT_BACKEND" envDefault:"memory"`

	// Store probe interval; zero disables the monitor
	StoreCheckInterval time.Duration `env:"STORE_CHECK_INTERVAL" envDefault:"30s"`

	// Redis configuration
	Redis RedisConfig

	// gRPC health service
	GRPC GRPCConfig

	// Timeouts
	Timeouts TimeoutConfig
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr        string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password    string `env:"REDIS_PASS"`
	DB          int    `env:"REDIS_DB" envDefault:"0"`
	MessagesKey string `env:"REDIS_MESSAGES_KEY" envDefault:"cloudedu:messages"`
	StreamLen   int64  `env:"REDIS_STREAM_MAXLEN" envDefault:"1000"`

	// Connection pool settings
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	MaxRetries   int           `env:"REDIS_MAX_RETRIES" envDefault:"3"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// GRPCConfig holds gRPC server configuration
type GRPCConfig struct {
	Enabled bool `env:"GRPC_ENABLED" envDefault:"false"`
	Port    int  `env:"GRPC_PORT" envDefault:"9090"`
}

// TimeoutConfig holds various timeout configurations
type TimeoutConfig struct {
	ReadHeader time.Duration `env:"TIMEOUT_READ_HEADER" envDefault:"5s"`
	Shutdown   time.Duration `env:"TIMEOUT_SHUTDOWN" envDefault:"30s"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate server ports
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.GRPC.Enabled && (c.GRPC.Port < 1 || c.GRPC.Port > 65535) {
		return fmt.Errorf("invalid gRPC port: %d", c.GRPC.Port)
	}
	if c.GRPC.Enabled && c.GRPC.Port == c.HTTPPort {
		return fmt.Errorf("gRPC port %d collides with HTTP port", c.GRPC.Port)
	}

	// Validate storage config
	switch c.StoreBackend {
	case StoreBackendFile:
		if c.DataDir == "" {
			return fmt.Errorf("data directory is required for the file store")
		}
	case StoreBackendRedis, StoreBackendMemory:
	default:
		return fmt.Errorf("unsupported store backend: %s (must be file, redis, or memory)", c.StoreBackend)
	}

	switch c.EventBackend {
	case EventBackendMemory, EventBackendRedis:
	default:
		return fmt.Errorf("unsupported event backend: %s (must be memory or redis)", c.EventBackend)
	}

	if c.StoreCheckInterval < 0 {
		return fmt.Errorf("store check interval must not be negative")
	}

	// Validate Redis config
	if c.UsesRedis() && c.Redis.Addr == "" {
		return fmt.Errorf("redis address is required")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// UsesRedis reports whether any backend needs a Redis connection
func (c *Config) UsesRedis() bool {
	return c.StoreBackend == StoreBackendRedis || c.EventBackend == EventBackendRedis
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return net.JoinHostPort(c.HTTPHost, strconv.Itoa(c.HTTPPort))
}
