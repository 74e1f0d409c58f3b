package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

var configKeys = []string{
	"HTTP_HOST", "PORT", "LOG_LEVEL", "HOSTNAME", "ENVIRONMENT", "DATA_DIR",
	"STORE_BACKEND", "EVENT_BACKEND", "REDIS_ADDR", "GRPC_ENABLED", "GRPC_PORT",
	"TIMEOUT_SHUTDOWN", "TIMEOUT_READ_HEADER", "STORE_CHECK_INTERVAL",
}

// clearEnv unsets keys for the duration of the test
func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("Unsetenv(%s): %v", key, err)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t, configKeys...)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTPPort != 5000 || cfg.HTTPHost != "0.0.0.0" {
		t.Errorf("unexpected listen address %s", cfg.GetHTTPAddr())
	}
	if cfg.GetHTTPAddr() != "0.0.0.0:5000" {
		t.Errorf("unexpected HTTP addr %s", cfg.GetHTTPAddr())
	}
	if cfg.Hostname != "unknown" {
		t.Errorf("expected hostname unknown, got %q", cfg.Hostname)
	}
	if cfg.Environment != "production" {
		t.Errorf("expected environment production, got %q", cfg.Environment)
	}
	if cfg.DataDir != "/app/data" {
		t.Errorf("expected data dir /app/data, got %q", cfg.DataDir)
	}
	if cfg.StoreBackend != StoreBackendFile || cfg.EventBackend != EventBackendMemory {
		t.Errorf("unexpected backends %s/%s", cfg.StoreBackend, cfg.EventBackend)
	}
	if cfg.UsesRedis() {
		t.Error("default config should not need Redis")
	}
	if cfg.Timeouts.Shutdown != 30*time.Second {
		t.Errorf("unexpected shutdown timeout %s", cfg.Timeouts.Shutdown)
	}
	if cfg.StoreCheckInterval != 30*time.Second {
		t.Errorf("unexpected store check interval %s", cfg.StoreCheckInterval)
	}
	if cfg.GRPC.Enabled {
		t.Error("gRPC should be disabled by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t, configKeys...)
	t.Setenv("HOSTNAME", "pod-7")
	t.Setenv("ENVIRONMENT", "staging")
	t.Setenv("DATA_DIR", "/tmp/cloudedu")
	t.Setenv("PORT", "8081")
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Hostname != "pod-7" || cfg.Environment != "staging" || cfg.DataDir != "/tmp/cloudedu" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.GetHTTPAddr() != "0.0.0.0:8081" {
		t.Errorf("unexpected HTTP addr %s", cfg.GetHTTPAddr())
	}
	if !cfg.UsesRedis() || cfg.Redis.Addr != "redis:6379" {
		t.Errorf("redis backend not configured: %+v", cfg.Redis)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			HTTPHost:     "0.0.0.0",
			HTTPPort:     5000,
			LogLevel:     "info",
			DataDir:      "/app/data",
			StoreBackend: StoreBackendFile,
			EventBackend: EventBackendMemory,
			GRPC:         GRPCConfig{Port: 9090},
			Redis:        RedisConfig{Addr: "localhost:6379"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "port too low", mutate: func(c *Config) { c.HTTPPort = 0 }, wantErr: "invalid HTTP port"},
		{name: "port too high", mutate: func(c *Config) { c.HTTPPort = 70000 }, wantErr: "invalid HTTP port"},
		{name: "grpc port ignored when disabled", mutate: func(c *Config) { c.GRPC.Port = 0 }},
		{name: "grpc port invalid", mutate: func(c *Config) { c.GRPC = GRPCConfig{Enabled: true, Port: -1} }, wantErr: "invalid gRPC port"},
		{name: "grpc port collides", mutate: func(c *Config) { c.GRPC = GRPCConfig{Enabled: true, Port: 5000} }, wantErr: "collides"},
		{name: "unknown store", mutate: func(c *Config) { c.StoreBackend = "sqlite" }, wantErr: "unsupported store backend"},
		{name: "file store without dir", mutate: func(c *Config) { c.DataDir = "" }, wantErr: "data directory"},
		{name: "memory store without dir", mutate: func(c *Config) { c.DataDir = ""; c.StoreBackend = StoreBackendMemory }},
		{name: "unknown event backend", mutate: func(c *Config) { c.EventBackend = "kafka" }, wantErr: "unsupported event backend"},
		{name: "redis without addr", mutate: func(c *Config) { c.EventBackend = EventBackendRedis; c.Redis.Addr = "" }, wantErr: "redis address"},
		{name: "negative store check interval", mutate: func(c *Config) { c.StoreCheckInterval = -time.Second }, wantErr: "store check interval"},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "trace" }, wantErr: "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	clearEnv(t, configKeys...)
	t.Setenv("PORT", "not-a-number")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error for a non-numeric port")
	}
}
