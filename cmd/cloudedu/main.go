package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aescanero/cloudedu/internal/application/messages"
	"github.com/aescanero/cloudedu/internal/application/monitor"
	"github.com/aescanero/cloudedu/internal/config"
	memoryevents "github.com/aescanero/cloudedu/pkg/adapters/events/memory"
	redisevents "github.com/aescanero/cloudedu/pkg/adapters/events/redis"
	"github.com/aescanero/cloudedu/pkg/adapters/metrics/prometheus"
	filestorage "github.com/aescanero/cloudedu/pkg/adapters/storage/file"
	memorystorage "github.com/aescanero/cloudedu/pkg/adapters/storage/memory"
	redisstorage "github.com/aescanero/cloudedu/pkg/adapters/storage/redis"
	"github.com/aescanero/cloudedu/pkg/api/grpc"
	"github.com/aescanero/cloudedu/pkg/api/http"
	"github.com/aescanero/cloudedu/pkg/api/websocket"
	"github.com/aescanero/cloudedu/pkg/ports"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const appName = "CloudEdu Services"

var (
	// Version is set by build flags
	Version   = "1.0.0"
	BuildTime = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("starting CloudEdu Services",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("hostname", cfg.Hostname),
		zap.String("environment", cfg.Environment))

	ctx := context.Background()

	// Initialize Redis client when a backend needs it
	var redisClient *goredis.Client
	if cfg.UsesRedis() {
		redisClient = goredis.NewClient(&goredis.Options{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			MaxRetries:   cfg.Redis.MaxRetries,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal("failed to connect to Redis", zap.Error(err))
		}
		logger.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))
	}

	// Initialize adapters
	store, err := newStore(cfg, redisClient, logger)
	if err != nil {
		logger.Fatal("failed to create message store", zap.Error(err))
	}

	var eventBus ports.EventBus
	switch cfg.EventBackend {
	case config.EventBackendRedis:
		eventBus = redisevents.NewStreamsEventBus(redisClient, cfg.Redis.StreamLen, logger)
	default:
		eventBus = memoryevents.NewInMemoryEventBus(logger)
	}

	registry := promclient.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metricsCollector := prometheus.NewCollector(registry)

	// Initialize application components
	messageService := messages.NewService(
		store,
		eventBus,
		metricsCollector,
		cfg.Hostname,
		logger,
	)

	var storeMonitor *monitor.StoreMonitor
	if cfg.StoreCheckInterval > 0 {
		storeMonitor = monitor.NewStoreMonitor(store, metricsCollector, cfg.StoreCheckInterval, logger)
		storeMonitor.Start()
	}

	// Initialize API servers
	httpServer := http.NewServer(&http.Config{
		Addr:              cfg.GetHTTPAddr(),
		ReadHeaderTimeout: cfg.Timeouts.ReadHeader,
		Messages:          messageService,
		Metrics:           metricsCollector,
		Gatherer:          registry,
		Info: http.AppInfo{
			Name:        appName,
			Version:     Version,
			Environment: cfg.Environment,
		},
		Logger: logger,
	})

	// Add WebSocket handler to HTTP server
	wsHandler := websocket.NewHandler(eventBus, metricsCollector, cfg.Hostname, logger)
	httpServer.SetupWebSocket(wsHandler)

	var grpcServer *grpc.Server
	if cfg.GRPC.Enabled {
		grpcServer, err = grpc.NewServer(&grpc.Config{
			Port:   cfg.GRPC.Port,
			Logger: logger,
		})
		if err != nil {
			logger.Fatal("failed to create gRPC server", zap.Error(err))
		}
	}

	// Start servers
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	if grpcServer != nil {
		go func() {
			if err := grpcServer.Start(); err != nil {
				logger.Fatal("gRPC server failed", zap.Error(err))
			}
		}()
	}

	logger.Info("CloudEdu Services started",
		zap.String("http_addr", cfg.GetHTTPAddr()),
		zap.Bool("grpc_enabled", cfg.GRPC.Enabled),
		zap.String("store_backend", cfg.StoreBackend),
		zap.String("event_backend", cfg.EventBackend))

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("received shutdown signal")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.Shutdown)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	if grpcServer != nil {
		if err := grpcServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("gRPC server shutdown error", zap.Error(err))
		}
	}

	if storeMonitor != nil {
		storeMonitor.Stop()
	}

	if err := eventBus.Close(); err != nil {
		logger.Error("event bus close error", zap.Error(err))
	}

	// The redis store owns the client and closes it
	if err := store.Close(); err != nil {
		logger.Error("message store close error", zap.Error(err))
	}
	if redisClient != nil && cfg.StoreBackend != config.StoreBackendRedis {
		if err := redisClient.Close(); err != nil {
			logger.Error("Redis close error", zap.Error(err))
		}
	}

	logger.Info("CloudEdu Services shut down complete")
}

// newStore builds the message store selected by configuration
func newStore(cfg *config.Config, redisClient *goredis.Client, logger *zap.Logger) (ports.MessageStore, error) {
	switch cfg.StoreBackend {
	case config.StoreBackendRedis:
		return redisstorage.NewMessageStorage(redisClient, cfg.Redis.MessagesKey, logger), nil
	case config.StoreBackendMemory:
		logger.Warn("using in-memory message store, messages will not survive a restart")
		return memorystorage.NewInMemoryMessageStorage(), nil
	default:
		store, err := filestorage.NewMessageStorage(cfg.DataDir, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("using file message store", zap.String("path", store.Path()))
		return store, nil
	}
}

// initLogger initializes the logger based on log level
func initLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	return logger
}
