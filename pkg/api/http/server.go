package http

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/aescanero/cloudedu/internal/application/messages"
	"github.com/aescanero/cloudedu/pkg/ports"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server represents the HTTP API server
type Server struct {
	router   *gin.Engine
	server   *http.Server
	messages *messages.Service
	metrics  ports.MetricsCollector
	gatherer prometheus.Gatherer
	info     AppInfo
	logger   *zap.Logger
}

// AppInfo is the static metadata reported by /api/info
type AppInfo struct {
	Name        string
	Version     string
	Environment string
}

// Config holds HTTP server configuration
type Config struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	Messages          *messages.Service
	Metrics           ports.MetricsCollector
	Gatherer          prometheus.Gatherer
	Info              AppInfo
	Logger            *zap.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestID())
	router.Use(requestLogger(cfg.Logger))
	router.Use(requestMetrics(cfg.Metrics))
	router.Use(corsMiddleware())

	s := &Server{
		router:   router,
		messages: cfg.Messages,
		metrics:  cfg.Metrics,
		gatherer: cfg.Gatherer,
		info:     cfg.Info,
		logger:   cfg.Logger,
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	return s
}

// setupRoutes configures API routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)

	// Health check
	s.router.GET("/health", s.handleHealth)

	// Metrics
	metricsHandler := promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})
	s.router.GET("/metrics", s.handleMetrics(metricsHandler))

	api := s.router.Group("/api")
	{
		api.GET("/messages", s.handleListMessages)
		api.POST("/messages", s.handleCreateMessage)
		api.GET("/info", s.handleInfo)
	}

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	})
}

// SetupWebSocket adds the live feed handler to the server
func (s *Server) SetupWebSocket(handler interface{}) {
	if wsHandler, ok := handler.(interface {
		HandleMessageStream(*gin.Context)
	}); ok {
		s.router.GET("/api/messages/stream", wsHandler.HandleMessageStream)
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.server.Addr, err)
	}

	return s.Serve(listener)
}

// Serve accepts connections on listener until Shutdown is called
func (s *Server) Serve(listener net.Listener) error {
	s.logger.Info("starting HTTP server", zap.String("addr", listener.Addr().String()))

	if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info("HTTP server shut down complete")
	return nil
}
