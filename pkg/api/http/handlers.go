package http

import (
	_ "embed"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aescanero/cloudedu/internal/application/messages"
	"github.com/aescanero/cloudedu/pkg/domain"
	"github.com/aescanero/cloudedu/pkg/ports"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:embed static/index.html
var indexPage []byte

// CreateMessageRequest represents a message creation request.
// Pointer fields distinguish an absent or null field from an empty string.
type CreateMessageRequest struct {
	Text   *string `json:"text"`
	Author *string `json:"author"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Hostname  string `json:"hostname"`
}

// InfoResponse represents the service info response
type InfoResponse struct {
	App           string `json:"app"`
	Version       string `json:"version"`
	Hostname      string `json:"hostname"`
	Environment   string `json:"environment"`
	TotalMessages int    `json:"total_messages"`
}

// handleIndex serves the landing page
func (s *Server) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexPage)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: domain.FormatTimestamp(time.Now()),
		Hostname:  s.messages.Hostname(),
	})
}

// handleMetrics refreshes the message gauge before delegating to promhttp
func (s *Server) handleMetrics(next http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := s.messages.Count(c.Request.Context())
		if err != nil {
			s.logger.Warn("failed to refresh message gauge", zap.Error(err))
		} else {
			s.metrics.SetMessagesTotal(count)
		}

		next.ServeHTTP(c.Writer, c.Request)
	}
}

// handleListMessages returns every stored message
func (s *Server) handleListMessages(c *gin.Context) {
	list, err := s.messages.List(c.Request.Context())
	if err != nil {
		s.respondStorageError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// handleCreateMessage handles message creation
func (s *Server) handleCreateMessage(c *gin.Context) {
	var req CreateMessageRequest
	if err := decodeJSONBody(c, &req); err != nil {
		s.logger.Debug("invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: messages.ErrTextRequired.Message})
		return
	}

	created, err := s.messages.Create(c.Request.Context(), domain.NewMessage{
		Text:   req.Text,
		Author: req.Author,
	})
	if err != nil {
		var validationErr *messages.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: validationErr.Message})
			return
		}
		s.respondStorageError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// decodeJSONBody decodes the whole request body as a single JSON value.
// Trailing data after the value is an error.
func decodeJSONBody(c *gin.Context, obj any) error {
	body, err := c.GetRawData()
	if err != nil {
		return err
	}
	return json.Unmarshal(body, obj)
}

// handleInfo returns service metadata and the message count
func (s *Server) handleInfo(c *gin.Context) {
	total, err := s.messages.Count(c.Request.Context())
	if err != nil {
		s.respondStorageError(c, err)
		return
	}

	c.JSON(http.StatusOK, InfoResponse{
		App:           s.info.Name,
		Version:       s.info.Version,
		Hostname:      s.messages.Hostname(),
		Environment:   s.info.Environment,
		TotalMessages: total,
	})
}

// respondStorageError maps store failures to a 500 response
func (s *Server) respondStorageError(c *gin.Context, err error) {
	s.logger.Error("message store failure",
		zap.String("request_id", c.GetString(requestIDKey)),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))

	message := ports.ErrStorageIO.Error()
	if errors.Is(err, ports.ErrStorageCorrupted) {
		message = ports.ErrStorageCorrupted.Error()
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: message})
}
