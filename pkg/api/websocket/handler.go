package websocket

import (
	"context"
	"net/http"
	"time"

	"github.com/aescanero/cloudedu/pkg/domain"
	"github.com/aescanero/cloudedu/pkg/ports"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// FrameTypeConnected is sent once the subscription is in place
	FrameTypeConnected = "connected"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Frame is a single message pushed to feed clients
type Frame struct {
	Type     string          `json:"type"`
	Hostname string          `json:"hostname,omitempty"`
	Message  *domain.Message `json:"message,omitempty"`
}

// Handler handles WebSocket connections
type Handler struct {
	eventBus ports.EventBus
	metrics  ports.MetricsCollector
	hostname string
	logger   *zap.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(eventBus ports.EventBus, metrics ports.MetricsCollector, hostname string, logger *zap.Logger) *Handler {
	return &Handler{
		eventBus: eventBus,
		metrics:  metrics,
		hostname: hostname,
		logger:   logger,
	}
}

// HandleMessageStream streams newly created messages to the client
func (h *Handler) HandleMessageStream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("failed to upgrade connection", zap.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()

	h.metrics.IncActiveConnections()
	defer h.metrics.DecActiveConnections()

	h.logger.Info("WebSocket connection established",
		zap.String("client", c.ClientIP()))

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	eventChan := make(chan domain.Event, 16)
	if err := h.eventBus.Subscribe(ctx, ports.TopicMessages, h.forward(eventChan)); err != nil {
		h.logger.Error("failed to subscribe to events",
			zap.String("topic", ports.TopicMessages),
			zap.Error(err))
		return
	}

	// The reader only exists to process control frames and notice disconnects
	go h.readPump(conn, cancel)

	if err := h.write(conn, Frame{Type: FrameTypeConnected, Hostname: h.hostname}); err != nil {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("WebSocket connection closed",
				zap.String("client", c.ClientIP()))
			return
		case event := <-eventChan:
			if event.Type != domain.EventTypeMessageCreated || event.Message == nil {
				continue
			}

			if err := h.write(conn, Frame{Type: string(event.Type), Message: event.Message}); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// forward returns an event handler that hands events to ch without blocking
func (h *Handler) forward(ch chan<- domain.Event) ports.EventHandler {
	return func(ctx context.Context, event domain.Event) error {
		select {
		case ch <- event:
		case <-ctx.Done():
			return ctx.Err()
		default:
			h.logger.Warn("event channel full, dropping event",
				zap.String("event_id", event.ID),
				zap.String("event_type", string(event.Type)))
		}
		return nil
	}
}

func (h *Handler) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Handler) write(conn *websocket.Conn, frame Frame) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(frame); err != nil {
		h.logger.Error("failed to write message", zap.Error(err))
		return err
	}
	return nil
}
