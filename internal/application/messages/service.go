package messages

import (
	"context"
	"fmt"
	"time"

	"github.com/aescanero/cloudedu/pkg/domain"
	"github.com/aescanero/cloudedu/pkg/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service coordinates message reads and writes
type Service struct {
	store    ports.MessageStore
	eventBus ports.EventBus
	metrics  ports.MetricsCollector
	logger   *zap.Logger

	hostname string
	now      func() time.Time
}

// Option customizes a Service
type Option func(*Service)

// WithClock overrides the time source used for message timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new message service
func NewService(
	store ports.MessageStore,
	eventBus ports.EventBus,
	metrics ports.MetricsCollector,
	hostname string,
	logger *zap.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		store:    store,
		eventBus: eventBus,
		metrics:  metrics,
		logger:   logger,
		hostname: hostname,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Hostname returns the identity stamped on new messages
func (s *Service) Hostname() string {
	return s.hostname
}

// List returns every stored message in insertion order
func (s *Service) List(ctx context.Context) ([]domain.Message, error) {
	messages, err := s.store.Load(ctx)
	if err != nil {
		s.metrics.IncStorageErrors("load", errorKind(err))
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	return messages, nil
}

// Count returns the number of stored messages
func (s *Service) Count(ctx context.Context) (int, error) {
	messages, err := s.List(ctx)
	if err != nil {
		return 0, err
	}

	return len(messages), nil
}

// Create validates input, appends a new message and publishes an event
func (s *Service) Create(ctx context.Context, input domain.NewMessage) (domain.Message, error) {
	if input.Text == nil {
		return domain.Message{}, ErrTextRequired
	}

	author := domain.DefaultAuthor
	if input.Author != nil {
		author = *input.Author
	}

	var created domain.Message
	err := s.store.Update(ctx, func(messages []domain.Message) ([]domain.Message, error) {
		created = domain.Message{
			ID:        len(messages) + 1,
			Text:      *input.Text,
			Author:    author,
			Timestamp: domain.FormatTimestamp(s.now()),
			Hostname:  s.hostname,
		}
		return append(messages, created), nil
	})
	if err != nil {
		s.metrics.IncStorageErrors("update", errorKind(err))
		s.logger.Error("failed to store message", zap.Error(err))
		return domain.Message{}, fmt.Errorf("failed to store message: %w", err)
	}

	s.logger.Info("message created",
		zap.Int("id", created.ID),
		zap.String("author", created.Author))

	event := domain.Event{
		ID:        uuid.New().String(),
		Type:      domain.EventTypeMessageCreated,
		Timestamp: s.now(),
		Message:   &created,
	}

	// The message is already persisted; a lost event only affects live feeds
	if err := s.eventBus.Publish(ctx, ports.TopicMessages, event); err != nil {
		s.logger.Warn("failed to publish message event",
			zap.Int("id", created.ID),
			zap.Error(err))
	} else {
		s.metrics.IncEventsPublished(string(event.Type))
	}

	return created, nil
}
