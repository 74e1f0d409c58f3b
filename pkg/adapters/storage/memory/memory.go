package memory

import (
	"context"
	"sync"

	"github.com/aescanero/cloudedu/pkg/domain"
	"github.com/aescanero/cloudedu/pkg/ports"
)

// InMemoryMessageStorage implements MessageStore using an in-memory slice
// This is for testing and ephemeral deployments only
type InMemoryMessageStorage struct {
	messages []domain.Message
	mu       sync.Mutex
}

// NewInMemoryMessageStorage creates a new in-memory message storage
func NewInMemoryMessageStorage(seed ...domain.Message) *InMemoryMessageStorage {
	return &InMemoryMessageStorage{
		messages: append([]domain.Message{}, seed...),
	}
}

// Load returns a copy of the stored messages
func (s *InMemoryMessageStorage) Load(ctx context.Context) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshot(), nil
}

// Save replaces the stored messages
func (s *InMemoryMessageStorage) Save(ctx context.Context, messages []domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy to avoid sharing the caller's backing array
	s.messages = append([]domain.Message{}, messages...)
	return nil
}

// Update applies fn to the stored messages under the lock
func (s *InMemoryMessageStorage) Update(ctx context.Context, fn ports.UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated, err := fn(s.snapshot())
	if err != nil {
		return err
	}

	s.messages = append([]domain.Message{}, updated...)
	return nil
}

// Close is a no-op for in-memory storage
func (s *InMemoryMessageStorage) Close() error {
	return nil
}

func (s *InMemoryMessageStorage) snapshot() []domain.Message {
	return append([]domain.Message{}, s.messages...)
}
