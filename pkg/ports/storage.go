package ports

import (
	"context"
	"errors"

	"github.com/aescanero/cloudedu/pkg/domain"
)

var (
	// ErrStorageCorrupted is wrapped by store errors when the persisted
	// document cannot be read back as a JSON array of messages.
	ErrStorageCorrupted = errors.New("message store is corrupted")

	// ErrStorageIO is wrapped by store errors when the backing medium
	// cannot be read or written.
	ErrStorageIO = errors.New("message store unavailable")
)

// UpdateFunc receives the current messages and returns the sequence to
// persist. Returning an error aborts the update without saving.
type UpdateFunc func(messages []domain.Message) ([]domain.Message, error)

// MessageStore persists the ordered message sequence as a whole.
type MessageStore interface {
	// Load returns every message in insertion order. A store that has never
	// been written returns an empty slice.
	Load(ctx context.Context) ([]domain.Message, error)

	// Save replaces the stored sequence.
	Save(ctx context.Context, messages []domain.Message) error

	// Update runs load, fn and save as one critical section.
	Update(ctx context.Context, fn UpdateFunc) error

	// Close releases resources held by the store.
	Close() error
}
