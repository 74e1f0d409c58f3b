package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/aescanero/cloudedu/pkg/domain"
	"github.com/aescanero/cloudedu/pkg/ports"
	"go.uber.org/zap"
)

// FileName is the document written inside the data directory
const FileName = "messages.json"

// MessageStorage implements ports.MessageStore on top of a JSON file
type MessageStorage struct {
	path   string
	logger *zap.Logger

	mu sync.Mutex
}

// NewMessageStorage creates a file-backed store rooted at dataDir.
// The directory is created if it does not exist.
func NewMessageStorage(dataDir string, logger *zap.Logger) (*MessageStorage, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dataDir, err)
	}

	return &MessageStorage{
		path:   filepath.Join(dataDir, FileName),
		logger: logger,
	}, nil
}

// Path returns the location of the backing file
func (s *MessageStorage) Path() string {
	return s.path
}

// Load reads every message from disk
func (s *MessageStorage) Load(ctx context.Context) ([]domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

// Save overwrites the backing file with messages
func (s *MessageStorage) Save(ctx context.Context, messages []domain.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save(messages)
}

// Update loads, applies fn and saves while holding the store lock
func (s *MessageStorage) Update(ctx context.Context, fn ports.UpdateFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	messages, err := s.load()
	if err != nil {
		return err
	}

	updated, err := fn(messages)
	if err != nil {
		return err
	}

	return s.save(updated)
}

// Close is a no-op for the file store
func (s *MessageStorage) Close() error {
	return nil
}

func (s *MessageStorage) load() ([]domain.Message, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []domain.Message{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w: %w", s.path, ports.ErrStorageIO, err)
	}

	messages, err := domain.DecodeMessages(data)
	if err != nil {
		s.logger.Error("message file is not a JSON array of messages",
			zap.String("path", s.path),
			zap.Error(err))
		return nil, fmt.Errorf("failed to parse %s: %w: %w", s.path, ports.ErrStorageCorrupted, err)
	}

	return messages, nil
}

func (s *MessageStorage) save(messages []domain.Message) error {
	data, err := encode(messages)
	if err != nil {
		return fmt.Errorf("failed to marshal messages: %w", err)
	}

	// Write next to the target so the rename stays on one filesystem.
	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+FileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w: %w", ports.ErrStorageIO, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write messages: %w: %w", ports.ErrStorageIO, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to sync messages: %w: %w", ports.ErrStorageIO, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w: %w", ports.ErrStorageIO, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to set file mode: %w: %w", ports.ErrStorageIO, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w: %w", s.path, ports.ErrStorageIO, err)
	}

	s.logger.Debug("messages saved",
		zap.String("path", s.path),
		zap.Int("count", len(messages)))

	return nil
}

// encode renders messages as an indented array, leaving non-ASCII and HTML
// characters unescaped.
func encode(messages []domain.Message) ([]byte, error) {
	if messages == nil {
		messages = []domain.Message{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(messages); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
