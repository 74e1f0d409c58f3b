package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/aescanero/cloudedu/pkg/domain"
	"github.com/aescanero/cloudedu/pkg/ports"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultKey holds the message array when no key is configured
const DefaultKey = "cloudedu:messages"

// maxTxAttempts bounds optimistic transaction retries in Update
const maxTxAttempts = 5

// getter is satisfied by both *redis.Client and *redis.Tx
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// MessageStorage implements MessageStore using a single Redis key
type MessageStorage struct {
	client *redis.Client
	logger *zap.Logger
	key    string

	mu sync.Mutex
}

// NewMessageStorage creates a new Redis message storage
func NewMessageStorage(client *redis.Client, key string, logger *zap.Logger) *MessageStorage {
	if key == "" {
		key = DefaultKey
	}

	return &MessageStorage{
		client: client,
		logger: logger,
		key:    key,
	}
}

// Load retrieves every message from Redis
func (s *MessageStorage) Load(ctx context.Context) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx, s.client)
}

// Save overwrites the stored array
func (s *MessageStorage) Save(ctx context.Context, messages []domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := marshal(messages)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save messages: %w: %w", ports.ErrStorageIO, err)
	}

	return nil
}

// Update runs fn inside a WATCH/MULTI transaction, retrying when another
// writer touched the key first.
func (s *MessageStorage) Update(ctx context.Context, fn ports.UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fnErr error
	txf := func(tx *redis.Tx) error {
		messages, err := s.load(ctx, tx)
		if err != nil {
			return err
		}

		updated, err := fn(messages)
		if err != nil {
			fnErr = err
			return err
		}

		data, err := marshal(updated)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key, data, 0)
			return nil
		})
		return err
	}

	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, s.key)
		if err == nil {
			return nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			if fnErr != nil {
				return fnErr
			}
			if isStoreError(err) {
				return err
			}
			return fmt.Errorf("failed to update messages: %w: %w", ports.ErrStorageIO, err)
		}

		s.logger.Debug("message update conflicted, retrying",
			zap.String("key", s.key),
			zap.Int("attempt", attempt))
	}

	return fmt.Errorf("failed to update messages after %d attempts: %w", maxTxAttempts, ports.ErrStorageIO)
}

// Close closes the underlying client
func (s *MessageStorage) Close() error {
	return s.client.Close()
}

func (s *MessageStorage) load(ctx context.Context, cmd getter) ([]domain.Message, error) {
	data, err := cmd.Get(ctx, s.key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return []domain.Message{}, nil
		}
		return nil, fmt.Errorf("failed to get messages: %w: %w", ports.ErrStorageIO, err)
	}

	messages, err := domain.DecodeMessages(data)
	if err != nil {
		s.logger.Error("failed to unmarshal messages",
			zap.String("key", s.key),
			zap.Error(err))
		return nil, fmt.Errorf("failed to unmarshal messages: %w: %w", ports.ErrStorageCorrupted, err)
	}

	return messages, nil
}

func marshal(messages []domain.Message) ([]byte, error) {
	if messages == nil {
		messages = []domain.Message{}
	}

	data, err := json.Marshal(messages)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal messages: %w", err)
	}

	return data, nil
}

func isStoreError(err error) bool {
	return errors.Is(err, ports.ErrStorageIO) || errors.Is(err, ports.ErrStorageCorrupted)
}
