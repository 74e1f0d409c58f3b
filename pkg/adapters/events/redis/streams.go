package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aescanero/cloudedu/pkg/domain"
	"github.com/aescanero/cloudedu/pkg/ports"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultMaxLen caps each stream so the feed never grows without bound
const DefaultMaxLen = 1000

// StreamsEventBus implements EventBus using Redis Streams.
// Every subscriber reads the stream independently, so each one sees every
// event published after it subscribed.
type StreamsEventBus struct {
	client *redis.Client
	logger *zap.Logger
	maxLen int64

	// ctx ends every reader when the bus is closed
	ctx     context.Context
	cancel  context.CancelFunc
	readers sync.WaitGroup
}

// NewStreamsEventBus creates a new Redis Streams event bus
func NewStreamsEventBus(client *redis.Client, maxLen int64, logger *zap.Logger) *StreamsEventBus {
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &StreamsEventBus{
		client: client,
		logger: logger,
		maxLen: maxLen,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Publish appends the event to the topic's stream
func (e *StreamsEventBus) Publish(ctx context.Context, topic string, event domain.Event) error {
	streamKey := getStreamKey(topic)

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: streamKey,
		MaxLen: e.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}

	if _, err := e.client.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("failed to add to stream: %w", err)
	}

	e.logger.Debug("event published",
		zap.String("event_id", event.ID),
		zap.String("type", string(event.Type)),
		zap.String("stream", streamKey))

	return nil
}

// Subscribe starts reading new entries of the topic's stream until ctx is
// done or the bus is closed
func (e *StreamsEventBus) Subscribe(ctx context.Context, topic string, handler ports.EventHandler) error {
	streamKey := getStreamKey(topic)

	// Resolve "$" once so entries added between reads are not skipped
	lastID := "0-0"
	entries, err := e.client.XRevRangeN(ctx, streamKey, "+", "-", 1).Result()
	if err != nil {
		return fmt.Errorf("failed to read stream tail: %w", err)
	}
	if len(entries) > 0 {
		lastID = entries[0].ID
	}

	e.logger.Info("subscribed to event stream",
		zap.String("stream", streamKey),
		zap.String("from", lastID))

	readCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(e.ctx, cancel)

	e.readers.Add(1)
	go func() {
		defer e.readers.Done()
		defer stop()
		defer cancel()

		e.readStream(readCtx, streamKey, lastID, handler)
	}()

	return nil
}

// readStream reads events from a stream
func (e *StreamsEventBus) readStream(ctx context.Context, streamKey, lastID string, handler ports.EventHandler) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		streams, err := e.client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{streamKey, lastID},
			Count:   10,
			Block:   time.Second,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			e.logger.Error("failed to read from stream",
				zap.String("stream", streamKey),
				zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		for _, stream := range streams {
			for _, message := range stream.Messages {
				lastID = message.ID
				e.processMessage(ctx, streamKey, message, handler)
			}
		}
	}
}

// processMessage decodes a stream entry and hands it to handler
func (e *StreamsEventBus) processMessage(ctx context.Context, streamKey string, message redis.XMessage, handler ports.EventHandler) {
	data, ok := message.Values["data"].(string)
	if !ok {
		e.logger.Error("invalid message format",
			zap.String("stream", streamKey),
			zap.String("message_id", message.ID))
		return
	}

	var event domain.Event
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		e.logger.Error("failed to unmarshal event",
			zap.String("stream", streamKey),
			zap.String("message_id", message.ID),
			zap.Error(err))
		return
	}

	if err := handler(ctx, event); err != nil {
		e.logger.Error("handler error",
			zap.String("stream", streamKey),
			zap.String("message_id", message.ID),
			zap.Error(err))
	}
}

// Close stops every reader and waits for them to exit.
// The Redis client is closed by its owner.
func (e *StreamsEventBus) Close() error {
	e.cancel()
	e.readers.Wait()
	return nil
}

// getStreamKey returns the Redis stream key for a topic
func getStreamKey(topic string) string {
	return fmt.Sprintf("cloudedu:events:%s", topic)
}
