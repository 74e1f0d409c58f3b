package ports

import (
	"context"

	"github.com/aescanero/cloudedu/pkg/domain"
)

// TopicMessages carries message lifecycle events.
const TopicMessages = "messages"

// EventHandler processes an event delivered by the bus
type EventHandler func(ctx context.Context, event domain.Event) error

// EventBus fans events out to subscribers.
type EventBus interface {
	Publish(ctx context.Context, topic string, event domain.Event) error

	// Subscribe registers handler until ctx is cancelled.
	Subscribe(ctx context.Context, topic string, handler EventHandler) error

	Close() error
}
