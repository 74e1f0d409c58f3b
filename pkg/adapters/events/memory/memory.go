package memory

import (
	"context"
	"sync"

	"github.com/aescanero/cloudedu/pkg/domain"
	"github.com/aescanero/cloudedu/pkg/ports"
	"go.uber.org/zap"
)

// QueueSize is the number of undelivered events buffered per subscription
const QueueSize = 256

// subscription is a registered handler on a topic. Events are queued and
// delivered in publish order by a single goroutine.
type subscription struct {
	id      uint64
	handler ports.EventHandler
	ctx     context.Context
	cancel  context.CancelFunc
	events  chan domain.Event
}

// InMemoryEventBus implements EventBus using in-process handlers
type InMemoryEventBus struct {
	subscribers map[string][]*subscription
	nextID      uint64
	logger      *zap.Logger
	mu          sync.RWMutex
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		subscribers: make(map[string][]*subscription),
		logger:      logger,
	}
}

// Publish queues an event for every subscriber of a topic. It never blocks;
// an event is dropped for a subscriber whose queue is full.
func (e *InMemoryEventBus) Publish(ctx context.Context, topic string, event domain.Event) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, sub := range e.subscribers[topic] {
		select {
		case sub.events <- event:
		default:
			e.logger.Warn("subscriber queue full, dropping event",
				zap.String("topic", topic),
				zap.Uint64("subscription", sub.id),
				zap.String("event_id", event.ID))
		}
	}

	return nil
}

// Subscribe registers handler on topic until ctx is cancelled or the bus is
// closed. Handlers run on the subscriber's context, one event at a time.
func (e *InMemoryEventBus) Subscribe(ctx context.Context, topic string, handler ports.EventHandler) error {
	subCtx, cancel := context.WithCancel(ctx)

	e.mu.Lock()
	e.nextID++
	sub := &subscription{
		id:      e.nextID,
		handler: handler,
		ctx:     subCtx,
		cancel:  cancel,
		events:  make(chan domain.Event, QueueSize),
	}
	e.subscribers[topic] = append(e.subscribers[topic], sub)
	e.mu.Unlock()

	go e.deliver(topic, sub)

	return nil
}

// deliver drains a subscription queue in order until the subscription ends
func (e *InMemoryEventBus) deliver(topic string, sub *subscription) {
	defer e.unsubscribe(topic, sub.id)

	for {
		select {
		case <-sub.ctx.Done():
			return
		case event := <-sub.events:
			if err := sub.handler(sub.ctx, event); err != nil {
				e.logger.Warn("event handler failed",
					zap.String("topic", topic),
					zap.String("event_id", event.ID),
					zap.Error(err))
			}
		}
	}
}

// Subscribers returns the number of live subscriptions on topic
func (e *InMemoryEventBus) Subscribers(topic string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return len(e.subscribers[topic])
}

// Close ends every subscription
func (e *InMemoryEventBus) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, subs := range e.subscribers {
		for _, sub := range subs {
			sub.cancel()
		}
	}
	e.subscribers = make(map[string][]*subscription)
	return nil
}

func (e *InMemoryEventBus) unsubscribe(topic string, id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	subs := e.subscribers[topic]
	for i, s := range subs {
		if s.id == id {
			s.cancel()
			e.subscribers[topic] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(e.subscribers[topic]) == 0 {
		delete(e.subscribers, topic)
	}
}
