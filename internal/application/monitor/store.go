package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aescanero/cloudedu/pkg/ports"
	"go.uber.org/zap"
)

// StoreMonitor monitors message store health
type StoreMonitor struct {
	store    ports.MessageStore
	metrics  ports.MetricsCollector
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger

	mu      sync.RWMutex
	running bool
	last    *StoreStatus
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// StoreStatus is the outcome of a single probe
type StoreStatus struct {
	Healthy   bool
	Messages  int
	Error     error
	Timestamp time.Time
}

// NewStoreMonitor creates a new store monitor
func NewStoreMonitor(store ports.MessageStore, metrics ports.MetricsCollector, interval time.Duration, logger *zap.Logger) *StoreMonitor {
	timeout := interval / 2
	if timeout <= 0 || timeout > 5*time.Second {
		timeout = 5 * time.Second
	}

	return &StoreMonitor{
		store:    store,
		metrics:  metrics,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
	}
}

// Start runs a first probe and then probes on every tick.
// A stopped monitor can be started again.
func (m *StoreMonitor) Start() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})
	stopCh, doneCh := m.stopCh, m.doneCh
	m.mu.Unlock()

	go m.run(stopCh, doneCh)
}

// Stop stops the monitor and waits for the loop to exit
func (m *StoreMonitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	stopCh, doneCh := m.stopCh, m.doneCh
	m.mu.Unlock()

	close(stopCh)
	<-doneCh
}

// run is the main monitoring loop
func (m *StoreMonitor) run(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	m.Check()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			m.Check()
		}
	}
}

// Check probes the store once and records the result
func (m *StoreMonitor) Check() *StoreStatus {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	status := &StoreStatus{Timestamp: time.Now()}

	messages, err := m.store.Load(ctx)
	if err != nil {
		status.Error = err
		m.metrics.SetStoreUp(false)

		kind := "io"
		if errors.Is(err, ports.ErrStorageCorrupted) {
			kind = "corrupted"
		}
		m.metrics.IncStorageErrors("probe", kind)

		m.logger.Warn("message store is unhealthy",
			zap.String("kind", kind),
			zap.Error(err))
	} else {
		status.Healthy = true
		status.Messages = len(messages)
		m.metrics.SetStoreUp(true)
		m.metrics.SetMessagesTotal(status.Messages)

		m.logger.Debug("message store health check",
			zap.Int("messages", status.Messages))
	}

	m.mu.Lock()
	m.last = status
	m.mu.Unlock()

	return status
}

// LastStatus returns the most recent probe result, or nil before the first probe
func (m *StoreMonitor) LastStatus() *StoreStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.last
}
