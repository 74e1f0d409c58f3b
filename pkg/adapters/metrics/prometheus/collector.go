package prometheus

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cloudedu"

// Collector implements MetricsCollector using Prometheus
type Collector struct {
	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	messagesTotal     prometheus.Gauge
	storeUp           prometheus.Gauge
	activeConnections prometheus.Gauge
	storageErrors     *prometheus.CounterVec
	eventsPublished   *prometheus.CounterVec
}

// NewCollector creates a collector and registers its series on reg
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests by method, endpoint and status",
			},
			[]string{"method", "endpoint", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"method", "endpoint"},
		),
		messagesTotal: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "messages_total",
				Help:      "Number of stored messages, recomputed at scrape time",
			},
		),
		storeUp: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "store_up",
				Help:      "Whether the last message store probe succeeded (1) or failed (0)",
			},
		),
		activeConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_connections",
				Help:      "Number of open live feed connections",
			},
		),
		storageErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "storage_errors_total",
				Help:      "Total number of message store failures",
			},
			[]string{"operation", "kind"},
		),
		eventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_published_total",
				Help:      "Total number of events published on the event bus",
			},
			[]string{"type"},
		),
	}
}

// RecordRequest counts a completed request and observes its latency
func (c *Collector) RecordRequest(method, endpoint string, status int, duration time.Duration) {
	c.requestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// SetMessagesTotal sets the stored message gauge
func (c *Collector) SetMessagesTotal(count int) {
	c.messagesTotal.Set(float64(count))
}

// SetStoreUp records the outcome of the last store probe
func (c *Collector) SetStoreUp(up bool) {
	if up {
		c.storeUp.Set(1)
		return
	}
	c.storeUp.Set(0)
}

// IncActiveConnections marks a live feed connection as opened
func (c *Collector) IncActiveConnections() {
	c.activeConnections.Inc()
}

// DecActiveConnections marks a live feed connection as closed
func (c *Collector) DecActiveConnections() {
	c.activeConnections.Dec()
}

// IncStorageErrors counts a failed store operation
func (c *Collector) IncStorageErrors(operation, kind string) {
	c.storageErrors.WithLabelValues(operation, kind).Inc()
}

// IncEventsPublished counts a published event
func (c *Collector) IncEventsPublished(eventType string) {
	c.eventsPublished.WithLabelValues(eventType).Inc()
}
