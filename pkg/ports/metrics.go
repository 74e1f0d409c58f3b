package ports

import "time"

// MetricsCollector records operational metrics
type MetricsCollector interface {
	RecordRequest(method, endpoint string, status int, duration time.Duration)
	SetMessagesTotal(count int)
	SetStoreUp(up bool)
	IncActiveConnections()
	DecActiveConnections()
	IncStorageErrors(operation, kind string)
	IncEventsPublished(eventType string)
}
