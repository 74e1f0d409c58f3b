package prometheus

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordRequestIsMonotonicPerLabelSet(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	counter := c.requestsTotal.WithLabelValues("POST", "/api/messages", "201")

	previous := testutil.ToFloat64(counter)
	for i := 1; i <= 5; i++ {
		c.RecordRequest("POST", "/api/messages", 201, time.Millisecond)

		current := testutil.ToFloat64(counter)
		if current != previous+1 {
			t.Fatalf("request %d: expected %v, got %v", i, previous+1, current)
		}
		previous = current
	}

	// Other label sets do not move this series
	c.RecordRequest("POST", "/api/messages", 400, time.Millisecond)
	c.RecordRequest("GET", "/api/messages", 200, time.Millisecond)
	if got := testutil.ToFloat64(counter); got != 5 {
		t.Fatalf("expected 5, got %v", got)
	}
}

func TestGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.SetMessagesTotal(7)
	if got := testutil.ToFloat64(c.messagesTotal); got != 7 {
		t.Fatalf("expected 7 messages, got %v", got)
	}

	c.SetStoreUp(true)
	if got := testutil.ToFloat64(c.storeUp); got != 1 {
		t.Fatalf("expected store_up 1, got %v", got)
	}
	c.SetStoreUp(false)
	if got := testutil.ToFloat64(c.storeUp); got != 0 {
		t.Fatalf("expected store_up 0, got %v", got)
	}

	if got := testutil.ToFloat64(c.activeConnections); got != 0 {
		t.Fatalf("expected 0 active connections initially, got %v", got)
	}
	c.IncActiveConnections()
	c.IncActiveConnections()
	c.DecActiveConnections()
	if got := testutil.ToFloat64(c.activeConnections); got != 1 {
		t.Fatalf("expected 1 active connection, got %v", got)
	}
}

func TestExpositionFormat(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRequest("GET", "/", 200, time.Millisecond)
	c.SetMessagesTotal(2)

	expected := `
# HELP cloudedu_http_requests_total Total number of HTTP requests by method, endpoint and status
# TYPE cloudedu_http_requests_total counter
cloudedu_http_requests_total{endpoint="/",method="GET",status="200"} 1
# HELP cloudedu_messages_total Number of stored messages, recomputed at scrape time
# TYPE cloudedu_messages_total gauge
cloudedu_messages_total 2
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"cloudedu_http_requests_total", "cloudedu_messages_total")
	if err != nil {
		t.Fatal(err)
	}
}

func TestStorageAndEventCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.IncStorageErrors("load", "corrupted")
	c.IncStorageErrors("load", "corrupted")
	c.IncEventsPublished("message.created")

	if got := testutil.ToFloat64(c.storageErrors.WithLabelValues("load", "corrupted")); got != 2 {
		t.Fatalf("expected 2 storage errors, got %v", got)
	}
	if got := testutil.ToFloat64(c.eventsPublished.WithLabelValues("message.created")); got != 1 {
		t.Fatalf("expected 1 published event, got %v", got)
	}
}

func TestCollectorsAreIsolatedPerRegistry(t *testing.T) {
	// Two collectors must not collide, which a global registry would cause
	a := NewCollector(prometheus.NewRegistry())
	b := NewCollector(prometheus.NewRegistry())

	a.SetMessagesTotal(1)
	b.SetMessagesTotal(2)

	if testutil.ToFloat64(a.messagesTotal) != 1 || testutil.ToFloat64(b.messagesTotal) != 2 {
		t.Fatal("collectors share state")
	}
}
