package domain

import "time"

// DefaultAuthor is stored when a message is created without an author.
const DefaultAuthor = "Anónimo"

// TimestampLayout renders local time the way the stored documents expect:
// ISO-8601 with microseconds and no zone designator.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// Message is a single persisted message record
type Message struct {
	ID        int    `json:"id"`
	Text      string `json:"text"`
	Author    string `json:"author"`
	Timestamp string `json:"timestamp"`
	Hostname  string `json:"hostname"`
}

// NewMessage carries the client-supplied fields of a message.
// A nil Text means the field was absent; a nil Author selects DefaultAuthor.
type NewMessage struct {
	Text   *string
	Author *string
}

// FormatTimestamp formats t with TimestampLayout in t's own location.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}
