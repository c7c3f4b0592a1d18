// Package wire builds the JSON envelope accepted by the ingestion endpoint.
package wire

import (
	"encoding/json"
	"time"

	"github.com/outpost-telemetry/outpost-go/internal/event"
)

// PayloadType discriminates log envelopes on the ingestion side.
const PayloadType = "logs"

// timestampLayout renders UTC instants with millisecond precision and a
// literal trailing Z, e.g. 2024-03-01T10:15:30.123Z.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// Envelope is the top-level payload for one batch.
type Envelope struct {
	Token string   `json:"token"`
	Type  string   `json:"type"`
	Logs  []Record `json:"logs"`
}

// Record is one event as it appears on the wire.
type Record struct {
	Timestamp  string            `json:"timestamp"`
	Body       string            `json:"body"`
	Level      string            `json:"level"`
	Attributes map[string]string `json:"attributes"`
}

// FormatTimestamp converts t into the wire timestamp representation.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// EncodeBatch renders events into one envelope carrying the auth token.
// The encoding is deterministic for a given input, and because the event
// model is strings end to end it cannot fail.
func EncodeBatch(events []event.Event, token string) []byte {
	env := Envelope{
		Token: token,
		Type:  PayloadType,
		Logs:  make([]Record, 0, len(events)),
	}
	for _, e := range events {
		env.Logs = append(env.Logs, Record{
			Timestamp:  FormatTimestamp(e.Timestamp),
			Body:       e.Body,
			Level:      e.Level.String(),
			Attributes: e.Attributes,
		})
	}

	data, _ := json.Marshal(env)
	return data
}
