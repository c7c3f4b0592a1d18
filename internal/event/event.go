package event

import (
	"time"
)

// Level is the severity of a log event, ordered from least to most severe.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the wire token for the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARNING"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Event is one log occurrence. The timestamp is captured when the producer
// hands the event over, not when it is sent. Events are not modified after
// construction: the queue owns them until they are drained into a batch,
// and the batch owns them until the send completes.
type Event struct {
	Timestamp  time.Time
	Level      Level
	Body       string
	Attributes map[string]string
}
