// Package outpost is the Go client for the Outpost log ingestion service.
//
// A Logger accumulates events in an in-memory queue while a background
// dispatcher ships them as JSON batches over HTTP, so producers never wait
// on the network. Delivery is best effort: batches that fail to send are
// dropped after a diagnostic line, and nothing is retried. Shutdown blocks
// until everything still queued has been flushed.
package outpost

import (
	"sync"
	"time"

	"github.com/outpost-telemetry/outpost-go/internal/dispatch"
	"github.com/outpost-telemetry/outpost-go/internal/event"
	"github.com/outpost-telemetry/outpost-go/internal/queue"
	"github.com/outpost-telemetry/outpost-go/internal/transport"
)

// Logger ships log events to an ingestion endpoint in the background.
// Producer methods are safe for concurrent use, never block on the
// network, and never return errors.
type Logger struct {
	config      Config
	queue       *queue.Queue
	sender      *transport.Sender
	dispatcher  *dispatch.Dispatcher
	metrics     *dispatch.Metrics
	passthrough *passthroughRenderer

	shutdownOnce sync.Once
}

// NewLogger validates the configuration, fills unset fields from
// DefaultConfig, and starts the background dispatcher.
func NewLogger(config Config) (*Logger, error) {
	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	q := queue.New()
	metrics := &dispatch.Metrics{}
	sender := transport.NewSender(config.Endpoint, config.Token, config.Insecure, config.SendTimeout)
	dispatcher := dispatch.NewDispatcher(dispatch.Config{
		MaxBatchSize:  config.MaxBatchSize,
		FlushInterval: config.FlushInterval,
		Diag:          config.DiagnosticLog,
	}, q, sender, metrics)

	l := &Logger{
		config:      config,
		queue:       q,
		sender:      sender,
		dispatcher:  dispatcher,
		metrics:     metrics,
		passthrough: newPassthroughRenderer(config.PassthroughWriter),
	}

	dispatcher.Start()

	return l, nil
}

// Debug records an event at debug level.
func (l *Logger) Debug(msg string, attrs ...Attribute) {
	l.logMessage(event.LevelDebug, msg, nil, attrs)
}

// Info records an event at info level.
func (l *Logger) Info(msg string, attrs ...Attribute) {
	l.logMessage(event.LevelInfo, msg, nil, attrs)
}

// Warn records an event at warning level.
func (l *Logger) Warn(msg string, attrs ...Attribute) {
	l.logMessage(event.LevelWarn, msg, nil, attrs)
}

// Error records an event at error level. A non-nil err is attached as the
// event's error attribute.
func (l *Logger) Error(msg string, err error, attrs ...Attribute) {
	l.logMessage(event.LevelError, msg, err, attrs)
}

func (l *Logger) logMessage(level event.Level, msg string, err error, attrs []Attribute) {
	if l.config.NoOp {
		return
	}

	// Caller attributes first, in call order, then the injected ones.
	// service.name always wins over a caller-supplied value.
	attributes := make(map[string]string, len(attrs)+2)
	for _, attr := range attrs {
		attributes[attr.Key] = attr.Value
	}
	attributes["service.name"] = l.config.ServiceName
	if err != nil {
		attributes["error"] = err.Error()
	}

	l.queue.Enqueue(event.Event{
		Timestamp:  time.Now(),
		Level:      level,
		Body:       msg,
		Attributes: attributes,
	})
	l.metrics.IncEventsEnqueued()

	if l.config.Passthrough {
		l.passthrough.render(level, msg, attrs)
	}
}

// Shutdown drains the queue, flushes every remaining event, and releases
// the shared transport handle. It blocks until the drain completes. Safe
// to call more than once: later calls wait for the first to finish, then
// return without repeating the work.
func (l *Logger) Shutdown() {
	l.shutdownOnce.Do(func() {
		l.dispatcher.Stop()
		l.sender.Close()
	})
}
