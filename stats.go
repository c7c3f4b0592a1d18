package outpost

// Stats is a point-in-time snapshot of engine counters. All values are
// totals since the Logger was constructed.
type Stats struct {
	// EventsEnqueued counts events accepted from producers.
	EventsEnqueued int

	// EventsSent counts events delivered in successful batches.
	EventsSent int

	// BatchesSent counts successful batch deliveries.
	BatchesSent int

	// SendFailures counts batches whose delivery failed.
	SendFailures int

	// EventsDiscarded counts events lost to failed deliveries.
	EventsDiscarded int
}

// Stats returns a snapshot of the engine counters.
func (l *Logger) Stats() Stats {
	stamp := l.metrics.GetMetricsStamp()
	return Stats{
		EventsEnqueued:  stamp.EventsEnqueued,
		EventsSent:      stamp.EventsSent,
		BatchesSent:     stamp.BatchesSent,
		SendFailures:    stamp.SendFailures,
		EventsDiscarded: stamp.EventsDiscarded,
	}
}
