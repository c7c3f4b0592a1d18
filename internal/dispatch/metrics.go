package dispatch

import (
	"sync"
)

// Metrics counts shipper activity. All fields are totals since startup.
type Metrics struct {
	EventsEnqueued  int
	EventsSent      int
	BatchesSent     int
	SendFailures    int
	EventsDiscarded int
	mu              sync.RWMutex
}

func (m *Metrics) IncEventsEnqueued() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EventsEnqueued++
}

func (m *Metrics) AddEventsSent(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EventsSent += n
}

func (m *Metrics) IncBatchesSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BatchesSent++
}

func (m *Metrics) IncSendFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendFailures++
}

func (m *Metrics) AddEventsDiscarded(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EventsDiscarded += n
}

func (m *Metrics) GetMetricsStamp() Metrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Metrics{
		EventsEnqueued:  m.EventsEnqueued,
		EventsSent:      m.EventsSent,
		BatchesSent:     m.BatchesSent,
		SendFailures:    m.SendFailures,
		EventsDiscarded: m.EventsDiscarded,
	}
}
