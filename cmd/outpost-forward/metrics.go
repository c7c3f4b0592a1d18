package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	outpost "github.com/outpost-telemetry/outpost-go"
)

const metricsNamespace = "outpost_forward"

// forwardMetrics exposes the forwarder's own counters plus the shipping
// engine's stats on a dedicated Prometheus registry.
type forwardMetrics struct {
	registry        *prometheus.Registry
	linesShipped    *prometheus.CounterVec
	filesDiscovered prometheus.Counter
	tailErrors      prometheus.Counter
}

func newForwardMetrics(stats func() outpost.Stats) *forwardMetrics {
	registry := prometheus.NewRegistry()

	m := &forwardMetrics{
		registry: registry,
		linesShipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "lines_shipped_total",
			Help:      "Lines read from tailed files and handed to the shipper.",
		}, []string{"file"}),
		filesDiscovered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "files_discovered_total",
			Help:      "Log files picked up by the scanner.",
		}),
		tailErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "tail_errors_total",
			Help:      "Errors while opening or reading tailed files.",
		}),
	}
	registry.MustRegister(m.linesShipped, m.filesDiscovered, m.tailErrors)

	engineCounter := func(name, help string, value func(outpost.Stats) int) prometheus.CounterFunc {
		return prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      name,
			Help:      help,
		}, func() float64 { return float64(value(stats())) })
	}
	registry.MustRegister(
		engineCounter("events_enqueued_total", "Events accepted by the shipping engine.",
			func(s outpost.Stats) int { return s.EventsEnqueued }),
		engineCounter("events_sent_total", "Events delivered in successful batches.",
			func(s outpost.Stats) int { return s.EventsSent }),
		engineCounter("batches_sent_total", "Successful batch deliveries.",
			func(s outpost.Stats) int { return s.BatchesSent }),
		engineCounter("send_failures_total", "Batches whose delivery failed.",
			func(s outpost.Stats) int { return s.SendFailures }),
		engineCounter("events_discarded_total", "Events lost to failed deliveries.",
			func(s outpost.Stats) int { return s.EventsDiscarded }),
	)

	return m
}

// handler serves the registry in Prometheus exposition format.
func (m *forwardMetrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
