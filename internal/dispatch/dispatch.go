package dispatch

import (
	"log"
	"sync"
	"time"

	"github.com/outpost-telemetry/outpost-go/internal/event"
	"github.com/outpost-telemetry/outpost-go/internal/queue"
)

// Sender delivers one batch of events. The dispatcher calls it from a
// single goroutine.
type Sender interface {
	SendBatch(events []event.Event) error
}

type Config struct {
	MaxBatchSize  int
	FlushInterval time.Duration
	// Diag receives one line per failed batch. Defaults to log.Default().
	Diag *log.Logger
}

// Dispatcher owns the background goroutine that turns queued events into
// delivered batches. A batch goes out when it fills up, when the flush
// interval passes, or when Stop drains whatever is left.
type Dispatcher struct {
	config  Config
	queue   *queue.Queue
	sender  Sender
	metrics *Metrics

	quit     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewDispatcher(config Config, q *queue.Queue, sender Sender, metrics *Metrics) *Dispatcher {
	if config.Diag == nil {
		config.Diag = log.Default()
	}
	return &Dispatcher{
		config:  config,
		queue:   q,
		sender:  sender,
		metrics: metrics,
		quit:    make(chan struct{}),
	}
}

func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go d.run()
}

// Stop drains the queue, sends everything still pending, and waits for the
// dispatcher goroutine to exit. Safe to call more than once.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.quit)
	})
	d.wg.Wait()
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	timer := time.NewTimer(d.config.FlushInterval)
	defer timer.Stop()

	batch := make([]event.Event, 0, d.config.MaxBatchSize)

	for {
		select {
		case <-d.queue.Wake():
			var flushed bool
			batch, flushed = d.collect(batch)
			if flushed {
				timer.Reset(d.config.FlushInterval)
			}

		case <-timer.C:
			// The interval runs from the last flush, not the last
			// enqueue, so a slow trickle of events cannot postpone
			// delivery forever.
			if len(batch) > 0 {
				batch = d.flush(batch)
			}
			timer.Reset(d.config.FlushInterval)

		case <-d.quit:
			batch, _ = d.collect(batch)
			if len(batch) > 0 {
				d.flush(batch)
			}
			return
		}
	}
}

// collect moves queued events into the batch, flushing each time it fills.
// It returns the remaining partial batch and whether anything was flushed.
func (d *Dispatcher) collect(batch []event.Event) ([]event.Event, bool) {
	flushed := false
	for {
		batch = append(batch, d.queue.DrainUpTo(d.config.MaxBatchSize-len(batch))...)
		if len(batch) < d.config.MaxBatchSize {
			return batch, flushed
		}
		batch = d.flush(batch)
		flushed = true
	}
}

// flush hands the batch to the sender and starts a fresh one. The old
// backing array is never reused; the sender may keep the slice.
func (d *Dispatcher) flush(batch []event.Event) []event.Event {
	if err := d.sender.SendBatch(batch); err != nil {
		d.config.Diag.Printf("Failed to send batch: %v", err)
		d.metrics.IncSendFailures()
		d.metrics.AddEventsDiscarded(len(batch))
	} else {
		d.metrics.IncBatchesSent()
		d.metrics.AddEventsSent(len(batch))
	}
	return make([]event.Event, 0, d.config.MaxBatchSize)
}
