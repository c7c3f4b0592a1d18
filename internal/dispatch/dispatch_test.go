package dispatch

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outpost-telemetry/outpost-go/internal/event"
	"github.com/outpost-telemetry/outpost-go/internal/queue"
	"github.com/outpost-telemetry/outpost-go/internal/testutils"
)

type MockSender struct {
	sentBatches [][]event.Event
	mu          sync.Mutex
	fail        bool
}

func (m *MockSender) SendBatch(events []event.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fail {
		return fmt.Errorf("mock send failed")
	}

	m.sentBatches = append(m.sentBatches, events)
	return nil
}

func (m *MockSender) GetSentBatches() [][]event.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]event.Event, len(m.sentBatches))
	copy(out, m.sentBatches)
	return out
}

func countEvents(batches [][]event.Event) int {
	total := 0
	for _, b := range batches {
		total += len(b)
	}
	return total
}

func enqueueN(q *queue.Queue, n int) {
	for i := 0; i < n; i++ {
		q.Enqueue(event.Event{
			Timestamp: time.Now(),
			Level:     event.LevelInfo,
			Body:      fmt.Sprintf("event %d", i),
		})
	}
}

func waitForBatches(mockSender *MockSender, n int, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if len(mockSender.GetSentBatches()) >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestDispatcher_TimeTriggeredFlush(t *testing.T) {
	mockSender := &MockSender{}
	q := queue.New()
	metrics := &Metrics{}

	d := NewDispatcher(Config{MaxBatchSize: 100, FlushInterval: 50 * time.Millisecond}, q, mockSender, metrics)

	// Queue up before starting so the first flush carries all three.
	enqueueN(q, 3)
	d.Start()
	defer d.Stop()

	waitForBatches(mockSender, 1, 2*time.Second)

	batches := mockSender.GetSentBatches()
	require.Len(t, batches, 1)
	require.Len(t, batches[0], 3)
	for i, ev := range batches[0] {
		assert.Equal(t, fmt.Sprintf("event %d", i), ev.Body)
	}

	stamp := metrics.GetMetricsStamp()
	assert.Equal(t, 1, stamp.BatchesSent)
	assert.Equal(t, 3, stamp.EventsSent)
	assert.Equal(t, 0, stamp.SendFailures)
}

func TestDispatcher_SizeTriggeredFlush(t *testing.T) {
	mockSender := &MockSender{}
	q := queue.New()

	d := NewDispatcher(Config{MaxBatchSize: 10, FlushInterval: 10 * time.Second}, q, mockSender, &Metrics{})
	d.Start()
	defer d.Stop()

	// With a 10s interval the timer cannot fire; only the size trigger can.
	enqueueN(q, 25)

	waitForBatches(mockSender, 2, 2*time.Second)

	batches := mockSender.GetSentBatches()
	require.GreaterOrEqual(t, len(batches), 2)
	assert.Len(t, batches[0], 10)
	assert.Len(t, batches[1], 10)
}

func TestDispatcher_StopDrainsQueue(t *testing.T) {
	mockSender := &MockSender{}
	q := queue.New()

	d := NewDispatcher(Config{MaxBatchSize: 10, FlushInterval: 10 * time.Second}, q, mockSender, &Metrics{})
	d.Start()

	enqueueN(q, 25)
	d.Stop()

	batches := mockSender.GetSentBatches()
	require.Equal(t, 25, countEvents(batches))

	// Full batches first, then the remainder, in enqueue order.
	var sizes []int
	for _, b := range batches {
		sizes = append(sizes, len(b))
	}
	assert.Equal(t, []int{10, 10, 5}, sizes)

	i := 0
	for _, b := range batches {
		for _, ev := range b {
			assert.Equal(t, fmt.Sprintf("event %d", i), ev.Body)
			i++
		}
	}
}

func TestDispatcher_StopIsIdempotent(t *testing.T) {
	mockSender := &MockSender{}
	q := queue.New()

	d := NewDispatcher(Config{MaxBatchSize: 10, FlushInterval: 10 * time.Second}, q, mockSender, &Metrics{})
	d.Start()

	enqueueN(q, 3)
	d.Stop()
	d.Stop()

	assert.Equal(t, 3, countEvents(mockSender.GetSentBatches()))
}

func TestDispatcher_EmptyBatchesAreNeverSent(t *testing.T) {
	mockSender := &MockSender{}
	q := queue.New()
	metrics := &Metrics{}

	d := NewDispatcher(Config{MaxBatchSize: 100, FlushInterval: 20 * time.Millisecond}, q, mockSender, metrics)
	d.Start()

	// Let several intervals pass with nothing queued.
	time.Sleep(150 * time.Millisecond)
	d.Stop()

	assert.Empty(t, mockSender.GetSentBatches())
	assert.Equal(t, 0, metrics.GetMetricsStamp().BatchesSent)
}

func TestDispatcher_TrickleDoesNotPostponeFlush(t *testing.T) {
	mockSender := &MockSender{}
	q := queue.New()

	d := NewDispatcher(Config{MaxBatchSize: 1000, FlushInterval: 100 * time.Millisecond}, q, mockSender, &Metrics{})
	d.Start()
	defer d.Stop()

	// Keep enqueueing faster than the interval. If the deadline moved on
	// every enqueue, nothing would flush until the trickle ends.
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			q.Enqueue(event.Event{Timestamp: time.Now(), Body: fmt.Sprintf("trickle %d", i)})
			time.Sleep(25 * time.Millisecond)
		}
	}()

	start := time.Now()
	waitForBatches(mockSender, 1, 2*time.Second)
	elapsed := time.Since(start)

	close(stop)
	wg.Wait()

	require.NotEmpty(t, mockSender.GetSentBatches())
	assert.Less(t, elapsed, 500*time.Millisecond)
}

func TestDispatcher_FailedBatchIsDiscarded(t *testing.T) {
	mockSender := &testutils.MockBatchSender{ShouldFail: true}
	q := queue.New()
	metrics := &Metrics{}

	d := NewDispatcher(Config{MaxBatchSize: 5, FlushInterval: 10 * time.Second}, q, mockSender, metrics)
	d.Start()
	defer d.Stop()

	// Five events hit the size trigger and the send fails.
	enqueueN(q, 5)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if metrics.GetMetricsStamp().SendFailures >= 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	stamp := metrics.GetMetricsStamp()
	require.Equal(t, 1, stamp.SendFailures)
	assert.Equal(t, 5, stamp.EventsDiscarded)
	assert.Equal(t, 0, stamp.EventsSent)

	// The dispatcher keeps going and never retries the lost events.
	mockSender.SetShouldFail(false)
	for i := 0; i < 5; i++ {
		q.Enqueue(event.Event{Timestamp: time.Now(), Body: fmt.Sprintf("after failure %d", i)})
	}

	deadline = time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(mockSender.GetSentBatches()) >= 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	batches := mockSender.GetSentBatches()
	require.Len(t, batches, 1)
	require.Len(t, batches[0], 5)
	for i, ev := range batches[0] {
		assert.Equal(t, fmt.Sprintf("after failure %d", i), ev.Body)
	}
	assert.Equal(t, 5, metrics.GetMetricsStamp().EventsSent)
}

func TestDispatcher_ConcurrentEnqueue(t *testing.T) {
	mockSender := &MockSender{}
	q := queue.New()

	d := NewDispatcher(Config{MaxBatchSize: 16, FlushInterval: 20 * time.Millisecond}, q, mockSender, &Metrics{})
	d.Start()

	var wg sync.WaitGroup
	producer := func(id int) {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			q.Enqueue(event.Event{Timestamp: time.Now(), Body: fmt.Sprintf("p%d-%d", id, i)})
			if i%10 == 0 {
				time.Sleep(time.Millisecond)
			}
		}
	}

	wg.Add(5)
	for p := 0; p < 5; p++ {
		go producer(p)
	}
	wg.Wait()

	d.Stop()

	batches := mockSender.GetSentBatches()
	assert.Equal(t, 250, countEvents(batches))
	for _, b := range batches {
		assert.LessOrEqual(t, len(b), 16)
		assert.Greater(t, len(b), 0)
	}
}
