package testutils

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/outpost-telemetry/outpost-go/internal/event"
)

type MockBatchSender struct {
	SentBatches [][]event.Event
	mu          sync.Mutex
	ShouldFail  bool
	Delay       time.Duration
}

func (m *MockBatchSender) SendBatch(events []event.Event) error {
	if m.Delay > 0 {
		time.Sleep(m.Delay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ShouldFail {
		return fmt.Errorf("mock send failed")
	}

	m.SentBatches = append(m.SentBatches, events)
	return nil
}

func (m *MockBatchSender) SetShouldFail(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ShouldFail = fail
}

func (m *MockBatchSender) GetSentBatches() [][]event.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]event.Event, len(m.SentBatches))
	copy(out, m.SentBatches)
	return out
}

func (m *MockBatchSender) GetSentEvents() []event.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []event.Event
	for _, batch := range m.SentBatches {
		out = append(out, batch...)
	}
	return out
}

func CreateTempLogTree(t *testing.T) string {
	tempDir := t.TempDir()

	structure := map[string]string{
		"api/access.log":      "GET /health 200\nGET /v1/items 200\n",
		"api/error.log":       "ERROR upstream timed out\n",
		"worker/worker.log":   "INFO job 42 picked up\nWARN job 42 slow\n",
		"worker/worker.txt":   "not a log file\n",
		"billing/billing.log": "INFO invoice 7 issued\n",
	}

	for path, content := range structure {
		fullPath := filepath.Join(tempDir, path)
		dir := filepath.Dir(fullPath)

		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("Failed to create directory %s: %v", dir, err)
		}

		if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write file %s: %v", fullPath, err)
		}
	}

	return tempDir
}
