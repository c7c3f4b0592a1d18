package transport

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/outpost-telemetry/outpost-go/internal/event"
	"github.com/outpost-telemetry/outpost-go/internal/wire"
)

const ingestPath = "/api/message"

// Sender posts serialized batches to one ingestion endpoint. Delivery is
// best effort: there are no retries, and any HTTP response counts as
// delivered. Only transport-level failures (dial errors, timeouts) are
// reported, and what happens to the failed batch is the caller's decision.
type Sender struct {
	url        string
	token      string
	httpClient *http.Client
}

// NewSender creates a sender for the given bare endpoint host. The insecure
// flag selects plain HTTP over HTTPS. Every sender holds a reference on the
// process-wide transport until Close is called.
func NewSender(endpoint, token string, insecure bool, timeout time.Duration) *Sender {
	return &Sender{
		url:   FormatEndpoint(endpoint, insecure),
		token: token,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: acquireShared(),
		},
	}
}

// FormatEndpoint builds the ingestion URL for a bare endpoint host.
func FormatEndpoint(endpoint string, insecure bool) string {
	if insecure {
		return "http://" + endpoint + ingestPath
	}
	return "https://" + endpoint + ingestPath
}

// SendBatch serializes events and posts them in a single request.
func (s *Sender) SendBatch(events []event.Event) error {
	if len(events) == 0 {
		return nil
	}

	body := wire.EncodeBatch(events, s.token)

	req, err := http.NewRequest(http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	// Any response, whatever its status, counts as delivered.
	resp.Body.Close()

	return nil
}

// URL returns the full ingestion URL the sender posts to.
func (s *Sender) URL() string {
	return s.url
}

// Close releases the sender's hold on the shared transport.
func (s *Sender) Close() {
	releaseShared()
}
