package outpost

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"
)

// Config configures a Logger. Start from DefaultConfig and override what
// you need; string, count, and duration fields left at their zero value
// fall back to the defaults when the Logger is constructed.
type Config struct {
	// ServiceName is attached to every event as its service.name attribute.
	ServiceName string

	// Endpoint is the bare ingestion host, e.g. "ingress.outpost.dev" or
	// "localhost:4000". Scheme and path are derived, not configured.
	Endpoint string

	// Token authenticates batches with the ingestion service.
	Token string

	// Passthrough additionally renders every event as a text line to
	// PassthroughWriter, synchronously with the producer call.
	Passthrough bool

	// Insecure switches the transport from HTTPS to plain HTTP.
	Insecure bool

	// NoOp drops every event up front: nothing is queued, sent, or rendered.
	NoOp bool

	// MaxBatchSize caps how many events one request may carry.
	MaxBatchSize int

	// FlushInterval is how long a partial batch may wait before it is
	// sent anyway.
	FlushInterval time.Duration

	// SendTimeout bounds a single delivery attempt, the final flush
	// during Shutdown included.
	SendTimeout time.Duration

	// PassthroughWriter receives passthrough lines. Defaults to os.Stdout.
	PassthroughWriter io.Writer

	// DiagnosticLog receives engine diagnostics such as failed sends.
	// Defaults to a stderr logger.
	DiagnosticLog *log.Logger
}

// DefaultConfig returns sensible defaults, with passthrough enabled.
func DefaultConfig() Config {
	return Config{
		ServiceName:   "my_server",
		Endpoint:      "ingress.outpost.dev",
		Token:         "tk_1234567890",
		Passthrough:   true,
		MaxBatchSize:  1000,
		FlushInterval: 100 * time.Millisecond,
		SendTimeout:   5 * time.Second,
	}
}

// ValidationError aggregates multiple configuration validation failures.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s", strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Is(target error) bool {
	var other *ValidationError
	return errors.As(target, &other)
}

// Validate checks the configuration for semantic correctness.
func (c *Config) Validate() error {
	problems := make([]string, 0)

	if strings.TrimSpace(c.ServiceName) == "" {
		problems = append(problems, "service name is required")
	}
	if strings.TrimSpace(c.Endpoint) == "" {
		problems = append(problems, "endpoint is required")
	} else if strings.Contains(c.Endpoint, "/") {
		problems = append(problems, "endpoint must be a bare host, without scheme or path")
	}
	if strings.TrimSpace(c.Token) == "" {
		problems = append(problems, "token is required")
	}
	if c.MaxBatchSize <= 0 {
		problems = append(problems, "max batch size must be greater than zero")
	}
	if c.FlushInterval <= 0 {
		problems = append(problems, "flush interval must be greater than zero")
	}
	if c.SendTimeout <= 0 {
		problems = append(problems, "send timeout must be greater than zero")
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// applyDefaults fills unset fields. Passthrough, Insecure, and NoOp are
// plain bools whose defaults come from DefaultConfig, not from here.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.ServiceName == "" {
		c.ServiceName = defaults.ServiceName
	}
	if c.Endpoint == "" {
		c.Endpoint = defaults.Endpoint
	}
	if c.Token == "" {
		c.Token = defaults.Token
	}
	if c.MaxBatchSize == 0 {
		c.MaxBatchSize = defaults.MaxBatchSize
	}
	if c.FlushInterval == 0 {
		c.FlushInterval = defaults.FlushInterval
	}
	if c.SendTimeout == 0 {
		c.SendTimeout = defaults.SendTimeout
	}
	if c.PassthroughWriter == nil {
		c.PassthroughWriter = os.Stdout
	}
	if c.DiagnosticLog == nil {
		c.DiagnosticLog = log.New(os.Stderr, "outpost: ", log.LstdFlags)
	}
}
