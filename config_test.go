package outpost

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "my_server", config.ServiceName)
	assert.Equal(t, "ingress.outpost.dev", config.Endpoint)
	assert.Equal(t, "tk_1234567890", config.Token)
	assert.True(t, config.Passthrough)
	assert.False(t, config.Insecure)
	assert.False(t, config.NoOp)
	assert.Equal(t, 1000, config.MaxBatchSize)
	assert.Equal(t, 100*time.Millisecond, config.FlushInterval)
	assert.Equal(t, 5*time.Second, config.SendTimeout)

	assert.NoError(t, config.Validate())
}

func TestConfig_Validate(t *testing.T) {
	config := DefaultConfig()
	config.ServiceName = "  "
	err := config.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service name is required")

	config = DefaultConfig()
	config.Endpoint = "https://ingress.outpost.dev"
	err = config.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bare host")

	config = DefaultConfig()
	config.FlushInterval = -time.Second
	err = config.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flush interval")
}

func TestConfig_ValidateAggregatesProblems(t *testing.T) {
	config := DefaultConfig()
	config.Endpoint = ""
	config.Token = ""
	config.MaxBatchSize = -1

	err := config.Validate()
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Problems, 3)
	assert.Contains(t, err.Error(), "invalid configuration: ")

	assert.True(t, errors.Is(err, &ValidationError{}))
}

func TestConfig_ApplyDefaults(t *testing.T) {
	config := Config{Endpoint: "localhost:4000", Token: "tk_custom"}
	config.applyDefaults()

	assert.Equal(t, "my_server", config.ServiceName)
	assert.Equal(t, "localhost:4000", config.Endpoint)
	assert.Equal(t, "tk_custom", config.Token)
	assert.Equal(t, 1000, config.MaxBatchSize)
	assert.Equal(t, 100*time.Millisecond, config.FlushInterval)
	assert.Equal(t, 5*time.Second, config.SendTimeout)
	assert.NotNil(t, config.PassthroughWriter)
	assert.NotNil(t, config.DiagnosticLog)

	// Bool fields are never defaulted here: a zero Config keeps
	// passthrough off, unlike DefaultConfig.
	assert.False(t, config.Passthrough)
}
