package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriterLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(&buf, "warn", false)
	require.NoError(t, err)

	log.Info("model loaded")
	log.Warn("empty output")
	require.NoError(t, log.Sync())

	out := buf.String()
	assert.NotContains(t, out, "model loaded")
	assert.Contains(t, out, "empty output")
	assert.Contains(t, out, "warn")
}

func TestNewWithWriterDebugOverridesLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(&buf, "error", true)
	require.NoError(t, err)

	log.Debug("forward pass complete")
	require.NoError(t, log.Sync())
	assert.Contains(t, buf.String(), "forward pass complete")
}

func TestNewInvalidLevel(t *testing.T) {
	_, err := New("verbose", false)
	assert.Error(t, err)
}
