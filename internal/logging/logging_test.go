package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(&buf, "json", false)
	require.NoError(t, err)

	logger.Info("started", zap.String("addr", ":8080"))
	logger.Debug("hidden")
	require.NoError(t, logger.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "started", entry["msg"])
	assert.Equal(t, ":8080", entry["addr"])
	assert.Equal(t, "info", entry["level"])
	assert.Contains(t, entry, "ts")
}

func TestVerboseEnablesDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(&buf, "console", true)
	require.NoError(t, err)

	logger.Debug("request", zap.Int("status", 200))
	require.NoError(t, logger.Sync())
	assert.Contains(t, buf.String(), "request")
	assert.Contains(t, buf.String(), "debug")
}

func TestUnknownFormat(t *testing.T) {
	_, err := New("xml", false)
	assert.ErrorContains(t, err, "unknown log format")
}
