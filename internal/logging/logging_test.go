package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/verte-zerg/ghostkeys/internal/model"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "ghostkeys.log")
	logger, closeFn, err := New(model.LogConfig{Level: "debug", File: path}, nil)
	require.NoError(t, err)

	logger.Debug("burst finished", zap.Int("sentences", 3))
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "burst finished", entry["msg"])
	assert.Equal(t, "ghostkeys", entry["logger"])
	assert.EqualValues(t, 3, entry["sentences"])
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := New(model.LogConfig{Level: "warn", Console: true}, &buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown")
	require.NoError(t, closeFn())

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "WARN")
}

func TestNew_NopWithoutOutputs(t *testing.T) {
	logger, closeFn, err := New(model.LogConfig{Console: true}, nil)
	require.NoError(t, err)
	assert.NotNil(t, logger)
	logger.Info("dropped")
	assert.NoError(t, closeFn())
}

func TestNew_RejectsBadSettings(t *testing.T) {
	_, _, err := New(model.LogConfig{Level: "loud"}, nil)
	assert.Error(t, err)

	_, _, err = New(model.LogConfig{Format: "xml"}, nil)
	assert.Error(t, err)
}
