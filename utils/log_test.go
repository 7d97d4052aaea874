package utils

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	logger := newLogger(path, "info")
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())

	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.WithField("operation", "op-1").Info("served")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "served", entry["message"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "op-1", entry["operation"])
	assert.Contains(t, entry["file"], "log_test.go:")
	assert.Contains(t, entry["func"], "TestNewLoggerWritesJSON")
	assert.NotContains(t, entry, "fields.file")
	assert.NotContains(t, entry, "fields.func")
	assert.NotZero(t, entry["goroutine_id"])

	_, err := os.Stat(filepath.Dir(path))
	assert.NoError(t, err)
}

func TestNewLoggerInvalidLevel(t *testing.T) {
	logger := newLogger(filepath.Join(t.TempDir(), "app.log"), "verbose")
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
}

func TestResolveLogPath(t *testing.T) {
	assert.Equal(t, "/var/log/x.log", resolveLogPath("/var/log/x.log"))

	t.Setenv(EnvLogPath, "/tmp/from-env.log")
	assert.Equal(t, "/tmp/from-env.log", resolveLogPath(""))

	t.Setenv(EnvLogPath, "")
	assert.Equal(t, filepath.Join(os.TempDir(), "go_virtual_mock", "app.log"), resolveLogPath(""))
}
