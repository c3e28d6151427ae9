package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(zapcore.AddSync(&buf), zap.InfoLevel, false)

	log.Debugf("hidden %d", 1)
	log.Infof("shown %d", 2)
	require.NoError(t, log.Sync())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "shown 2")
	assert.NotContains(t, out, "\x1b[")
}

func TestInitWritesToFile(t *testing.T) {
	old := Log
	t.Cleanup(func() { Log = old })

	path := filepath.Join(t.TempDir(), "retag.log")
	require.NoError(t, os.WriteFile(path, []byte("stale\n"), 0o644))

	Init(true, path)
	Log.Debug("debug line")
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "stale")
	assert.Contains(t, string(data), "DEBUG")
	assert.Contains(t, string(data), "debug line")
}
