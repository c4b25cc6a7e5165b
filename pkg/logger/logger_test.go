package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesLeveledLines(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "app.log")

	log, err := New(logPath, "INFO")
	require.NoError(t, err)

	log.Debug("debug line %d", 1)
	log.Info("info line %d", 2)
	log.Warn("warn line %d", 3)
	log.Error("error line %d", 4)
	require.NoError(t, log.Close())

	raw, err := os.ReadFile(logPath)
	require.NoError(t, err)

	content := string(raw)
	assert.NotContains(t, content, "debug line 1")
	assert.Contains(t, content, "[INFO] info line 2")
	assert.Contains(t, content, "[WARN] warn line 3")
	assert.Contains(t, content, "[ERROR] error line 4")
}

func TestNew_UnknownLevel(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "app.log"), "LOUD")
	assert.Error(t, err)
}

func TestClose_Idempotent(t *testing.T) {
	log, err := New(filepath.Join(t.TempDir(), "app.log"), "DEBUG")
	require.NoError(t, err)

	require.NoError(t, log.Close())
	assert.NoError(t, log.Close())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{in: "DEBUG", want: LevelDebug},
		{in: "info", want: LevelInfo},
		{in: "", want: LevelInfo},
		{in: " Warning ", want: LevelWarn},
		{in: "ERROR", want: LevelError},
		{in: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseLevel(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "level %q", tt.in)
			continue
		}
		require.NoError(t, err, "level %q", tt.in)
		assert.Equal(t, tt.want, got, "level %q", tt.in)
	}
}
