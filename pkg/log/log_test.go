package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		want    LogLevel
		wantErr bool
	}{
		{name: "error", level: "error", want: LogLevelError},
		{name: "warn", level: "warn", want: LogLevelWarn},
		{name: "info", level: "info", want: LogLevelInfo},
		{name: "debug", level: "debug", want: LogLevelDebug},
		{name: "trace", level: "trace", want: LogLevelTrace},
		{name: "unknown", level: "verbose", want: LogLevelError, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLogLevel(tt.level)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		entry := map[string]interface{}{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestLogger_Levels(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(buf, LogLevelInfo)

	logger.Debug("hidden %d", 1)
	logger.Info("room %s created", "123456")
	logger.Error("failed to save snapshot: %v", "disk full")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "info", entries[0]["level"])
	assert.Equal(t, "room 123456 created", entries[0]["msg"])
	assert.Equal(t, "error", entries[1]["level"])
}

func TestLogger_Trace(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(buf, LogLevelDebug)

	logger.Trace("not yet")
	logger.SetLevel(LogLevelTrace)
	logger.Named("scheduler").Trace("tick")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "trace", entries[0]["level"])
	assert.Equal(t, "scheduler", entries[0]["logger"])
	assert.Equal(t, "tick", entries[0]["msg"])
}
