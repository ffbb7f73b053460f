package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZapLoggerUsage(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "app.log")
	l := newFileLogger(logPath, FileOptions{MaxSize: 1}, LevelDebug)

	l.Info("hello", Field{Key: "k", Value: "v"})
	l.WithGroup("ws").Debug("ping", Field{Key: "id", Value: 1})
	l.With(F("svc", "kv")...).WithGroup("a").WithGroup("b").Warn("nested", F("x", true)...)
	require.NoError(t, l.Sync())

	records := readLogRecords(t, logPath)
	assert.True(t, hasRecord(records, "hello", "k", "v"))
	assert.True(t, hasRecord(records, "ping", "ws.id", float64(1)))
	assert.True(t, hasRecord(records, "nested", "a.b.x", true))
	assert.True(t, hasRecord(records, "nested", "svc", "kv"))
}

func TestFileDriverBlankPath(t *testing.T) {
	_, err := fileDriver(context.Background(), map[string]any{"filepath": "  "})
	assert.Equal(t, errEmptyLogPath, err)
}

func TestLoggerEnabled(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf, LevelInfo)

	assert.False(t, l.Enabled(context.Background(), LevelDebug))
	assert.True(t, l.Enabled(context.Background(), LevelInfo))
	assert.True(t, l.Enabled(context.Background(), LevelWarn))

	l.Debug("hidden")
	l.Error("shown", F("error", os.ErrNotExist)...)
	require.NoError(t, l.Sync())

	records := parseRecords(t, buf.String())
	require.Len(t, records, 1)
	assert.Equal(t, "shown", records[0]["msg"])
	assert.Equal(t, os.ErrNotExist.Error(), records[0]["error"])
}

func TestNop(t *testing.T) {
	l := Nop()
	assert.False(t, l.Enabled(context.Background(), LevelError))
	assert.Equal(t, l, l.With(F("a", 1)...).WithGroup("g"))
	l.Info("ignored")
	assert.NoError(t, l.Sync())
}

func readLogRecords(t *testing.T, path string) []map[string]any {
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return parseRecords(t, string(data))
}

func parseRecords(t *testing.T, data string) []map[string]any {
	lines := strings.Split(data, "\n")
	records := make([]map[string]any, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var record map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &record))
		records = append(records, record)
	}
	require.NotEmpty(t, records)
	return records
}

func hasRecord(records []map[string]any, msg string, key string, val any) bool {
	for _, record := range records {
		if record["msg"] != msg {
			continue
		}
		if record[key] == val {
			return true
		}
	}
	return false
}
