package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvEnabled(t *testing.T) {
	assert.True(t, envEnabled(""))

	t.Setenv("LOGGER_ENABLE_TEST", "true")
	assert.True(t, envEnabled("LOGGER_ENABLE_TEST"))

	t.Setenv("LOGGER_ENABLE_TEST", "0")
	assert.False(t, envEnabled("LOGGER_ENABLE_TEST"))

	t.Setenv("LOGGER_ENABLE_TEST", "")
	assert.False(t, envEnabled("LOGGER_ENABLE_TEST"))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw  string
		want Level
	}{
		{raw: "", want: LevelInfo},
		{raw: "debug", want: LevelDebug},
		{raw: " INFO ", want: LevelInfo},
		{raw: "warn", want: LevelWarn},
		{raw: "warning", want: LevelWarn},
		{raw: "error", want: LevelError},
	}
	for _, tt := range tests {
		level, err := ParseLevel(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, level, tt.raw)
	}

	_, err := ParseLevel("invalid")
	assert.Error(t, err)
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "debug", LevelDebug.String())
	assert.Equal(t, "error", LevelError.String())
	assert.Equal(t, "level(9)", Level(9).String())
}

func TestResolveFilepath(t *testing.T) {
	assert.Equal(t, "", resolveFilepath(""))

	abs := filepath.Join(t.TempDir(), "abs.log")
	assert.Equal(t, abs, resolveFilepath(abs))

	exe, err := os.Executable()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(exe), "relative.log"), resolveFilepath("relative.log"))
}

func TestF(t *testing.T) {
	assert.Nil(t, F())
	assert.Equal(t, []Field{{Key: "a", Value: 1}, {Key: "2", Value: "b"}}, F("a", 1, 2, "b"))
	assert.Equal(t, []Field{{Key: "a", Value: 1}}, F("a", 1, "dangling"))
}
