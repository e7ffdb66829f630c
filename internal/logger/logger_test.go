package logger

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLogLevel(tt.in), "level %q", tt.in)
	}
}

func TestInit_WritesJSON(t *testing.T) {
	defer func() { Log = zerolog.Nop() }()

	var buf bytes.Buffer
	Init("debug", false, &buf)
	Log.Info().Str("item", "a").Msg("loaded")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "loaded", entry["message"])
	assert.Equal(t, "a", entry["item"])
	assert.Equal(t, "info", entry["level"])
}

func TestInit_FiltersBelowLevel(t *testing.T) {
	defer func() {
		Log = zerolog.Nop()
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	}()

	var buf bytes.Buffer
	Init("warn", false, &buf)
	Log.Info().Msg("hidden")

	assert.Zero(t, buf.Len())
}

func TestInitFile_CreatesParentDirs(t *testing.T) {
	defer func() { Log = zerolog.Nop() }()

	path := filepath.Join(t.TempDir(), "nested", "deck.log")
	closer, err := InitFile("info", path)
	require.NoError(t, err)
	defer closer.Close()

	assert.FileExists(t, path)
}
