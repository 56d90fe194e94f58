package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_FileOutput(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	path := filepath.Join(t.TempDir(), "objstore.log")
	err := Init(&Config{Level: "debug", Format: "json", Output: path})
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	l := WithComponent("test")
	l.Info().Str("key", "a").Msg("hello")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"test"`)
	assert.Contains(t, string(data), `"message":"hello"`)
}

func TestInit_InvalidLevelFallsBackToInfo(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	path := filepath.Join(t.TempDir(), "objstore.log")
	err := Init(&Config{Level: "chatty", Output: path})
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestInit_UnwritableOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "objstore.log")
	err := Init(&Config{Level: "info", Output: path})
	assert.Error(t, err)
}
