package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ConsoleAndFile(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer

	logger, closer, err := New(Options{Level: "debug", Dir: dir, Console: &console})
	require.NoError(t, err)

	sessionLogger := Component(logger, "session")
	sessionLogger.Debug().Str("address", "ab12").Msg("joined")
	require.NoError(t, closer.Close())

	assert.Contains(t, console.String(), "joined")
	assert.Contains(t, console.String(), "component:")

	data, err := os.ReadFile(filepath.Join(dir, logFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"session"`)
	assert.Contains(t, string(data), `"address":"ab12"`)
}

func TestNew_LevelFiltersAndDefaults(t *testing.T) {
	var console bytes.Buffer
	logger, closer, err := New(Options{Level: "warn", Console: &console})
	require.NoError(t, err)
	defer closer.Close()

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")
	assert.NotContains(t, console.String(), "hidden")
	assert.Contains(t, console.String(), "shown")

	console.Reset()
	logger, _, err = New(Options{Level: "nonsense", Console: &console})
	require.NoError(t, err)
	logger.Debug().Msg("debug")
	logger.Info().Msg("info")
	assert.NotContains(t, console.String(), "debug")
	assert.Contains(t, console.String(), "info")
}
