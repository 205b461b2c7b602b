package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assemble-build/assemble/pkg/logger"
)

func TestParseGlobalFlags(t *testing.T) {
	t.Run("Should leave task names and their own flags in the remainder", func(t *testing.T) {
		globals, remainder, err := ParseGlobalFlags([]string{"--workers", "4", "build", "--message", "hi", "test"})
		require.NoError(t, err)
		assert.Equal(t, 4, globals.Workers)
		assert.Equal(t, []string{"build", "--message", "hi", "test"}, remainder)
	})

	t.Run("Should force one worker with --no-parallel", func(t *testing.T) {
		globals, _, err := ParseGlobalFlags([]string{"--no-parallel", "build"})
		require.NoError(t, err)
		assert.Equal(t, 1, globals.EffectiveWorkers())
	})

	t.Run("Should reject --workers with --no-parallel together", func(t *testing.T) {
		_, _, err := ParseGlobalFlags([]string{"--workers", "2", "--no-parallel", "build"})
		assert.Error(t, err)
	})

	t.Run("Should reject -b with -B together", func(t *testing.T) {
		_, _, err := ParseGlobalFlags([]string{"-b", "-B", "build"})
		assert.Error(t, err)
	})

	t.Run("Should reject more than one log level flag", func(t *testing.T) {
		_, _, err := ParseGlobalFlags([]string{"--debug", "--trace", "build"})
		assert.Error(t, err)
	})

	t.Run("Should resolve a single log level flag", func(t *testing.T) {
		globals, _, err := ParseGlobalFlags([]string{"--trace", "build"})
		require.NoError(t, err)
		assert.Equal(t, logger.TraceLevel, globals.LogLevel)
	})

	t.Run("Should parse -P key=value pairs and bare -P keys", func(t *testing.T) {
		globals, _, err := ParseGlobalFlags([]string{"-P", "env=prod", "-P", "debug", "build"})
		require.NoError(t, err)
		require.Contains(t, globals.Properties, "env")
		require.NotNil(t, globals.Properties["env"])
		assert.Equal(t, "prod", *globals.Properties["env"])
		require.Contains(t, globals.Properties, "debug")
		assert.Nil(t, globals.Properties["debug"])
	})

	t.Run("Should default to auto console and info log level", func(t *testing.T) {
		globals, _, err := ParseGlobalFlags([]string{"build"})
		require.NoError(t, err)
		assert.Equal(t, "auto", globals.Console)
		assert.Equal(t, logger.InfoLevel, globals.LogLevel)
	})
}
