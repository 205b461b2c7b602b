package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Default(t *testing.T) {
	t.Run("Should produce a valid configuration out of the box", func(t *testing.T) {
		cfg := Defaults()
		assert.NoError(t, Validate(cfg))
		assert.Equal(t, 0, cfg.Workers)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, "auto", cfg.Console)
	})
}

func TestConfig_Validation(t *testing.T) {
	t.Run("Should reject a negative worker count", func(t *testing.T) {
		cfg := Defaults()
		cfg.Workers = -1
		assert.Error(t, Validate(cfg))
	})

	t.Run("Should reject an empty cache root", func(t *testing.T) {
		cfg := Defaults()
		cfg.CacheRoot = ""
		assert.Error(t, Validate(cfg))
	})

	t.Run("Should reject an unrecognized log level", func(t *testing.T) {
		cfg := Defaults()
		cfg.LogLevel = "verbose"
		assert.Error(t, Validate(cfg))
	})

	t.Run("Should reject an unrecognized console mode", func(t *testing.T) {
		cfg := Defaults()
		cfg.Console = "fancy"
		assert.Error(t, Validate(cfg))
	})
}
