// Package config resolves Assemble's own run configuration (worker count,
// cache root, log level/format, console mode) — distinct from the user's
// build script, which is its own Configuration graph (engine/dependency).
// Grounded on the teacher's pkg/config (a koanf-layered Manager/Source/
// Provider split; that package's production source was absent from the
// retrieval pack, so only its test files' API shape is followed here,
// narrowed to the handful of settings this build tool actually has).
package config

import (
	"github.com/go-playground/validator/v10"
)

// Config is Assemble's resolved run configuration.
type Config struct {
	// Workers is the worker pool size (engine/worker.Pool). 0 means "let
	// the pool pick runtime.NumCPU()".
	Workers int `koanf:"workers" validate:"min=0"`

	// CacheRoot is the assemble-home cache directory dependency downloads
	// and work fingerprints live under (spec.md §6's persisted state layout).
	CacheRoot string `koanf:"cache_root" validate:"required"`

	// BuildFileName is the default build-file name engine/settings looks
	// for in every declared subproject unless overridden per-descriptor.
	BuildFileName string `koanf:"build_file_name" validate:"required"`

	// LogLevel mirrors the CLI's --error|--warn|--info|--debug|--trace flags.
	LogLevel string `koanf:"log_level" validate:"oneof=trace debug info warn error disabled"`

	// LogJSON switches the logger to structured JSON output.
	LogJSON bool `koanf:"log_json"`

	// Console is the CLI's --console mode.
	Console string `koanf:"console" validate:"oneof=auto plain rich"`

	// RerunTasks mirrors --rerun-tasks: invalidate all work fingerprints
	// for this run instead of consulting the cache.
	RerunTasks bool `koanf:"rerun_tasks"`
}

// Defaults returns the compiled-in defaults every run starts from, before
// any assemble.yaml, environment variable, or CLI flag is applied.
func Defaults() *Config {
	return &Config{
		Workers:       0,
		CacheRoot:     ".assemble-home/cache",
		BuildFileName: "build.assemble.yaml",
		LogLevel:      "info",
		LogJSON:       false,
		Console:       "auto",
		RerunTasks:    false,
	}
}

// Validate checks cfg against its struct tags, returning every violation
// rather than just the first.
func Validate(cfg *Config) error {
	return validator.New().Struct(cfg)
}
