package config

import "context"

// SourceType identifies which layer of the precedence stack a Source
// belongs to. Values match the order defaults < yaml < env < cli.
type SourceType string

const (
	SourceDefault SourceType = "default"
	SourceYAML    SourceType = "yaml"
	SourceEnv     SourceType = "env"
	SourceCLI     SourceType = "cli"
)

// Source is one layer of configuration. Manager.Load applies sources in the
// order given, each overriding keys the previous layers set.
type Source interface {
	// Load returns this source's key/value data, keyed by Config's koanf
	// tags (e.g. "cache_root").
	Load() (map[string]any, error)
	// Type reports which precedence layer this source represents.
	Type() SourceType
	// Watch arranges for onChange to fire whenever this source's underlying
	// data changes (a file edit, typically). Sources with nothing to watch
	// (defaults, env, CLI flags) return nil immediately.
	Watch(ctx context.Context, onChange func()) error
}
