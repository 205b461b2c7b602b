package config

import (
	"context"
	"os"

	goyaml "github.com/goccy/go-yaml"
	"github.com/knadh/koanf/providers/structs"
	"github.com/spf13/afero"
)

// defaultProvider supplies the compiled-in defaults, read off Defaults()
// through koanf's structs provider (the "koanf" struct tags on Config
// double as this provider's field names).
type defaultProvider struct{}

// NewDefaultProvider returns the lowest-precedence layer: Defaults().
func NewDefaultProvider() Source { return defaultProvider{} }

func (defaultProvider) Load() (map[string]any, error) {
	sp := structs.Provider(*Defaults(), "koanf")
	return sp.Read()
}

func (defaultProvider) Type() SourceType { return SourceDefault }

func (defaultProvider) Watch(context.Context, func()) error { return nil }

// yamlProvider reads assemble.yaml off an afero.Fs, so it's testable
// against an in-memory filesystem without touching disk.
type yamlProvider struct {
	fs   afero.Fs
	path string
}

// NewYAMLProvider returns a Source reading path through fs. A missing file
// is not an error — assemble.yaml is optional (spec.md §5 "Project-root
// build file discovery"); Load then returns an empty map.
func NewYAMLProvider(fs afero.Fs, path string) Source {
	return yamlProvider{fs: fs, path: path}
}

func (p yamlProvider) Load() (map[string]any, error) {
	raw, err := afero.ReadFile(p.fs, p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, err
	}
	data := map[string]any{}
	if err := goyaml.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}

func (p yamlProvider) Type() SourceType { return SourceYAML }

func (p yamlProvider) Watch(ctx context.Context, onChange func()) error {
	w, err := NewWatcher()
	if err != nil {
		return err
	}
	w.OnChange(onChange)
	if err := w.Watch(ctx, p.path); err != nil {
		_ = w.Close()
		return err
	}
	go func() {
		<-ctx.Done()
		_ = w.Close()
	}()
	return nil
}

// cliProvider wraps CLI flag values already parsed by spf13/pflag (cli/root.go
// binds them into a plain map keyed the same way as Config's koanf tags).
type cliProvider struct {
	values map[string]any
}

// NewCLIProvider returns the highest-precedence layer: flags the user
// actually passed on this invocation. Only flags the caller explicitly set
// should be included — unset flags must be omitted, not given their zero
// value, or they would incorrectly override lower layers.
func NewCLIProvider(values map[string]any) Source {
	return cliProvider{values: values}
}

func (p cliProvider) Load() (map[string]any, error) { return p.values, nil }

func (p cliProvider) Type() SourceType { return SourceCLI }

func (p cliProvider) Watch(context.Context, func()) error { return nil }

// envProvider's Load always returns an empty map: environment variables are
// loaded natively by koanf's own env provider inside Manager.Load (so
// nested keys and the ASSEMBLE_ prefix transform are handled by koanf
// rather than duplicated here). This Source only exists so a caller can
// request the env layer by including it in the precedence list, matching
// the teacher's pkg/config EnvProvider shape exactly.
type envProvider struct{}

// NewEnvProvider returns a placeholder marking "apply environment
// variables here" in a Manager.Load call's source list.
func NewEnvProvider() Source { return envProvider{} }

func (envProvider) Load() (map[string]any, error) { return map[string]any{}, nil }

func (envProvider) Type() SourceType { return SourceEnv }

func (envProvider) Watch(context.Context, func()) error { return nil }
