package config

import (
	"context"
	"strings"
	"sync"

	"dario.cat/mergo"
	"github.com/knadh/koanf/providers/confmap"
	envprovider "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "ASSEMBLE_"

// Manager resolves and caches Assemble's run configuration, and notifies
// registered callbacks whenever a watched source (assemble.yaml) changes
// and the configuration is reloaded.
type Manager struct {
	mu      sync.RWMutex
	current *Config

	onChange  []func(*Config)
	cancelCtx func()
}

// NewManager returns an unloaded Manager; call Load before Get.
func NewManager() *Manager {
	return &Manager{}
}

// Load resolves a Config by applying defaults first, then each source in
// the order given (later sources override earlier ones for keys they set),
// following the precedence defaults < yaml < env < cli from SPEC_FULL.md's
// configuration section. The result is validated and cached on the
// Manager before being returned.
func (m *Manager) Load(ctx context.Context, sources ...Source) (*Config, error) {
	cfg, err := resolve(sources)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.current = cfg
	m.mu.Unlock()

	if err := m.watch(ctx, sources); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolve builds a fresh koanf instance, applies defaults then every
// source in order (the env layer via koanf's native env provider rather
// than a generic map, so the ASSEMBLE_ prefix transform is applied once,
// consistently), unmarshals onto a Defaults() baseline via mergo, and
// validates the result.
func resolve(sources []Source) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(mustRead(NewDefaultProvider()), "."), nil); err != nil {
		return nil, err
	}

	for _, src := range sources {
		if src.Type() == SourceEnv {
			if err := k.Load(envprovider.Provider(".", envprovider.Opt{
				Prefix:        envPrefix,
				TransformFunc: transformEnvKey,
			}), nil); err != nil {
				return nil, err
			}
			continue
		}

		data, err := src.Load()
		if err != nil {
			return nil, err
		}
		if len(data) == 0 {
			continue
		}
		if err := k.Load(confmap.Provider(data, "."), nil); err != nil {
			return nil, err
		}
	}

	cfg := Defaults()
	var loaded Config
	if err := k.Unmarshal("", &loaded); err != nil {
		return nil, err
	}
	if err := mergo.Merge(cfg, loaded, mergo.WithOverride); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// transformEnvKey maps ASSEMBLE_CACHE_ROOT -> "cache_root": lowercase,
// prefix stripped, matching Config's flat koanf tags.
func transformEnvKey(key, value string) (string, any) {
	k := strings.ToLower(strings.TrimPrefix(key, envPrefix))
	return k, value
}

// mustRead reads a Source known never to fail (defaultProvider's Load has
// no fallible step); a real error here would indicate a programming bug in
// Defaults(), not a runtime condition worth propagating as an error value.
func mustRead(src Source) map[string]any {
	data, err := src.Load()
	if err != nil {
		panic(err)
	}
	return data
}

// watch arranges for every source's Watch to trigger a reload, replacing
// the cached Config and firing OnChange callbacks.
func (m *Manager) watch(ctx context.Context, sources []Source) error {
	watchCtx, cancel := context.WithCancel(ctx)
	m.mu.Lock()
	if m.cancelCtx != nil {
		m.cancelCtx()
	}
	m.cancelCtx = cancel
	m.mu.Unlock()

	for _, src := range sources {
		if err := src.Watch(watchCtx, func() { m.reload(sources) }); err != nil {
			cancel()
			return err
		}
	}
	return nil
}

// reload re-resolves the configuration from sources (without re-arranging
// watches, which are already running) and notifies OnChange subscribers.
// A bad reload (a momentarily half-written assemble.yaml, say) is dropped
// silently rather than tearing down the last-known-good Config.
func (m *Manager) reload(sources []Source) {
	cfg, err := resolve(sources)
	if err != nil {
		return
	}

	m.mu.Lock()
	m.current = cfg
	callbacks := make([]func(*Config), len(m.onChange))
	copy(callbacks, m.onChange)
	m.mu.Unlock()

	for _, fn := range callbacks {
		fn(cfg)
	}
}

// Get returns the most recently loaded Config, or nil if Load has never
// succeeded.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// OnChange registers fn to run with the newly resolved Config every time a
// watched source changes and reload succeeds.
func (m *Manager) OnChange(fn func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = append(m.onChange, fn)
}

// Close stops every active source watch.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancelCtx != nil {
		m.cancelCtx()
		m.cancelCtx = nil
	}
	return nil
}
