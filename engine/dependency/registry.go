package dependency

// Registry is a named source that can resolve dependencies of the
// DependencyTypes it supports, backed by a URL base for remote lookups.
type Registry struct {
	Name      string
	URLBase   string
	Supported map[string]struct{} // keyed by Type.Name
	Resolver  Resolver
}

// NewRegistry builds a Registry supporting the given types, backed by
// resolver (typically something that fetches from urlBase).
func NewRegistry(name, urlBase string, resolver Resolver, types ...Type) *Registry {
	supported := make(map[string]struct{}, len(types))
	for _, t := range types {
		supported[t.Name] = struct{}{}
	}
	return &Registry{Name: name, URLBase: urlBase, Supported: supported, Resolver: resolver}
}

// supports reports whether r can resolve dependencies of typ.
func (r *Registry) supports(typ Type) bool {
	_, ok := r.Supported[typ.Name]
	return ok
}

// Container maps each DependencyType to the registries that support it, in
// the order they were added — spec.md §3's RegistryContainer.
type Container struct {
	registries []*Registry
}

// NewContainer builds an empty RegistryContainer.
func NewContainer() *Container {
	return &Container{}
}

// Add registers a registry, appended after any existing ones.
func (c *Container) Add(r *Registry) {
	c.registries = append(c.registries, r)
}

// SupportedRegistries returns, in insertion order, every registry that
// supports typ.
func (c *Container) SupportedRegistries(typ Type) []*Registry {
	out := make([]*Registry, 0, len(c.registries))
	for _, r := range c.registries {
		if r.supports(typ) {
			out = append(out, r)
		}
	}
	return out
}

// Intersection returns, in the insertion order of c.registries, every
// registry that supports every type in types — the registry set a
// Dependency with multiple declared types must be tried against.
func (c *Container) Intersection(types []Type) []*Registry {
	out := make([]*Registry, 0, len(c.registries))
	for _, r := range c.registries {
		supportsAll := true
		for _, t := range types {
			if !r.supports(t) {
				supportsAll = false
				break
			}
		}
		if supportsAll {
			out = append(out, r)
		}
	}
	return out
}
