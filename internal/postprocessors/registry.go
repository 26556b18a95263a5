package postprocessors

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/ingesta/internal/core/ports/driven"
)

// BuilderFunc constructs a chunk processor from the settings map the
// config layer parsed for it. Builders validate their own settings.
type BuilderFunc func(settings map[string]any) (driven.PostProcessor, error)

// Registry maps processor names to builders so the extraction
// pipeline can be assembled from configuration at startup.
type Registry struct {
	builders map[string]BuilderFunc
}

// NewRegistry creates an empty processor registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]BuilderFunc)}
}

// Register adds a builder under the given name, replacing any earlier
// registration. The name must match the built processor's Name().
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.builders[name] = builder
}

// Has reports whether a builder is registered under name.
func (r *Registry) Has(name string) bool {
	_, ok := r.builders[name]
	return ok
}

// Names returns the registered processor names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build constructs the named processor with the given settings.
func (r *Registry) Build(name string, settings map[string]any) (driven.PostProcessor, error) {
	builder, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("no processor registered as %q", name)
	}
	return builder(settings)
}
