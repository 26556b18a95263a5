// Package extractors provides the extraction backend registry and its
// built-in backends. Backends are selected per file extension; when
// several support the same extension the highest priority wins.
package extractors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/ingesta/internal/core/domain"
	"github.com/custodia-labs/ingesta/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry maps file extensions to extraction backends.
type Registry struct {
	byExtension map[string][]driven.Extractor
	names       []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byExtension: make(map[string][]driven.Extractor)}
}

// Register adds a backend, indexing it under each supported extension.
func (r *Registry) Register(e driven.Extractor) {
	r.names = append(r.names, e.Name())
	for _, ext := range e.SupportedExtensions() {
		ext = strings.ToLower(ext)
		backends := append(r.byExtension[ext], e)
		sort.SliceStable(backends, func(i, j int) bool {
			return backends[i].Priority() > backends[j].Priority()
		})
		r.byExtension[ext] = backends
	}
}

// ForExtension returns the highest-priority backend supporting the
// extension, or domain.ErrUnsupportedType.
func (r *Registry) ForExtension(extension string) (driven.Extractor, error) {
	backends := r.byExtension[strings.ToLower(extension)]
	if len(backends) == 0 {
		return nil, fmt.Errorf("%w: no backend for %q", domain.ErrUnsupportedType, extension)
	}
	return backends[0], nil
}

// Names returns the registered backend names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}
