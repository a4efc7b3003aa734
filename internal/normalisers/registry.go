package normalisers

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/conciliar/internal/core/domain"
	"github.com/custodia-labs/conciliar/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.AdapterRegistry = (*Registry)(nil)

// Registry maps source formats to their adapters.
type Registry struct {
	internal map[domain.Format]driven.InternalAdapter
	external driven.ExternalAdapter
}

// NewRegistry creates an empty registry using external for insurer tables.
func NewRegistry(external driven.ExternalAdapter) *Registry {
	return &Registry{
		internal: make(map[domain.Format]driven.InternalAdapter),
		external: external,
	}
}

// Register adds an internal adapter under its format, replacing any
// adapter already registered for it.
func (r *Registry) Register(adapter driven.InternalAdapter) {
	r.internal[adapter.Format()] = adapter
}

// Internal returns the adapter for an internal format.
func (r *Registry) Internal(format domain.Format) (driven.InternalAdapter, error) {
	adapter, ok := r.internal[format]
	if !ok {
		return nil, fmt.Errorf("%w: source format %q", domain.ErrUnsupportedType, format)
	}
	return adapter, nil
}

// External returns the insurer portfolio adapter.
func (r *Registry) External() driven.ExternalAdapter {
	return r.external
}

// Formats returns the registered internal formats, sorted.
func (r *Registry) Formats() []domain.Format {
	formats := make([]domain.Format, 0, len(r.internal))
	for f := range r.internal {
		formats = append(formats, f)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}
