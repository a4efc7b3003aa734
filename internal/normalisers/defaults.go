package normalisers

import (
	"github.com/custodia-labs/conciliar/internal/normalisers/collections"
	"github.com/custodia-labs/conciliar/internal/normalisers/policyexport"
	"github.com/custodia-labs/conciliar/internal/normalisers/portfolio"
)

// NewDefaultRegistry returns a registry with all built-in adapters.
func NewDefaultRegistry() *Registry {
	r := NewRegistry(portfolio.New())
	r.Register(policyexport.New())
	r.Register(collections.New())
	return r
}
