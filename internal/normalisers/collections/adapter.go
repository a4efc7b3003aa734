// Package collections adapts the collections ledger export
// ("Poliza", "Documento", "Saldo", ...) into internal records.
package collections

import (
	"github.com/custodia-labs/conciliar/internal/core/domain"
	"github.com/custodia-labs/conciliar/internal/core/ports/driven"
	"github.com/custodia-labs/conciliar/internal/normalisers/cells"
)

// Ensure Adapter implements the interface.
var _ driven.InternalAdapter = (*Adapter)(nil)

// Column names of the export.
const (
	ColumnPolicy   = "Poliza"
	ColumnDocument = "Documento"
	ColumnDate     = "F_Inicio"
	ColumnHolder   = "Tomador"
	ColumnBalance  = "Saldo"
	ColumnInsurer  = "Aseguradora"
)

var layout = cells.InternalLayout{
	Policy:  ColumnPolicy,
	Receipt: ColumnDocument,
	Date:    ColumnDate,
	Balance: ColumnBalance,
	Insurer: ColumnInsurer,
	Names:   []string{ColumnHolder},
}

// Adapter handles the collections export format.
type Adapter struct{}

// New creates a new collections adapter.
func New() *Adapter {
	return &Adapter{}
}

func (a *Adapter) Format() domain.Format {
	return domain.FormatCollections
}

func (a *Adapter) RequiredColumns() []string {
	return layout.Required()
}

func (a *Adapter) Adapt(table *domain.Table, src driven.InternalSource) (*driven.InternalBatch, error) {
	return cells.AdaptInternal(table, src, layout)
}
