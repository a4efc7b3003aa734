// Package policyexport adapts the policy-management system export
// ("NÚMERO PÓLIZA", "NÚMERO ANEXO", ...) into internal records.
package policyexport

import (
	"github.com/custodia-labs/conciliar/internal/core/domain"
	"github.com/custodia-labs/conciliar/internal/core/ports/driven"
	"github.com/custodia-labs/conciliar/internal/normalisers/cells"
)

// Ensure Adapter implements the interface.
var _ driven.InternalAdapter = (*Adapter)(nil)

// Column names of the export.
const (
	ColumnPolicy    = "NÚMERO PÓLIZA"
	ColumnReceipt   = "NÚMERO ANEXO"
	ColumnDate      = "FECHA INICIO"
	ColumnFirstName = "NOMBRES CLIENTE"
	ColumnLastName  = "APELLIDOS CLIENTE"
	ColumnTotal     = "TOTAL"
	ColumnInsurer   = "ASEGURADORA"
)

var layout = cells.InternalLayout{
	Policy:  ColumnPolicy,
	Receipt: ColumnReceipt,
	Date:    ColumnDate,
	Balance: ColumnTotal,
	Insurer: ColumnInsurer,
	Names:   []string{ColumnFirstName, ColumnLastName},
}

// Adapter handles the policy export format.
type Adapter struct{}

// New creates a new policy export adapter.
func New() *Adapter {
	return &Adapter{}
}

// Format returns the column layout handled.
func (a *Adapter) Format() domain.Format {
	return domain.FormatPolicyExport
}

// RequiredColumns lists the columns that must be present.
func (a *Adapter) RequiredColumns() []string {
	return layout.Required()
}

// Adapt filters and projects the table.
func (a *Adapter) Adapt(table *domain.Table, src driven.InternalSource) (*driven.InternalBatch, error) {
	return cells.AdaptInternal(table, src, layout)
}
