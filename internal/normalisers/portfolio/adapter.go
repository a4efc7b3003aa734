// Package portfolio adapts the insurer portfolio report into external
// records. Start dates in the report are spreadsheet day serials.
package portfolio

import (
	"github.com/custodia-labs/conciliar/internal/core/domain"
	"github.com/custodia-labs/conciliar/internal/core/ports/driven"
	"github.com/custodia-labs/conciliar/internal/normalisers/cells"
)

// Ensure Adapter implements the interface.
var _ driven.ExternalAdapter = (*Adapter)(nil)

// Column names of the report.
const (
	ColumnPolicy     = "Póliza"
	ColumnReceipt    = "Recibo"
	ColumnStart      = "F.INI VIG"
	ColumnHolder     = "Cliente - Tomador"
	Column1To30      = "1-30"
	Column31To90     = "31-90"
	Column91To180    = "91-180"
	ColumnOver180    = "180+"
	ColumnTotal      = "Cartera Total"
	ColumnOverdue    = "Vencida"
	ColumnNotOverdue = "No Vencida"
)

var requiredColumns = []string{
	ColumnPolicy,
	ColumnReceipt,
	ColumnStart,
	ColumnHolder,
	Column1To30,
	Column31To90,
	Column91To180,
	ColumnOver180,
	ColumnTotal,
}

// Adapter handles the insurer portfolio report.
type Adapter struct{}

// New creates a new portfolio adapter.
func New() *Adapter {
	return &Adapter{}
}

// RequiredColumns lists the columns that must be present.
// The overdue and not-overdue totals are optional.
func (a *Adapter) RequiredColumns() []string {
	return append([]string(nil), requiredColumns...)
}

// Adapt projects the table, tagging records with origin.
// A blank receipt is kept empty and reported as a warning.
func (a *Adapter) Adapt(table *domain.Table, origin string) (*driven.ExternalBatch, error) {
	if err := cells.RequireColumns(table, origin, requiredColumns); err != nil {
		return nil, err
	}

	batch := &driven.ExternalBatch{
		Records: make([]domain.ExternalRecord, 0, len(table.Rows)),
	}

	for i, row := range table.Rows {
		r := cells.NewReader(origin, i+1, row)
		rawPolicy := r.Text(ColumnPolicy)
		rawReceipt := r.Text(ColumnReceipt)

		rec := domain.ExternalRecord{
			Row:          i + 1,
			Origin:       origin,
			RawPolicy:    rawPolicy,
			RawReceipt:   rawReceipt,
			Policy:       domain.NormalizePolicy(rawPolicy),
			Receipt:      domain.NormalizeReceipt(rawReceipt),
			Date:         r.SerialDate(ColumnStart),
			Counterparty: r.Text(ColumnHolder),
			Aging: domain.Aging{
				Days1To30:   r.Amount(Column1To30),
				Days31To90:  r.Amount(Column31To90),
				Days91To180: r.Amount(Column91To180),
				Over180:     r.Amount(ColumnOver180),
				Overdue:     r.Amount(ColumnOverdue),
				NotDue:      r.Amount(ColumnNotOverdue),
			},
			Total: r.Amount(ColumnTotal),
		}
		if rawReceipt == "" {
			r.Warnings = append(r.Warnings, domain.AmbiguityWarning{
				Source: origin, Row: i + 1, Field: ColumnReceipt, Reason: "missing receipt",
			})
		}

		batch.Records = append(batch.Records, rec)
		batch.Warnings = append(batch.Warnings, r.Warnings...)
	}

	return batch, nil
}
