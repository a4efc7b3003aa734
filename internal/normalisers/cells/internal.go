package cells

import (
	"strings"

	"github.com/custodia-labs/conciliar/internal/core/domain"
	"github.com/custodia-labs/conciliar/internal/core/ports/driven"
)

// InternalLayout names the columns of an internal source format.
type InternalLayout struct {
	Policy  string
	Receipt string
	Date    string
	Balance string
	Insurer string

	// Names are joined with a space to form the counterparty name.
	Names []string
}

// Required returns every column of the layout.
func (l InternalLayout) Required() []string {
	cols := []string{l.Policy, l.Receipt, l.Date}
	cols = append(cols, l.Names...)
	return append(cols, l.Balance, l.Insurer)
}

// AdaptInternal filters table rows by insurer and projects them into
// InternalRecords using layout.
//
// A blank receipt on the primary source sets MissingReceipt. On the
// secondary source it is kept as an empty receipt and reported as a warning.
func AdaptInternal(table *domain.Table, src driven.InternalSource, layout InternalLayout) (*driven.InternalBatch, error) {
	if err := RequireColumns(table, src.Origin, layout.Required()); err != nil {
		return nil, err
	}

	batch := &driven.InternalBatch{
		Records: make([]domain.InternalRecord, 0, len(table.Rows)),
		Loaded:  len(table.Rows),
	}

	for i, row := range table.Rows {
		if !MatchesInsurer(row.Value(layout.Insurer), src.Insurer) {
			continue
		}

		r := NewReader(src.Origin, i+1, row)
		rawPolicy := r.Text(layout.Policy)
		rawReceipt := r.Text(layout.Receipt)

		rec := domain.InternalRecord{
			Row:          i + 1,
			Origin:       src.Origin,
			Role:         src.Role,
			RawPolicy:    rawPolicy,
			RawReceipt:   rawReceipt,
			Policy:       domain.NormalizePolicy(rawPolicy),
			Receipt:      domain.NormalizeReceipt(rawReceipt),
			Date:         r.Date(layout.Date),
			Counterparty: joinNames(r, layout.Names),
			Balance:      r.Amount(layout.Balance),
		}

		if rawReceipt == "" {
			if src.Role == domain.RolePrimary {
				rec.MissingReceipt = true
			} else {
				r.warn(layout.Receipt, rawReceipt, "missing receipt on secondary source")
			}
		}

		batch.Records = append(batch.Records, rec)
		batch.Warnings = append(batch.Warnings, r.Warnings...)
	}

	return batch, nil
}

func joinNames(r *Reader, columns []string) string {
	parts := make([]string, 0, len(columns))
	for _, c := range columns {
		if v := r.Text(c); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}
