package driven

import "github.com/custodia-labs/conciliar/internal/core/domain"

// InternalSource describes how an internal table is tagged and filtered.
type InternalSource struct {
	// Origin is the tag written on every record.
	Origin string

	// Role is the precedence of the source in the combiner.
	Role domain.Role

	// Insurer filters rows by the insurer-name column.
	// An empty value keeps every row.
	Insurer string
}

// InternalBatch is the output of adapting one internal table.
type InternalBatch struct {
	// Records holds the kept rows in table order.
	Records []domain.InternalRecord

	// Loaded is the number of table rows before the insurer filter.
	Loaded int

	// Warnings lists the fields that could not be parsed.
	Warnings []domain.AmbiguityWarning
}

// ExternalBatch is the output of adapting one insurer table.
type ExternalBatch struct {
	Records  []domain.ExternalRecord
	Warnings []domain.AmbiguityWarning
}

// InternalAdapter projects one internal source format into InternalRecords.
type InternalAdapter interface {
	// Format returns the column layout handled.
	Format() domain.Format

	// RequiredColumns lists the columns that must be present.
	RequiredColumns() []string

	// Adapt filters and projects the table. It never modifies the table.
	// Returns a *domain.SchemaError when required columns are absent.
	Adapt(table *domain.Table, src InternalSource) (*InternalBatch, error)
}

// ExternalAdapter projects the insurer portfolio report into ExternalRecords.
type ExternalAdapter interface {
	// RequiredColumns lists the columns that must be present.
	RequiredColumns() []string

	// Adapt projects the table, tagging records with origin.
	// Returns a *domain.SchemaError when required columns are absent.
	Adapt(table *domain.Table, origin string) (*ExternalBatch, error)
}

// AdapterRegistry selects adapters by source format.
type AdapterRegistry interface {
	// Internal returns the adapter for an internal format.
	// Returns ErrUnsupportedType for unknown formats.
	Internal(format domain.Format) (InternalAdapter, error)

	// External returns the insurer portfolio adapter.
	External() ExternalAdapter
}
