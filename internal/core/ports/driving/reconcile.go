package driving

import (
	"context"

	"github.com/custodia-labs/conciliar/internal/core/domain"
)

// SourceFile names an input file and the origin tag of its records.
type SourceFile struct {
	// Path is the file location.
	Path string

	// Origin tags the records. For internal sources an empty value uses
	// the configured source name; for insurer tables the file name.
	Origin string
}

// ReconcileRequest lists the files of one run.
type ReconcileRequest struct {
	// Primary and Secondary are the internal sources. A source not used by
	// the configured mode may be left empty.
	Primary   SourceFile
	Secondary SourceFile

	// External holds one or more insurer portfolio files.
	External []SourceFile

	// Settings override the stored configuration when non-nil.
	Settings *domain.Settings
}

// NamedTable is an already-loaded table with its origin tag.
type NamedTable struct {
	Origin string
	Table  *domain.Table
}

// TableSet holds the pre-loaded tables of one run.
type TableSet struct {
	// Primary and Secondary may be nil when the mode does not use them.
	Primary   *domain.Table
	Secondary *domain.Table

	// External holds the insurer tables, concatenated in order.
	External []NamedTable
}

// Reconciler runs the reconciliation pipeline.
type Reconciler interface {
	// Reconcile loads the files, then behaves as ReconcileTables.
	Reconcile(ctx context.Context, req ReconcileRequest) (*domain.Run, error)

	// ReconcileTables adapts, combines and classifies pre-loaded tables.
	// A *domain.SchemaError aborts the run; parse ambiguities are collected
	// as warnings on the returned run.
	ReconcileTables(ctx context.Context, tables TableSet, settings domain.Settings) (*domain.Run, error)
}
