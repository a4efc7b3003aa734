package driven

import (
	"context"

	"github.com/custodia-labs/conciliar/internal/core/domain"
)

// LoadOptions guide a loader towards the data table inside a file.
type LoadOptions struct {
	// Sheet is the preferred worksheet name. Loaders that handle a single
	// table per file ignore it. When the sheet is absent the first one is used.
	Sheet string

	// HeaderKeys are column names expected in the header row. Loaders that
	// support it scan the first rows for the row holding these names.
	HeaderKeys []string
}

// TableLoader reads a source file into a Table.
// Loaders live outside the core; the core only ever sees Table values.
type TableLoader interface {
	// Name returns the loader identifier (e.g., "spreadsheet").
	Name() string

	// Extensions returns the lower-case file extensions handled, with dot.
	Extensions() []string

	// Load reads the file at path. Blank rows are dropped and header
	// names trimmed. Cell values are raw, so dates may arrive as serials.
	Load(ctx context.Context, path string, opts LoadOptions) (*domain.Table, error)
}

// LoaderFactory selects a TableLoader for a file.
type LoaderFactory interface {
	// For returns the loader registered for the file extension of path.
	// Returns ErrUnsupportedType when no loader handles it.
	For(path string) (TableLoader, error)

	// Register adds a loader for all of its extensions.
	Register(loader TableLoader)

	// SupportedExtensions returns all registered extensions, sorted.
	SupportedExtensions() []string
}
