package driven

import (
	"io"

	"github.com/custodia-labs/conciliar/internal/core/domain"
)

// ReportWriter renders a reconciliation run in one output format.
type ReportWriter interface {
	// Format returns the format identifier (e.g., "text", "xlsx").
	Format() string

	// Extension returns the file extension used for saved reports, with dot.
	Extension() string

	// Write renders the run to w.
	Write(w io.Writer, run *domain.Run) error
}
