package driven

import (
	"context"

	"github.com/custodia-labs/conciliar/internal/core/domain"
)

// RunStore archives reconciliation runs.
// The archive is written after classification and never read by it.
type RunStore interface {
	// Save stores the summary, outcomes and warnings of a run.
	Save(ctx context.Context, run *domain.Run) error

	// List returns run summaries, newest first. A limit <= 0 returns all.
	List(ctx context.Context, limit int) ([]domain.RunSummary, error)

	// Get retrieves an archived run by ID or unique ID prefix.
	// Returns ErrNotFound if no run matches.
	Get(ctx context.Context, id string) (*domain.ArchivedRun, error)
}
