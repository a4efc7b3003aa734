package driving

import (
	"context"

	"github.com/custodia-labs/conciliar/internal/core/domain"
)

// HistoryService reads the run archive.
type HistoryService interface {
	// List returns the most recent runs, newest first.
	List(ctx context.Context, limit int) ([]domain.RunSummary, error)

	// Get retrieves an archived run by ID or ID prefix.
	Get(ctx context.Context, id string) (*domain.ArchivedRun, error)
}
