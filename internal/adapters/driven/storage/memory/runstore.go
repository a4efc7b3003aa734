package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/conciliar/internal/core/domain"
	"github.com/custodia-labs/conciliar/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunStore is an in-memory implementation of driven.RunStore.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]domain.ArchivedRun
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]domain.ArchivedRun),
	}
}

// Save stores a run, replacing any run with the same ID.
func (s *RunStore) Save(_ context.Context, run *domain.Run) error {
	if run == nil || run.Summary.ID == "" {
		return fmt.Errorf("%w: run without id", domain.ErrInvalidInput)
	}

	archived := domain.ArchivedRun{
		Summary:  run.Summary,
		Warnings: append([]domain.AmbiguityWarning(nil), run.Warnings...),
	}
	if run.Result != nil {
		archived.Outcomes = run.Result.Archive()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.Summary.ID] = archived
	return nil
}

// List returns run summaries, newest first.
func (s *RunStore) List(_ context.Context, limit int) ([]domain.RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]domain.RunSummary, 0, len(s.runs))
	for _, run := range s.runs {
		summaries = append(summaries, run.Summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].StartedAt.Equal(summaries[j].StartedAt) {
			return summaries[i].ID > summaries[j].ID
		}
		return summaries[i].StartedAt.After(summaries[j].StartedAt)
	})

	if limit > 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}

// Get retrieves a run by ID or unique ID prefix.
func (s *RunStore) Get(_ context.Context, id string) (*domain.ArchivedRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if run, ok := s.runs[id]; ok {
		return &run, nil
	}

	var found *domain.ArchivedRun
	for key, run := range s.runs {
		if !strings.HasPrefix(key, id) {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("%w: run id prefix %q is ambiguous", domain.ErrInvalidInput, id)
		}
		run := run
		found = &run
	}
	if found == nil {
		return nil, domain.ErrNotFound
	}
	return found, nil
}
