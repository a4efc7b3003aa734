package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/conciliar/internal/core/domain"
)

func testRun(id string, started time.Time) *domain.Run {
	result := &domain.Result{CombinedSize: 1, ExternalSize: 1}
	result.Add(domain.Outcome{
		Bucket:          domain.BucketUnpaid,
		Internal:        &domain.InternalRecord{Policy: "1", Receipt: "10", Date: "2026-01-01"},
		External:        &domain.ExternalRecord{Policy: "1", Receipt: "10", Date: "2026-01-01"},
		ClaimedInternal: []int{0},
		ClaimedExternal: []int{0},
	})
	return &domain.Run{
		Summary: domain.RunSummary{
			ID:        id,
			StartedAt: started,
			Insurer:   "ALLIANZ",
			Mode:      domain.ModeBoth,
			Counts:    result.Counts(),
		},
		Result:   result,
		Warnings: []domain.AmbiguityWarning{{Source: "CELER", Row: 2, Field: "Saldo", Value: "x", Reason: "not a number"}},
	}
}

func TestRunStore_SaveAndGet(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testRun("abc-123", time.Now())))

	run, err := store.Get(ctx, "abc-123")
	require.NoError(t, err)
	assert.Equal(t, "ALLIANZ", run.Summary.Insurer)
	require.Len(t, run.Outcomes, 1)
	assert.Equal(t, domain.BucketUnpaid, run.Outcomes[0].Bucket)
	require.Len(t, run.Warnings, 1)
	assert.Equal(t, "Saldo", run.Warnings[0].Field)
}

func TestRunStore_GetByPrefix(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, store.Save(ctx, testRun("aaa-1", now)))
	require.NoError(t, store.Save(ctx, testRun("aab-2", now)))

	run, err := store.Get(ctx, "aab")
	require.NoError(t, err)
	assert.Equal(t, "aab-2", run.Summary.ID)

	_, err = store.Get(ctx, "aa")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = store.Get(ctx, "zzz")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRunStore_ListNewestFirst(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(ctx, testRun("old", base)))
	require.NoError(t, store.Save(ctx, testRun("new", base.Add(time.Hour))))
	require.NoError(t, store.Save(ctx, testRun("mid", base.Add(time.Minute))))

	runs, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "new", runs[0].ID)
	assert.Equal(t, "mid", runs[1].ID)
	assert.Equal(t, "old", runs[2].ID)

	runs, err = store.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestRunStore_SaveRejectsMissingID(t *testing.T) {
	store := NewRunStore()

	err := store.Save(context.Background(), &domain.Run{})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
