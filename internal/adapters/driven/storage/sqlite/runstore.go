package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/conciliar/internal/core/domain"
	"github.com/custodia-labs/conciliar/internal/core/ports/driven"
)

// timeLayout is fixed width so started_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

// Save archives a run with its outcomes and warnings, replacing any run
// with the same ID.
func (s *runStore) Save(ctx context.Context, run *domain.Run) error {
	if run == nil || run.Summary.ID == "" {
		return fmt.Errorf("%w: run without id", domain.ErrInvalidInput)
	}
	sum := run.Summary

	sourcesJSON, err := json.Marshal(sum.Sources)
	if err != nil {
		return fmt.Errorf("marshalling sources: %w", err)
	}
	countsJSON, err := json.Marshal(encodeCounts(sum.Counts))
	if err != nil {
		return fmt.Errorf("marshalling counts: %w", err)
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	// Child rows go with the parent through ON DELETE CASCADE.
	if _, err := tx.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", sum.ID); err != nil {
		return fmt.Errorf("replacing run: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, insurer, mode, sources, combined, discarded,
			external, counts, warnings, match_rate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, sum.ID, sum.StartedAt.UTC().Format(timeLayout), sum.Insurer, string(sum.Mode),
		string(sourcesJSON), sum.Combined, sum.Discarded, sum.External,
		string(countsJSON), sum.Warnings, sum.MatchRate)
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}

	if run.Result != nil {
		if err := saveOutcomes(ctx, tx, sum.ID, run.Result.Archive()); err != nil {
			return err
		}
	}
	if err := saveWarnings(ctx, tx, sum.ID, run.Warnings); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func saveOutcomes(ctx context.Context, tx *sql.Tx, runID string, outcomes []domain.ArchivedOutcome) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO outcomes (run_id, seq, bucket, policy, start_date,
			internal_receipt, external_receipt, internal_origin, external_origin,
			internal_name, external_name, internal_balance, external_balance, needs_backfill)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, o := range outcomes {
		if _, err := stmt.ExecContext(ctx, runID, o.Seq, o.Bucket.String(), o.Policy, string(o.Date),
			o.InternalReceipt, o.ExternalReceipt, o.InternalOrigin, o.ExternalOrigin,
			o.InternalName, o.ExternalName, o.InternalBalance, o.ExternalBalance,
			o.NeedsPrimaryFill); err != nil {
			return fmt.Errorf("saving outcome %d: %w", o.Seq, err)
		}
	}
	return nil
}

func saveWarnings(ctx context.Context, tx *sql.Tx, runID string, warnings []domain.AmbiguityWarning) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO warnings (run_id, seq, source, row_num, field, value, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, w := range warnings {
		if _, err := stmt.ExecContext(ctx, runID, i+1, w.Source, w.Row, w.Field, w.Value, w.Reason); err != nil {
			return fmt.Errorf("saving warning %d: %w", i+1, err)
		}
	}
	return nil
}

// List returns run summaries, newest first. A limit of zero or less
// returns every run.
func (s *runStore) List(ctx context.Context, limit int) ([]domain.RunSummary, error) {
	query := `
		SELECT id, started_at, insurer, mode, sources, combined, discarded,
			external, counts, warnings, match_rate
		FROM runs ORDER BY started_at DESC, id DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var summaries []domain.RunSummary
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *sum)
	}
	return summaries, rows.Err()
}

// Get retrieves a run by ID or by a prefix matching exactly one run.
func (s *runStore) Get(ctx context.Context, id string) (*domain.ArchivedRun, error) {
	fullID, err := s.resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, started_at, insurer, mode, sources, combined, discarded,
			external, counts, warnings, match_rate
		FROM runs WHERE id = ?
	`, fullID)
	sum, err := scanSummary(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	run := &domain.ArchivedRun{Summary: *sum}
	if run.Outcomes, err = s.outcomes(ctx, fullID); err != nil {
		return nil, err
	}
	if run.Warnings, err = s.warnings(ctx, fullID); err != nil {
		return nil, err
	}
	return run, nil
}

// resolve expands an ID prefix to the single matching run ID.
func (s *runStore) resolve(ctx context.Context, id string) (string, error) {
	pattern := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(id) + "%"
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id FROM runs WHERE id = ? OR id LIKE ? ESCAPE '\'
		ORDER BY id = ? DESC LIMIT 2
	`, id, pattern, id)
	if err != nil {
		return "", fmt.Errorf("resolving run id: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var found string
		if err := rows.Scan(&found); err != nil {
			return "", fmt.Errorf("scanning run id: %w", err)
		}
		ids = append(ids, found)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	switch {
	case len(ids) == 0:
		return "", domain.ErrNotFound
	case ids[0] == id:
		return id, nil
	case len(ids) > 1:
		return "", fmt.Errorf("%w: run id prefix %q is ambiguous", domain.ErrInvalidInput, id)
	default:
		return ids[0], nil
	}
}

func (s *runStore) outcomes(ctx context.Context, runID string) ([]domain.ArchivedOutcome, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT seq, bucket, policy, start_date, internal_receipt, external_receipt,
			internal_origin, external_origin, internal_name, external_name,
			internal_balance, external_balance, needs_backfill
		FROM outcomes WHERE run_id = ? ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying outcomes: %w", err)
	}
	defer rows.Close()

	var out []domain.ArchivedOutcome
	for rows.Next() {
		var o domain.ArchivedOutcome
		var bucket, date string
		if err := rows.Scan(&o.Seq, &bucket, &o.Policy, &date, &o.InternalReceipt, &o.ExternalReceipt,
			&o.InternalOrigin, &o.ExternalOrigin, &o.InternalName, &o.ExternalName,
			&o.InternalBalance, &o.ExternalBalance, &o.NeedsPrimaryFill); err != nil {
			return nil, fmt.Errorf("scanning outcome: %w", err)
		}
		if o.Bucket, err = domain.ParseBucket(bucket); err != nil {
			return nil, fmt.Errorf("outcome %d has bucket %q: %w", o.Seq, bucket, err)
		}
		o.Date = domain.Date(date)
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *runStore) warnings(ctx context.Context, runID string) ([]domain.AmbiguityWarning, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT source, row_num, field, value, reason
		FROM warnings WHERE run_id = ? ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying warnings: %w", err)
	}
	defer rows.Close()

	var out []domain.AmbiguityWarning
	for rows.Next() {
		var w domain.AmbiguityWarning
		if err := rows.Scan(&w.Source, &w.Row, &w.Field, &w.Value, &w.Reason); err != nil {
			return nil, fmt.Errorf("scanning warning: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(row scanner) (*domain.RunSummary, error) {
	var sum domain.RunSummary
	var startedAt, mode, sourcesJSON, countsJSON string
	if err := row.Scan(&sum.ID, &startedAt, &sum.Insurer, &mode, &sourcesJSON,
		&sum.Combined, &sum.Discarded, &sum.External, &countsJSON,
		&sum.Warnings, &sum.MatchRate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	t, err := time.Parse(timeLayout, startedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing started_at: %w", err)
	}
	sum.StartedAt = t
	sum.Mode = domain.Mode(mode)

	if err := json.Unmarshal([]byte(sourcesJSON), &sum.Sources); err != nil {
		return nil, fmt.Errorf("unmarshaling sources: %w", err)
	}

	var counts map[string]int
	if err := json.Unmarshal([]byte(countsJSON), &counts); err != nil {
		return nil, fmt.Errorf("unmarshaling counts: %w", err)
	}
	if sum.Counts, err = decodeCounts(counts); err != nil {
		return nil, err
	}
	return &sum, nil
}

func encodeCounts(counts map[domain.Bucket]int) map[string]int {
	out := make(map[string]int, len(counts))
	for b, n := range counts {
		out[b.String()] = n
	}
	return out
}

func decodeCounts(counts map[string]int) (map[domain.Bucket]int, error) {
	out := make(map[domain.Bucket]int, len(counts))
	for name, n := range counts {
		b, err := domain.ParseBucket(name)
		if err != nil {
			return nil, fmt.Errorf("count for bucket %q: %w", name, err)
		}
		out[b] = n
	}
	return out, nil
}
