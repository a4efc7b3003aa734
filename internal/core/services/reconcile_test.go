package services

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/conciliar/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/conciliar/internal/core/domain"
	"github.com/custodia-labs/conciliar/internal/core/ports/driven"
	"github.com/custodia-labs/conciliar/internal/core/ports/driving"
	"github.com/custodia-labs/conciliar/internal/logger"
)

// mockLoaders serves tables by path.
type mockLoaders struct {
	tables map[string]*domain.Table
	opts   map[string]driven.LoadOptions
}

func (m *mockLoaders) For(path string) (driven.TableLoader, error) {
	if strings.HasSuffix(path, ".pdf") {
		return nil, domain.ErrUnsupportedType
	}
	return m, nil
}
func (m *mockLoaders) Register(driven.TableLoader)   {}
func (m *mockLoaders) SupportedExtensions() []string { return []string{".mock"} }
func (m *mockLoaders) Name() string                  { return "mock" }
func (m *mockLoaders) Extensions() []string          { return []string{".mock"} }
func (m *mockLoaders) Load(_ context.Context, path string, opts driven.LoadOptions) (*domain.Table, error) {
	if m.opts == nil {
		m.opts = make(map[string]driven.LoadOptions)
	}
	m.opts[path] = opts
	table, ok := m.tables[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return table, nil
}

var mockColumns = []string{"policy", "receipt", "date"}

// mockInternalAdapter reads the mock column layout.
type mockInternalAdapter struct{ format domain.Format }

func (a mockInternalAdapter) Format() domain.Format      { return a.format }
func (a mockInternalAdapter) RequiredColumns() []string { return mockColumns }
func (a mockInternalAdapter) Adapt(table *domain.Table, src driven.InternalSource) (*driven.InternalBatch, error) {
	if missing := table.MissingColumns(mockColumns); len(missing) > 0 {
		return nil, &domain.SchemaError{Source: src.Origin, Missing: missing}
	}
	batch := &driven.InternalBatch{Loaded: len(table.Rows)}
	for i, row := range table.Rows {
		if src.Insurer != "" && row.Value("insurer") != "" && row.Value("insurer") != src.Insurer {
			continue
		}
		date := domain.DateFromString(row.Value("date"))
		if !date.Valid() {
			batch.Warnings = append(batch.Warnings, domain.AmbiguityWarning{
				Source: src.Origin, Row: i + 1, Field: "date", Value: row.Value("date"), Reason: "not a date",
			})
		}
		batch.Records = append(batch.Records, domain.InternalRecord{
			Row:            i + 1,
			Origin:         src.Origin,
			Role:           src.Role,
			Policy:         domain.NormalizePolicy(row.Value("policy")),
			Receipt:        domain.NormalizeReceipt(row.Value("receipt")),
			Date:           date,
			MissingReceipt: src.Role == domain.RolePrimary && row.IsNull("receipt"),
		})
	}
	return batch, nil
}

type mockExternalAdapter struct{}

func (mockExternalAdapter) RequiredColumns() []string { return mockColumns }
func (mockExternalAdapter) Adapt(table *domain.Table, origin string) (*driven.ExternalBatch, error) {
	if missing := table.MissingColumns(mockColumns); len(missing) > 0 {
		return nil, &domain.SchemaError{Source: origin, Missing: missing}
	}
	batch := &driven.ExternalBatch{}
	for i, row := range table.Rows {
		batch.Records = append(batch.Records, domain.ExternalRecord{
			Row:     i + 1,
			Origin:  origin,
			Policy:  domain.NormalizePolicy(row.Value("policy")),
			Receipt: domain.NormalizeReceipt(row.Value("receipt")),
			Date:    domain.DateFromSerial(row.Value("date")),
		})
	}
	return batch, nil
}

type mockAdapters struct{}

func (mockAdapters) Internal(format domain.Format) (driven.InternalAdapter, error) {
	switch format {
	case domain.FormatPolicyExport, domain.FormatCollections:
		return mockInternalAdapter{format: format}, nil
	}
	return nil, domain.ErrUnsupportedType
}
func (mockAdapters) External() driven.ExternalAdapter { return mockExternalAdapter{} }

func table(name string, rows ...domain.Row) *domain.Table {
	return &domain.Table{Name: name, Columns: []string{"policy", "receipt", "date", "insurer"}, Rows: rows}
}

func fixtureTables() driving.TableSet {
	return driving.TableSet{
		Primary: table("primary",
			domain.Row{"policy": "023537654", "receipt": "347252144", "date": "2025-12-11", "insurer": "ALLIANZ"},
			domain.Row{"policy": "23178309", "receipt": "", "date": "2026-01-13", "insurer": "ALLIANZ"},
			domain.Row{"policy": "555", "receipt": "1", "date": "2026-01-01", "insurer": "OTHER"},
		),
		Secondary: table("secondary",
			domain.Row{"policy": "23178309", "receipt": "999", "date": "2026-01-13"},
			domain.Row{"policy": "23000001", "receipt": "111", "date": "2026-01-01"},
			domain.Row{"policy": "777", "receipt": "7", "date": "junk"},
		),
		External: []driving.NamedTable{
			{Origin: "PERSONAS", Table: table("personas",
				domain.Row{"policy": "23537654", "receipt": "347252144", "date": "46002"},
				domain.Row{"policy": "23178309", "receipt": "347216594", "date": "46035"},
			)},
			{Origin: "PYMES", Table: table("pymes",
				domain.Row{"policy": "23000001", "receipt": "222", "date": "46023"},
				domain.Row{"policy": "99999999", "receipt": "1", "date": "46023"},
			)},
		},
	}
}

func newTestReconcileService(runs *memory.RunStore, loaders *mockLoaders) *ReconcileService {
	if loaders == nil {
		loaders = &mockLoaders{}
	}
	var store driven.RunStore
	if runs != nil {
		store = runs
	}
	svc := NewReconcileService(loaders, mockAdapters{}, store, nil)
	svc.now = func() time.Time { return time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC) }
	return svc
}

func TestReconcileService_ReconcileTables(t *testing.T) {
	var logs bytes.Buffer
	logger.SetOutput(&logs)
	defer logger.SetOutput(os.Stderr)

	runs := memory.NewRunStore()
	svc := newTestReconcileService(runs, nil)

	run, err := svc.ReconcileTables(context.Background(), fixtureTables(), domain.DefaultSettings())
	require.NoError(t, err)

	counts := run.Summary.Counts
	assert.Equal(t, 1, counts[domain.BucketUnpaid])
	assert.Equal(t, 1, counts[domain.BucketMissingReceipt])
	assert.Equal(t, 1, counts[domain.BucketUpdateSystem])
	assert.Equal(t, 1, counts[domain.BucketOnlyExternal])
	assert.Equal(t, 1, counts[domain.BucketOnlyInternal])

	// Two primary rows kept, one secondary superseded.
	assert.Equal(t, 4, run.Summary.Combined)
	assert.Equal(t, 1, run.Summary.Discarded)
	assert.Equal(t, 4, run.Summary.External)
	assert.InDelta(t, 75.0, run.Summary.MatchRate, 0.001)

	require.Len(t, run.Summary.Sources, 4)
	assert.Equal(t, domain.SourceCount{Name: "SOFTSEGUROS", Kind: "primary", Loaded: 3, Kept: 2}, run.Summary.Sources[0])
	assert.Equal(t, "PYMES", run.Summary.Sources[3].Name)

	assert.Equal(t, 1, run.Summary.Warnings)
	assert.Contains(t, logs.String(), "[WARN] not a date")
	assert.Contains(t, logs.String(), "source=CELER")

	assert.NotEmpty(t, run.Summary.ID)
	archived, err := runs.Get(context.Background(), run.Summary.ID)
	require.NoError(t, err)
	assert.Len(t, archived.Outcomes, 5)
}

func TestReconcileService_ArchiveDisabled(t *testing.T) {
	runs := memory.NewRunStore()
	svc := newTestReconcileService(runs, nil)
	settings := domain.DefaultSettings()
	settings.ArchiveEnabled = false

	_, err := svc.ReconcileTables(context.Background(), fixtureTables(), settings)
	require.NoError(t, err)

	listed, err := runs.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestReconcileService_ArchiveFailureKeepsResult(t *testing.T) {
	logger.SetOutput(&bytes.Buffer{})
	defer logger.SetOutput(os.Stderr)

	svc := NewReconcileService(&mockLoaders{}, mockAdapters{}, failingRunStore{}, nil)

	run, err := svc.ReconcileTables(context.Background(), fixtureTables(), domain.DefaultSettings())

	require.NoError(t, err)
	assert.NotNil(t, run.Result)
}

func TestReconcileService_CancelledContext(t *testing.T) {
	runs := memory.NewRunStore()
	svc := newTestReconcileService(runs, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run, err := svc.ReconcileTables(ctx, fixtureTables(), domain.DefaultSettings())

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Nil(t, run)

	listed, err := runs.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestReconcileService_Modes(t *testing.T) {
	svc := newTestReconcileService(nil, nil)

	settings := domain.DefaultSettings()
	settings.Mode = domain.ModePrimary
	tables := fixtureTables()
	tables.Secondary = nil

	run, err := svc.ReconcileTables(context.Background(), tables, settings)
	require.NoError(t, err)
	assert.Equal(t, 2, run.Summary.Combined)
	assert.Zero(t, run.Summary.Discarded)

	settings.Mode = domain.ModeSecondary
	tables = fixtureTables()
	tables.Primary = nil
	run, err = svc.ReconcileTables(context.Background(), tables, settings)
	require.NoError(t, err)
	assert.Equal(t, 3, run.Summary.Combined)
	assert.Zero(t, run.Summary.Counts[domain.BucketMissingReceipt])
	assert.Equal(t, 2, run.Summary.Counts[domain.BucketUpdateSystem])
}

func TestReconcileService_MissingTableIsStateError(t *testing.T) {
	svc := newTestReconcileService(nil, nil)

	tables := fixtureTables()
	tables.Secondary = nil
	_, err := svc.ReconcileTables(context.Background(), tables, domain.DefaultSettings())
	assert.True(t, errors.Is(err, domain.ErrState))

	tables = fixtureTables()
	tables.External = nil
	_, err = svc.ReconcileTables(context.Background(), tables, domain.DefaultSettings())
	assert.True(t, errors.Is(err, domain.ErrState))
}

func TestReconcileService_SchemaErrorAborts(t *testing.T) {
	svc := newTestReconcileService(nil, nil)

	tables := fixtureTables()
	tables.External[1].Table = &domain.Table{Columns: []string{"policy"}}
	_, err := svc.ReconcileTables(context.Background(), tables, domain.DefaultSettings())

	var schemaErr *domain.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "PYMES", schemaErr.Source)
	assert.Equal(t, []string{"receipt", "date"}, schemaErr.Missing)
}

func TestReconcileService_InvalidSettings(t *testing.T) {
	svc := newTestReconcileService(nil, nil)
	settings := domain.DefaultSettings()
	settings.Mode = "all"

	_, err := svc.ReconcileTables(context.Background(), fixtureTables(), settings)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReconcileService_Reconcile(t *testing.T) {
	fx := fixtureTables()
	loaders := &mockLoaders{tables: map[string]*domain.Table{
		"/in/soft.mock":     fx.Primary,
		"/in/celer.mock":    fx.Secondary,
		"/in/personas.mock": fx.External[0].Table,
		"/in/pymes.mock":    fx.External[1].Table,
	}}
	svc := newTestReconcileService(nil, loaders)

	run, err := svc.Reconcile(context.Background(), driving.ReconcileRequest{
		Primary:   driving.SourceFile{Path: "/in/soft.mock"},
		Secondary: driving.SourceFile{Path: "/in/celer.mock"},
		External: []driving.SourceFile{
			{Path: "/in/personas.mock"},
			{Path: "/in/pymes.mock", Origin: "GROUP"},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, 5, run.Result.Len())
	assert.Equal(t, "PERSONAS", run.Summary.Sources[2].Name)
	assert.Equal(t, "GROUP", run.Summary.Sources[3].Name)
	assert.Equal(t, "Detalle", loaders.opts["/in/personas.mock"].Sheet)
	assert.Equal(t, mockColumns, loaders.opts["/in/soft.mock"].HeaderKeys)
}

func TestReconcileService_Reconcile_InputErrors(t *testing.T) {
	svc := newTestReconcileService(nil, &mockLoaders{tables: map[string]*domain.Table{}})
	ctx := context.Background()

	_, err := svc.Reconcile(ctx, driving.ReconcileRequest{
		Secondary: driving.SourceFile{Path: "b.mock"},
		External:  []driving.SourceFile{{Path: "c.mock"}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	settings := domain.DefaultSettings()
	settings.Mode = domain.ModePrimary
	_, err = svc.Reconcile(ctx, driving.ReconcileRequest{
		Primary:  driving.SourceFile{Path: "a.mock"},
		Settings: &settings,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Reconcile(ctx, driving.ReconcileRequest{
		Primary:  driving.SourceFile{Path: "a.pdf"},
		Settings: &settings,
	})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestOriginFromPath(t *testing.T) {
	assert.Equal(t, "PERSONAS", originFromPath("/data/Personas.xlsx"))
	assert.Equal(t, "CARTERA_PYMES", originFromPath("cartera_pymes.csv"))
}
