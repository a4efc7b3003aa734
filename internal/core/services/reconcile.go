package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/conciliar/internal/core/domain"
	"github.com/custodia-labs/conciliar/internal/core/ports/driven"
	"github.com/custodia-labs/conciliar/internal/core/ports/driving"
	"github.com/custodia-labs/conciliar/internal/logger"
)

// Ensure ReconcileService implements the interface.
var _ driving.Reconciler = (*ReconcileService)(nil)

// detailSheet is the worksheet holding the line items in insurer workbooks.
const detailSheet = "Detalle"

// ReconcileService runs the reconciliation pipeline:
// load -> adapt -> combine -> classify -> archive.
type ReconcileService struct {
	loaders  driven.LoaderFactory
	adapters driven.AdapterRegistry
	runs     driven.RunStore
	settings driving.SettingsService
	now      func() time.Time
}

// NewReconcileService creates a new reconcile service.
// The run store and settings service may be nil.
func NewReconcileService(
	loaders driven.LoaderFactory,
	adapters driven.AdapterRegistry,
	runs driven.RunStore,
	settings driving.SettingsService,
) *ReconcileService {
	return &ReconcileService{
		loaders:  loaders,
		adapters: adapters,
		runs:     runs,
		settings: settings,
		now:      time.Now,
	}
}

// Reconcile loads the request files and reconciles them.
func (s *ReconcileService) Reconcile(ctx context.Context, req driving.ReconcileRequest) (*domain.Run, error) {
	settings, err := s.resolveSettings(req.Settings)
	if err != nil {
		return nil, err
	}

	logger.Section("Loading")
	var tables driving.TableSet

	if settings.Mode.UsesPrimary() {
		tables.Primary, err = s.loadInternal(ctx, req.Primary, settings, domain.RolePrimary)
		if err != nil {
			return nil, err
		}
	}
	if settings.Mode.UsesSecondary() {
		tables.Secondary, err = s.loadInternal(ctx, req.Secondary, settings, domain.RoleSecondary)
		if err != nil {
			return nil, err
		}
	}

	if len(req.External) == 0 {
		return nil, fmt.Errorf("%w: at least one insurer file is required", domain.ErrInvalidInput)
	}
	opts := driven.LoadOptions{Sheet: detailSheet, HeaderKeys: s.adapters.External().RequiredColumns()}
	for _, file := range req.External {
		table, err := s.load(ctx, file.Path, opts)
		if err != nil {
			return nil, fmt.Errorf("load insurer file: %w", err)
		}
		origin := file.Origin
		if origin == "" {
			origin = originFromPath(file.Path)
		}
		tables.External = append(tables.External, driving.NamedTable{Origin: origin, Table: table})
	}

	return s.ReconcileTables(ctx, tables, *settings)
}

// ReconcileTables adapts, combines and classifies pre-loaded tables.
func (s *ReconcileService) ReconcileTables(
	ctx context.Context,
	tables driving.TableSet,
	settings domain.Settings,
) (*domain.Run, error) {
	if err := ValidateSettings(&settings); err != nil {
		return nil, err
	}

	run := &domain.Run{
		Summary: domain.RunSummary{
			ID:        uuid.NewString(),
			StartedAt: s.now(),
			Insurer:   settings.Insurer,
			Mode:      settings.Mode,
		},
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("reconcile: %w", err)
	}

	logger.Section("Adapting")
	var primary, secondary []domain.InternalRecord
	var err error
	if settings.Mode.UsesPrimary() {
		primary, err = s.adaptInternal(run, tables.Primary, settings, domain.RolePrimary)
		if err != nil {
			return nil, err
		}
	}
	if settings.Mode.UsesSecondary() {
		secondary, err = s.adaptInternal(run, tables.Secondary, settings, domain.RoleSecondary)
		if err != nil {
			return nil, err
		}
	}

	external, err := s.adaptExternal(run, tables.External)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("reconcile: %w", err)
	}

	logger.Section("Classifying")
	combined, err := Combine(primary, secondary)
	if err != nil {
		return nil, err
	}
	logger.Info("Combined set: %d records, %d secondary records superseded",
		combined.Len(), len(combined.Discarded))

	result, err := Classify(combined, external)
	if err != nil {
		return nil, err
	}

	run.Result = result
	run.Summary.Combined = combined.Len()
	run.Summary.Discarded = len(combined.Discarded)
	run.Summary.External = external.Len()
	run.Summary.Counts = result.Counts()
	run.Summary.Warnings = len(run.Warnings)
	run.Summary.MatchRate = result.MatchRate()

	for _, b := range domain.Buckets {
		logger.Info("%s: %d", b, run.Summary.Counts[b])
	}

	if settings.ArchiveEnabled && s.runs != nil {
		if err := s.runs.Save(ctx, run); err != nil {
			logger.Warn("Failed to archive run %s: %v", run.Summary.ID, err)
		} else {
			logger.Debug("Archived run %s", run.Summary.ID)
		}
	}

	return run, nil
}

func (s *ReconcileService) resolveSettings(override *domain.Settings) (*domain.Settings, error) {
	if override != nil {
		return override, nil
	}
	if s.settings == nil {
		defaults := domain.DefaultSettings()
		return &defaults, nil
	}
	settings, err := s.settings.Get()
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return settings, nil
}

func (s *ReconcileService) loadInternal(
	ctx context.Context,
	file driving.SourceFile,
	settings *domain.Settings,
	role domain.Role,
) (*domain.Table, error) {
	name := settings.NameFor(role)
	if file.Path == "" {
		return nil, fmt.Errorf("%w: %s file is required for mode %s", domain.ErrInvalidInput, name, settings.Mode)
	}
	adapter, err := s.adapters.Internal(settings.FormatFor(role))
	if err != nil {
		return nil, fmt.Errorf("select %s adapter: %w", name, err)
	}
	table, err := s.load(ctx, file.Path, driven.LoadOptions{HeaderKeys: adapter.RequiredColumns()})
	if err != nil {
		return nil, fmt.Errorf("load %s file: %w", name, err)
	}
	return table, nil
}

func (s *ReconcileService) load(ctx context.Context, path string, opts driven.LoadOptions) (*domain.Table, error) {
	loader, err := s.loaders.For(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("Loading %s with %s loader", path, loader.Name())
	table, err := loader.Load(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	logger.Info("Loaded %s: %d rows", filepath.Base(path), len(table.Rows))
	return table, nil
}

func (s *ReconcileService) adaptInternal(
	run *domain.Run,
	table *domain.Table,
	settings domain.Settings,
	role domain.Role,
) ([]domain.InternalRecord, error) {
	name := settings.NameFor(role)
	if table == nil {
		return nil, &domain.StateError{Op: "adapt " + name, Requires: role.String() + " table"}
	}
	adapter, err := s.adapters.Internal(settings.FormatFor(role))
	if err != nil {
		return nil, fmt.Errorf("select %s adapter: %w", name, err)
	}

	batch, err := adapter.Adapt(table, driven.InternalSource{
		Origin:  name,
		Role:    role,
		Insurer: settings.Insurer,
	})
	if err != nil {
		return nil, fmt.Errorf("adapt %s: %w", name, err)
	}

	s.addWarnings(run, batch.Warnings)
	run.Summary.Sources = append(run.Summary.Sources, domain.SourceCount{
		Name:   name,
		Kind:   role.String(),
		Loaded: batch.Loaded,
		Kept:   len(batch.Records),
	})
	logger.Info("%s: %d of %d rows kept for %s", name, len(batch.Records), batch.Loaded, settings.Insurer)

	records := batch.Records
	if records == nil {
		records = []domain.InternalRecord{}
	}
	return records, nil
}

func (s *ReconcileService) adaptExternal(run *domain.Run, tables []driving.NamedTable) (*domain.ExternalSet, error) {
	if len(tables) == 0 {
		return nil, &domain.StateError{Op: "classify", Requires: "insurer table"}
	}

	adapter := s.adapters.External()
	set := &domain.ExternalSet{}
	for _, nt := range tables {
		if nt.Table == nil {
			return nil, &domain.StateError{Op: "adapt " + nt.Origin, Requires: "insurer table"}
		}
		batch, err := adapter.Adapt(nt.Table, nt.Origin)
		if err != nil {
			return nil, fmt.Errorf("adapt %s: %w", nt.Origin, err)
		}
		s.addWarnings(run, batch.Warnings)
		set.Records = append(set.Records, batch.Records...)
		run.Summary.Sources = append(run.Summary.Sources, domain.SourceCount{
			Name:   nt.Origin,
			Kind:   "external",
			Loaded: len(nt.Table.Rows),
			Kept:   len(batch.Records),
		})
		logger.Info("%s: %d insurer rows", nt.Origin, len(batch.Records))
	}
	return set, nil
}

func (s *ReconcileService) addWarnings(run *domain.Run, warnings []domain.AmbiguityWarning) {
	for _, w := range warnings {
		logger.WarnFields(logger.Fields{
			"source": w.Source,
			"row":    w.Row,
			"field":  w.Field,
			"value":  w.Value,
		}, "%s", w.Reason)
	}
	run.Warnings = append(run.Warnings, warnings...)
}

// originFromPath derives an origin tag from a file name: "personas.xlsx" -> "PERSONAS".
func originFromPath(path string) string {
	base := filepath.Base(path)
	return strings.ToUpper(strings.TrimSuffix(base, filepath.Ext(base)))
}
