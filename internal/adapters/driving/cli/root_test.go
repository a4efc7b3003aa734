package cli

import (
	"bytes"
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/conciliar/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/conciliar/internal/core/domain"
	"github.com/custodia-labs/conciliar/internal/core/ports/driving"
	"github.com/custodia-labs/conciliar/internal/core/services"
	"github.com/custodia-labs/conciliar/internal/logger"
)

// mockReconciler records the request and returns a fixed run.
type mockReconciler struct {
	req driving.ReconcileRequest
	err error
}

func (m *mockReconciler) Reconcile(_ context.Context, req driving.ReconcileRequest) (*domain.Run, error) {
	m.req = req
	if m.err != nil {
		return nil, m.err
	}
	return fixtureRun("run-0001-aaaa", req.Settings.Insurer), nil
}

func (m *mockReconciler) ReconcileTables(context.Context, driving.TableSet, domain.Settings) (*domain.Run, error) {
	return nil, m.err
}

func fixtureRun(id, insurer string) *domain.Run {
	result := &domain.Result{CombinedSize: 1, ExternalSize: 1}
	result.Add(domain.Outcome{
		Bucket:          domain.BucketUnpaid,
		Internal:        &domain.InternalRecord{Origin: "CELER", Policy: "23537654", Receipt: "347252144", Date: "2025-12-11"},
		External:        &domain.ExternalRecord{Origin: "ALLIANZ", Policy: "23537654", Receipt: "347252144", Date: "2025-12-11"},
		ClaimedInternal: []int{0},
		ClaimedExternal: []int{0},
	})
	return &domain.Run{
		Summary: domain.RunSummary{
			ID:        id,
			StartedAt: time.Date(2026, 1, 13, 14, 30, 0, 0, time.UTC),
			Insurer:   insurer,
			Mode:      domain.ModeBoth,
			Combined:  1,
			External:  1,
			Counts:    result.Counts(),
			MatchRate: result.MatchRate(),
		},
		Result: result,
	}
}

type testServices struct {
	reconciler *mockReconciler
	config     *memory.ConfigStore
	runs       *memory.RunStore
}

// setupTestServices injects test services and returns a cleanup function.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		reconciler: &mockReconciler{},
		config:     memory.NewConfigStore(),
		runs:       memory.NewRunStore(),
	}
	SetServices(Services{
		Reconciler: ts.reconciler,
		History:    services.NewHistoryService(ts.runs),
		Settings:   services.NewSettingsService(ts.config),
	})

	return ts, func() {
		SetServices(Services{})
		logger.SetVerbose(false)
	}
}

// executeCommand runs the root command with args and returns its output.
func executeCommand(args ...string) (string, error) {
	resetFlags()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores flag defaults between executions of the shared
// command tree.
func resetFlags() {
	verbose = false
	runPrimary, runSecondary, runInsurer, runMode, runPrimaryFormat, runOut = "", "", "", "", "", ""
	runExternal = nil
	runJSON, runXLSX, runNoReport, runNoArchive = false, false, false, false
	historyLimit, historyJSON, historyBucket, historyWarnings = 20, false, "", false

	clearChanged(rootCmd, "verbose")
	clearChanged(runCmd, "primary", "secondary", "external", "insurer", "mode",
		"primary-format", "out", "json", "xlsx", "no-report", "no-archive")
	clearChanged(historyListCmd, "limit", "json")
	clearChanged(historyShowCmd, "bucket", "warnings")
}

func clearChanged(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		if f := cmd.Flags().Lookup(name); f != nil {
			f.Changed = false
		}
		if f := cmd.PersistentFlags().Lookup(name); f != nil {
			f.Changed = false
		}
	}
}
