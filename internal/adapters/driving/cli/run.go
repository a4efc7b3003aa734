package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/conciliar/internal/adapters/driven/report"
	"github.com/custodia-labs/conciliar/internal/core/domain"
	"github.com/custodia-labs/conciliar/internal/core/ports/driven"
	"github.com/custodia-labs/conciliar/internal/core/ports/driving"
	"github.com/custodia-labs/conciliar/internal/logger"
)

var (
	runPrimary       string
	runSecondary     string
	runExternal      []string
	runInsurer       string
	runMode          string
	runPrimaryFormat string
	runOut           string
	runJSON          bool
	runXLSX          bool
	runNoReport      bool
	runNoArchive     bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Reconcile internal records against insurer reports",
	Long: `Loads the internal exports and one or more insurer portfolio files,
classifies every record and prints a summary.

Insurer files are given with --external, repeated as needed. Prefix a path
with ORIGIN= to tag its records (default: the file name in capitals):

  conciliar run --primary soft.xlsx --secondary celer.xlsx \
      --external INDIVIDUAL=cartera_ind.xlsx --external COLECTIVA=cartera_col.xlsx

Unless --no-report is given, a text report (and with --xlsx a workbook) is
written to --out or the configured report.dir (default ~/.conciliar/reports).`,
	Args: cobra.NoArgs,
	RunE: runReconcile,
}

func init() {
	f := runCmd.Flags()
	f.StringVarP(&runPrimary, "primary", "p", "", "primary internal export")
	f.StringVarP(&runSecondary, "secondary", "s", "", "secondary internal export")
	f.StringArrayVarP(&runExternal, "external", "e", nil, "insurer portfolio file, [ORIGIN=]path (repeatable)")
	f.StringVar(&runInsurer, "insurer", "", "insurer name filter (overrides reconcile.insurer)")
	f.StringVar(&runMode, "mode", "", "internal sources to use: both, primary or secondary")
	f.StringVar(&runPrimaryFormat, "primary-format", "", "primary layout: policy_export or collections")
	f.StringVarP(&runOut, "out", "o", "", "report directory (overrides report.dir)")
	f.BoolVar(&runJSON, "json", false, "print the full result as JSON instead of the summary")
	f.BoolVar(&runXLSX, "xlsx", false, "also write an Excel workbook")
	f.BoolVar(&runNoReport, "no-report", false, "do not write report files")
	f.BoolVar(&runNoArchive, "no-archive", false, "do not archive this run")
	rootCmd.AddCommand(runCmd)
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	if reconciler == nil || settingsService == nil {
		return errors.New("reconcile service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	applyRunOverrides(cmd, settings)

	external, err := parseExternal(runExternal)
	if err != nil {
		return err
	}

	run, err := reconciler.Reconcile(cmd.Context(), driving.ReconcileRequest{
		Primary:   driving.SourceFile{Path: runPrimary},
		Secondary: driving.SourceFile{Path: runSecondary},
		External:  external,
		Settings:  settings,
	})
	if err != nil {
		return fmt.Errorf("reconcile failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if runJSON {
		return report.NewJSONWriter().Write(out, run)
	}

	if err := report.NewSummaryRenderer(isTerminal(out)).Render(out, run.Summary); err != nil {
		return err
	}

	if runNoReport || settings.ReportDir == "" {
		return nil
	}
	writers := []driven.ReportWriter{report.NewTextWriter()}
	if runXLSX {
		writers = append(writers, report.NewXLSXWriter())
	}
	for _, w := range writers {
		path, err := writeReport(settings.ReportDir, run, w)
		if err != nil {
			return err
		}
		cmd.Printf("Report written: %s\n", path)
	}
	return nil
}

func applyRunOverrides(cmd *cobra.Command, s *domain.Settings) {
	flags := cmd.Flags()
	if flags.Changed("insurer") {
		s.Insurer = runInsurer
	}
	if flags.Changed("mode") {
		s.Mode = domain.Mode(strings.ToLower(runMode))
	}
	if flags.Changed("primary-format") {
		s.PrimaryFormat = domain.Format(strings.ToLower(runPrimaryFormat))
	}
	if flags.Changed("out") {
		s.ReportDir = runOut
	}
	if runNoArchive {
		s.ArchiveEnabled = false
	}
}

// parseExternal splits "[ORIGIN=]path" arguments. The part before "=" is
// taken as an origin only when it does not look like a path.
func parseExternal(args []string) ([]driving.SourceFile, error) {
	if len(args) == 0 {
		return nil, errors.New("at least one --external insurer file is required")
	}

	files := make([]driving.SourceFile, 0, len(args))
	for _, arg := range args {
		file := driving.SourceFile{Path: arg}
		if origin, path, ok := strings.Cut(arg, "="); ok && !strings.ContainsAny(origin, `/\.`) {
			file = driving.SourceFile{Origin: strings.ToUpper(strings.TrimSpace(origin)), Path: path}
		}
		if strings.TrimSpace(file.Path) == "" {
			return nil, fmt.Errorf("--external %q has no file path", arg)
		}
		files = append(files, file)
	}
	return files, nil
}

// writeReport writes one report file named after the run start time.
func writeReport(dir string, run *domain.Run, w driven.ReportWriter) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	name := fmt.Sprintf("Reporte_Conciliacion_%s%s", run.Summary.StartedAt.Format("20060102_150405"), w.Extension())
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}
	if err := w.Write(f, run); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s report: %w", w.Format(), err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close report: %w", err)
	}
	logger.Debug("Wrote %s report to %s", w.Format(), path)
	return path, nil
}
