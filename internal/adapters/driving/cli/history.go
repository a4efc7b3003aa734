package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/conciliar/internal/adapters/driven/report"
	"github.com/custodia-labs/conciliar/internal/core/domain"
)

var (
	historyLimit    int
	historyJSON     bool
	historyBucket   string
	historyWarnings bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse archived runs",
	RunE:  runHistoryList,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show an archived run",
	Long: `Shows the summary and outcomes of an archived run. The run ID may be
abbreviated to any prefix that matches a single run.`,
	Args: cobra.ExactArgs(1),
	RunE: runHistoryShow,
}

func init() {
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of runs")
	historyListCmd.Flags().BoolVar(&historyJSON, "json", false, "output as JSON")
	historyShowCmd.Flags().StringVarP(&historyBucket, "bucket", "b", "", "only show one bucket (e.g. unpaid)")
	historyShowCmd.Flags().BoolVarP(&historyWarnings, "warnings", "w", false, "also list data warnings")
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	runs, err := historyService.List(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if historyJSON {
		data, err := json.MarshalIndent(runs, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal runs: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(runs) == 0 {
		cmd.Println("No archived runs.")
		return nil
	}

	cmd.Printf("%-10s %-19s %-12s %-9s %8s %8s %7s\n", "RUN", "STARTED", "INSURER", "MODE", "COMBINED", "INSURER#", "MATCH")
	for _, r := range runs {
		cmd.Printf("%-10s %-19s %-12s %-9s %8d %8d %7s\n",
			truncate(r.ID, 8), r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			truncate(r.Insurer, 12), r.Mode, r.Combined, r.External, report.FormatRate(r.MatchRate))
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	var only *domain.Bucket
	if historyBucket != "" {
		b, err := domain.ParseBucket(strings.ToLower(historyBucket))
		if err != nil {
			return fmt.Errorf("unknown bucket %q (one of %s)", historyBucket, bucketNames())
		}
		only = &b
	}

	run, err := historyService.Get(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("run not found: %s", args[0])
		}
		return fmt.Errorf("failed to get run: %w", err)
	}

	out := cmd.OutOrStdout()
	if err := report.NewSummaryRenderer(isTerminal(out)).Render(out, run.Summary); err != nil {
		return err
	}
	cmd.Printf("Run ID: %s\n", run.Summary.ID)

	for _, b := range domain.Buckets {
		if only != nil && *only != b {
			continue
		}
		printArchivedBucket(cmd, b, run.Outcomes)
	}

	if historyWarnings && len(run.Warnings) > 0 {
		cmd.Printf("\nData warnings (%d):\n", len(run.Warnings))
		for _, w := range run.Warnings {
			cmd.Printf("  %s\n", w.String())
		}
	}
	return nil
}

func printArchivedBucket(cmd *cobra.Command, b domain.Bucket, outcomes []domain.ArchivedOutcome) {
	var rows []domain.ArchivedOutcome
	for _, o := range outcomes {
		if o.Bucket == b {
			rows = append(rows, o)
		}
	}

	cmd.Printf("\n[%s] %s (%d)\n", b, b.Title(), len(rows))
	for i, o := range rows {
		receipt := o.InternalReceipt
		if o.ExternalReceipt != "" && o.ExternalReceipt != o.InternalReceipt {
			receipt = strings.TrimPrefix(receipt+" / "+o.ExternalReceipt, " / ")
		}
		cmd.Printf("  %d. %s | %s | %s", i+1, o.Policy, o.Date, receipt)
		if o.NeedsPrimaryFill {
			cmd.Print(" | backfill primary")
		}
		cmd.Println()
	}
}

func bucketNames() string {
	names := make([]string, len(domain.Buckets))
	for i, b := range domain.Buckets {
		names[i] = b.String()
	}
	return strings.Join(names, ", ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
