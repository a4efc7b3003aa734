package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/conciliar/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage reconciliation settings",
	Long: `View and change the stored settings. Flags given to "conciliar run"
override them for a single run.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change one setting",
	Long: `Validates and stores one setting.

Keys:
  reconcile.insurer         insurer name filter (e.g. ALLIANZ)
  reconcile.mode            both | primary | secondary
  reconcile.primary_format  policy_export | collections
  sources.primary_name      origin tag of primary records
  sources.secondary_name    origin tag of secondary records
  report.dir                directory for report files (empty disables them)
  archive.enabled           true | false`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()
	values := settingValues(settings)
	for _, key := range settingsService.Keys() {
		cmd.Printf("  %-26s %s\n", key, values[key])
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	cmd.Printf("Set %s = %s\n", key, value)
	return nil
}

func settingValues(s *domain.Settings) map[string]string {
	reportDir := s.ReportDir
	if reportDir == "" {
		reportDir = "(reports disabled)"
	}
	return map[string]string{
		"reconcile.insurer":        s.Insurer,
		"reconcile.mode":           string(s.Mode),
		"reconcile.primary_format": string(s.PrimaryFormat),
		"sources.primary_name":     s.PrimaryName,
		"sources.secondary_name":   s.SecondaryName,
		"report.dir":               reportDir,
		"archive.enabled":          strconv.FormatBool(s.ArchiveEnabled),
	}
}
