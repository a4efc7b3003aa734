// Package cli provides the conciliar command line interface built on cobra.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/conciliar/internal/core/ports/driving"
	"github.com/custodia-labs/conciliar/internal/logger"
)

// version is set at build time via -ldflags or by SetVersion.
var version = "dev"

var verbose bool

// Injected services. Commands report "not configured" when one is nil.
var (
	reconciler      driving.Reconciler
	historyService  driving.HistoryService
	settingsService driving.SettingsService
)

// isTerminal reports whether w is an interactive terminal. Tests replace it.
var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

var rootCmd = &cobra.Command{
	Use:   "conciliar",
	Short: "Reconcile internal insurance records against insurer portfolio reports",
	Long: `conciliar compares the policy records kept by the brokerage (a primary
and an optional secondary system export) with the portfolio report sent by
the insurer, and sorts every record into one of five outcomes: unpaid,
missing receipt, update system, only in insurer data, only in internal data.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			logger.SetVerbose(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print progress and debug output")
}

// Services holds the driving ports the commands use.
type Services struct {
	Reconciler driving.Reconciler
	History    driving.HistoryService
	Settings   driving.SettingsService
}

// SetServices injects the services used by the commands.
func SetServices(s Services) {
	reconciler = s.Reconciler
	historyService = s.History
	settingsService = s.Settings
}

// SetVersion sets the version reported by "conciliar version".
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command. Cancelling ctx stops a running
// reconciliation while loading and between the adapt and classify steps.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
