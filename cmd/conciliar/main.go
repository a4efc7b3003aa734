// Command conciliar reconciles brokerage policy records against insurer
// portfolio reports.
package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/conciliar/internal/adapters/driven/config/file"
	"github.com/custodia-labs/conciliar/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/conciliar/internal/adapters/driving/cli"
	"github.com/custodia-labs/conciliar/internal/connectors"
	"github.com/custodia-labs/conciliar/internal/core/domain"
	"github.com/custodia-labs/conciliar/internal/core/ports/driven"
	"github.com/custodia-labs/conciliar/internal/core/services"
	"github.com/custodia-labs/conciliar/internal/logger"
	"github.com/custodia-labs/conciliar/internal/normalisers"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx)
	stop()
	os.Exit(code)
}

func run(ctx context.Context) int {
	// A missing .env is normal; only a broken one is worth reporting.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Ignoring .env: %v", err)
	}
	if v, _ := strconv.ParseBool(os.Getenv("CONCILIAR_VERBOSE")); v {
		logger.SetVerbose(true)
	}

	home, err := file.DefaultDir()
	if err != nil {
		logger.Warn("%v", err)
		return 1
	}

	configStore, err := file.NewConfigStore(home)
	if err != nil {
		logger.Warn("Cannot open config: %v", err)
		return 1
	}
	defaults := domain.DefaultSettings()
	defaults.ReportDir = filepath.Join(home, "reports")
	settingsService := services.NewSettingsServiceWithDefaults(configStore, defaults)

	var runStore driven.RunStore
	store, err := sqlite.NewStore(filepath.Join(home, "data"))
	if err != nil {
		logger.Warn("Run archive unavailable, runs will not be archived: %v", err)
	} else {
		defer store.Close()
		runStore = store.RunStore()
	}

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Reconciler: services.NewReconcileService(
			connectors.NewDefaultFactory(),
			normalisers.NewDefaultRegistry(),
			runStore,
			settingsService,
		),
		History:  services.NewHistoryService(runStore),
		Settings: settingsService,
	})

	if err := cli.Execute(ctx); err != nil {
		return 1
	}
	return 0
}
