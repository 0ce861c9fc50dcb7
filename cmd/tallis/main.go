package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/tallis/internal/config"
	"github.com/jask/tallis/internal/database"
	"github.com/jask/tallis/internal/database/repository"
	"github.com/jask/tallis/internal/logging"
	"github.com/jask/tallis/internal/prefs"
	"github.com/jask/tallis/internal/service"
	"github.com/jask/tallis/internal/testdata"
	"github.com/jask/tallis/internal/tui"
)

func main() {
	if err := run(context.Background()); err != nil {
		log.Fatal(err)
	}
}

// run wires and runs the program. Startup failures are returned, not fatal.
func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := os.Stat(config.Path()); os.IsNotExist(err) {
		if err := config.Save(cfg); err != nil {
			log.Printf("warn: write default config: %v", err)
		}
	}

	logger, closer, err := logging.Open(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return fmt.Errorf("log: %w", err)
	}
	defer closer.Close()

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return fmt.Errorf("mkdir db dir: %w", err)
	}

	if err := database.RunMigrations(cfg.Database.Path); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	version, _, err := database.SchemaVersion(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("schema version: %w", err)
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	if err := database.SeedDefaults(ctx, db); err != nil {
		return fmt.Errorf("seed defaults: %w", err)
	}

	store := repository.NewStore(db)
	if cfg.Database.SeedDemo {
		n, err := store.Transactions.CountLive(ctx)
		if err != nil {
			return fmt.Errorf("count transactions: %w", err)
		}
		if n == 0 {
			repos := testdata.Repos{Accounts: store.Accounts, Funds: store.Funds, Transactions: store.Transactions}
			if err := testdata.Seed(ctx, repos, nil); err != nil {
				return fmt.Errorf("seed demo data: %w", err)
			}
			logger.Info().Int("transactions", testdata.Count).Msg("demo data seeded")
		}
	}

	// last filter from the state file, falling back to config
	filter := prefs.Filter{
		Kind:      repository.FilterKind(cfg.Ledger.Filter),
		AccountID: cfg.Ledger.AccountID,
		FundID:    cfg.Ledger.FundID,
	}
	var state tui.FilterSaver
	if ps, err := prefs.Default(); err != nil {
		logger.Warn().Err(err).Msg("no user config dir; filter will not persist")
	} else {
		state = ps
		if saved, ok, err := ps.LoadFilter(); err != nil {
			logger.Warn().Err(err).Msg("load saved filter")
		} else if ok {
			filter = saved
		}
	}

	logger.Info().
		Str("db", cfg.Database.Path).
		Uint("schema", version).
		Str("filter", filter.Active().String()).
		Msg("starting")

	p := tea.NewProgram(tui.New(ctx, tui.Options{
		Store:     store,
		Export:    &service.ExportService{Ledger: store},
		Prefs:     state,
		ExportDir: cfg.Export.Dir,
		Filter:    filter,
		Log:       logger,
	}), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Error().Err(err).Msg("tui exited")
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
