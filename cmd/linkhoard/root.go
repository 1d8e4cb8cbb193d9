// ABOUTME: Root Cobra command and global flags
// ABOUTME: Wires config, store, remote client and sync engine for all subcommands

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harper/linkhoard/internal/clock"
	"github.com/harper/linkhoard/internal/config"
	"github.com/harper/linkhoard/internal/connectivity"
	"github.com/harper/linkhoard/internal/logger"
	"github.com/harper/linkhoard/internal/pinboard"
	"github.com/harper/linkhoard/internal/prefs"
	"github.com/harper/linkhoard/internal/store"
	"github.com/harper/linkhoard/internal/sync"
)

var (
	dbPath  string
	offline bool
	verbose bool

	cfg       *config.Config
	localDB   *store.SQLite
	engine    *sync.Engine
	appLogger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "linkhoard",
	Short: "Offline-first bookmark manager",
	Long: `linkhoard keeps a local, searchable copy of your bookmarks and syncs it
with your bookmarking service whenever the network allows.

Reads always come from the local cache. Writes go to the service when it
is reachable and are queued for replay when it is not, so the tool works
the same on a plane as it does at a desk.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level := cfg.GetLogLevel()
		if verbose {
			level = "debug"
		}
		appLogger = logger.New(level, true)

		if dbPath == "" {
			dbPath = cfg.DBPath()
		}
		localDB, err = store.NewSQLite(dbPath)
		if err != nil {
			return fmt.Errorf("failed to open local store: %w", err)
		}

		prefStore, err := prefs.NewFileStore(cfg.PrefsPath())
		if err != nil {
			return fmt.Errorf("failed to load preferences: %w", err)
		}

		remote := pinboard.NewHTTPClient(cfg.APIEndpoint, cfg.AuthToken)

		var oracle connectivity.Oracle
		if offline {
			oracle = connectivity.Static(false)
		} else {
			oracle = connectivity.NewChecker(apiAddr(cfg))
		}

		engine = sync.New(localDB, remote, prefStore, oracle, clock.System{}, appLogger)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if engine != nil {
			// Let a background catch-up finish before the process exits
			engine.Wait()
		}
		if appLogger != nil {
			_ = appLogger.Sync()
		}
		if localDB != nil {
			if err := localDB.Close(); err != nil {
				return fmt.Errorf("failed to close local store: %w", err)
			}
		}
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database file path (default: ~/.local/share/linkhoard/linkhoard.db)")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "force offline mode: queue writes locally, skip remote calls")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// apiAddr derives the host:port the connectivity check dials.
func apiAddr(cfg *config.Config) string {
	if cfg.APIEndpoint == "" {
		return "api.pinboard.in:443"
	}
	return connectivity.AddrFromURL(cfg.APIEndpoint)
}
