// Command daybook is the local-first personal data layer CLI: records live
// in a durable local cache, every mutation is queued in an outbox, and the
// sync engine reconciles with the backend when connectivity allows.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/daybook-app/daybook/internal/config"
	"github.com/daybook-app/daybook/internal/e2ee"
	"github.com/daybook-app/daybook/internal/engine"
	"github.com/daybook-app/daybook/internal/remote"
	"github.com/daybook-app/daybook/internal/store"
)

var dataDir string

var rootCmd = &cobra.Command{
	Use:   "daybook",
	Short: "Local-first personal productivity data layer",
	Long: `daybook keeps tasks, resources, schedules, and your profile in a local
durable store, queues every mutation in an outbox, and syncs with the
backend opportunistically. Edits always succeed instantly and offline;
reconciliation happens in the background or via 'daybook sync'.

Selected profile fields are end-to-end encrypted with a per-device key;
see 'daybook key' for passphrase-protected backups of that key.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "",
		"data directory (default ~/.daybook)")

	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(keyCmd)
}

// app bundles the wired components every command needs.
type app struct {
	cfg     *config.Config
	store   *store.Store
	backend *remote.SQLiteStore
	keys    *e2ee.Manager
	syncer  engine.Syncer
}

// openApp wires the data layer from configuration, exiting on failure.
func openApp() *app {
	cfg, err := config.Load(dataDir)
	if err != nil {
		fatal("Error loading config: %v", err)
	}

	st, err := store.Open(cfg.StatePath(), nil)
	if err != nil {
		fatal("Error opening local store: %v", err)
	}

	backend, err := remote.OpenSQLite(cfg.Remote.DatabasePath)
	if err != nil {
		fatal("Error opening backend database: %v", err)
	}

	keys := e2ee.NewManager(cfg.KeyPath(), nil)
	syncer := engine.New(st, backend, func() bool { return cfg.Sync.Auto }, nil)

	return &app{cfg: cfg, store: st, backend: backend, keys: keys, syncer: syncer}
}

func (a *app) close() {
	if err := a.backend.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
