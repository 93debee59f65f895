package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/daybook-app/daybook/internal/daemon"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the background sync daemon",
	Long: `Watch the local store and sync opportunistically.

The daemon drains the outbox whenever a local mutation lands (debounced) and
on a periodic interval, honoring the sync.auto setting. Failures are logged
and retried on the next trigger; nothing is ever dropped.`,
	Run: func(cmd *cobra.Command, args []string) {
		a := openApp()
		defer a.close()

		cfg := daemon.DefaultConfig()
		if a.cfg.Sync.Interval > 0 {
			cfg.SyncInterval = a.cfg.Sync.Interval
		}
		if a.cfg.Log.File != "" {
			cfg.Logger = log.New(&lumberjack.Logger{
				Filename:   a.cfg.Log.File,
				MaxSize:    a.cfg.Log.MaxSizeMB,
				MaxBackups: a.cfg.Log.MaxBackups,
				MaxAge:     a.cfg.Log.MaxAgeDays,
			}, "[daemon] ", log.LstdFlags)
		}

		d, err := daemon.New(a.syncer, a.cfg.UserID, a.store.Path(), cfg)
		if err != nil {
			fatal("Failed to create daemon: %v", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("Sync daemon running for user %s (logs: %s)\n", a.cfg.UserID, a.cfg.Log.File)
		if err := d.Start(ctx); err != nil {
			fatal("Daemon error: %v", err)
		}
	},
}
