package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/daybook-app/daybook/internal/remote"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push pending operations to the backend now",
	Long: `Drain the outbox against the backend immediately.

Explicit sync bypasses the auto-sync setting. Unlike background sync,
failures are reported: a network failure leaves operations queued and exits
non-zero, and a backend rejection is printed with its classification.`,
	Run: func(cmd *cobra.Command, args []string) {
		a := openApp()
		defer a.close()

		before := len(a.store.PendingOperations(a.cfg.UserID))
		if before == 0 {
			fmt.Println("Nothing to sync.")
			return
		}

		fmt.Printf("Syncing %d pending operation(s)...\n", before)
		start := time.Now()
		err := a.syncer.SyncPending(context.Background(), a.cfg.UserID)
		after := len(a.store.PendingOperations(a.cfg.UserID))

		pushed := before - after
		if err != nil {
			var rerr *remote.Error
			if errors.As(err, &rerr) && rerr.Retryable() {
				fmt.Fprintf(os.Stderr, "Offline after %d/%d operation(s); the rest stay queued.\n", pushed, before)
			} else {
				fmt.Fprintf(os.Stderr, "Backend rejected an operation after %d/%d: %v\n", pushed, before, err)
			}
			os.Exit(1)
		}

		fmt.Printf("Synced %d operation(s) in %v.\n", pushed, time.Since(start).Round(time.Millisecond))
	},
}
