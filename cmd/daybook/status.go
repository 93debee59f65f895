package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daybook-app/daybook/internal/entity"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show local cache, outbox, and key status",
	Run: func(cmd *cobra.Command, args []string) {
		a := openApp()
		defer a.close()

		state := a.store.Load()

		fmt.Printf("Data dir:   %s\n", a.cfg.DataDir)
		fmt.Printf("User:       %s\n", a.cfg.UserID)
		if state.UpdatedAt != nil {
			fmt.Printf("Last write: %s\n", state.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
		}

		fmt.Println("\nLocal cache:")
		for _, kind := range entity.Kinds() {
			fmt.Printf("  %-9s %d record(s)\n", kind, len(state.Records(a.cfg.UserID, kind)))
		}

		pending := a.store.PendingOperations(a.cfg.UserID)
		fmt.Printf("\nOutbox:     %d pending operation(s)\n", len(pending))
		for _, op := range pending {
			fmt.Printf("  %s %s %s (queued %s)\n",
				op.Action, op.Entity, op.TargetID(), op.CreatedAt.Local().Format("15:04:05"))
		}

		fmt.Printf("\nAuto sync:  %v\n", a.cfg.Sync.Auto)

		if a.keys.HasLocalKey() {
			fmt.Println("E2EE key:   present")
		} else {
			fmt.Println("E2EE key:   absent")
		}
		hasBackup, err := a.backend.HasBackup(context.Background(), a.cfg.UserID)
		if err != nil {
			fmt.Printf("Key backup: unknown (%v)\n", err)
		} else if hasBackup {
			fmt.Println("Key backup: stored remotely")
		} else {
			fmt.Println("Key backup: none")
		}
	},
}
