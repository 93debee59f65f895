package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/daybook-app/daybook/internal/e2ee"
	"github.com/daybook-app/daybook/internal/remote"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the end-to-end encryption key",
	Long: `Back up and restore the per-device encryption key.

'backup' wraps the key with a passphrase and stores the wrapped payload in
your account's backup row on the backend. 'restore' fetches that payload on
a new device and unwraps it with the same passphrase. The passphrase and the
raw key never leave this machine in cleartext.`,
}

var keyPassphrase string

var keyBackupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Store a passphrase-wrapped key backup on the backend",
	Run: func(cmd *cobra.Command, args []string) {
		if keyPassphrase == "" {
			fatal("--passphrase is required")
		}

		a := openApp()
		defer a.close()

		if err := a.keys.BackupTo(context.Background(), a.backend, a.cfg.UserID, keyPassphrase); err != nil {
			fatal("Backup failed: %v", err)
		}
		fmt.Println("Key backup stored. Keep the passphrase safe: it is the only way to restore.")
	},
}

var keyRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore the key from the backend backup",
	Run: func(cmd *cobra.Command, args []string) {
		if keyPassphrase == "" {
			fatal("--passphrase is required")
		}

		a := openApp()
		defer a.close()

		err := a.keys.RestoreFrom(context.Background(), a.backend, a.cfg.UserID, keyPassphrase)
		switch {
		case errors.Is(err, remote.ErrNoBackup):
			fatal("No key backup found for this account.")
		case errors.Is(err, e2ee.ErrWrongPassphrase):
			fatal("Wrong passphrase (or the backup payload is corrupt).")
		case err != nil:
			fatal("Restore failed: %v", err)
		}
		fmt.Println("Key restored. Protected fields can now be decrypted on this device.")
	},
}

var keyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show key and backup state",
	Run: func(cmd *cobra.Command, args []string) {
		a := openApp()
		defer a.close()

		if a.keys.HasLocalKey() {
			fmt.Println("Local key:  present")
		} else {
			fmt.Println("Local key:  absent (generated on first encrypt, or restore a backup)")
		}
		hasBackup, err := a.backend.HasBackup(context.Background(), a.cfg.UserID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not check backend: %v\n", err)
			return
		}
		if hasBackup {
			fmt.Println("Backup:     stored remotely")
		} else {
			fmt.Println("Backup:     none")
		}
	},
}

func init() {
	keyCmd.PersistentFlags().StringVarP(&keyPassphrase, "passphrase", "p", "",
		"passphrase protecting the key backup (never stored or logged)")

	keyCmd.AddCommand(keyBackupCmd)
	keyCmd.AddCommand(keyRestoreCmd)
	keyCmd.AddCommand(keyStatusCmd)
}
