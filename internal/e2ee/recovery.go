package e2ee

import (
	"context"
	"fmt"

	"github.com/daybook-app/daybook/internal/remote"
)

// BackupTo exports a passphrase-wrapped backup and upserts it into the
// user's remote backup row, enabling recovery on another device.
func (m *Manager) BackupTo(ctx context.Context, kb remote.KeyBackupStore, userID, passphrase string) error {
	payload, err := m.ExportBackup(passphrase)
	if err != nil {
		return err
	}
	if err := kb.UpsertBackup(ctx, userID, payload); err != nil {
		return fmt.Errorf("failed to store key backup: %w", err)
	}
	return nil
}

// RestoreFrom fetches the user's remote backup and imports it with the
// supplied passphrase.
//
// Returns remote.ErrNoBackup if no backup row exists, and ErrWrongPassphrase
// if one exists but the passphrase does not unwrap it; the two must stay
// distinguishable for the recovery UI.
func (m *Manager) RestoreFrom(ctx context.Context, kb remote.KeyBackupStore, userID, passphrase string) error {
	payload, err := kb.FetchBackup(ctx, userID)
	if err != nil {
		return err
	}
	return m.ImportBackup(payload, passphrase)
}

// RecoveryRequired reports whether profile hydration is blocked on a key
// import: this installation has no local key but a remote backup exists.
// With no backup either, the next encrypt will simply generate a fresh key.
func (m *Manager) RecoveryRequired(ctx context.Context, kb remote.KeyBackupStore, userID string) (bool, error) {
	if m.HasLocalKey() {
		return false, nil
	}
	has, err := kb.HasBackup(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check for remote key backup: %w", err)
	}
	return has, nil
}
