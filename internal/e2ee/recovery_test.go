package e2ee

import (
	"context"
	"errors"
	"testing"

	"github.com/daybook-app/daybook/internal/remote"
)

// fakeKeyBackups is an in-memory remote.KeyBackupStore.
type fakeKeyBackups struct {
	payloads map[string]string
	err      error // returned by every call when set
}

func newFakeKeyBackups() *fakeKeyBackups {
	return &fakeKeyBackups{payloads: make(map[string]string)}
}

func (f *fakeKeyBackups) HasBackup(_ context.Context, userID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.payloads[userID]
	return ok, nil
}

func (f *fakeKeyBackups) UpsertBackup(_ context.Context, userID, payload string) error {
	if f.err != nil {
		return f.err
	}
	f.payloads[userID] = payload
	return nil
}

func (f *fakeKeyBackups) FetchBackup(_ context.Context, userID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	payload, ok := f.payloads[userID]
	if !ok {
		return "", remote.ErrNoBackup
	}
	return payload, nil
}

func TestBackupAndRestoreAcrossDevices(t *testing.T) {
	ctx := context.Background()
	kb := newFakeKeyBackups()

	deviceA := newTestManager(t)
	env, err := deviceA.EncryptString("birthday")
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	if err := deviceA.BackupTo(ctx, kb, "u1", "pass"); err != nil {
		t.Fatalf("BackupTo failed: %v", err)
	}

	deviceB := newTestManager(t)
	if err := deviceB.RestoreFrom(ctx, kb, "u1", "pass"); err != nil {
		t.Fatalf("RestoreFrom failed: %v", err)
	}
	if got, err := deviceB.DecryptString(env); err != nil || got != "birthday" {
		t.Errorf("restored key cannot open envelope: %q, %v", got, err)
	}
}

func TestRestoreDistinguishesMissingFromWrongPassphrase(t *testing.T) {
	ctx := context.Background()
	kb := newFakeKeyBackups()
	m := newTestManager(t)

	if err := m.RestoreFrom(ctx, kb, "u1", "pass"); !errors.Is(err, remote.ErrNoBackup) {
		t.Errorf("no backup row: want remote.ErrNoBackup, got %v", err)
	}

	other := newTestManager(t)
	if err := other.BackupTo(ctx, kb, "u1", "right"); err != nil {
		t.Fatalf("BackupTo failed: %v", err)
	}
	if err := m.RestoreFrom(ctx, kb, "u1", "wrong"); !errors.Is(err, ErrWrongPassphrase) {
		t.Errorf("bad passphrase: want ErrWrongPassphrase, got %v", err)
	}
}

func TestRecoveryRequired(t *testing.T) {
	ctx := context.Background()
	kb := newFakeKeyBackups()

	// No key, no backup: a fresh key will be generated on demand.
	m := newTestManager(t)
	required, err := m.RecoveryRequired(ctx, kb, "u1")
	if err != nil {
		t.Fatalf("RecoveryRequired failed: %v", err)
	}
	if required {
		t.Error("no backup anywhere, but recovery reported required")
	}

	// No key, backup exists: hydration must wait for an import.
	other := newTestManager(t)
	if err := other.BackupTo(ctx, kb, "u1", "pass"); err != nil {
		t.Fatalf("BackupTo failed: %v", err)
	}
	required, err = m.RecoveryRequired(ctx, kb, "u1")
	if err != nil {
		t.Fatalf("RecoveryRequired failed: %v", err)
	}
	if !required {
		t.Error("backup exists and no local key, but recovery not required")
	}

	// Key present: never required, backup or not.
	if err := m.RestoreFrom(ctx, kb, "u1", "pass"); err != nil {
		t.Fatalf("RestoreFrom failed: %v", err)
	}
	required, err = m.RecoveryRequired(ctx, kb, "u1")
	if err != nil {
		t.Fatalf("RecoveryRequired failed: %v", err)
	}
	if required {
		t.Error("local key present, but recovery reported required")
	}
}

func TestRecoveryRequiredPropagatesBackendError(t *testing.T) {
	kb := newFakeKeyBackups()
	kb.err = remote.NetworkError("check key backup", errors.New("offline"))

	m := newTestManager(t)
	if _, err := m.RecoveryRequired(context.Background(), kb, "u1"); err == nil {
		t.Error("backend failure swallowed")
	}
}
