package remote

import (
	"context"
	"errors"

	"github.com/daybook-app/daybook/internal/entity"
)

// ErrNoBackup is returned by FetchBackup when no key backup row exists for
// the user. It is deliberately distinct from a wrong-passphrase failure so
// the caller can say "nothing to restore" rather than "wrong passphrase".
var ErrNoBackup = errors.New("no remote key backup found")

// EntityStore is the per-entity table contract the sync engine drains into.
//
// All writes are idempotent by record id: upserting the same snapshot or
// deleting the same id twice leaves the backend in the same state as doing
// it once. That property is what makes crash-and-replay of the outbox safe.
//
// Implementations classify their failures into the package's error taxonomy;
// returning a bare error is treated as unclassified.
type EntityStore interface {
	// Select returns every record of the given kind owned by the user.
	Select(ctx context.Context, userID string, kind entity.Kind) ([]entity.Record, error)

	// Upsert inserts or replaces one record, keyed by id.
	Upsert(ctx context.Context, userID string, kind entity.Kind, rec entity.Record) error

	// Delete removes one record by id. Deleting an absent id succeeds.
	Delete(ctx context.Context, userID string, kind entity.Kind, id string) error
}

// KeyBackupStore is the single-row-per-user table holding the passphrase-
// wrapped key backup payload. The payload is opaque to the backend.
type KeyBackupStore interface {
	// HasBackup reports whether a backup row exists for the user.
	HasBackup(ctx context.Context, userID string) (bool, error)

	// UpsertBackup inserts or replaces the user's backup row.
	UpsertBackup(ctx context.Context, userID, payload string) error

	// FetchBackup returns the user's backup payload, or ErrNoBackup.
	FetchBackup(ctx context.Context, userID string) (string, error)
}
