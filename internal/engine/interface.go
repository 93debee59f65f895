package engine

import (
	"context"

	"github.com/daybook-app/daybook/internal/entity"
)

// Syncer reconciles local pending mutations with the remote backend.
//
// Implementations must be safe for concurrent use: background triggers and
// explicit user-invoked syncs may overlap.
type Syncer interface {
	// SyncPending drains the user's outbox in creation order.
	//
	// Each operation is pushed to the remote backend and, on success,
	// removed from the outbox before the next one is attempted. On the
	// first failure the run stops and the remaining operations stay queued
	// for the next trigger; the error is returned classified (see the
	// remote package) so explicit callers can surface it while background
	// callers swallow it.
	//
	// SyncPending does not retry in a loop; retry cadence is the caller's
	// trigger schedule.
	SyncPending(ctx context.Context, userID string) error

	// Collection returns the user's collection of the given kind,
	// preferring authoritative remote state.
	//
	// On a successful remote read the local cache is refreshed: if the
	// outbox still holds operations for this user and kind, remote and
	// local are merged by id with local precedence (an unsynced local edit
	// is never clobbered by a stale remote read); if the outbox is empty,
	// remote fully replaces the cache.
	//
	// On a network failure the local cache is returned unmodified with a
	// nil error. On any other failure the cache is returned only if
	// non-empty; an empty cache propagates the error.
	Collection(ctx context.Context, userID string, kind entity.Kind) ([]entity.Record, error)

	// ShouldAutoSync reports whether background triggers (timers, focus
	// events, file watches) may call SyncPending opportunistically.
	// Explicit user-invoked syncs bypass this gate.
	ShouldAutoSync() bool
}
