package engine

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/daybook-app/daybook/internal/entity"
	"github.com/daybook-app/daybook/internal/outbox"
	"github.com/daybook-app/daybook/internal/remote"
	"github.com/daybook-app/daybook/internal/store"
)

// engine implements the Syncer interface.
type engine struct {
	store    *store.Store
	backend  remote.EntityStore
	autoSync func() bool
	logger   *log.Logger
}

// New creates a Syncer draining st's outbox into backend.
//
// autoSync gates background triggers; nil allows them unconditionally.
// If logger is nil, a default logger writing to stderr is used.
func New(st *store.Store, backend remote.EntityStore, autoSync func() bool, logger *log.Logger) Syncer {
	if logger == nil {
		logger = log.New(os.Stderr, "[sync] ", log.LstdFlags)
	}
	return &engine{
		store:    st,
		backend:  backend,
		autoSync: autoSync,
		logger:   logger,
	}
}

// SyncPending implements Syncer.SyncPending.
func (e *engine) SyncPending(ctx context.Context, userID string) error {
	ops := e.store.PendingOperations(userID)
	if len(ops) == 0 {
		return nil
	}

	e.logger.Printf("Draining %d pending operations for user %s", len(ops), userID)

	confirmed := 0
	for _, op := range ops {
		if err := e.push(ctx, op); err != nil {
			if remote.IsRetryable(err) {
				e.logger.Printf("Network failure after %d/%d operations, leaving rest queued: %v",
					confirmed, len(ops), err)
			} else {
				e.logger.Printf("Remote rejected operation %s (%s %s), leaving it queued: %v",
					op.ID, op.Action, op.Entity, err)
			}
			return fmt.Errorf("failed to sync operation %s: %w", op.ID, err)
		}

		// Remove exactly this operation only after its remote call
		// succeeded. A persist failure here is logged by the store; the
		// in-memory removal still holds, and the worst restart outcome is
		// a duplicate idempotent send.
		if err := e.store.ConfirmOperation(userID, op.ID); err != nil {
			e.logger.Printf("WARNING: confirmed operation %s not persisted: %v", op.ID, err)
		}
		confirmed++
	}

	e.logger.Printf("Drain complete: %d operations confirmed", confirmed)
	return nil
}

// push sends one operation to the remote backend.
func (e *engine) push(ctx context.Context, op outbox.Operation) error {
	switch op.Action {
	case outbox.ActionUpsert:
		return e.backend.Upsert(ctx, op.UserID, op.Entity, *op.Record)
	case outbox.ActionDelete:
		return e.backend.Delete(ctx, op.UserID, op.Entity, op.RecordID)
	default:
		return fmt.Errorf("unknown action %q", string(op.Action))
	}
}

// Collection implements Syncer.Collection.
func (e *engine) Collection(ctx context.Context, userID string, kind entity.Kind) ([]entity.Record, error) {
	recs, err := e.backend.Select(ctx, userID, kind)
	if err != nil {
		local := e.store.ListRecords(userID, kind)
		if remote.IsNetwork(err) {
			e.logger.Printf("Offline, serving %d cached %s records for user %s", len(local), kind, userID)
			return local, nil
		}
		if len(local) > 0 {
			e.logger.Printf("Remote read failed (%v), serving %d cached %s records", err, len(local), kind)
			return local, nil
		}
		return nil, fmt.Errorf("failed to fetch %s collection: %w", kind, err)
	}

	// Decide merge vs. replace against the state the serializer hands us,
	// not a snapshot from before the fetch: a write that lands during the
	// remote call still wins.
	var result []entity.Record
	_, uerr := e.store.Update(func(st *store.State) {
		pending := outbox.FilterKind(st.Outbox[userID], kind)
		if len(pending) > 0 {
			result = entity.MergeByID(recs, st.Records(userID, kind))
		} else {
			result = entity.CloneRecords(recs)
		}
		st.SetRecords(userID, kind, entity.CloneRecords(result))
	})
	if uerr != nil {
		e.logger.Printf("WARNING: refreshed %s cache not persisted: %v", kind, uerr)
	}
	return result, nil
}

// ShouldAutoSync implements Syncer.ShouldAutoSync.
func (e *engine) ShouldAutoSync() bool {
	if e.autoSync == nil {
		return true
	}
	return e.autoSync()
}
