package store

import (
	"fmt"

	"github.com/daybook-app/daybook/internal/entity"
	"github.com/daybook-app/daybook/internal/outbox"
)

// GetRecord returns one record from a user's cached collection, or false if
// it is not cached. Reads take a snapshot at call time; callers that need
// the freshest state use the value returned by Update.
func (s *Store) GetRecord(userID string, kind entity.Kind, id string) (entity.Record, bool) {
	state := s.Load()
	for _, rec := range state.Records(userID, kind) {
		if rec.ID == id {
			return rec, true
		}
	}
	return entity.Record{}, false
}

// ListRecords returns a user's cached collection for one kind.
func (s *Store) ListRecords(userID string, kind entity.Kind) []entity.Record {
	return s.Load().Records(userID, kind)
}

// UpsertLocal applies a record mutation local-first: the cache is updated and
// an upsert operation is enqueued in the same serialized update, so the
// mutation and its outbox entry are persisted together or not at all.
//
// The caller's view of the operation (for logs or tests) is the returned op.
func (s *Store) UpsertLocal(userID string, kind entity.Kind, rec entity.Record) (outbox.Operation, error) {
	if err := kind.Validate(); err != nil {
		return outbox.Operation{}, err
	}
	if err := rec.Validate(); err != nil {
		return outbox.Operation{}, err
	}
	if rec.UpdatedAt.IsZero() {
		rec.Touch()
	}

	op := outbox.NewUpsert(userID, kind, rec)
	_, err := s.Update(func(st *State) {
		st.UpsertRecord(userID, kind, rec.Clone())
		st.EnqueueOperation(op.Clone())
	})
	return op, err
}

// RemoveLocal deletes a record local-first and enqueues the matching delete
// operation in the same serialized update.
func (s *Store) RemoveLocal(userID string, kind entity.Kind, id string) (outbox.Operation, error) {
	if err := kind.Validate(); err != nil {
		return outbox.Operation{}, err
	}
	if id == "" {
		return outbox.Operation{}, fmt.Errorf("record id is required")
	}

	op := outbox.NewDelete(userID, kind, id)
	_, err := s.Update(func(st *State) {
		st.RemoveRecord(userID, kind, id)
		st.EnqueueOperation(op.Clone())
	})
	return op, err
}

// ReplaceCollection swaps a user's cached collection for one kind with an
// authoritative snapshot (used by the sync engine after a clean remote read).
func (s *Store) ReplaceCollection(userID string, kind entity.Kind, recs []entity.Record) error {
	_, err := s.Update(func(st *State) {
		st.SetRecords(userID, kind, entity.CloneRecords(recs))
	})
	return err
}

// PendingOperations returns a user's outbox in creation order.
func (s *Store) PendingOperations(userID string) []outbox.Operation {
	ops := s.Load().Outbox[userID]
	outbox.SortByCreation(ops)
	return ops
}

// PendingFor returns a user's pending operations for one entity kind, in
// creation order.
func (s *Store) PendingFor(userID string, kind entity.Kind) []outbox.Operation {
	return outbox.FilterKind(s.PendingOperations(userID), kind)
}

// ConfirmOperation removes exactly one operation from a user's outbox after
// its remote call succeeded. Confirming an already-removed operation is a
// no-op.
func (s *Store) ConfirmOperation(userID, opID string) error {
	_, err := s.Update(func(st *State) {
		st.RemoveOperation(userID, opID)
	})
	return err
}
