package store

import (
	"time"

	"github.com/daybook-app/daybook/internal/entity"
	"github.com/daybook-app/daybook/internal/outbox"
)

// State is the full durable image: per-user entity collections, the per-user
// outbox, and the timestamp of the last mutation. It is the exact shape of
// the JSON document on disk.
type State struct {
	Collections map[entity.Kind]map[string][]entity.Record `json:"collections"`
	Outbox      map[string][]outbox.Operation               `json:"outbox"`
	UpdatedAt   *time.Time                                  `json:"updated_at"`
}

// defaultState returns the safe empty shape.
func defaultState() *State {
	return &State{
		Collections: make(map[entity.Kind]map[string][]entity.Record),
		Outbox:      make(map[string][]outbox.Operation),
	}
}

// normalize repairs a state decoded from disk: nil maps become empty maps,
// unknown kinds, id-less records, and malformed outbox entries are dropped.
// A corrupted document must degrade, never block startup.
func (s *State) normalize() {
	if s.Collections == nil {
		s.Collections = make(map[entity.Kind]map[string][]entity.Record)
	}
	for kind, users := range s.Collections {
		if !kind.Valid() || users == nil {
			delete(s.Collections, kind)
			continue
		}
		for user, recs := range users {
			kept := recs[:0]
			seen := make(map[string]bool, len(recs))
			for _, rec := range recs {
				if rec.ID == "" || seen[rec.ID] {
					continue
				}
				seen[rec.ID] = true
				kept = append(kept, rec)
			}
			users[user] = kept
		}
	}

	if s.Outbox == nil {
		s.Outbox = make(map[string][]outbox.Operation)
	}
	for user, ops := range s.Outbox {
		kept := ops[:0]
		for _, op := range ops {
			if op.Validate() != nil {
				continue
			}
			kept = append(kept, op)
		}
		outbox.SortByCreation(kept)
		s.Outbox[user] = kept
	}
}

// Clone deep-copies the state.
func (s *State) Clone() *State {
	out := defaultState()
	for kind, users := range s.Collections {
		out.Collections[kind] = make(map[string][]entity.Record, len(users))
		for user, recs := range users {
			out.Collections[kind][user] = entity.CloneRecords(recs)
		}
	}
	for user, ops := range s.Outbox {
		out.Outbox[user] = outbox.CloneAll(ops)
	}
	if s.UpdatedAt != nil {
		ts := *s.UpdatedAt
		out.UpdatedAt = &ts
	}
	return out
}

// Records returns the collection for one user and kind (the slice inside the
// state, not a copy; callers outside this package get clones from the Store).
func (s *State) Records(userID string, kind entity.Kind) []entity.Record {
	users := s.Collections[kind]
	if users == nil {
		return nil
	}
	return users[userID]
}

// SetRecords replaces the collection for one user and kind.
func (s *State) SetRecords(userID string, kind entity.Kind, recs []entity.Record) {
	users := s.Collections[kind]
	if users == nil {
		users = make(map[string][]entity.Record)
		s.Collections[kind] = users
	}
	users[userID] = recs
}

// UpsertRecord inserts or replaces a record in one user's collection,
// preserving the unique-id invariant. An existing record keeps its position;
// a new one is appended.
func (s *State) UpsertRecord(userID string, kind entity.Kind, rec entity.Record) {
	recs := s.Records(userID, kind)
	for i := range recs {
		if recs[i].ID == rec.ID {
			recs[i] = rec
			s.SetRecords(userID, kind, recs)
			return
		}
	}
	s.SetRecords(userID, kind, append(recs, rec))
}

// RemoveRecord deletes a record by id. Removing an absent id is a no-op.
func (s *State) RemoveRecord(userID string, kind entity.Kind, id string) {
	recs := s.Records(userID, kind)
	for i := range recs {
		if recs[i].ID == id {
			s.SetRecords(userID, kind, append(recs[:i:i], recs[i+1:]...))
			return
		}
	}
}

// EnqueueOperation appends an operation to the user's outbox.
func (s *State) EnqueueOperation(op outbox.Operation) {
	s.Outbox[op.UserID] = append(s.Outbox[op.UserID], op)
}

// RemoveOperation removes exactly the operation with the given id from the
// user's outbox. Removing an absent id is a no-op, which makes the sync
// engine's confirm-then-remove step idempotent under overlapping drains.
func (s *State) RemoveOperation(userID, opID string) {
	ops := s.Outbox[userID]
	for i := range ops {
		if ops[i].ID == opID {
			s.Outbox[userID] = append(ops[:i:i], ops[i+1:]...)
			return
		}
	}
}
