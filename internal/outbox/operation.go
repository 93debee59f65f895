package outbox

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/daybook-app/daybook/internal/entity"
)

// Action is the kind of remote mutation an operation represents.
type Action string

const (
	// ActionUpsert pushes a full record snapshot, keyed by record id.
	ActionUpsert Action = "upsert"
	// ActionDelete removes a record by id.
	ActionDelete Action = "delete"
)

// Operation is one pending mutation. Upserts carry the full record snapshot
// taken at mutation time; deletes carry only the record id.
type Operation struct {
	ID       string         `json:"id"`
	Entity   entity.Kind    `json:"entity"`
	Action   Action         `json:"action"`
	UserID   string         `json:"user_id"`
	Record   *entity.Record `json:"record,omitempty"`
	RecordID string         `json:"record_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// NewUpsert builds an upsert operation with a fresh operation id.
func NewUpsert(userID string, kind entity.Kind, rec entity.Record) Operation {
	clone := rec.Clone()
	return Operation{
		ID:        uuid.NewString(),
		Entity:    kind,
		Action:    ActionUpsert,
		UserID:    userID,
		Record:    &clone,
		CreatedAt: time.Now().UTC(),
	}
}

// NewDelete builds a delete operation with a fresh operation id.
func NewDelete(userID string, kind entity.Kind, recordID string) Operation {
	return Operation{
		ID:        uuid.NewString(),
		Entity:    kind,
		Action:    ActionDelete,
		UserID:    userID,
		RecordID:  recordID,
		CreatedAt: time.Now().UTC(),
	}
}

// Validate enforces the action/payload pairing: upserts must carry a record,
// deletes must carry a record id.
func (op *Operation) Validate() error {
	if op.ID == "" {
		return fmt.Errorf("operation id is required")
	}
	if err := op.Entity.Validate(); err != nil {
		return err
	}
	if op.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	switch op.Action {
	case ActionUpsert:
		if op.Record == nil {
			return fmt.Errorf("upsert operation %s has no record", op.ID)
		}
		if err := op.Record.Validate(); err != nil {
			return fmt.Errorf("upsert operation %s: %w", op.ID, err)
		}
	case ActionDelete:
		if op.RecordID == "" {
			return fmt.Errorf("delete operation %s has no record id", op.ID)
		}
	default:
		return fmt.Errorf("unknown action %q", string(op.Action))
	}
	return nil
}

// TargetID returns the id of the record the operation refers to.
func (op *Operation) TargetID() string {
	if op.Action == ActionDelete {
		return op.RecordID
	}
	if op.Record != nil {
		return op.Record.ID
	}
	return ""
}

// Clone deep-copies the operation, including any record snapshot.
func (op Operation) Clone() Operation {
	out := op
	if op.Record != nil {
		rec := op.Record.Clone()
		out.Record = &rec
	}
	return out
}

// CloneAll deep-copies an operation slice.
func CloneAll(ops []Operation) []Operation {
	if ops == nil {
		return nil
	}
	out := make([]Operation, len(ops))
	for i, op := range ops {
		out[i] = op.Clone()
	}
	return out
}

// SortByCreation orders operations by creation time, preserving enqueue order
// for operations created within the same instant. Drains must process in this
// order so a later local mutation is never replayed before an earlier one.
func SortByCreation(ops []Operation) {
	sort.SliceStable(ops, func(i, j int) bool {
		return ops[i].CreatedAt.Before(ops[j].CreatedAt)
	})
}

// FilterKind returns the subset of ops targeting the given entity kind, in
// their original order.
func FilterKind(ops []Operation, kind entity.Kind) []Operation {
	var out []Operation
	for _, op := range ops {
		if op.Entity == kind {
			out = append(out, op)
		}
	}
	return out
}
