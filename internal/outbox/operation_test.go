package outbox

import (
	"testing"
	"time"

	"github.com/daybook-app/daybook/internal/entity"
)

func testRecord(id string) entity.Record {
	return entity.Record{
		ID:        id,
		UpdatedAt: time.Now().UTC(),
		Fields:    map[string]any{"title": "t"},
	}
}

func TestOperationValidatePairing(t *testing.T) {
	up := NewUpsert("u1", entity.KindTask, testRecord("tk-1"))
	if err := up.Validate(); err != nil {
		t.Errorf("valid upsert rejected: %v", err)
	}

	del := NewDelete("u1", entity.KindTask, "tk-1")
	if err := del.Validate(); err != nil {
		t.Errorf("valid delete rejected: %v", err)
	}

	// Upserts must carry a record.
	up.Record = nil
	if err := up.Validate(); err == nil {
		t.Error("upsert without record must be invalid")
	}

	// Deletes must carry a record id.
	del.RecordID = ""
	if err := del.Validate(); err == nil {
		t.Error("delete without record id must be invalid")
	}

	bad := NewDelete("u1", "widget", "x")
	if err := bad.Validate(); err == nil {
		t.Error("unknown entity kind must be invalid")
	}
}

func TestOperationIDsAreUnique(t *testing.T) {
	a := NewUpsert("u1", entity.KindTask, testRecord("tk-1"))
	b := NewUpsert("u1", entity.KindTask, testRecord("tk-1"))
	if a.ID == b.ID {
		t.Error("two operations share an id")
	}
}

func TestSortByCreationIsStable(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	ops := []Operation{
		{ID: "3", CreatedAt: base.Add(2 * time.Second)},
		{ID: "1", CreatedAt: base},
		{ID: "2a", CreatedAt: base.Add(time.Second)},
		{ID: "2b", CreatedAt: base.Add(time.Second)}, // same instant: keep enqueue order
	}

	SortByCreation(ops)

	want := []string{"1", "2a", "2b", "3"}
	for i, id := range want {
		if ops[i].ID != id {
			t.Errorf("position %d = %s, want %s", i, ops[i].ID, id)
		}
	}
}

func TestFilterKind(t *testing.T) {
	ops := []Operation{
		{ID: "1", Entity: entity.KindTask},
		{ID: "2", Entity: entity.KindProfile},
		{ID: "3", Entity: entity.KindTask},
	}
	got := FilterKind(ops, entity.KindTask)
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "3" {
		t.Errorf("unexpected filter result: %+v", got)
	}
}

func TestOperationCloneIsDeep(t *testing.T) {
	op := NewUpsert("u1", entity.KindTask, testRecord("tk-1"))
	clone := op.Clone()
	clone.Record.Fields["title"] = "changed"
	if op.Record.Fields["title"] != "t" {
		t.Error("clone shares record with original")
	}
}
