package store

import (
	"testing"

	"github.com/daybook-app/daybook/internal/entity"
	"github.com/daybook-app/daybook/internal/outbox"
)

func TestUpsertLocalCachesAndEnqueues(t *testing.T) {
	s, _ := newTestStore(t)

	rec := entity.Record{ID: "tk-1", Fields: map[string]any{"title": "buy milk"}}
	op, err := s.UpsertLocal("u1", entity.KindTask, rec)
	if err != nil {
		t.Fatalf("UpsertLocal failed: %v", err)
	}

	got, ok := s.GetRecord("u1", entity.KindTask, "tk-1")
	if !ok {
		t.Fatal("record not cached")
	}
	if got.UpdatedAt.IsZero() {
		t.Error("zero UpdatedAt must be stamped on write")
	}

	pending := s.PendingOperations("u1")
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending op, got %d", len(pending))
	}
	if pending[0].ID != op.ID || pending[0].Action != outbox.ActionUpsert {
		t.Errorf("unexpected op: %+v", pending[0])
	}
	if pending[0].Record == nil || pending[0].Record.ID != "tk-1" {
		t.Errorf("upsert op must carry the record, got %+v", pending[0].Record)
	}
}

func TestUpsertLocalRejectsInvalid(t *testing.T) {
	s, _ := newTestStore(t)

	if _, err := s.UpsertLocal("u1", entity.Kind("widget"), entity.Record{ID: "x"}); err == nil {
		t.Error("unknown kind must be rejected")
	}
	if _, err := s.UpsertLocal("u1", entity.KindTask, entity.Record{}); err == nil {
		t.Error("record without id must be rejected")
	}
	if len(s.PendingOperations("u1")) != 0 {
		t.Error("rejected write must not enqueue")
	}
}

func TestRemoveLocalEnqueuesDelete(t *testing.T) {
	s, _ := newTestStore(t)

	if _, err := s.UpsertLocal("u1", entity.KindTask, entity.Record{ID: "tk-1"}); err != nil {
		t.Fatalf("UpsertLocal failed: %v", err)
	}
	op, err := s.RemoveLocal("u1", entity.KindTask, "tk-1")
	if err != nil {
		t.Fatalf("RemoveLocal failed: %v", err)
	}

	if _, ok := s.GetRecord("u1", entity.KindTask, "tk-1"); ok {
		t.Error("record still cached after RemoveLocal")
	}
	pending := s.PendingOperations("u1")
	if len(pending) != 2 {
		t.Fatalf("expected upsert+delete pending, got %d ops", len(pending))
	}
	if pending[1].ID != op.ID || pending[1].Action != outbox.ActionDelete || pending[1].RecordID != "tk-1" {
		t.Errorf("unexpected delete op: %+v", pending[1])
	}
}

func TestConfirmOperationRemovesExactlyOne(t *testing.T) {
	s, _ := newTestStore(t)

	op1, _ := s.UpsertLocal("u1", entity.KindTask, entity.Record{ID: "tk-1"})
	op2, _ := s.UpsertLocal("u1", entity.KindTask, entity.Record{ID: "tk-2"})

	if err := s.ConfirmOperation("u1", op1.ID); err != nil {
		t.Fatalf("ConfirmOperation failed: %v", err)
	}
	pending := s.PendingOperations("u1")
	if len(pending) != 1 || pending[0].ID != op2.ID {
		t.Errorf("expected only op2 pending, got %+v", pending)
	}

	// Confirming again is a no-op.
	if err := s.ConfirmOperation("u1", op1.ID); err != nil {
		t.Fatalf("repeat confirm failed: %v", err)
	}
	if got := len(s.PendingOperations("u1")); got != 1 {
		t.Errorf("repeat confirm changed the outbox: %d ops", got)
	}
}

func TestPendingForFiltersKind(t *testing.T) {
	s, _ := newTestStore(t)

	s.UpsertLocal("u1", entity.KindTask, entity.Record{ID: "tk-1"})
	s.UpsertLocal("u1", entity.KindResource, entity.Record{ID: "rs-1"})

	tasks := s.PendingFor("u1", entity.KindTask)
	if len(tasks) != 1 || tasks[0].Entity != entity.KindTask {
		t.Errorf("unexpected task ops: %+v", tasks)
	}
}

func TestOutboxIsolatedPerUser(t *testing.T) {
	s, _ := newTestStore(t)

	s.UpsertLocal("u1", entity.KindTask, entity.Record{ID: "tk-1"})
	s.UpsertLocal("u2", entity.KindTask, entity.Record{ID: "tk-1"})

	if got := len(s.PendingOperations("u1")); got != 1 {
		t.Errorf("u1 outbox: %d ops", got)
	}
	if got := len(s.PendingOperations("u2")); got != 1 {
		t.Errorf("u2 outbox: %d ops", got)
	}
	if got, ok := s.GetRecord("u2", entity.KindTask, "tk-1"); !ok || got.ID != "tk-1" {
		t.Error("u2 record missing")
	}
}

func TestReplaceCollection(t *testing.T) {
	s, _ := newTestStore(t)

	s.UpsertLocal("u1", entity.KindTask, entity.Record{ID: "tk-old"})
	snapshot := []entity.Record{testRecord("tk-a", "a"), testRecord("tk-b", "b")}
	if err := s.ReplaceCollection("u1", entity.KindTask, snapshot); err != nil {
		t.Fatalf("ReplaceCollection failed: %v", err)
	}

	recs := s.ListRecords("u1", entity.KindTask)
	if len(recs) != 2 || recs[0].ID != "tk-a" || recs[1].ID != "tk-b" {
		t.Errorf("unexpected collection: %+v", recs)
	}
}
