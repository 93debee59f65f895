package entity

import (
	"testing"
	"time"
)

func validTask() Task {
	now := time.Now().UTC()
	return Task{
		ID:        "tk-1",
		Title:     "Test task",
		Status:    "open",
		Priority:  2,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestTaskValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Task)
		wantErr bool
	}{
		{"valid", func(*Task) {}, false},
		{"missing id", func(tk *Task) { tk.ID = "" }, true},
		{"missing title", func(tk *Task) { tk.Title = "" }, true},
		{"bad status", func(tk *Task) { tk.Status = "maybe" }, true},
		{"priority too high", func(tk *Task) { tk.Priority = 5 }, true},
		{"priority negative", func(tk *Task) { tk.Priority = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := validTask()
			tt.mutate(&task)
			err := task.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestSchedulePlanValidate(t *testing.T) {
	plan := SchedulePlan{ID: "sp-1", Date: "2026-08-26"}
	if err := plan.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	plan.Date = "26/08/2026"
	if err := plan.Validate(); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestTypedRecordRoundTrip(t *testing.T) {
	task := validTask()
	due := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	task.DueAt = &due
	task.Tags = []string{"work"}

	rec, err := ToRecord(&task)
	if err != nil {
		t.Fatalf("ToRecord failed: %v", err)
	}
	if rec.ID != task.ID {
		t.Errorf("record id = %q, want %q", rec.ID, task.ID)
	}
	if rec.UpdatedAt.IsZero() {
		t.Error("record updated_at not populated from task")
	}

	var back Task
	if err := FromRecord(rec, &back); err != nil {
		t.Fatalf("FromRecord failed: %v", err)
	}
	if back.Title != task.Title || back.Priority != task.Priority {
		t.Errorf("round trip lost fields: %+v", back)
	}
	if back.DueAt == nil || !back.DueAt.Equal(due) {
		t.Errorf("due_at lost: %v", back.DueAt)
	}
}

func TestToRecordRejectsMissingID(t *testing.T) {
	if _, err := ToRecord(&Resource{Title: "no id"}); err == nil {
		t.Error("expected error for record without id")
	}
}
