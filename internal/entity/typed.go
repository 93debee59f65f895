package entity

import (
	"encoding/json"
	"fmt"
	"time"
)

// Task is the typed view of a task record.
type Task struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Notes string `json:"notes,omitempty"`

	// Status is "open" or "done".
	Status   string `json:"status"`
	Priority int    `json:"priority"` // 0-4, 0 is highest

	Tags []string `json:"tags,omitempty"`

	DueAt     *time.Time `json:"due_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Validate checks the task's field values.
func (t *Task) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("id is required")
	}
	if t.Title == "" {
		return fmt.Errorf("title is required")
	}
	if len(t.Title) > 500 {
		return fmt.Errorf("title must be 500 characters or less (got %d)", len(t.Title))
	}
	if t.Status != "open" && t.Status != "done" {
		return fmt.Errorf("status must be open or done (got %q)", t.Status)
	}
	if t.Priority < 0 || t.Priority > 4 {
		return fmt.Errorf("priority must be between 0 and 4 (got %d)", t.Priority)
	}
	return nil
}

// Resource is the typed view of a saved resource (link, document, note).
type Resource struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	URL      string `json:"url,omitempty"`
	Category string `json:"category,omitempty"`
	Notes    string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the resource's field values.
func (r *Resource) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("id is required")
	}
	if r.Title == "" {
		return fmt.Errorf("title is required")
	}
	return nil
}

// ScheduleBlock is a single planned block inside a SchedulePlan.
type ScheduleBlock struct {
	Start  string `json:"start"` // HH:MM
	End    string `json:"end"`   // HH:MM
	Label  string `json:"label,omitempty"`
	TaskID string `json:"task_id,omitempty"`
}

// SchedulePlan is the typed view of one day's generated schedule.
type SchedulePlan struct {
	ID     string          `json:"id"`
	Date   string          `json:"date"` // YYYY-MM-DD
	Blocks []ScheduleBlock `json:"blocks,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the plan's field values.
func (p *SchedulePlan) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("id is required")
	}
	if _, err := time.Parse("2006-01-02", p.Date); err != nil {
		return fmt.Errorf("date must be YYYY-MM-DD (got %q)", p.Date)
	}
	return nil
}

// Profile is the typed view of the user profile record.
//
// FullName and Birthday hold e2ee envelopes, not plaintext: they are
// encrypted by the key manager before the record is written to the store and
// only decrypted on a device holding the key. The data layer treats them as
// opaque strings.
type Profile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name,omitempty"`

	FullName *string `json:"full_name,omitempty"`
	Birthday *string `json:"birthday,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the profile's field values.
func (p *Profile) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("id is required")
	}
	return nil
}

// ToRecord converts any typed view to its generic Record form via its JSON
// representation.
func ToRecord(v any) (Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Record{}, fmt.Errorf("failed to encode record: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, err
	}
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// FromRecord decodes a generic Record into a typed view.
func FromRecord(rec Record, v any) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode record into %T: %w", v, err)
	}
	return nil
}
