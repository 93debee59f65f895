package entity

import (
	"encoding/json"
	"fmt"
	"time"
)

// Record is the generic shape of a cached entity. It carries the two fields
// the data layer itself depends on (id for identity, updated_at for ordering)
// and keeps everything else opaque in Fields.
//
// The JSON form is flat: Fields are serialized beside id and updated_at, so a
// Record round-trips the exact document the remote backend stores.
type Record struct {
	ID        string
	UpdatedAt time.Time
	Fields    map[string]any
}

// MarshalJSON flattens Fields beside id and updated_at.
func (r Record) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(r.Fields)+2)
	for k, v := range r.Fields {
		doc[k] = v
	}
	doc["id"] = r.ID
	if !r.UpdatedAt.IsZero() {
		doc["updated_at"] = r.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return json.Marshal(doc)
}

// UnmarshalJSON extracts id and updated_at and keeps the rest opaque.
func (r *Record) UnmarshalJSON(data []byte) error {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to decode record: %w", err)
	}

	id, _ := doc["id"].(string)
	r.ID = id
	delete(doc, "id")

	r.UpdatedAt = time.Time{}
	if raw, ok := doc["updated_at"].(string); ok {
		if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			r.UpdatedAt = ts
		}
	}
	delete(doc, "updated_at")

	r.Fields = doc
	return nil
}

// Validate checks the invariants the store relies on.
func (r *Record) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("record id is required")
	}
	return nil
}

// Clone returns a deep copy of the record. The store hands out and accepts
// only copies so callers can never alias its in-memory cache.
func (r Record) Clone() Record {
	out := Record{ID: r.ID, UpdatedAt: r.UpdatedAt}
	if r.Fields != nil {
		out.Fields = cloneValue(r.Fields).(map[string]any)
	}
	return out
}

// Touch stamps updated_at with the current time.
func (r *Record) Touch() {
	r.UpdatedAt = time.Now().UTC()
}

// cloneValue deep-copies the JSON-shaped value graphs held in Record.Fields
// (maps, slices, and scalars).
func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = cloneValue(elem)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = cloneValue(elem)
		}
		return out
	default:
		return val
	}
}

// CloneRecords deep-copies a record slice.
func CloneRecords(recs []Record) []Record {
	if recs == nil {
		return nil
	}
	out := make([]Record, len(recs))
	for i, r := range recs {
		out[i] = r.Clone()
	}
	return out
}
