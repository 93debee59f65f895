package entity

import "fmt"

// Kind identifies an entity collection. Each user has one collection per kind
// in the local store, and one table partition per kind on the remote side.
type Kind string

const (
	KindTask     Kind = "task"
	KindResource Kind = "resource"
	KindSchedule Kind = "schedule"
	KindProfile  Kind = "profile"
)

// Kinds returns all known entity kinds in a stable order.
func Kinds() []Kind {
	return []Kind{KindTask, KindResource, KindSchedule, KindProfile}
}

// Valid reports whether k is a known entity kind.
func (k Kind) Valid() bool {
	switch k {
	case KindTask, KindResource, KindSchedule, KindProfile:
		return true
	}
	return false
}

// Validate returns an error for unknown kinds.
func (k Kind) Validate() error {
	if !k.Valid() {
		return fmt.Errorf("unknown entity kind %q", string(k))
	}
	return nil
}
