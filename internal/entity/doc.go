// Package entity defines the record model shared by the local store, the
// outbox, and the sync engine.
//
// Every cached object (task, resource, schedule plan, profile) is a Record:
// an opaque JSON object with a stable id and an updated_at ordering field.
// Typed views (Task, Resource, SchedulePlan, Profile) are provided for the
// feature modules that want validation and field access; the store and sync
// layers only ever see Records.
//
// Records are merged by id during sync: see MergeByID.
package entity
