// Package outbox defines the pending-mutation log that makes local writes
// durable before any network attempt.
//
// Every offline-capable mutation enqueues an Operation in the same store
// update that applies the mutation to the local cache, so a record change and
// its outbox entry are persisted atomically. Operations are drained by the
// sync engine in creation order and removed one at a time, each only after
// its remote call succeeds. Replaying a drained operation is safe because
// remote writes are idempotent upserts/deletes by id.
package outbox
