// Package engine implements the sync engine: it drains the outbox against
// the remote backend and keeps the local cache aligned with authoritative
// remote state.
//
// The drain contract is push-then-confirm: each operation's remote call must
// succeed before exactly that operation is removed from the outbox, and the
// removal goes through the store's write serializer. A crash between the two
// steps re-sends the operation on the next run, which is safe because remote
// writes are idempotent upserts/deletes by id.
//
// Overlapping sync runs for the same user are not locked against each other.
// The remote side is idempotent and outbox removal is exact-by-operation-id,
// so a race costs duplicate sends, never lost or duplicated state.
//
// The read path merges by id with local precedence while the outbox is
// non-empty, and treats remote as fully authoritative once it drains empty.
package engine
