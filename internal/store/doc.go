// Package store implements the local durable store: a per-user cache of
// entity collections plus the outbox, backed by a single JSON document on
// disk.
//
// All mutations go through Update, which serializes load-modify-persist
// cycles with a strict FIFO lock so concurrent callers can never interleave
// their read and write steps (no lost updates). The on-disk document is
// replaced atomically (write to a temp file, then rename), so a crash leaves
// either the previous image or the new one, never a torn write.
//
// Reads never fail: a missing, corrupt, or wrong-shape document normalizes to
// the default empty state. Persist failures are reported through a typed
// error but do not roll back the in-memory mutation; for the running process
// the in-memory state stays authoritative.
package store
