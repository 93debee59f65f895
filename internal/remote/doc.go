// Package remote defines the boundary to the remote backend: the per-entity
// table contract the sync engine drains into, the single-row-per-user key
// backup table, and the closed error taxonomy the engine's fallback logic
// matches on.
//
// The engine never inspects error strings; transports classify their own
// failures into Network, Auth, Validation, or Unknown when they construct a
// *remote.Error. Misclassification matters: an auth rejection tagged as
// Network would be silently retried forever, and a network failure tagged as
// anything else would surface hard errors while offline.
//
// SQLiteStore is the in-process implementation used by tests, local
// development, and self-hosted deployments.
package remote
