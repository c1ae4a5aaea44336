// Package garden provides the knowledge garden state model.
//
// This package contains the snapshot types plus the two pure rule sets that
// operate on them: the resource ledger (sunlight credit/debit) and the plant
// registry (stage progression, acquisition, flower-language attachment).
// garden imports nothing internal; the engine, persistence adapter and CLI
// all build on it.
//
// Key design constraints:
//   - Sunlight is never negative; Debit is all-or-nothing
//   - Stage advances at most one step per Grow call and never regresses
//   - History buffers are capacity-bounded by type, newest first
//   - JSON tags use the camelCase names of the stored snapshot blob
package garden
