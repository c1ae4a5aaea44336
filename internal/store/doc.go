// Package store provides durable key-value storage for garden snapshots.
//
// The engine persists its whole state as one opaque blob under a fixed,
// versioned key, so the storage contract is deliberately small: Get, Put
// (overwrite), Delete. Three backends implement it:
//   - SQLite: the default single-user backend (one file, WAL mode)
//   - Postgres: a shared backend over a pgx connection pool
//   - Memory: a map, for tests and throwaway sessions
//
// # Database Configuration (SQLite)
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// Schema changes are tracked with PRAGMA user_version.
package store
