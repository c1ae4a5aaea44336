// Package persist saves and restores the garden snapshot through a
// store.KV under a single versioned key.
//
// Loading never fails the caller: a missing, undecodable, or
// schema-violating blob is logged and reported through LoadStatus, and the
// engine starts from garden.DefaultSnapshot instead.
package persist
