// Package testutil provides deterministic stand-ins for wall time, id
// generation, and the AI generator.
package testutil
