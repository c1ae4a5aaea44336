// Package engine owns the garden's state and applies every mutation.
//
// ARCHITECTURE:
//
// Single-Writer Command Loop:
// All mutations are submitted as commands to a FIFO queue and applied by
// exactly one goroutine (Run). Each command works on a clone of the current
// snapshot; when it succeeds the clone is swapped in atomically and
// written through to storage. This ensures:
// - Readers never observe a partially applied command
// - A debit and the growth or acquisition it pays for commit together
// - The revision counter orders every committed mutation
//
// Command Flow:
// 1. Caller validates input and, for check-ins and cards, calls the
// generator outside the loop
// 2. Caller enqueues a command and waits for its reply
// 3. Run() dequeues, clones, applies, swaps, bumps the revision, persists
//
// A caller whose context ends stops waiting; the command still runs. A
// check-in additionally runs its generation step on a detached context, so
// abandoning the request never abandons the task.
//
// Reads (Snapshot, Revision, Progress) load the current pointer and never
// touch the queue.
package engine
