package engine

import (
	"sync"

	"github.com/roach88/garden/internal/garden"
)

// command is one unit of work for the writer loop. apply mutates next, a
// private clone of the current snapshot, and reports whether it changed
// anything worth committing. done receives the outcome exactly once.
type command struct {
	op    string
	apply func(next *garden.Snapshot) (bool, error)
	done  chan error
}

// commandQueue is a thread-safe FIFO of commands.
//
// The queue is unbounded; callers block on their own reply channel, not on
// the queue. The signal channel lets the Run loop wait for work and for
// cancellation in one select.
type commandQueue struct {
	mu       sync.Mutex
	commands []*command
	closed   bool
	signal   chan struct{} // buffered, size 1
}

func newCommandQueue() *commandQueue {
	return &commandQueue{
		commands: make([]*command, 0, 16),
		signal:   make(chan struct{}, 1),
	}
}

// Enqueue adds c to the back of the queue.
// Returns false if the queue is closed.
func (q *commandQueue) Enqueue(c *command) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.commands = append(q.commands, c)

	// Buffer of 1 coalesces multiple signals.
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue removes and returns the front command without blocking.
func (q *commandQueue) TryDequeue() (*command, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.commands) == 0 {
		return nil, false
	}

	c := q.commands[0]
	// Release the slot so the closure can be collected.
	q.commands[0] = nil

	if len(q.commands) == 1 {
		q.commands = q.commands[:0]
	} else {
		q.commands = q.commands[1:]
	}

	return c, true
}

// Wait returns a channel that signals when commands may be available. It is
// closed by Close.
func (q *commandQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the number of queued commands.
func (q *commandQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.commands)
}

// Close stops accepting commands and wakes the Run loop.
func (q *commandQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}

// Closed reports whether Close has been called.
func (q *commandQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
