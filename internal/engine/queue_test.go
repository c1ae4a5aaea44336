package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCommand(op string) *command {
	return &command{op: op, done: make(chan error, 1)}
}

func TestCommandQueue_FIFO(t *testing.T) {
	q := newCommandQueue()

	for _, op := range []string{"A", "B", "C"} {
		require.True(t, q.Enqueue(testCommand(op)))
	}

	for _, want := range []string{"A", "B", "C"} {
		c, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, want, c.op)
	}
}

func TestCommandQueue_TryDequeue_Empty(t *testing.T) {
	q := newCommandQueue()
	_, ok := q.TryDequeue()
	assert.False(t, ok)
}

func TestCommandQueue_WaitSignals(t *testing.T) {
	q := newCommandQueue()
	q.Enqueue(testCommand("A"))

	select {
	case <-q.Wait():
	case <-time.After(100 * time.Millisecond):
		t.Fatal("no signal after enqueue")
	}
}

func TestCommandQueue_CloseWakesWaiters(t *testing.T) {
	q := newCommandQueue()
	done := make(chan struct{})
	go func() {
		<-q.Wait()
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	q.Close()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Close did not wake waiter")
	}
	assert.True(t, q.Closed())
}

func TestCommandQueue_EnqueueAfterClose(t *testing.T) {
	q := newCommandQueue()
	q.Close()
	q.Close() // idempotent

	assert.False(t, q.Enqueue(testCommand("late")))
}

func TestCommandQueue_DequeueAfterCloseDrains(t *testing.T) {
	q := newCommandQueue()
	q.Enqueue(testCommand("A"))
	q.Close()

	c, ok := q.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, "A", c.op)
	assert.Equal(t, 0, q.Len())
}

func TestCommandQueue_ThreadSafe(t *testing.T) {
	q := newCommandQueue()
	const producers = 10
	const perProducer = 100

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Enqueue(testCommand("x"))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, producers*perProducer, q.Len())
	n := 0
	for {
		if _, ok := q.TryDequeue(); !ok {
			break
		}
		n++
	}
	assert.Equal(t, producers*perProducer, n)
}
