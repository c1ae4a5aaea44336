package engine

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/roach88/garden/internal/garden"
	"github.com/roach88/garden/internal/generator"
	"github.com/roach88/garden/internal/logger"
	"github.com/roach88/garden/internal/persist"
	"github.com/roach88/garden/internal/telemetry"
)

// Persister loads the snapshot once at startup and saves it after every
// committed mutation. Implemented by persist.Adapter.
type Persister interface {
	Load(ctx context.Context) (*garden.Snapshot, persist.LoadStatus)
	Save(ctx context.Context, snap *garden.Snapshot) error
}

// Engine is the single writer of garden state.
//
// Thread-safety model:
//   - Water, Acquire, Learn, CheckIn, SetWeather, FetchCard: safe from any goroutine
//   - Snapshot, Revision, Progress: safe from any goroutine, never block
//   - Run: must be called from exactly one goroutine
type Engine struct {
	persister Persister
	gen       generator.Generator
	queue     *commandQueue
	current   atomic.Pointer[garden.Snapshot]
	revision  *Revision
	clock     Clock
	ids       IDGenerator
	log       zerolog.Logger
	meter     metric.Meter
	tracer    trace.Tracer
	counters  *telemetry.Counters
	loaded    persist.LoadStatus
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the wall clock used for ids, dates, and timestamps.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithIDGenerator sets the generator for acquired plant ids.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) { e.ids = g }
}

// WithLogger sets the engine's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithMeter sets the meter the engine's counters are registered on.
func WithMeter(m metric.Meter) Option {
	return func(e *Engine) { e.meter = m }
}

// New creates an Engine initialized from storage. A snapshot that is
// missing or unusable is replaced by garden.DefaultSnapshot; the reason is
// available from LoadStatus.
//
// The engine accepts commands immediately but applies them only while Run
// is executing.
func New(ctx context.Context, p Persister, g generator.Generator, opts ...Option) (*Engine, error) {
	e := &Engine{
		persister: p,
		gen:       g,
		queue:     newCommandQueue(),
		revision:  NewRevision(),
		clock:     systemClock{},
		ids:       UUIDv7Generator{},
		log:       logger.GetEngineLogger(),
		meter:     telemetry.Meter(),
		tracer:    telemetry.Tracer(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.gen == nil {
		e.gen = generator.Offline{}
	}

	counters, err := telemetry.NewCounters(e.meter)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	e.counters = counters

	snap, status := p.Load(ctx)
	if snap == nil {
		snap = garden.DefaultSnapshot()
	}
	e.loaded = status
	e.current.Store(snap)

	e.log.Info().
		Stringer("load_status", status).
		Int("sunlight", snap.Stats.Sunlight).
		Int("plants", len(snap.Stats.OwnedPlants)).
		Msg("engine initialized")

	return e, nil
}

// Run starts the single-writer loop. It blocks until ctx is cancelled or
// Stop is called. Commands queued before Stop are still applied.
//
// CRITICAL: Must be called from exactly ONE goroutine.
func (e *Engine) Run(ctx context.Context) error {
	e.log.Debug().Msg("engine starting")

	for {
		if c, ok := e.queue.TryDequeue(); ok {
			e.execute(ctx, c)
			continue
		}

		select {
		case <-ctx.Done():
			e.log.Debug().Msg("engine stopping: context cancelled")
			e.queue.Close()
			e.drain()
			return ctx.Err()

		case <-e.queue.Wait():
			// The signal channel is closed by Close, so this also fires
			// once the queue is shut and empty.
			if e.queue.Closed() && e.queue.Len() == 0 {
				e.log.Debug().Msg("engine stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop closes the command queue. Run returns once queued commands are applied.
func (e *Engine) Stop() {
	e.queue.Close()
}

// drain rejects every command left after cancellation so no caller waits
// forever on a reply.
func (e *Engine) drain() {
	for {
		c, ok := e.queue.TryDequeue()
		if !ok {
			return
		}
		c.done <- ErrEngineStopped
	}
}

// execute applies one command. Called only from Run.
func (e *Engine) execute(ctx context.Context, c *command) {
	next := e.current.Load().Clone()

	changed, err := c.apply(next)
	if err != nil {
		e.log.Debug().Err(err).Str("op", c.op).Msg("command rejected")
		c.done <- err
		return
	}
	if !changed {
		c.done <- nil
		return
	}

	e.current.Store(next)
	rev := e.revision.Next()

	// Write-through. A failed save is logged and the in-memory state stands;
	// the next successful save carries it.
	if err := e.persister.Save(ctx, next); err != nil {
		e.log.Error().Err(err).Str("op", c.op).Int64("revision", rev).Msg("persisting snapshot failed")
	}

	e.log.Debug().Str("op", c.op).Int64("revision", rev).Int("sunlight", next.Stats.Sunlight).Msg("command committed")
	c.done <- nil
}

// submit enqueues a command and waits for its outcome. If ctx ends first the
// caller stops waiting but the command still runs.
func (e *Engine) submit(ctx context.Context, op string, apply func(*garden.Snapshot) (bool, error)) error {
	c := &command{op: op, apply: apply, done: make(chan error, 1)}
	if !e.queue.Enqueue(c) {
		return ErrEngineStopped
	}
	select {
	case err := <-c.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns a deep copy of the current state.
func (e *Engine) Snapshot() *garden.Snapshot {
	return e.current.Load().Clone()
}

// Revision returns the number of mutations committed since New.
func (e *Engine) Revision() int64 {
	return e.revision.Current()
}

// Progress returns the plant's progress through its current stage.
func (e *Engine) Progress(plantID string) (float64, bool) {
	snap := e.current.Load()
	p, ok := snap.Stats.Plant(plantID)
	if !ok {
		return 0, false
	}
	return garden.Progress(*p), true
}

// LoadStatus reports where the initial snapshot came from.
func (e *Engine) LoadStatus() persist.LoadStatus {
	return e.loaded
}

// QueueLen returns the number of commands waiting for the writer loop.
func (e *Engine) QueueLen() int {
	return e.queue.Len()
}
