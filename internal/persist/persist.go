package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/roach88/garden/internal/garden"
	"github.com/roach88/garden/internal/logger"
	"github.com/roach88/garden/internal/store"
)

// Key is the storage key of the snapshot. The format version is part of the
// key, so an incompatible format change moves to a new key rather than
// migrating in place.
const Key = "knowledge_garden_data_v6"

// LoadStatus says where a loaded snapshot came from.
type LoadStatus int

const (
	// LoadOK means a stored snapshot was decoded and validated.
	LoadOK LoadStatus = iota
	// LoadMissing means nothing was stored under Key.
	LoadMissing
	// LoadReadError means the backend failed to read.
	LoadReadError
	// LoadMalformed means the stored bytes are not a decodable snapshot.
	LoadMalformed
	// LoadSchemaMismatch means the stored snapshot violates the schema.
	LoadSchemaMismatch
)

func (s LoadStatus) String() string {
	switch s {
	case LoadOK:
		return "ok"
	case LoadMissing:
		return "missing"
	case LoadReadError:
		return "read_error"
	case LoadMalformed:
		return "malformed"
	case LoadSchemaMismatch:
		return "schema_mismatch"
	default:
		return fmt.Sprintf("LoadStatus(%d)", int(s))
	}
}

// Adapter reads and writes the snapshot through a KV backend.
type Adapter struct {
	kv     store.KV
	key    string
	schema *Schema
	log    zerolog.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(a *Adapter) { a.key = key }
}

// WithLogger sets the adapter's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(a *Adapter) { a.log = l }
}

// New returns an adapter over kv.
func New(kv store.KV, opts ...Option) (*Adapter, error) {
	schema, err := NewSchema()
	if err != nil {
		return nil, err
	}
	a := &Adapter{
		kv:     kv,
		key:    Key,
		schema: schema,
		log:    logger.GetPersistLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Save overwrites the stored snapshot.
func (a *Adapter) Save(ctx context.Context, snap *garden.Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return err
	}
	if err := a.kv.Put(ctx, a.key, data); err != nil {
		return fmt.Errorf("persist: writing %s: %w", a.key, err)
	}
	a.log.Debug().Str("key", a.key).Int("bytes", len(data)).Msg("snapshot saved")
	return nil
}

// Load returns the stored snapshot, or nil and the reason it could not be
// used. Failures are logged here; callers only pick the default.
func (a *Adapter) Load(ctx context.Context) (*garden.Snapshot, LoadStatus) {
	data, err := a.kv.Get(ctx, a.key)
	if errors.Is(err, store.ErrNotFound) {
		a.log.Info().Str("key", a.key).Msg("no stored snapshot, starting fresh")
		return nil, LoadMissing
	}
	if err != nil {
		a.log.Error().Err(err).Str("key", a.key).Msg("reading snapshot failed, starting fresh")
		return nil, LoadReadError
	}

	snap, status, err := a.decode(data)
	if err != nil {
		a.log.Warn().Err(err).Str("key", a.key).Stringer("status", status).Msg("stored snapshot unusable, starting fresh")
		return nil, status
	}
	a.log.Debug().Str("key", a.key).Int("plants", len(snap.Stats.OwnedPlants)).Msg("snapshot loaded")
	return snap, LoadOK
}

func (a *Adapter) decode(data []byte) (*garden.Snapshot, LoadStatus, error) {
	if !json.Valid(data) {
		return nil, LoadMalformed, errors.New("not valid json")
	}
	if err := a.schema.Check(data); err != nil {
		return nil, LoadSchemaMismatch, err
	}
	snap, err := Decode(data)
	if err != nil {
		return nil, LoadMalformed, err
	}
	if err := snap.Validate(); err != nil {
		return nil, LoadSchemaMismatch, err
	}
	return snap, LoadOK, nil
}

// Encode serializes a snapshot in its persisted JSON form.
func Encode(snap *garden.Snapshot) ([]byte, error) {
	if snap == nil {
		return nil, errors.New("persist: nil snapshot")
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("persist: encoding snapshot: %w", err)
	}
	return data, nil
}

// Decode parses persisted JSON. Histories longer than their capacity are
// truncated to the newest entries.
func Decode(data []byte) (*garden.Snapshot, error) {
	var snap garden.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("persist: decoding snapshot: %w", err)
	}
	return &snap, nil
}
