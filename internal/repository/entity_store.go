package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrKeyNotFound is returned by backends when a collection key is absent.
	ErrKeyNotFound = errors.New("entity store: key not found")
	// ErrMalformedStorage marks a stored value that does not decode into the
	// expected collection shape. It is logged and never returned to callers.
	ErrMalformedStorage = errors.New("entity store: malformed collection")
	// ErrRecordNotFound is returned when a record id does not resolve.
	ErrRecordNotFound = errors.New("record not found")
	// ErrRecordReferenced is returned when removing a record still referenced elsewhere.
	ErrRecordReferenced = errors.New("record still referenced")
)

// Backend is the persistent medium behind the entity store. Apply must write
// every put and delete of the batch or none of them.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Apply(ctx context.Context, batch Batch) error
	Ping(ctx context.Context) error
	Close() error
}

// Batch groups collection writes committed together.
type Batch struct {
	Puts    map[string][]byte
	Deletes []string
}

// Empty reports whether the batch carries no writes.
func (b Batch) Empty() bool {
	return len(b.Puts) == 0 && len(b.Deletes) == 0
}

// Keys returns the sorted put keys, giving backends a stable write order.
func (b Batch) Keys() []string {
	keys := make([]string, 0, len(b.Puts))
	for key := range b.Puts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// StoreObserver receives timing for backend calls.
type StoreObserver interface {
	ObserveStoreOperation(op string, duration time.Duration)
}

// Source is anything collections can be read from: the store itself or an
// open transaction.
type Source interface {
	Raw(ctx context.Context, name string) ([]byte, bool, error)
	malformed(name string, err error)
}

// EntityStore loads and saves whole named collections. Writes go through
// Update, which serialises read-modify-write cycles within the process.
type EntityStore struct {
	backend  Backend
	logger   *zap.Logger
	observer StoreObserver
	mu       sync.RWMutex
}

// NewEntityStore wraps a backend.
func NewEntityStore(backend Backend, logger *zap.Logger, observer StoreObserver) *EntityStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EntityStore{backend: backend, logger: logger, observer: observer}
}

// Raw returns the stored bytes for a collection and whether the key exists.
func (s *EntityStore) Raw(ctx context.Context, name string) ([]byte, bool, error) {
	start := time.Now()
	raw, err := s.backend.Get(ctx, name)
	s.observe("get", start)
	if errors.Is(err, ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load %s: %w", name, err)
	}
	return raw, true, nil
}

func (s *EntityStore) malformed(name string, err error) {
	s.logger.Warn("malformed collection treated as empty",
		zap.String("collection", name),
		zap.Error(fmt.Errorf("%w: %v", ErrMalformedStorage, err)))
}

// Ping checks backend connectivity.
func (s *EntityStore) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

// Close releases the backend.
func (s *EntityStore) Close() error {
	return s.backend.Close()
}

// Save replaces an entire collection.
func (s *EntityStore) Save(ctx context.Context, name string, records interface{}) error {
	return s.Update(ctx, func(tx *Tx) error {
		return tx.Put(name, records)
	})
}

// View runs fn with reads excluded from concurrent commits, so several
// collections read through src come from the same committed state. fn must
// not call Update.
func (s *EntityStore) View(ctx context.Context, fn func(src Source) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s)
}

// Update runs fn inside a serialised transaction. Pending writes are visible
// to reads made through tx and are committed in one backend batch only when
// fn returns nil.
func (s *EntityStore) Update(ctx context.Context, fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Tx{ctx: ctx, store: s, puts: map[string][]byte{}, deletes: map[string]struct{}{}}
	if err := fn(tx); err != nil {
		return err
	}
	batch := tx.batch()
	if batch.Empty() {
		return nil
	}
	start := time.Now()
	err := s.backend.Apply(ctx, batch)
	s.observe("apply", start)
	if err != nil {
		return fmt.Errorf("commit collections: %w", err)
	}
	return nil
}

func (s *EntityStore) observe(op string, start time.Time) {
	if s.observer != nil {
		s.observer.ObserveStoreOperation(op, time.Since(start))
	}
}

// Tx is an open read-modify-write transaction.
type Tx struct {
	ctx     context.Context
	store   *EntityStore
	puts    map[string][]byte
	deletes map[string]struct{}
}

// Context returns the context the transaction was opened with.
func (tx *Tx) Context() context.Context {
	return tx.ctx
}

// Raw reads a collection, preferring the transaction's pending writes.
func (tx *Tx) Raw(ctx context.Context, name string) ([]byte, bool, error) {
	if _, deleted := tx.deletes[name]; deleted {
		return nil, false, nil
	}
	if raw, ok := tx.puts[name]; ok {
		return raw, true, nil
	}
	return tx.store.Raw(ctx, name)
}

func (tx *Tx) malformed(name string, err error) {
	tx.store.malformed(name, err)
}

// Put stages a full replacement of a collection.
func (tx *Tx) Put(name string, records interface{}) error {
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	delete(tx.deletes, name)
	tx.puts[name] = payload
	return nil
}

// Delete stages removal of a collection.
func (tx *Tx) Delete(name string) {
	delete(tx.puts, name)
	tx.deletes[name] = struct{}{}
}

func (tx *Tx) batch() Batch {
	batch := Batch{Puts: tx.puts}
	for name := range tx.deletes {
		batch.Deletes = append(batch.Deletes, name)
	}
	sort.Strings(batch.Deletes)
	return batch
}

// LoadCollection reads a collection as a slice. Absent or malformed values
// yield an empty slice; only backend failures are returned as errors.
func LoadCollection[T any](ctx context.Context, src Source, name string) ([]T, error) {
	raw, ok, err := src.Raw(ctx, name)
	if err != nil {
		return []T{}, err
	}
	if !ok {
		return []T{}, nil
	}
	var records []T
	if err := json.Unmarshal(raw, &records); err != nil {
		src.malformed(name, err)
		return []T{}, nil
	}
	if records == nil {
		return []T{}, nil
	}
	return records, nil
}

// LoadValue decodes a single stored value into dest and reports whether a
// well-formed value was present.
func LoadValue(ctx context.Context, src Source, name string, dest interface{}) (bool, error) {
	raw, ok, err := src.Raw(ctx, name)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		src.malformed(name, err)
		return false, nil
	}
	return true, nil
}
