package repository

import (
	"context"
	"sync"
)

// MemoryBackend keeps collections in process memory. Used by tests and
// ephemeral runs.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryBackend constructs an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

// Get returns a copy of the stored value.
func (b *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	raw, ok := b.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

// Apply writes the batch under a single lock.
func (b *MemoryBackend) Apply(_ context.Context, batch Batch) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for key, raw := range batch.Puts {
		stored := make([]byte, len(raw))
		copy(stored, raw)
		b.data[key] = stored
	}
	for _, key := range batch.Deletes {
		delete(b.data, key)
	}
	return nil
}

// Ping always succeeds.
func (b *MemoryBackend) Ping(context.Context) error { return nil }

// Close is a no-op.
func (b *MemoryBackend) Close() error { return nil }
