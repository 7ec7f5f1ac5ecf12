package recordstore

import (
	"context"
	"sync"
)

// MemoryBackend keeps documents in a map. Contents are lost on exit.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

// Name implements Backend.
func (b *MemoryBackend) Name() string { return "memory" }

// Load implements Backend.
func (b *MemoryBackend) Load(_ context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.data == nil {
		return nil, ErrClosed
	}
	v, ok := b.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Save implements Backend.
func (b *MemoryBackend) Save(_ context.Context, key string, data []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.data == nil {
		return ErrClosed
	}
	v := make([]byte, len(data))
	copy(v, data)
	b.data[key] = v
	return nil
}

// Close implements Backend. Later calls fail with ErrClosed.
func (b *MemoryBackend) Close() error {
	b.mu.Lock()
	b.data = nil
	b.mu.Unlock()
	return nil
}
