package recordstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// Logger defines the logging interface used by the Store.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Store reads and writes JSON documents through a Backend.
//
// All methods are safe for concurrent use.
type Store struct {
	backend Backend
	locks   keyLocks
	logger  Logger
}

// New creates a Store over the given backend.
func New(backend Backend) *Store {
	return &Store{
		backend: backend,
		locks:   keyLocks{locks: make(map[string]*keyLock)},
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger used to report unreadable documents.
func (s *Store) SetLogger(logger Logger) {
	s.logger = logger
}

// BackendName returns the name of the underlying backend.
func (s *Store) BackendName() string {
	return s.backend.Name()
}

// Close closes the underlying backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// Write encodes v as indented JSON and replaces the document under key.
func (s *Store) Write(ctx context.Context, key string, v any) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	unlock := s.locks.lock(key)
	defer unlock()
	return s.write(ctx, key, v)
}

// write encodes and saves without taking the key lock.
func (s *Store) write(ctx context.Context, key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := s.backend.Save(ctx, key, data); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}

// load fetches raw bytes, folding every failure into "absent".
func (s *Store) load(ctx context.Context, key string) ([]byte, bool) {
	if err := ValidateKey(key); err != nil {
		s.logger.Warn("rejected record key", "key", key, "error", err)
		return nil, false
	}
	data, err := s.backend.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("record load failed, treating as absent", "key", key, "error", err)
		}
		return nil, false
	}
	return data, true
}

// Read returns the document stored under key decoded as T.
//
// If the document is missing or cannot be decoded as T, def is returned
// and the second result is false. Read never returns an error.
func Read[T any](ctx context.Context, s *Store, key string, def T) (T, bool) {
	data, ok := s.load(ctx, key)
	if !ok {
		return def, false
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		s.logger.Warn("record is not valid JSON for its type, treating as absent", "key", key, "error", err)
		return def, false
	}
	return v, true
}

// Update performs a read-modify-write of the document under key while
// holding that key's lock.
//
// The current value (or def when absent) is passed to fn. If fn reports
// changed=false nothing is written. The value returned by fn is returned
// whether or not it was written.
func Update[T any](ctx context.Context, s *Store, key string, def T, fn func(cur T) (next T, changed bool)) (T, error) {
	if err := ValidateKey(key); err != nil {
		return def, err
	}
	unlock := s.locks.lock(key)
	defer unlock()

	cur, _ := Read(ctx, s, key, def)
	next, changed := fn(cur)
	if !changed {
		return next, nil
	}
	if err := s.write(ctx, key, next); err != nil {
		return next, err
	}
	return next, nil
}

// keyLocks hands out one mutex per key, dropping it once no caller holds it.
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// lock acquires the mutex for key and returns its release function.
func (k *keyLocks) lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
