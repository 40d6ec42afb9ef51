// Package cache implements the process-wide time-windowed cache that
// mediates every marketplace aggregate computation.
package cache

import (
	"sync"
	"time"
)

// Entry is one cached value with its expiry instant.
type Entry struct {
	Value     any
	ExpiresAt time.Time
}

// Backend is the storage behind the cache service. Implementations
// must be safe for concurrent use; the service never holds a backend
// call open across a compute.
type Backend interface {
	Load(key string) (Entry, bool)
	Store(key string, e Entry)
	Delete(key string)
}

// MemoryBackend is the default map-backed store guarded by a single
// mutex held only for the duration of the map access.
type MemoryBackend struct {
	mu      sync.Mutex
	entries map[string]Entry
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: make(map[string]Entry)}
}

func (b *MemoryBackend) Load(key string) (Entry, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.entries[key]
	return e, ok
}

func (b *MemoryBackend) Store(key string, e Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[key] = e
}

func (b *MemoryBackend) Delete(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.entries, key)
}

// Service provides get-or-compute semantics with TTL, force bypass and
// stale reads on top of a Backend. Concurrent misses for the same key
// may both compute; the last writer wins.
type Service struct {
	backend Backend
	now     func() time.Time
}

func New(backend Backend) *Service {
	if backend == nil {
		backend = NewMemoryBackend()
	}
	return &Service{backend: backend, now: time.Now}
}

// GetOrCompute returns the cached value for key when present and
// unexpired. Otherwise it runs compute, stores the result under key
// with the given TTL and returns it. force skips the lookup entirely;
// a non-positive TTL disables both lookup and storage. Compute errors
// propagate unchanged and leave any prior entry in place.
func (s *Service) GetOrCompute(key string, ttl time.Duration, force bool, compute func() (any, error)) (any, error) {
	if !force && ttl > 0 {
		if e, ok := s.backend.Load(key); ok && e.ExpiresAt.After(s.now()) {
			return e.Value, nil
		}
	}

	value, err := compute()
	if err != nil {
		return nil, err
	}
	if ttl > 0 {
		s.backend.Store(key, Entry{Value: value, ExpiresAt: s.now().Add(ttl)})
	}
	return value, nil
}

// Peek returns the cached value without triggering computation. With
// allowStale it returns expired entries too, which is how the
// dashboard shows the last known state after an upstream failure.
func (s *Service) Peek(key string, allowStale bool) (any, bool) {
	e, ok := s.backend.Load(key)
	if !ok {
		return nil, false
	}
	if e.ExpiresAt.After(s.now()) || allowStale {
		return e.Value, true
	}
	return nil, false
}

// Invalidate drops the entry for key; missing keys are a no-op.
func (s *Service) Invalidate(key string) {
	s.backend.Delete(key)
}
