// Package fallback holds the durable last-known-good snapshots the
// dashboard falls back to when both the live APIs and the in-memory
// cache fail. It is a best-effort safety net: writes never fail the
// primary data path.
package fallback

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Store persists one JSON record per cache key.
type Store interface {
	// Save serializes value under key, replacing any prior record and
	// stamping it with the current time. Failures are logged by the
	// implementation and swallowed.
	Save(ctx context.Context, key string, value any)
	// Load deserializes the last saved record for key into dst and
	// reports whether one was found. Deserialization failures count as
	// absent.
	Load(ctx context.Context, key string, dst any) bool
}

type memoryRecord struct {
	payload   []byte
	updatedAt time.Time
}

// Memory is the in-process store used when no durable backend is
// configured and in tests.
type Memory struct {
	mu      sync.Mutex
	records map[string]memoryRecord
}

func NewMemory() *Memory {
	return &Memory{records: make(map[string]memoryRecord)}
}

func (m *Memory) Save(_ context.Context, key string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		log.Printf("[fallback] WARN: failed to marshal snapshot key=%s: %v", key, err)
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[key] = memoryRecord{payload: payload, updatedAt: time.Now()}
}

func (m *Memory) Load(_ context.Context, key string, dst any) bool {
	m.mu.Lock()
	rec, ok := m.records[key]
	m.mu.Unlock()
	if !ok {
		return false
	}
	return json.Unmarshal(rec.payload, dst) == nil
}
