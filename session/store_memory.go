package session

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultMemoryStoreCapacity = 10_000
	DefaultMemoryStoreTTL      = 30 * 24 * time.Hour
)

// MemoryStore is an in-memory implementation of KVStore. Sessions idle for
// longer than the TTL expire and the least recently written are evicted at
// capacity.
type MemoryStore struct {
	mu       sync.Mutex
	sessions *expirable.LRU[string, map[string]string] // sid -> field -> value
}

var _ KVStore = (*MemoryStore)(nil)

type memoryStoreOptions struct {
	capacity int
	ttl      time.Duration
}

type MemoryStoreOption func(*memoryStoreOptions)

// WithCapacity bounds how many browser sessions are held
func WithCapacity(n int) MemoryStoreOption {
	return func(o *memoryStoreOptions) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithTTL sets how long a session survives without being written
func WithTTL(ttl time.Duration) MemoryStoreOption {
	return func(o *memoryStoreOptions) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

func NewMemoryStore(options ...MemoryStoreOption) *MemoryStore {
	o := memoryStoreOptions{capacity: DefaultMemoryStoreCapacity, ttl: DefaultMemoryStoreTTL}
	for _, opt := range options {
		opt(&o)
	}
	return &MemoryStore{
		sessions: expirable.NewLRU[string, map[string]string](o.capacity, nil, o.ttl),
	}
}

func (m *MemoryStore) Get(_ context.Context, sid string) (map[string]string, error) {
	if sid == "" {
		return nil, errNoSessionID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, _ := m.sessions.Peek(sid)
	// Return a copy so callers cannot mutate stored state
	fields := make(map[string]string, len(stored))
	for k, v := range stored {
		fields[k] = v
	}
	return fields, nil
}

func (m *MemoryStore) Set(_ context.Context, sid string, fields map[string]string) error {
	if sid == "" {
		return errNoSessionID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.sessions.Peek(sid)
	if !ok {
		stored = make(map[string]string, len(fields))
	}
	for k, v := range fields {
		stored[k] = v
	}
	// Re-adding refreshes the TTL, as EXPIRE does for the redis store
	m.sessions.Add(sid, stored)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, sid string, keys ...string) error {
	if sid == "" {
		return errNoSessionID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.sessions.Peek(sid)
	if !ok {
		return nil
	}
	for _, k := range keys {
		delete(stored, k)
	}

	// Clean up empty sessions
	if len(stored) == 0 {
		m.sessions.Remove(sid)
	}
	return nil
}

// Len reports how many browser sessions hold at least one field
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions.Len()
}
