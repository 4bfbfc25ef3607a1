package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is a concurrency-safe in-memory Cache. Expired entries are
// evicted lazily on lookup.
type Memory struct {
	clock clockwork.Clock

	mu   sync.RWMutex
	data map[string]entry
}

// NewMemory creates an empty in-memory cache driven by the given clock.
func NewMemory(clock clockwork.Clock) *Memory {
	return &Memory{
		clock: clock,
		data:  make(map[string]entry),
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	e, ok := m.data[key]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrMiss
	}
	if !m.clock.Now().Before(e.expiresAt) {
		m.mu.Lock()
		delete(m.data, key)
		m.mu.Unlock()
		return nil, ErrMiss
	}

	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	val := make([]byte, len(value))
	copy(val, value)

	m.mu.Lock()
	m.data[key] = entry{value: val, expiresAt: m.clock.Now().Add(ttl)}
	m.mu.Unlock()
	return nil
}
