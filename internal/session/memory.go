package session

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type memoryEntry struct {
	data    Data
	expires time.Time
}

// sweepInterval is the longest a MemoryStore goes between expiry sweeps.
const sweepInterval = time.Minute

// MemoryStore is a process-local session registry used when Valkey is not
// configured. Expired sessions are dropped on lookup and swept from Create
// at most once per interval.
type MemoryStore struct {
	mu        sync.Mutex
	sessions  map[string]memoryEntry
	ttl       time.Duration
	now       func() time.Time
	nextSweep time.Time
}

// NewMemoryStore creates an empty in-process session registry.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		sessions: make(map[string]memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *MemoryStore) Create(_ context.Context, data *Data) (string, error) {
	id, err := generateID()
	if err != nil {
		return "", fmt.Errorf("session create: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	data.CreatedAt = m.now()
	m.sweep(data.CreatedAt)
	m.sessions[id] = memoryEntry{data: *data, expires: data.CreatedAt.Add(m.ttl)}
	return id, nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Data, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	if !m.now().Before(e.expires) {
		delete(m.sessions, id)
		return nil, nil
	}
	d := e.data
	return &d, nil
}

func (m *MemoryStore) Destroy(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

// sweep drops expired sessions when the interval has elapsed. Callers hold mu.
func (m *MemoryStore) sweep(now time.Time) {
	if now.Before(m.nextSweep) {
		return
	}
	for id, e := range m.sessions {
		if !now.Before(e.expires) {
			delete(m.sessions, id)
		}
	}
	m.nextSweep = now.Add(min(m.ttl, sweepInterval))
}
