package sessions

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	data      Data
	expiresAt time.Time
}

// MemoryStore hält Sessions im Prozess. Abgelaufene Einträge werden beim Laden
// ignoriert und durch Sweep entfernt.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *MemoryStore) Load(_ context.Context, token string) (Data, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[token]
	if !ok || !m.now().Before(entry.expiresAt) {
		return Data{}, ErrNotFound
	}
	return entry.data, nil
}

func (m *MemoryStore) Save(_ context.Context, token string, data Data) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[token] = memoryEntry{data: data, expiresAt: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, token)
	return nil
}

// Sweep löscht abgelaufene Sessions und gibt deren Anzahl zurück.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for token, entry := range m.entries {
		if !now.Before(entry.expiresAt) {
			delete(m.entries, token)
			removed++
		}
	}
	return removed
}

// Len gibt die Anzahl gespeicherter (auch abgelaufener) Sessions zurück.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
