package drafts

import (
	"context"
	"strings"
	"sync"

	"github.com/tendant/vault/pkg/vault"
)

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]vault.Record
	order   []string
}

// NewMemoryStore creates an empty in-memory draft store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]vault.Record)}
}

func (m *MemoryStore) List(ctx context.Context) ([]vault.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]vault.Record, 0, len(m.order))
	for _, id := range m.order {
		rec, _ := prepare(m.records[id])
		out = append(out, rec)
	}
	return out, nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (vault.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[strings.TrimSpace(id)]
	if !ok {
		return nil, vault.ErrDraftNotFound
	}
	out, _ := prepare(rec)
	return out, nil
}

func (m *MemoryStore) Save(ctx context.Context, record vault.Record) (string, error) {
	rec, id := prepare(record)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.records[id]; !exists {
		m.order = append(m.order, id)
	}
	m.records[id] = rec
	return id, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id = strings.TrimSpace(id)
	if _, ok := m.records[id]; !ok {
		return vault.ErrDraftNotFound
	}
	delete(m.records, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}
