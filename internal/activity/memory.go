package activity

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepository is an in-memory Repository for unit tests. Append is
// test-only; the production surface never writes entries.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries []Entry
	when    []time.Time
}

func NewMemoryRepository() *MemoryRepository { return &MemoryRepository{} }

// Append records an entry with the given timestamp used for ordering. The
// entry's own "timestamp" field may hold any representation under test.
func (m *MemoryRepository) Append(at time.Time, e Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	m.when = append(m.when, at)
}

func (m *MemoryRepository) ListRecent(ctx context.Context, limit int) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx := make([]int, len(m.entries))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return m.when[idx[a]].After(m.when[idx[b]]) })
	out := []Entry{}
	for _, i := range idx {
		if len(out) == limit {
			break
		}
		cp := Entry{}
		for k, v := range m.entries[i] {
			cp[k] = v
		}
		out = append(out, cp)
	}
	return out, nil
}
