package meetings

import (
	"context"
	"sync"
)

// MemoryRepository is an in-memory Repository for unit tests.
type MemoryRepository struct {
	mu    sync.Mutex
	rooms map[string]*Meeting
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rooms: make(map[string]*Meeting)}
}

func (m *MemoryRepository) Create(ctx context.Context, mt *Meeting) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[mt.RoomID]; ok {
		return ErrRoomExists
	}
	cp := *mt
	m.rooms[mt.RoomID] = &cp
	return nil
}
