package users

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/apt-tech/connect-backend/internal/models"
)

// MemoryRepository is an in-memory Repository used for unit tests. It mirrors
// the Mongo semantics, including atomic email uniqueness: the check and the
// insert happen under the same lock.
type MemoryRepository struct {
	mu    sync.RWMutex
	seq   int
	store map[string]*models.User
	order []string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: make(map[string]*models.User)}
}

func (m *MemoryRepository) Insert(ctx context.Context, u *models.User) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.store {
		if existing.Email == u.Email {
			return "", ErrEmailTaken
		}
	}
	if u.ID == "" {
		m.seq++
		u.ID = fmt.Sprintf("user_%d", m.seq)
	}
	if _, ok := m.store[u.ID]; ok {
		return "", fmt.Errorf("duplicate id %s", u.ID)
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	cp := *u
	m.store[u.ID] = &cp
	m.order = append(m.order, u.ID)
	return u.ID, nil
}

func (m *MemoryRepository) List(ctx context.Context) ([]*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.User, 0, len(m.order))
	for _, id := range m.order {
		cp := *m.store[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MemoryRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryRepository) Patch(ctx context.Context, id string, fields map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "firstname":
			u.Firstname, _ = v.(string)
		case "lastname":
			u.Lastname, _ = v.(string)
		case "email":
			s, _ := v.(string)
			for oid, other := range m.store {
				if oid != id && other.Email == s {
					return ErrEmailTaken
				}
			}
			u.Email = s
		case "password":
			u.Password, _ = v.(string)
		case "college":
			u.College, _ = v.(string)
		case "year_of_study":
			u.YearOfStudy, _ = v.(string)
		case "role":
			u.Role, _ = v.(string)
		case "isStudentApproved":
			if b, ok := v.(bool); ok {
				u.IsStudentApproved = &b
			} else if bp, ok := v.(*bool); ok {
				u.IsStudentApproved = bp
			}
		}
	}
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return ErrNotFound
	}
	delete(m.store, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MemoryRepository) FindByRole(ctx context.Context, role string) ([]*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*models.User{}
	for _, id := range m.order {
		if m.store[id].Role == role {
			cp := *m.store[id]
			out = append(out, &cp)
		}
	}
	return out, nil
}
