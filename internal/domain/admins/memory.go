package admins

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type MemoryStore struct {
	mu     sync.RWMutex
	admins map[string]Admin
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{admins: make(map[string]Admin)}
}

func (m *MemoryStore) Create(_ context.Context, admin *Admin) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.admins {
		if a.LoginID == admin.LoginID {
			return ErrDuplicateLogin
		}
	}
	if admin.ID == "" {
		admin.ID = uuid.NewString()
	}
	admin.CreatedAt = time.Now().UTC()
	m.admins[admin.ID] = *admin
	return nil
}

func (m *MemoryStore) GetByID(_ context.Context, id string) (*Admin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.admins[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (m *MemoryStore) GetByLoginID(_ context.Context, loginID string) (*Admin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, a := range m.admins {
		if a.LoginID == loginID {
			return &a, nil
		}
	}
	return nil, ErrNotFound
}
