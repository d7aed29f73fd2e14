package admin

import (
	"context"
	"sync"

	"support-desk/internal/model"
)

type MemoryRepository struct {
	mu     sync.Mutex
	admins map[string]model.AdminItem
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{admins: make(map[string]model.AdminItem)}
}

func (m *MemoryRepository) CreateAdmin(ctx context.Context, admin model.AdminItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.admins {
		if existing.Username == admin.Username {
			return ErrConflict
		}
	}
	m.admins[admin.ID] = admin
	return nil
}

func (m *MemoryRepository) GetAdmin(ctx context.Context, id string) (model.AdminItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	admin, ok := m.admins[id]
	if !ok {
		return model.AdminItem{}, ErrNotFound
	}
	return admin, nil
}

func (m *MemoryRepository) GetAdminByUsername(ctx context.Context, username string) (model.AdminItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, admin := range m.admins {
		if admin.Username == username {
			return admin, nil
		}
	}
	return model.AdminItem{}, ErrNotFound
}
