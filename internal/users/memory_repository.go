package users

import (
	"context"
	"sync"
	"time"

	"github.com/pacific-clothing/personnel-api/internal/models"
)

// MemoryRepository keeps users in a map. Dev fallback when Mongo is not
// deployed.
type MemoryRepository struct {
	mu    sync.RWMutex
	bySub map[string]*models.User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{bySub: make(map[string]*models.User)}
}

func (m *MemoryRepository) UpsertBySub(ctx context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	if existing, ok := m.bySub[u.Sub]; ok {
		u.CreatedAt = existing.CreatedAt
	} else {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	cp := *u
	m.bySub[u.Sub] = &cp
	return u, nil
}

func (m *MemoryRepository) GetBySub(ctx context.Context, sub string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.bySub[sub]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}
