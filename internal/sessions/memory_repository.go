package sessions

import (
	"context"
	"sync"
)

// MemoryRepository keeps sessions in a map. Dev fallback when neither Redis
// nor Mongo is deployed; sessions do not survive a restart.
type MemoryRepository struct {
	mu        sync.RWMutex
	byRefresh map[string]*Session
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byRefresh: make(map[string]*Session)}
}

func (m *MemoryRepository) Create(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.byRefresh[s.RefreshToken] = &cp
	return nil
}

func (m *MemoryRepository) GetByRefresh(ctx context.Context, refresh string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.byRefresh[refresh]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *MemoryRepository) DeleteByRefresh(ctx context.Context, refresh string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byRefresh, refresh)
	return nil
}
