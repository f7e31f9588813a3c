package repomanager

import "github.com/dmitrijs2005/gophauth/internal/server/users"

type InMemoryRepositoryManager struct {
	users *users.MemoryRepository
}

func (m *InMemoryRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *InMemoryRepositoryManager) Close() error {
	return nil
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{users: users.NewMemoryRepository()}
}
