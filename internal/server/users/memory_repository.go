package users

import (
	"context"
	"strings"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

// MemoryRepository keeps users in process memory. Logins are matched
// case-insensitively.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]*User
	byLogin map[string]*User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]*User),
		byLogin: make(map[string]*User),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, user *User) (*User, error) {
	key := strings.ToLower(user.UserName)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byLogin[key]; ok {
		return nil, common.ErrorAlreadyExists
	}
	if _, ok := r.byID[user.ID]; ok {
		return nil, common.ErrorAlreadyExists
	}

	u := *user
	r.byID[u.ID] = &u
	r.byLogin[key] = &u

	out := u
	return &out, nil
}

func (r *MemoryRepository) GetUserByLogin(ctx context.Context, login string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byLogin[strings.ToLower(login)]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *u
	return &out, nil
}

func (r *MemoryRepository) GetUserByID(ctx context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *u
	return &out, nil
}
