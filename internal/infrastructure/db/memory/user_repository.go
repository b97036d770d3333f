// Package memory provides in-process repositories for the mock backend and tests.
package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/talentsphere/talentsphere/internal/core/domain"
)

// UserRepository is a ports.UserRepository held in a map.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*domain.User
	byEmail map[string]string
	seq     int
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]string),
	}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return nil, domain.ErrUserExists
	}

	r.seq++
	stored := cloneUser(user)
	if stored.ID == "" {
		stored.ID = "usr_" + strconv.Itoa(r.seq)
	}
	r.byID[stored.ID] = stored
	r.byEmail[stored.Email] = stored.ID
	return cloneUser(stored), nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(r.byID[id]), nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) SetCompany(_ context.Context, id string, company domain.Company) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if u.Company != nil {
		return nil, domain.ErrForbidden
	}
	u.Company = &company
	u.Role = domain.RoleRecruiter
	u.UpdatedAt = time.Now().UTC()
	return cloneUser(u), nil
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	if u.Company != nil {
		company := *u.Company
		c.Company = &company
	}
	return &c
}
