package identity

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryRepository struct {
	mu      sync.RWMutex
	users   map[string]User
	byPhone map[string]string
}

// NewMemoryRepository builds an in-memory user store for development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{users: make(map[string]User), byPhone: make(map[string]string)}
}

func (r *memoryRepository) Create(_ context.Context, user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byPhone[user.Phone]; exists {
		return ErrPhoneTaken
	}
	if user.Alias != "" && r.aliasHeldLocked(user.Alias, "") {
		return ErrAliasTaken
	}
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = user
	r.byPhone[user.Phone] = user.ID
	return nil
}

func (r *memoryRepository) FindByPhone(_ context.Context, phone string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byPhone[phone]
	if !ok {
		return User{}, ErrNotFound
	}
	return r.users[id], nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (r *memoryRepository) UpdateProfile(_ context.Context, id string, in ProfileInput) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	if r.aliasHeldLocked(in.Alias, id) {
		return User{}, ErrAliasTaken
	}
	user.Alias = in.Alias
	user.FullName = in.FullName
	user.CanGiveTips = in.CanGiveTips
	user.CanReceiveTips = in.CanReceiveTips
	user.UpdatedAt = time.Now().UTC()
	r.users[id] = user
	return user, nil
}

func (r *memoryRepository) Search(_ context.Context, query, excludeID string, limit int) ([]User, error) {
	q := strings.ToLower(query)
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []User
	for _, u := range r.users {
		if u.Alias == "" || u.ID == excludeID {
			continue
		}
		if strings.Contains(strings.ToLower(u.Alias), q) || strings.Contains(strings.ToLower(u.FullName), q) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Alias) < strings.ToLower(out[j].Alias) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// aliasHeldLocked reports whether a user other than selfID holds alias.
func (r *memoryRepository) aliasHeldLocked(alias, selfID string) bool {
	for _, u := range r.users {
		if u.ID != selfID && u.Alias != "" && strings.EqualFold(u.Alias, alias) {
			return true
		}
	}
	return false
}
