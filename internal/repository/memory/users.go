package memory

import (
	"context"
	"fmt"

	"buildportal/internal/domain"
	"buildportal/internal/domain/models"
)

// UserRepository is the in-memory repositories.UserRepository
type UserRepository struct{ store *Store }

// Users returns the user repository of the store
func (s *Store) Users() *UserRepository { return &UserRepository{store: s} }

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if err := r.store.check("get user"); err != nil {
		return nil, err
	}

	u, ok := r.store.users[id]
	if !ok {
		return nil, notFound("user", id)
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.check("create user"); err != nil {
		return err
	}

	for _, u := range r.store.users {
		if u.Email == user.Email {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("user '%s' already exists", user.Email),
				ResourceType: "user",
				ResourceID:   u.ID,
			}
		}
	}
	if user.ID == "" {
		user.ID = newID()
	}
	now := r.store.now()
	user.CreatedAt, user.UpdatedAt = now, now
	r.store.users[user.ID] = *user
	return nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, id string, role models.Role) (*models.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.check("update user role"); err != nil {
		return nil, err
	}

	u, ok := r.store.users[id]
	if !ok {
		return nil, notFound("user", id)
	}
	u.Role = role
	u.UpdatedAt = r.store.now()
	r.store.users[id] = u
	return &u, nil
}

// SetStatus changes a user's status; used by tests and seeding
func (r *UserRepository) SetStatus(id string, status models.UserStatus) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if u, ok := r.store.users[id]; ok {
		u.Status = status
		r.store.users[id] = u
	}
}
