package repositories

import (
	"sync"
	"time"

	"gameghor/internal/apperr"
	"gameghor/internal/models"

	"github.com/google/uuid"
)

// MockUserRepository is an in-memory implementation of UserRepository.
type MockUserRepository struct {
	users map[string]models.User
	mu    sync.RWMutex
}

// NewMockUserRepository creates a new instance of MockUserRepository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]models.User),
	}
}

// Create adds a new user. Emails are unique.
func (r *MockUserRepository) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email {
			return apperr.Auth("email '%s' already registered", user.Email)
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

// GetByEmail returns a user by email.
func (r *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, apperr.NotFound("user with email %s not found", email)
}

// GetByID returns a user by ID.
func (r *MockUserRepository) GetByID(id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, apperr.NotFound("user with ID %s not found", id)
	}
	return &user, nil
}

// SetAdmin grants or revokes admin privileges.
func (r *MockUserRepository) SetAdmin(email string, isAdmin bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, user := range r.users {
		if user.Email == email {
			user.IsAdmin = isAdmin
			user.UpdatedAt = time.Now()
			r.users[id] = user
			return nil
		}
	}
	return apperr.NotFound("user with email %s not found", email)
}
