package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"msgservice/internal/models"

	"github.com/google/uuid"
)

// MockUserRepository is an in-memory implementation of UserRepository.
type MockUserRepository struct {
	users  map[string]models.User
	byName map[string]string
	mu     sync.RWMutex
}

// NewMockUserRepository creates a new instance of MockUserRepository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:  make(map[string]models.User),
		byName: make(map[string]string),
	}
}

// Create adds a new user, rejecting duplicate names.
func (r *MockUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byName[user.Name]; taken {
		return fmt.Errorf("%w: %s", ErrDuplicateName, user.Name)
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	r.users[user.ID] = *user
	r.byName[user.Name] = user.ID
	return nil
}

// GetByName returns a user by name.
func (r *MockUserRepository) GetByName(_ context.Context, name string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: name %s", ErrUserNotFound, name)
	}
	user := r.users[id]
	return &user, nil
}

// GetByID returns a user by ID.
func (r *MockUserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: ID %s", ErrUserNotFound, id)
	}
	return &user, nil
}

// GetAll returns all users ordered by name.
func (r *MockUserRepository) GetAll(_ context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	userList := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		userList = append(userList, u)
	}
	sort.Slice(userList, func(i, j int) bool { return userList[i].Name < userList[j].Name })
	return userList, nil
}

// UpdateImage modifies the avatar reference of an existing user.
func (r *MockUserRepository) UpdateImage(_ context.Context, id, image string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return fmt.Errorf("%w: ID %s", ErrUserNotFound, id)
	}
	user.Image = image
	r.users[id] = user
	return nil
}
