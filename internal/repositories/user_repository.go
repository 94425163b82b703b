package repositories

import (
	"context"
	"errors"

	"msgservice/internal/models"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateName = errors.New("user name already exists")
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByName(ctx context.Context, name string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetAll(ctx context.Context) ([]models.User, error)
	// UpdateImage replaces the avatar reference; name and password are immutable.
	UpdateImage(ctx context.Context, id, image string) error
}
