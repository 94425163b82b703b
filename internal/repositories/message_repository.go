package repositories

import (
	"context"

	"msgservice/internal/models"
)

// MessageRepository defines the interface for message data access.
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	GetByRecipient(ctx context.Context, to string) ([]models.Message, error)
	// Delete removes the message and returns what was removed, or nil when
	// no message had that id.
	Delete(ctx context.Context, id string) (*models.Message, error)
}
