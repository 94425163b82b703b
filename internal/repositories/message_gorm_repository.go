package repositories

import (
	"context"
	"errors"
	"fmt"

	"msgservice/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMMessageRepository is a GORM implementation of MessageRepository.
type GORMMessageRepository struct {
	db *gorm.DB
}

// NewGORMMessageRepository creates a new instance of GORMMessageRepository.
func NewGORMMessageRepository(db *gorm.DB) *GORMMessageRepository {
	return &GORMMessageRepository{
		db: db,
	}
}

// Create stores a new message.
func (r *GORMMessageRepository) Create(ctx context.Context, message *models.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// GetByRecipient retrieves every message addressed to the given user.
func (r *GORMMessageRepository) GetByRecipient(ctx context.Context, to string) ([]models.Message, error) {
	messages := []models.Message{}
	if err := r.db.WithContext(ctx).Where("to_user = ?", to).Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to get messages for user %s: %w", to, err)
	}
	return messages, nil
}

// Delete deletes a message by its ID. A missing message is not an error.
func (r *GORMMessageRepository) Delete(ctx context.Context, id string) (*models.Message, error) {
	var deleted *models.Message
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var message models.Message
		if err := tx.First(&message, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := tx.Delete(&models.Message{}, "id = ?", id).Error; err != nil {
			return err
		}
		deleted = &message
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete message %s: %w", id, err)
	}
	return deleted, nil
}
