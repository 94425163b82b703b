package repositories

import (
	"context"
	"sync"

	"msgservice/internal/models"

	"github.com/google/uuid"
)

// MockMessageRepository is an in-memory implementation of MessageRepository.
// Messages are kept in insertion order.
type MockMessageRepository struct {
	messages []models.Message
	mu       sync.RWMutex
}

// NewMockMessageRepository creates a new instance of MockMessageRepository.
func NewMockMessageRepository() *MockMessageRepository {
	return &MockMessageRepository{}
}

// Create appends a new message.
func (r *MockMessageRepository) Create(_ context.Context, message *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	r.messages = append(r.messages, *message)
	return nil
}

// GetByRecipient returns the messages addressed to the given user.
func (r *MockMessageRepository) GetByRecipient(_ context.Context, to string) ([]models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []models.Message{}
	for _, m := range r.messages {
		if m.To == to {
			result = append(result, m)
		}
	}
	return result, nil
}

// Delete removes a message by its ID.
func (r *MockMessageRepository) Delete(_ context.Context, id string) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, m := range r.messages {
		if m.ID == id {
			r.messages = append(r.messages[:i], r.messages[i+1:]...)
			return &m, nil
		}
	}
	return nil, nil
}
