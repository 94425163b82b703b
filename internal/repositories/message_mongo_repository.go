package repositories

import (
	"context"
	"errors"
	"fmt"

	"msgservice/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// MongoMessageRepository is a MongoDB implementation of MessageRepository.
type MongoMessageRepository struct {
	coll *mongo.Collection
}

// NewMongoMessageRepository creates a repository backed by the messages collection of db.
func NewMongoMessageRepository(db *mongo.Database) *MongoMessageRepository {
	return &MongoMessageRepository{coll: db.Collection(messagesCollection)}
}

// Create inserts a new message document.
func (r *MongoMessageRepository) Create(ctx context.Context, message *models.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if _, err := r.coll.InsertOne(ctx, message); err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// GetByRecipient retrieves every message addressed to the given user in
// natural collection order.
func (r *MongoMessageRepository) GetByRecipient(ctx context.Context, to string) ([]models.Message, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"to": to})
	if err != nil {
		return nil, fmt.Errorf("failed to get messages for user %s: %w", to, err)
	}
	messages := []models.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages for user %s: %w", to, err)
	}
	return messages, nil
}

// Delete removes a message by ID. A missing message is not an error.
func (r *MongoMessageRepository) Delete(ctx context.Context, id string) (*models.Message, error) {
	var message models.Message
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&message); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to delete message %s: %w", id, err)
	}
	return &message, nil
}
