package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"msgservice/internal/models"
	"msgservice/internal/repositories"
	"msgservice/internal/storage"
)

// SendInput carries the fields of a new message.
type SendInput struct {
	To      string
	Message string
	Image   string // optional base64
}

// MessageService handles sending, listing and deleting messages.
type MessageService struct {
	messageRepo repositories.MessageRepository
	attachments storage.Store
	events      EventPublisher
	now         func() time.Time
}

// NewMessageService creates a new MessageService. events may be nil.
func NewMessageService(messageRepo repositories.MessageRepository, attachments storage.Store, events EventPublisher) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		attachments: attachments,
		events:      events,
		now:         time.Now,
	}
}

// Send stores a message from the caller to in.To. The recipient is not
// checked for existence. When an image is given it is stored first and the
// message is only persisted if that succeeded.
func (s *MessageService) Send(ctx context.Context, identity Identity, in SendInput) (*models.Message, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	to := strings.TrimSpace(in.To)
	text := strings.TrimSpace(in.Message)
	if to == "" || text == "" {
		return nil, fmt.Errorf("%w: recipient and message are required", ErrBadRequest)
	}

	message := &models.Message{
		From:    identity.UserID,
		To:      to,
		Message: text,
	}

	if in.Image != "" {
		ref, err := s.attachments.Write(ctx, in.Image)
		if err != nil {
			return nil, attachmentError(err)
		}
		message.Image = &ref
	}

	message.Sent = models.SentTimestamp(s.now())
	if err := s.messageRepo.Create(ctx, message); err != nil {
		if message.Image != nil {
			removeAttachment(ctx, s.attachments, *message.Image)
		}
		return nil, fmt.Errorf("error sending message to %s: %w", to, err)
	}

	publishEvent(s.events, EventMessageSent, map[string]interface{}{
		"messageID": message.ID,
		"from":      message.From,
		"to":        message.To,
	})
	return message, nil
}

// ListForRecipient returns the messages addressed to the caller.
func (s *MessageService) ListForRecipient(ctx context.Context, identity Identity) ([]models.Message, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	messages, err := s.messageRepo.GetByRecipient(ctx, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("error getting messages for user %s: %w", identity.UserID, err)
	}
	if messages == nil {
		messages = []models.Message{}
	}
	return messages, nil
}

// Delete removes a message by id for any authenticated caller. Unknown ids
// succeed. The message's image, if any, is removed best-effort.
//
// TODO: restrict deletion to the message's sender or recipient once clients
// stop relying on deleting arbitrary ids.
func (s *MessageService) Delete(ctx context.Context, identity Identity, id string) error {
	if err := requireIdentity(identity); err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("%w: message id is required", ErrBadRequest)
	}

	deleted, err := s.messageRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("error deleting message %s: %w", id, err)
	}
	if deleted == nil {
		return nil
	}

	if deleted.Image != nil && *deleted.Image != "" {
		removeAttachment(ctx, s.attachments, *deleted.Image)
	}
	publishEvent(s.events, EventMessageDeleted, map[string]interface{}{
		"messageID": deleted.ID,
		"deletedBy": identity.UserID,
	})
	return nil
}
