package services_test

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"os"
	"testing"

	"msgservice/internal/models"
	"msgservice/internal/repositories"
	"msgservice/internal/services"
	"msgservice/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMessageService_SendAndList(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	svc := services.NewMessageService(repositories.NewMockMessageRepository(), store, nil)
	ctx := context.Background()
	alice := services.Identity{UserID: "alice-id"}
	bob := services.Identity{UserID: "bob-id"}

	sent, err := svc.Send(ctx, alice, services.SendInput{To: bob.UserID, Message: "hi bob"})
	require.NoError(t, err)
	assert.NotEmpty(t, sent.ID)
	assert.Equal(t, alice.UserID, sent.From)
	assert.Nil(t, sent.Image)
	_, err = http.ParseTime(sent.Sent)
	assert.NoError(t, err, "sent should be an HTTP date")

	inbox, err := svc.ListForRecipient(ctx, bob)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, sent.ID, inbox[0].ID)
	assert.Equal(t, "hi bob", inbox[0].Message)

	empty, err := svc.ListForRecipient(ctx, alice)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestMessageService_SendWithImage(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	svc := services.NewMessageService(repositories.NewMockMessageRepository(), store, nil)
	photo := base64.StdEncoding.EncodeToString([]byte("photo"))

	sent, err := svc.Send(context.Background(), services.Identity{UserID: "a"}, services.SendInput{To: "b", Message: "look", Image: photo})
	require.NoError(t, err)
	require.NotNil(t, sent.Image)

	data, err := os.ReadFile(store.Path(*sent.Image))
	require.NoError(t, err)
	assert.Equal(t, "photo", string(data))
}

func TestMessageService_SendValidation(t *testing.T) {
	repo := new(MockMessageRepository)
	svc := services.NewMessageService(repo, new(MockAttachmentStore), nil)

	tests := []struct {
		name     string
		identity services.Identity
		in       services.SendInput
	}{
		{"no recipient", services.Identity{UserID: "a"}, services.SendInput{Message: "hi"}},
		{"blank message", services.Identity{UserID: "a"}, services.SendInput{To: "b", Message: "   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Send(context.Background(), tt.identity, tt.in)
			assert.ErrorIs(t, err, services.ErrBadRequest)
		})
	}
	repo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestMessageService_RequiresIdentity(t *testing.T) {
	repo := new(MockMessageRepository)
	svc := services.NewMessageService(repo, new(MockAttachmentStore), nil)
	ctx := context.Background()
	anonymous := services.Identity{}

	_, err := svc.Send(ctx, anonymous, services.SendInput{To: "b", Message: "hi"})
	assert.ErrorIs(t, err, services.ErrUnauthorized)
	_, err = svc.ListForRecipient(ctx, anonymous)
	assert.ErrorIs(t, err, services.ErrUnauthorized)
	assert.ErrorIs(t, svc.Delete(ctx, anonymous, "m1"), services.ErrUnauthorized)

	repo.AssertNotCalled(t, "Create", mock.Anything)
	repo.AssertNotCalled(t, "GetByRecipient", mock.Anything)
	repo.AssertNotCalled(t, "Delete", mock.Anything)
}

func TestMessageService_SendImageFailureAborts(t *testing.T) {
	repo := new(MockMessageRepository)
	store := new(MockAttachmentStore)
	svc := services.NewMessageService(repo, store, nil)

	store.On("Write", "aGk=").Return("", errors.New("bucket unavailable")).Once()
	_, err := svc.Send(context.Background(), services.Identity{UserID: "a"}, services.SendInput{To: "b", Message: "hi", Image: "aGk="})
	assert.Error(t, err)

	store.On("Write", "%%%").Return("", storage.ErrInvalidPayload).Once()
	_, err = svc.Send(context.Background(), services.Identity{UserID: "a"}, services.SendInput{To: "b", Message: "hi", Image: "%%%"})
	assert.ErrorIs(t, err, services.ErrBadRequest)

	repo.AssertNotCalled(t, "Create", mock.Anything)
	store.AssertExpectations(t)
}

func TestMessageService_SendRecordFailureRemovesImage(t *testing.T) {
	repo := new(MockMessageRepository)
	store := new(MockAttachmentStore)
	svc := services.NewMessageService(repo, store, nil)

	store.On("Write", "aGk=").Return("img/1.jpg", nil).Once()
	repo.On("Create", mock.AnythingOfType("*models.Message")).Return(errors.New("insert failed")).Once()
	store.On("Remove", "img/1.jpg").Return(nil).Once()

	_, err := svc.Send(context.Background(), services.Identity{UserID: "a"}, services.SendInput{To: "b", Message: "hi", Image: "aGk="})
	assert.Error(t, err)
	repo.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestMessageService_SendPublishesEvent(t *testing.T) {
	repo := repositories.NewMockMessageRepository()
	events := new(MockPublisher)
	svc := services.NewMessageService(repo, new(MockAttachmentStore), events)

	events.On("Publish", "messaging", services.EventMessageSent, mock.MatchedBy(func(body []byte) bool {
		return len(body) > 0
	})).Return(nil).Once()

	_, err := svc.Send(context.Background(), services.Identity{UserID: "a"}, services.SendInput{To: "b", Message: "hi"})
	assert.NoError(t, err)
	events.AssertExpectations(t)
}

func TestMessageService_Delete(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	events := new(MockPublisher)
	svc := services.NewMessageService(repositories.NewMockMessageRepository(), store, events)
	ctx := context.Background()
	alice := services.Identity{UserID: "alice-id"}
	bob := services.Identity{UserID: "bob-id"}

	events.On("Publish", "messaging", mock.Anything, mock.Anything).Return(nil)

	photo := base64.StdEncoding.EncodeToString([]byte("photo"))
	sent, err := svc.Send(ctx, alice, services.SendInput{To: bob.UserID, Message: "hi", Image: photo})
	require.NoError(t, err)
	imagePath := store.Path(*sent.Image)

	require.NoError(t, svc.Delete(ctx, bob, sent.ID))

	inbox, err := svc.ListForRecipient(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, inbox)
	_, err = os.Stat(imagePath)
	assert.True(t, os.IsNotExist(err), "attachment should be deleted with the message")
	events.AssertCalled(t, "Publish", "messaging", services.EventMessageDeleted, mock.Anything)

	// Deleting again, or an id that never existed, still succeeds
	assert.NoError(t, svc.Delete(ctx, bob, sent.ID))
	assert.NoError(t, svc.Delete(ctx, bob, "does-not-exist"))
	assert.ErrorIs(t, svc.Delete(ctx, bob, ""), services.ErrBadRequest)
}

func TestMessageService_DeleteAttachmentFailureIsSwallowed(t *testing.T) {
	repo := new(MockMessageRepository)
	store := new(MockAttachmentStore)
	svc := services.NewMessageService(repo, store, nil)

	ref := "img/1.jpg"
	repo.On("Delete", "m1").Return(&models.Message{ID: "m1", Image: &ref}, nil).Once()
	store.On("Remove", ref).Return(errors.New("permission denied")).Once()

	assert.NoError(t, svc.Delete(context.Background(), services.Identity{UserID: "a"}, "m1"))
	store.AssertExpectations(t)
}

func TestMessageService_StoreErrors(t *testing.T) {
	repo := new(MockMessageRepository)
	svc := services.NewMessageService(repo, new(MockAttachmentStore), nil)

	repo.On("GetByRecipient", "a").Return(nil, errors.New("connection reset")).Once()
	_, err := svc.ListForRecipient(context.Background(), services.Identity{UserID: "a"})
	assert.Error(t, err)

	repo.On("Delete", "m1").Return(nil, errors.New("connection reset")).Once()
	assert.Error(t, svc.Delete(context.Background(), services.Identity{UserID: "a"}, "m1"))
	repo.AssertExpectations(t)
}
