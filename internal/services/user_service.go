package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"msgservice/internal/models"
	"msgservice/internal/repositories"
	"msgservice/internal/storage"
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Name     string
	Password string
	Image    string // base64
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	ID    string
	Name  string
	Image string
	Token string
}

// UserService handles registration, login, listing and avatar changes.
type UserService struct {
	userRepo    repositories.UserRepository
	attachments storage.Store
	tokens      *TokenService
	hasher      PasswordHasher
	events      EventPublisher
}

// NewUserService creates a new UserService. events may be nil.
func NewUserService(userRepo repositories.UserRepository, attachments storage.Store, tokens *TokenService, hasher PasswordHasher, events EventPublisher) *UserService {
	return &UserService{
		userRepo:    userRepo,
		attachments: attachments,
		tokens:      tokens,
		hasher:      hasher,
		events:      events,
	}
}

// Register validates the input, stores the avatar and creates the user. A
// user record is only created once its avatar is stored, and the avatar is
// removed again if the record cannot be created.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Password == "" || in.Image == "" {
		return nil, fmt.Errorf("%w: name or password or image not found", ErrBadRequest)
	}
	if !namePattern.MatchString(name) {
		return nil, fmt.Errorf("%w: name must contain only letters and digits", ErrBadRequest)
	}

	if existing, err := s.userRepo.GetByName(ctx, name); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: name '%s' already taken", ErrConflict, name)
	} else if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check user name: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	imageRef, err := s.attachments.Write(ctx, in.Image)
	if err != nil {
		return nil, attachmentError(err)
	}

	user := &models.User{Name: name, PasswordHash: hash, Image: imageRef}
	if err := s.userRepo.Create(ctx, user); err != nil {
		s.removeAttachment(ctx, imageRef)
		if errors.Is(err, repositories.ErrDuplicateName) {
			return nil, fmt.Errorf("%w: name '%s' already taken", ErrConflict, name)
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	publishEvent(s.events, EventUserRegistered, map[string]interface{}{
		"userID": user.ID,
		"name":   user.Name,
	})
	return user, nil
}

// Login checks the credentials and issues a token. Unknown names and wrong
// passwords produce the same error.
func (s *UserService) Login(ctx context.Context, name, password string) (*LoginResult, error) {
	if name == "" || password == "" {
		return nil, fmt.Errorf("%w: name or password not found", ErrBadRequest)
	}

	user, err := s.userRepo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !s.hasher.Compare(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{ID: user.ID, Name: user.Name, Image: user.Image, Token: token}, nil
}

// List returns every registered user.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// UpdateAvatar replaces the caller's avatar. A token whose user no longer
// exists is rejected with ErrUnauthorized. The record update is committed
// first; deleting the previous blob afterwards is best-effort, so a crash in
// between can leave an orphaned file.
func (s *UserService) UpdateAvatar(ctx context.Context, identity Identity, image string) error {
	if err := requireIdentity(identity); err != nil {
		return err
	}
	if image == "" {
		return fmt.Errorf("%w: image not found", ErrBadRequest)
	}

	user, err := s.userRepo.GetByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return fmt.Errorf("%w: user %s no longer exists", ErrUnauthorized, identity.UserID)
		}
		return fmt.Errorf("failed to load user %s: %w", identity.UserID, err)
	}

	newRef, err := s.attachments.Write(ctx, image)
	if err != nil {
		return attachmentError(err)
	}

	if err := s.userRepo.UpdateImage(ctx, user.ID, newRef); err != nil {
		s.removeAttachment(ctx, newRef)
		return fmt.Errorf("failed to update user %s: %w", user.ID, err)
	}

	if user.Image != "" && user.Image != newRef {
		s.removeAttachment(ctx, user.Image)
	}

	publishEvent(s.events, EventUserAvatarUpdated, map[string]interface{}{
		"userID": user.ID,
		"image":  newRef,
	})
	return nil
}

func (s *UserService) removeAttachment(ctx context.Context, ref string) {
	removeAttachment(ctx, s.attachments, ref)
}

// removeAttachment deletes a blob as cleanup after a committed (or aborted)
// mutation. Failures are logged and never surfaced.
func removeAttachment(ctx context.Context, store storage.Store, ref string) {
	if err := store.Remove(context.WithoutCancel(ctx), ref); err != nil {
		log.Printf("Error deleting attachment %s: %v", ref, err)
	}
}

// attachmentError maps undecodable payloads to ErrBadRequest and leaves
// everything else as an internal failure.
func attachmentError(err error) error {
	if errors.Is(err, storage.ErrInvalidPayload) || errors.Is(err, storage.ErrEmptyPayload) {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return fmt.Errorf("failed to store attachment: %w", err)
}
