package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/reelstack/apiserver/internal/store"
	"github.com/reelstack/apiserver/types"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
}

// ProfileStorage stores uploaded profile pictures and serves them publicly.
type ProfileStorage interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	PublicURL(key string) string
}

// RegisterInput carries the registration form fields.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Address  string
	Phone    string
}

// ProfilePicture carries an uploaded avatar file.
type ProfilePicture struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// UserService encapsulates account use-cases.
type UserService struct {
	repo    UserRepository
	storage ProfileStorage
	events  EventPublisher
	log     zerolog.Logger
}

func NewUserService(repo UserRepository, storage ProfileStorage, events EventPublisher, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, storage: storage, events: events, log: log}
}

// Register creates a new account. A duplicate email yields ErrEmailTaken.
// When a profile picture is given it is uploaded to object storage and its
// public URL stored on the user.
func (s *UserService) Register(ctx context.Context, input RegisterInput, picture *ProfilePicture) (types.User, error) {
	if _, err := s.repo.GetByEmail(ctx, input.Email); err == nil {
		return types.User{}, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return types.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := types.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hash),
		Address:      input.Address,
		Phone:        input.Phone,
		Favorites:    []string{},
	}

	if picture != nil && s.storage != nil {
		key := fmt.Sprintf("%d_%s", time.Now().UnixNano(), picture.Filename)
		if err := s.storage.Put(ctx, key, picture.Content, picture.Size, picture.ContentType); err != nil {
			return types.User{}, fmt.Errorf("upload profile picture: %w", err)
		}
		user.ProfilePicture = s.storage.PublicURL(key)
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return types.User{}, ErrEmailTaken
		}
		return types.User{}, err
	}

	s.publishRegistered(ctx, created)

	return created, nil
}

// Authenticate verifies the credentials and returns the matching user.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (types.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.User{}, ErrInvalidCredentials
	}

	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) publishRegistered(ctx context.Context, user types.User) {
	if s.events == nil {
		return
	}
	event := types.UserRegisteredEvent{
		UserID:       user.ID,
		Email:        user.Email,
		RegisteredAt: user.CreatedAt,
	}
	if err := publishJSON(ctx, s.events, ChannelUserRegistered, event); err != nil {
		s.log.Warn().Err(err).Int("user_id", user.ID).Msg("publish registered event failed")
	}
}
