package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/promptdesk/chat-backend/internal/auth"
	"github.com/promptdesk/chat-backend/internal/store"
)

// UserProfile is the public view of a user; it never carries the password hash.
type UserProfile struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Prompt   string `json:"prompt"`
}

type UserService struct {
	dbStore *store.SQLiteStore
	logger  zerolog.Logger
}

func NewUserService(db *store.SQLiteStore, logger zerolog.Logger) *UserService {
	return &UserService{
		dbStore: db,
		logger:  logger.With().Str("component", "user_service").Logger(),
	}
}

// CreateUser registers username with a hashed password. A nil prompt selects store.DefaultPrompt.
func (s *UserService) CreateUser(ctx context.Context, username, password string, prompt *string) (*UserProfile, error) {
	_, err := s.dbStore.GetUserByUsername(ctx, username)
	if err == nil {
		return nil, ErrUsernameTaken
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	userPrompt := store.DefaultPrompt
	if prompt != nil {
		userPrompt = *prompt
	}

	user, err := s.dbStore.CreateUser(ctx, username, hashed, userPrompt)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("user created")
	return toProfile(user), nil
}

func (s *UserService) GetUser(ctx context.Context, userID int64) (*UserProfile, error) {
	user, err := s.lookup(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toProfile(user), nil
}

func (s *UserService) lookup(ctx context.Context, userID int64) (*store.User, error) {
	user, err := s.dbStore.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func toProfile(u *store.User) *UserProfile {
	return &UserProfile{ID: u.ID, Username: u.Username, Prompt: u.Prompt}
}
