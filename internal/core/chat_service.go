package core

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/promptdesk/chat-backend/internal/store"
)

type ChatResponse struct {
	Response string `json:"response"`
}

type ChatService struct {
	dbStore *store.SQLiteStore
	users   *UserService
	llm     CompletionProvider
	logger  zerolog.Logger
}

func NewChatService(db *store.SQLiteStore, users *UserService, llm CompletionProvider, logger zerolog.Logger) *ChatService {
	return &ChatService{
		dbStore: db,
		users:   users,
		llm:     llm,
		logger:  logger.With().Str("component", "chat_service").Logger(),
	}
}

// Query answers message with the user's stored prompt as the system turn and
// records the exchange. Nothing is recorded when the completion fails.
func (s *ChatService) Query(ctx context.Context, message string, userID int64) (*ChatResponse, error) {
	user, err := s.users.lookup(ctx, userID)
	if err != nil {
		return nil, err
	}

	exchange := []ChatMessage{
		{Role: RoleSystem, Content: user.Prompt},
		{Role: RoleUser, Content: message},
	}
	responseText, err := s.llm.Complete(ctx, exchange)
	if err != nil {
		return nil, fmt.Errorf("failed to get completion: %w", err)
	}

	entry := store.Conversation{
		UserID:   userID,
		Message:  message,
		Response: responseText,
	}
	if err := s.dbStore.CreateConversation(ctx, &entry); err != nil {
		return nil, fmt.Errorf("failed to save conversation: %w", err)
	}

	s.logger.Debug().
		Int64("user_id", userID).
		Int64("conversation_id", entry.ID).
		Str("provider", s.llm.Name()).
		Msg("chat exchange stored")

	return &ChatResponse{Response: responseText}, nil
}
