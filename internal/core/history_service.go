package core

import (
	"context"
	"fmt"

	"github.com/promptdesk/chat-backend/internal/store"
)

type HistoryService struct {
	dbStore *store.SQLiteStore
}

func NewHistoryService(db *store.SQLiteStore) *HistoryService {
	return &HistoryService{dbStore: db}
}

// Save inserts a conversation row without checking that userID exists.
func (s *HistoryService) Save(ctx context.Context, userID int64, message, response string) (*store.Conversation, error) {
	conv := store.Conversation{
		UserID:   userID,
		Message:  message,
		Response: response,
	}
	if err := s.dbStore.CreateConversation(ctx, &conv); err != nil {
		return nil, fmt.Errorf("failed to save conversation: %w", err)
	}
	return &conv, nil
}

// ListByUser returns ErrHistoryNotFound for an empty result, whether or not the user exists.
func (s *HistoryService) ListByUser(ctx context.Context, userID int64) ([]store.Conversation, error) {
	history, err := s.dbStore.ListConversationsByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	if len(history) == 0 {
		return nil, ErrHistoryNotFound
	}
	return history, nil
}
