package core

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptdesk/chat-backend/internal/auth"
	"github.com/promptdesk/chat-backend/internal/store"
)

type fakeCompletion struct {
	reply    string
	err      error
	received [][]ChatMessage
}

func (f *fakeCompletion) Name() string { return "fake" }

func (f *fakeCompletion) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	f.received = append(f.received, messages)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "core.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func strPtr(s string) *string { return &s }

func TestCreateUserDefaultsPrompt(t *testing.T) {
	ctx := context.Background()
	db := newTestStore(t)
	users := NewUserService(db, zerolog.Nop())

	profile, err := users.CreateUser(ctx, "alice", "pw", nil)
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, store.DefaultPrompt, profile.Prompt)

	stored, err := db.GetUserByID(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, store.DefaultPrompt, stored.Prompt)
	assert.NotEqual(t, "pw", stored.HashedPassword)
	assert.True(t, auth.CheckPasswordHash("pw", stored.HashedPassword))
}

func TestCreateUserCustomPrompt(t *testing.T) {
	users := NewUserService(newTestStore(t), zerolog.Nop())

	profile, err := users.CreateUser(context.Background(), "bob", "pw", strPtr("You are a support agent."))
	require.NoError(t, err)
	assert.Equal(t, "You are a support agent.", profile.Prompt)
}

func TestCreateUserConflictKeepsExistingRow(t *testing.T) {
	ctx := context.Background()
	db := newTestStore(t)
	users := NewUserService(db, zerolog.Nop())

	first, err := users.CreateUser(ctx, "carol", "pw1", strPtr("first"))
	require.NoError(t, err)

	_, err = users.CreateUser(ctx, "carol", "pw2", strPtr("second"))
	assert.ErrorIs(t, err, ErrUsernameTaken)

	stored, err := db.GetUserByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", stored.Prompt)
	assert.True(t, auth.CheckPasswordHash("pw1", stored.HashedPassword))
}

func TestGetUser(t *testing.T) {
	ctx := context.Background()
	users := NewUserService(newTestStore(t), zerolog.Nop())

	created, err := users.CreateUser(ctx, "dave", "pw", nil)
	require.NoError(t, err)

	got, err := users.GetUser(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = users.GetUser(ctx, created.ID+100)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestChatQueryStoresExchange(t *testing.T) {
	ctx := context.Background()
	db := newTestStore(t)
	users := NewUserService(db, zerolog.Nop())
	llm := &fakeCompletion{reply: "Use the returns form."}
	chat := NewChatService(db, users, llm, zerolog.Nop())

	user, err := users.CreateUser(ctx, "erin", "pw", strPtr("You are a customer support AI."))
	require.NoError(t, err)

	resp, err := chat.Query(ctx, "How do I return an item?", user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Use the returns form.", resp.Response)

	require.Len(t, llm.received, 1)
	assert.Equal(t, []ChatMessage{
		{Role: RoleSystem, Content: "You are a customer support AI."},
		{Role: RoleUser, Content: "How do I return an item?"},
	}, llm.received[0])

	rows, err := db.ListConversationsByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "How do I return an item?", rows[0].Message)
	assert.Equal(t, "Use the returns form.", rows[0].Response)
	assert.False(t, rows[0].CreatedAt.IsZero())
}

func TestChatQueryUnknownUser(t *testing.T) {
	ctx := context.Background()
	db := newTestStore(t)
	llm := &fakeCompletion{reply: "unused"}
	chat := NewChatService(db, NewUserService(db, zerolog.Nop()), llm, zerolog.Nop())

	_, err := chat.Query(ctx, "hello", 99)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Empty(t, llm.received)

	rows, err := db.ListConversationsByUserID(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestChatQueryCompletionFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	db := newTestStore(t)
	users := NewUserService(db, zerolog.Nop())
	chat := NewChatService(db, users, &fakeCompletion{err: errors.New("upstream unavailable")}, zerolog.Nop())

	user, err := users.CreateUser(ctx, "frank", "pw", nil)
	require.NoError(t, err)

	_, err = chat.Query(ctx, "hello", user.ID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUserNotFound)
	assert.Contains(t, err.Error(), "upstream unavailable")

	rows, err := db.ListConversationsByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestHistorySaveAndList(t *testing.T) {
	ctx := context.Background()
	history := NewHistoryService(newTestStore(t))

	saved, err := history.Save(ctx, 1, "hello", "hi there")
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())

	rows, err := history.ListByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, saved.ID, rows[0].ID)
	assert.Equal(t, int64(1), rows[0].UserID)
	assert.Equal(t, "hello", rows[0].Message)
	assert.Equal(t, "hi there", rows[0].Response)
}

func TestHistoryEmptyIsNotFoundEvenForExistingUser(t *testing.T) {
	ctx := context.Background()
	db := newTestStore(t)
	users := NewUserService(db, zerolog.Nop())
	history := NewHistoryService(db)

	user, err := users.CreateUser(ctx, "gina", "pw", nil)
	require.NoError(t, err)

	_, err = history.ListByUser(ctx, user.ID)
	assert.ErrorIs(t, err, ErrHistoryNotFound)

	_, err = history.ListByUser(ctx, 12345)
	assert.ErrorIs(t, err, ErrHistoryNotFound)
}
