package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAndGetUser(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created, err := s.CreateUser(ctx, "alice", "hash", "You are a pirate.")
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	byID, err := s.GetUserByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)
	assert.Equal(t, "hash", byID.HashedPassword)
	assert.Equal(t, "You are a pirate.", byID.Prompt)

	byName, err := s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)
}

func TestGetUserNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetUserByID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetUserByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.CreateUser(ctx, "bob", "first", "p1")
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, "bob", "second", "p2")
	assert.ErrorIs(t, err, ErrDuplicate)

	existing, err := s.GetUserByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "first", existing.HashedPassword)
	assert.Equal(t, "p1", existing.Prompt)
}

func TestConversationRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first := &Conversation{UserID: 1, Message: "hello", Response: "hi there"}
	require.NoError(t, s.CreateConversation(ctx, first))
	second := &Conversation{UserID: 1, Message: "again", Response: "sure"}
	require.NoError(t, s.CreateConversation(ctx, second))
	require.NoError(t, s.CreateConversation(ctx, &Conversation{UserID: 2, Message: "x", Response: "y"}))

	assert.NotZero(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	rows, err := s.ListConversationsByUserID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, first.ID, rows[0].ID)
	assert.Equal(t, "hello", rows[0].Message)
	assert.Equal(t, "hi there", rows[0].Response)
	assert.False(t, rows[0].CreatedAt.IsZero())
	assert.Equal(t, "again", rows[1].Message)
}

func TestListConversationsEmpty(t *testing.T) {
	s := newTestStore(t)

	rows, err := s.ListConversationsByUserID(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.CreateUser(ctx, "carol", "hash", DefaultPrompt)
	require.NoError(t, err)
	require.NoError(t, s.CreateConversation(ctx, &Conversation{UserID: 1, Message: "m", Response: "r"}))

	require.NoError(t, s.Reset(ctx))

	_, err = s.GetUserByUsername(ctx, "carol")
	assert.ErrorIs(t, err, ErrNotFound)
	rows, err := s.ListConversationsByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSchemaDefaultPromptIsVerbatim(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	assert.Equal(t, "あなたは優秀なアシスタントです。", DefaultPrompt)

	_, err := s.db.ExecContext(ctx, "INSERT INTO users (username, hashed_password) VALUES (?, ?)", "dave", "hash")
	require.NoError(t, err)
	user, err := s.GetUserByUsername(ctx, "dave")
	require.NoError(t, err)
	assert.Equal(t, DefaultPrompt, user.Prompt)
}
