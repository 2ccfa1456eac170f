package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3" // SQLite driver
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS users (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        username TEXT UNIQUE NOT NULL,
        hashed_password TEXT NOT NULL,
        prompt TEXT NOT NULL DEFAULT '` + DefaultPrompt + `'
    );
    CREATE INDEX IF NOT EXISTS ix_users_username ON users (username);

    CREATE TABLE IF NOT EXISTS conversation_history (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        user_id INTEGER NOT NULL,
        message TEXT NOT NULL,
        response TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (user_id) REFERENCES users (id)
    );
    CREATE INDEX IF NOT EXISTS ix_conversation_history_user_id ON conversation_history (user_id);
    `
	_, err := s.db.Exec(schema)
	return err
}

// Reset drops both tables and recreates them empty.
func (s *SQLiteStore) Reset(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
    DROP TABLE IF EXISTS conversation_history;
    DROP TABLE IF EXISTS users;
    `)
	if err != nil {
		return fmt.Errorf("failed to drop tables: %w", err)
	}
	if err := s.initSchema(); err != nil {
		return fmt.Errorf("failed to recreate schema: %w", err)
	}
	return nil
}

// User methods
func (s *SQLiteStore) CreateUser(ctx context.Context, username, hashedPassword, prompt string) (*User, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users (username, hashed_password, prompt) VALUES (?, ?, ?)",
		username, hashedPassword, prompt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("username %q: %w", username, ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read user id: %w", err)
	}
	return s.GetUserByID(ctx, id)
}

func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (*User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		"SELECT id, username, hashed_password, prompt FROM users WHERE id = ?", id))
}

func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		"SELECT id, username, hashed_password, prompt FROM users WHERE username = ?", username))
}

func (s *SQLiteStore) scanUser(row *sql.Row) (*User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Username, &user.HashedPassword, &user.Prompt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

// Conversation methods
func (s *SQLiteStore) CreateConversation(ctx context.Context, conv *Conversation) error {
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = time.Now()
	}

	stmt, err := s.db.PrepareContext(ctx,
		"INSERT INTO conversation_history (user_id, message, response, created_at) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare conversation insert: %w", err)
	}
	defer stmt.Close()

	res, err := stmt.ExecContext(ctx, conv.UserID, conv.Message, conv.Response, conv.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to execute conversation insert: %w", err)
	}
	conv.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read conversation id: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListConversationsByUserID(ctx context.Context, userID int64) ([]Conversation, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, message, response, created_at FROM conversation_history WHERE user_id = ? ORDER BY id ASC",
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer rows.Close()

	var conversations []Conversation
	for rows.Next() {
		var conv Conversation
		if err := rows.Scan(&conv.ID, &conv.UserID, &conv.Message, &conv.Response, &conv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation row: %w", err)
		}
		conversations = append(conversations, conv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate conversations: %w", err)
	}
	return conversations, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
