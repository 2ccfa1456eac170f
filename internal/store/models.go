package store

import "time"

// DefaultPrompt is the persona stored for users who sign up without one.
const DefaultPrompt = "あなたは優秀なアシスタントです。"

type User struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	HashedPassword string `json:"-"` // Do not expose this in JSON responses
	Prompt         string `json:"prompt"`
}

type Conversation struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}
