package core

import (
	"context"
	"fmt"

	"github.com/promptdesk/chat-backend/internal/config"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ChatMessage struct {
	Role    string
	Content string
}

// CompletionProvider turns a role-tagged exchange into generated text.
type CompletionProvider interface {
	Name() string
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}

// EmbeddingProvider maps texts to vectors, one per input, in input order.
type EmbeddingProvider interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// LLMProvider is a remote model service that serves both completions and embeddings.
type LLMProvider interface {
	CompletionProvider
	EmbeddingProvider
	Close() error
}

// NewLLMProvider builds the provider selected by cfg.LLMProvider.
func NewLLMProvider(ctx context.Context, cfg *config.Config) (LLMProvider, error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey, cfg.OpenAIBaseURL, cfg.ChatModel, cfg.EmbeddingModel), nil
	case config.ProviderGemini:
		return NewGeminiProvider(ctx, cfg.APIKey, cfg.ChatModel, cfg.EmbeddingModel)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.LLMProvider)
	}
}
