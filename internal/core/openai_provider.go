package core

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/promptdesk/chat-backend/internal/metrics"
)

type OpenAIProvider struct {
	client         *openai.Client
	chatModel      string
	embeddingModel string
}

// NewOpenAIProvider creates a provider for the OpenAI API or a compatible endpoint when baseURL is set.
func NewOpenAIProvider(apiKey, baseURL, chatModel, embeddingModel string) *OpenAIProvider {
	clientCfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientCfg.BaseURL = baseURL
	}
	return &OpenAIProvider{
		client:         openai.NewClientWithConfig(clientCfg),
		chatModel:      chatModel,
		embeddingModel: embeddingModel,
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	text, err := p.complete(ctx, messages)
	metrics.RecordCompletion(p.Name(), err)
	return text, err
}

func (p *OpenAIProvider) complete(ctx context.Context, messages []ChatMessage) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:    p.chatModel,
		Messages: make([]openai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(p.embeddingModel),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embedding request failed: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai returned %d embeddings for %d inputs", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(texts) {
			return nil, fmt.Errorf("openai returned embedding with out of range index %d", item.Index)
		}
		vectors[item.Index] = item.Embedding
	}
	return vectors, nil
}

func (p *OpenAIProvider) Close() error { return nil }
