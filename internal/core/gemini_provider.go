package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/promptdesk/chat-backend/internal/metrics"
)

type GeminiProvider struct {
	client         *genai.Client
	chatModel      string
	embeddingModel string
}

func NewGeminiProvider(ctx context.Context, apiKey, chatModel, embeddingModel string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiProvider{
		client:         client,
		chatModel:      chatModel,
		embeddingModel: embeddingModel,
	}, nil
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) Close() error {
	if p.client == nil {
		return nil
	}
	return p.client.Close()
}

func (p *GeminiProvider) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	text, err := p.complete(ctx, messages)
	metrics.RecordCompletion(p.Name(), err)
	return text, err
}

func (p *GeminiProvider) complete(ctx context.Context, messages []ChatMessage) (string, error) {
	model := p.client.GenerativeModel(p.chatModel)

	var system []genai.Part
	var turns []*genai.Content
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, genai.Text(m.Content))
		case RoleAssistant:
			turns = append(turns, &genai.Content{Role: "model", Parts: []genai.Part{genai.Text(m.Content)}})
		default:
			turns = append(turns, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(m.Content)}})
		}
	}
	if len(system) > 0 {
		model.SystemInstruction = &genai.Content{Parts: system}
	}
	if len(turns) == 0 || turns[len(turns)-1].Role != "user" {
		return "", fmt.Errorf("last message in exchange is not from 'user'")
	}

	chatSession := model.StartChat()
	chatSession.History = turns[:len(turns)-1]

	resp, err := chatSession.SendMessage(ctx, turns[len(turns)-1].Parts...)
	if err != nil {
		return "", fmt.Errorf("gemini chat SendMessage failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini response had no candidates")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		}
	}
	if responseText.Len() == 0 {
		return "", fmt.Errorf("gemini response contained no text")
	}
	return responseText.String(), nil
}

func (p *GeminiProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	em := p.client.EmbeddingModel(p.embeddingModel)

	vectors := make([][]float32, 0, len(texts))
	for i, text := range texts {
		res, err := em.EmbedContent(ctx, genai.Text(text))
		if err != nil {
			return nil, fmt.Errorf("gemini embedding request failed for input %d: %w", i, err)
		}
		if res.Embedding == nil || len(res.Embedding.Values) == 0 {
			return nil, fmt.Errorf("no embedding data received from gemini for input %d", i)
		}
		vectors = append(vectors, res.Embedding.Values)
	}
	return vectors, nil
}
