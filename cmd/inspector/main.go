package main

import (
	"context"
	"log"
	"os"

	"github.com/promptdesk/chat-backend/internal/config"
	"github.com/promptdesk/chat-backend/internal/core"
	"github.com/promptdesk/chat-backend/internal/indexer"
	"github.com/promptdesk/chat-backend/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logg := logger.New(cfg)
	ctx := context.Background()

	llm, err := core.NewLLMProvider(ctx, cfg)
	if err != nil {
		logg.Fatal().Err(err).Msg("failed to initialize llm provider")
	}
	defer llm.Close()

	client, err := indexer.OpenStore(cfg.VectorStore, nil)
	if err != nil {
		logg.Fatal().Err(err).Msg("failed to open vector store")
	}
	defer client.Close()

	inspector := indexer.NewInspector(client, llm, cfg.VectorStore.Collection, logg)
	inspector.CheckContents(ctx, os.Stdout)
}
