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

	telemetry := indexer.NewTelemetry(cfg.VectorStore)
	builder, release, err := indexer.NewBuilder(cfg.VectorStore, telemetry)
	if err != nil {
		logg.Fatal().Err(err).Msg("failed to initialize vector store")
	}
	defer release()

	ix := indexer.NewIndexer(indexer.Config{
		DocumentsDir:    cfg.DocumentsDir,
		Collection:      cfg.VectorStore.Collection,
		TelemetryOptOut: cfg.VectorStore.TelemetryOptOut,
		TelemetryFile:   cfg.VectorStore.TelemetryFile,
	}, builder, llm, telemetry, logg)

	result := ix.Rebuild(ctx)
	if result.Status != indexer.StatusSuccess {
		release()
		llm.Close()
		os.Exit(1)
	}
}
