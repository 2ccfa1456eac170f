package main

import (
	"context"
	"log"

	"github.com/promptdesk/chat-backend/internal/config"
	"github.com/promptdesk/chat-backend/internal/logger"
	"github.com/promptdesk/chat-backend/internal/store"
)

// initdb drops and recreates the users and conversation_history tables.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logg := logger.New(cfg)

	dbStore, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		logg.Fatal().Err(err).Msg("failed to open database")
	}
	defer dbStore.Close()

	logg.Info().Str("database", cfg.DatabaseURL).Msg("initializing database")
	if err := dbStore.Reset(context.Background()); err != nil {
		logg.Fatal().Err(err).Msg("failed to reset database")
	}
	logg.Info().Msg("database rebuilt")
}
