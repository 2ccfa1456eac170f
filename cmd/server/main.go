package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/promptdesk/chat-backend/internal/api"
	"github.com/promptdesk/chat-backend/internal/config"
	"github.com/promptdesk/chat-backend/internal/core"
	"github.com/promptdesk/chat-backend/internal/logger"
	"github.com/promptdesk/chat-backend/internal/store"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup logging
	logg := logger.New(cfg)
	logg.Debug().Msg("service starting in debug mode")

	// Initialize database store
	dbStore, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		logg.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer dbStore.Close()

	// Initialize LLM provider
	llm, err := core.NewLLMProvider(context.Background(), cfg)
	if err != nil {
		logg.Fatal().Err(err).Msg("failed to initialize llm provider")
	}
	defer llm.Close()

	// Initialize services
	userService := core.NewUserService(dbStore, logg)
	chatService := core.NewChatService(dbStore, userService, llm, logg)
	historyService := core.NewHistoryService(dbStore)

	// Initialize API Handler and Router
	apiHandler := api.NewAPIHandler(userService, chatService, historyService, logg)
	router := api.NewRouter(apiHandler, logg)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // completion calls can take time
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		logg.Info().Str("addr", srv.Addr).Str("provider", llm.Name()).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Fatal().Err(err).Str("addr", srv.Addr).Msg("could not listen")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logg.Info().Msg("shutting down server")

	// Give active connections time to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logg.Error().Err(err).Msg("server forced to shutdown")
		return
	}

	logg.Info().Msg("server exiting gracefully")
}
