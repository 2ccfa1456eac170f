// Package indexer rebuilds and inspects the manual document collection.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/promptdesk/chat-backend/internal/docx"
	"github.com/promptdesk/chat-backend/internal/metrics"
	"github.com/promptdesk/chat-backend/internal/vectorstore"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"

	documentExt = ".docx"
)

type Config struct {
	DocumentsDir    string
	Collection      string
	TelemetryOptOut bool
	TelemetryFile   string
}

type Result struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Count   int    `json:"count"`
}

type Indexer struct {
	cfg       Config
	builder   vectorstore.Builder
	ef        vectorstore.EmbeddingFunction
	telemetry *metrics.VectorStoreMetrics
	logger    zerolog.Logger
}

// NewIndexer wires an indexer. telemetry should be nil when cfg opts out.
func NewIndexer(cfg Config, builder vectorstore.Builder, ef vectorstore.EmbeddingFunction,
	telemetry *metrics.VectorStoreMetrics, logger zerolog.Logger) *Indexer {
	return &Indexer{
		cfg:       cfg,
		builder:   builder,
		ef:        ef,
		telemetry: telemetry,
		logger:    logger.With().Str("component", "indexer").Logger(),
	}
}

// Rebuild replaces the collection with one entry per document in the
// documents folder. Failures are reported in the Result, never returned.
func (ix *Indexer) Rebuild(ctx context.Context) Result {
	if ix.cfg.TelemetryOptOut {
		ix.logger.Info().Msg("vector store telemetry disabled")
	}

	count, err := ix.rebuild(ctx)
	ix.flushTelemetry()
	if err != nil {
		ix.logger.Error().Err(err).Msg("index rebuild failed")
		return Result{Status: StatusError, Message: err.Error()}
	}

	ix.logger.Info().Int("documents", count).Str("collection", ix.cfg.Collection).Msg("index rebuilt")
	return Result{Status: StatusSuccess, Message: "index rebuilt", Count: count}
}

func (ix *Indexer) rebuild(ctx context.Context) (count int, err error) {
	client, err := ix.builder.Build(ctx)
	if err != nil {
		return 0, fmt.Errorf("opening vector store: %w", err)
	}
	defer func() {
		if err != nil {
			if abortErr := ix.builder.Abort(ctx); abortErr != nil {
				ix.logger.Warn().Err(abortErr).Msg("failed to discard partial index")
			}
		}
	}()

	err = client.DeleteCollection(ctx, ix.cfg.Collection)
	if err != nil && !errors.Is(err, vectorstore.ErrCollectionNotFound) {
		return 0, fmt.Errorf("deleting collection %s: %w", ix.cfg.Collection, err)
	}

	collection, err := client.CreateCollection(ctx, ix.cfg.Collection, ix.ef)
	if err != nil {
		return 0, err
	}

	paths, err := documentPaths(ix.cfg.DocumentsDir)
	if err != nil {
		return 0, err
	}

	for _, path := range paths {
		text, err := documentText(path)
		if err != nil {
			return 0, err
		}
		title := strings.TrimSuffix(filepath.Base(path), documentExt)
		ix.logger.Debug().Str("title", title).Str("path", path).Msg("adding document")

		err = collection.Add(ctx,
			[]string{title},
			[]string{text},
			[]map[string]any{{"title": title, "path": path}})
		if err != nil {
			return 0, fmt.Errorf("adding %s: %w", path, err)
		}
	}

	count, err = collection.Count(ctx)
	if err != nil {
		return 0, err
	}
	if err = ix.builder.Publish(ctx); err != nil {
		return 0, fmt.Errorf("publishing index: %w", err)
	}
	return count, nil
}

func (ix *Indexer) flushTelemetry() {
	if ix.telemetry == nil || ix.cfg.TelemetryFile == "" {
		return
	}
	if err := ix.telemetry.WriteTextfile(ix.cfg.TelemetryFile); err != nil {
		ix.logger.Warn().Err(err).Msg("failed to write vector store telemetry")
	}
}

// documentPaths lists the .docx files directly inside dir that are, or link to,
// regular files, sorted by name.
func documentPaths(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading documents folder: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), documentExt) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		// Stat follows symlinks.
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func documentText(path string) (string, error) {
	paragraphs, err := docx.Paragraphs(path)
	if err != nil {
		return "", err
	}

	kept := paragraphs[:0]
	for _, p := range paragraphs {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n"), nil
}
