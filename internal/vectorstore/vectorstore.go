// Package vectorstore defines the persistent document collection the indexer
// writes and the inspector reads. Backends live in subpackages.
package vectorstore

import (
	"context"
	"errors"
)

var ErrCollectionNotFound = errors.New("collection not found")

// EmbeddingFunction maps documents to vectors, one per input, in input order.
type EmbeddingFunction interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// Entry is one stored document.
type Entry struct {
	ID        string
	Document  string
	Metadata  map[string]any
	Embedding []float32
}

// Collection is a named set of entries. Add overwrites entries with the same ID.
type Collection interface {
	Name() string
	Add(ctx context.Context, ids, documents []string, metadatas []map[string]any) error
	Count(ctx context.Context) (int, error)
	Get(ctx context.Context) ([]Entry, error)
}

type Client interface {
	ListCollections(ctx context.Context) ([]string, error)
	CreateCollection(ctx context.Context, name string, ef EmbeddingFunction) (Collection, error)
	GetCollection(ctx context.Context, name string, ef EmbeddingFunction) (Collection, error)
	DeleteCollection(ctx context.Context, name string) error
	Close() error
}

// Builder hands out an empty store for a full rebuild. Publish makes it the
// live store; Abort throws it away.
type Builder interface {
	Build(ctx context.Context) (Client, error)
	Publish(ctx context.Context) error
	Abort(ctx context.Context) error
}

// MetadataString returns metadata[key] as a string, or fallback when absent.
func MetadataString(metadata map[string]any, key, fallback string) string {
	v, ok := metadata[key]
	if !ok || v == nil {
		return fallback
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fallback
}
