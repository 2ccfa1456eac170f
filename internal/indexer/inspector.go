package indexer

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/rs/zerolog"

	"github.com/promptdesk/chat-backend/internal/vectorstore"
)

const unsetMetadata = "unset"

type DocumentInfo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Path  string `json:"path"`
}

type Report struct {
	Collections []string       `json:"collections"`
	Found       bool           `json:"found"`
	Count       int            `json:"count"`
	Documents   []DocumentInfo `json:"documents"`
	Err         error          `json:"-"`
}

type Inspector struct {
	client     vectorstore.Client
	ef         vectorstore.EmbeddingFunction
	collection string
	logger     zerolog.Logger
}

func NewInspector(client vectorstore.Client, ef vectorstore.EmbeddingFunction, collection string, logger zerolog.Logger) *Inspector {
	return &Inspector{
		client:     client,
		ef:         ef,
		collection: collection,
		logger:     logger.With().Str("component", "inspector").Logger(),
	}
}

// CheckContents writes a readable dump of the store to w and returns the same
// data. It never modifies the store.
func (in *Inspector) CheckContents(ctx context.Context, w io.Writer) *Report {
	report := &Report{}
	if err := in.inspect(ctx, w, report); err != nil {
		in.logger.Error().Err(err).Msg("failed to read vector store")
		report.Err = err
	}
	return report
}

func (in *Inspector) inspect(ctx context.Context, w io.Writer, report *Report) error {
	names, err := in.client.ListCollections(ctx)
	if err != nil {
		return err
	}
	report.Collections = names
	fmt.Fprintf(w, "collections: %v\n", names)

	if !slices.Contains(names, in.collection) {
		fmt.Fprintf(w, "collection %q does not exist\n", in.collection)
		return nil
	}
	report.Found = true

	collection, err := in.client.GetCollection(ctx, in.collection, in.ef)
	if err != nil {
		return err
	}
	if report.Count, err = collection.Count(ctx); err != nil {
		return err
	}
	fmt.Fprintf(w, "collection %q documents: %d\n", in.collection, report.Count)

	entries, err := collection.Get(ctx)
	if err != nil {
		return err
	}
	for _, e := range entries {
		doc := DocumentInfo{
			ID:    e.ID,
			Title: vectorstore.MetadataString(e.Metadata, "title", unsetMetadata),
			Path:  vectorstore.MetadataString(e.Metadata, "path", unsetMetadata),
		}
		report.Documents = append(report.Documents, doc)
		fmt.Fprintf(w, "document id: %s, title: %s, path: %s\n", doc.ID, doc.Title, doc.Path)
	}
	return nil
}
