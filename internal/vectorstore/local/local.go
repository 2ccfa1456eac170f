// Package local is a persistent vector store kept in a single SQLite file
// inside a directory, so the whole index can be removed or swapped as a unit.
package local

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/promptdesk/chat-backend/internal/metrics"
	"github.com/promptdesk/chat-backend/internal/vectorstore"
)

const (
	backendName = "local"
	dbFileName  = "index.sqlite3"
)

type Client struct {
	db      *sql.DB
	path    string
	metrics *metrics.VectorStoreMetrics

	closeOnce sync.Once
	closeErr  error
}

// Open opens or creates the store rooted at path. m may be nil.
func Open(path string, m *metrics.VectorStoreMetrics) (*Client, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(path, dbFileName))
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}
	// One writer at a time keeps SQLite from returning SQLITE_BUSY inside a rebuild.
	db.SetMaxOpenConns(1)

	c := &Client{db: db, path: path, metrics: m}
	if err := c.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing index schema: %w", err)
	}
	return c, nil
}

func (c *Client) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS collections (
		name TEXT PRIMARY KEY,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS entries (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		document TEXT NOT NULL,
		metadata TEXT NOT NULL,
		embedding TEXT NOT NULL,
		PRIMARY KEY (collection, id)
	);
	`
	_, err := c.db.Exec(schema)
	return err
}

// Path returns the directory the store lives in.
func (c *Client) Path() string { return c.path }

func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.db.Close()
	})
	return c.closeErr
}

func (c *Client) ListCollections(ctx context.Context) (names []string, err error) {
	defer func() { c.metrics.RecordOperation(backendName, "list_collections", err) }()

	rows, err := c.db.QueryContext(ctx, "SELECT name FROM collections ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("querying collections: %w", err)
	}
	defer rows.Close()

	names = []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning collection row: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (c *Client) CreateCollection(ctx context.Context, name string, ef vectorstore.EmbeddingFunction) (_ vectorstore.Collection, err error) {
	defer func() { c.metrics.RecordOperation(backendName, "create_collection", err) }()

	exists, err := c.collectionExists(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("collection %s already exists", name)
	}
	if _, err := c.db.ExecContext(ctx, "INSERT INTO collections (name) VALUES (?)", name); err != nil {
		return nil, fmt.Errorf("inserting collection: %w", err)
	}
	return &collection{client: c, name: name, ef: ef}, nil
}

func (c *Client) GetCollection(ctx context.Context, name string, ef vectorstore.EmbeddingFunction) (_ vectorstore.Collection, err error) {
	defer func() { c.metrics.RecordOperation(backendName, "get_collection", err) }()

	exists, err := c.collectionExists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%s: %w", name, vectorstore.ErrCollectionNotFound)
	}
	return &collection{client: c, name: name, ef: ef}, nil
}

func (c *Client) DeleteCollection(ctx context.Context, name string) (err error) {
	defer func() { c.metrics.RecordOperation(backendName, "delete_collection", err) }()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM collections WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("%s: %w", name, vectorstore.ErrCollectionNotFound)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM entries WHERE collection = ?", name); err != nil {
		return fmt.Errorf("deleting collection entries: %w", err)
	}
	return tx.Commit()
}

func (c *Client) collectionExists(ctx context.Context, name string) (bool, error) {
	var one int
	err := c.db.QueryRowContext(ctx, "SELECT 1 FROM collections WHERE name = ?", name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying collection: %w", err)
	}
	return true, nil
}

type collection struct {
	client *Client
	name   string
	ef     vectorstore.EmbeddingFunction
}

func (col *collection) Name() string { return col.name }

func (col *collection) Add(ctx context.Context, ids, documents []string, metadatas []map[string]any) (err error) {
	defer func() { col.client.metrics.RecordOperation(backendName, "add", err) }()

	if len(ids) != len(documents) || len(ids) != len(metadatas) {
		return fmt.Errorf("ids, documents and metadatas must have the same length (%d, %d, %d)",
			len(ids), len(documents), len(metadatas))
	}
	if len(ids) == 0 {
		return nil
	}
	if col.ef == nil {
		return fmt.Errorf("collection %s has no embedding function", col.name)
	}

	embeddings, err := col.ef.EmbedDocuments(ctx, documents)
	if err != nil {
		return fmt.Errorf("embedding documents: %w", err)
	}
	if len(embeddings) != len(documents) {
		return fmt.Errorf("embedding function returned %d vectors for %d documents", len(embeddings), len(documents))
	}

	tx, err := col.client.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO entries (collection, id, document, metadata, embedding)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, id := range ids {
		metadataJSON, err := json.Marshal(metadatas[i])
		if err != nil {
			return fmt.Errorf("encoding metadata for %s: %w", id, err)
		}
		embeddingJSON, err := json.Marshal(embeddings[i])
		if err != nil {
			return fmt.Errorf("encoding embedding for %s: %w", id, err)
		}
		if _, err := stmt.ExecContext(ctx, col.name, id, documents[i], string(metadataJSON), string(embeddingJSON)); err != nil {
			return fmt.Errorf("inserting entry %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing entries: %w", err)
	}
	col.client.metrics.RecordEntries(backendName, col.name, len(ids))
	return nil
}

func (col *collection) Count(ctx context.Context) (n int, err error) {
	defer func() { col.client.metrics.RecordOperation(backendName, "count", err) }()

	err = col.client.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries WHERE collection = ?", col.name).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return n, nil
}

func (col *collection) Get(ctx context.Context) (entries []vectorstore.Entry, err error) {
	defer func() { col.client.metrics.RecordOperation(backendName, "get", err) }()

	rows, err := col.client.db.QueryContext(ctx,
		"SELECT id, document, metadata, embedding FROM entries WHERE collection = ? ORDER BY rowid", col.name)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e vectorstore.Entry
		var metadataJSON, embeddingJSON string
		if err := rows.Scan(&e.ID, &e.Document, &metadataJSON, &embeddingJSON); err != nil {
			return nil, fmt.Errorf("scanning entry row: %w", err)
		}
		if err := json.Unmarshal([]byte(metadataJSON), &e.Metadata); err != nil {
			return nil, fmt.Errorf("decoding metadata for %s: %w", e.ID, err)
		}
		if err := json.Unmarshal([]byte(embeddingJSON), &e.Embedding); err != nil {
			return nil, fmt.Errorf("decoding embedding for %s: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

var (
	_ vectorstore.Client     = (*Client)(nil)
	_ vectorstore.Collection = (*collection)(nil)
)
