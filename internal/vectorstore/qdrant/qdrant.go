// Package qdrant stores collections in a Qdrant server. Entry ids are mapped
// to UUIDv5 point ids; the entry id itself is kept in the payload.
package qdrant

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/promptdesk/chat-backend/internal/metrics"
	"github.com/promptdesk/chat-backend/internal/vectorstore"
)

const (
	backendName = "qdrant"
	defaultPort = 6334

	payloadEntryID  = "entry_id"
	payloadDocument = "document"
)

type Config struct {
	// URL is host:port, optionally with an http or https scheme. Without a
	// scheme the connection is plaintext.
	URL        string
	APIKey     string
	VectorSize uint64
}

type Client struct {
	client     *qdrant.Client
	vectorSize uint64
	metrics    *metrics.VectorStoreMetrics
}

// New connects to Qdrant. m may be nil.
func New(cfg Config, m *metrics.VectorStoreMetrics) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("qdrant url is required")
	}
	if cfg.VectorSize == 0 {
		return nil, errors.New("qdrant vector size is required")
	}

	host, port, useTLS, err := parseAddress(cfg.URL)
	if err != nil {
		return nil, err
	}

	qc, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}
	return &Client{client: qc, vectorSize: cfg.VectorSize, metrics: m}, nil
}

func parseAddress(raw string) (host string, port int, useTLS bool, err error) {
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", 0, false, fmt.Errorf("failed to parse qdrant url: %w", err)
	}

	host = u.Hostname()
	if host == "" {
		return "", 0, false, fmt.Errorf("qdrant url %q has no host", raw)
	}
	port = defaultPort
	if u.Port() != "" {
		if port, err = strconv.Atoi(u.Port()); err != nil {
			return "", 0, false, fmt.Errorf("invalid port: %w", err)
		}
	}
	return host, port, u.Scheme == "https", nil
}

// pointID derives a stable point id, since Qdrant only accepts integers or UUIDs.
func pointID(entryID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(entryID)).String()
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) ListCollections(ctx context.Context) (names []string, err error) {
	defer func() { c.metrics.RecordOperation(backendName, "list_collections", err) }()

	names, err = c.client.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing qdrant collections: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

func (c *Client) CreateCollection(ctx context.Context, name string, ef vectorstore.EmbeddingFunction) (_ vectorstore.Collection, err error) {
	defer func() { c.metrics.RecordOperation(backendName, "create_collection", err) }()

	err = c.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     c.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("creating qdrant collection %s: %w", name, err)
	}
	return &collection{client: c, name: name, ef: ef}, nil
}

func (c *Client) GetCollection(ctx context.Context, name string, ef vectorstore.EmbeddingFunction) (_ vectorstore.Collection, err error) {
	defer func() { c.metrics.RecordOperation(backendName, "get_collection", err) }()

	exists, err := c.client.CollectionExists(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("checking qdrant collection %s: %w", name, err)
	}
	if !exists {
		return nil, fmt.Errorf("%s: %w", name, vectorstore.ErrCollectionNotFound)
	}
	return &collection{client: c, name: name, ef: ef}, nil
}

func (c *Client) DeleteCollection(ctx context.Context, name string) (err error) {
	defer func() { c.metrics.RecordOperation(backendName, "delete_collection", err) }()

	exists, err := c.client.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("checking qdrant collection %s: %w", name, err)
	}
	if !exists {
		return fmt.Errorf("%s: %w", name, vectorstore.ErrCollectionNotFound)
	}
	if err := c.client.DeleteCollection(ctx, name); err != nil {
		return fmt.Errorf("deleting qdrant collection %s: %w", name, err)
	}
	return nil
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

	points := make([]*qdrant.PointStruct, 0, len(ids))
	for i, id := range ids {
		payload, err := buildPayload(id, documents[i], metadatas[i])
		if err != nil {
			return err
		}
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(pointID(id)),
			Vectors: qdrant.NewVectors(embeddings[i]...),
			Payload: payload,
		})
	}

	_, err = col.client.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: col.name,
		Wait:           qdrant.PtrOf(true),
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("upserting qdrant points: %w", err)
	}
	col.client.metrics.RecordEntries(backendName, col.name, len(ids))
	return nil
}

func buildPayload(id, document string, metadata map[string]any) (map[string]*qdrant.Value, error) {
	fields := make(map[string]any, len(metadata)+2)
	for k, v := range metadata {
		fields[k] = v
	}
	fields[payloadEntryID] = id
	fields[payloadDocument] = document

	payload, err := qdrant.TryValueMap(fields)
	if err != nil {
		return nil, fmt.Errorf("encoding payload for %s: %w", id, err)
	}
	return payload, nil
}

func (col *collection) Count(ctx context.Context) (n int, err error) {
	defer func() { col.client.metrics.RecordOperation(backendName, "count", err) }()

	count, err := col.client.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: col.name,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("counting qdrant points: %w", err)
	}
	return int(count), nil
}

func (col *collection) Get(ctx context.Context) (entries []vectorstore.Entry, err error) {
	defer func() { col.client.metrics.RecordOperation(backendName, "get", err) }()

	count, err := col.client.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: col.name,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return nil, fmt.Errorf("counting qdrant points: %w", err)
	}
	if count == 0 {
		return nil, nil
	}

	limit := uint32(count)
	points, err := col.client.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: col.name,
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, fmt.Errorf("scrolling qdrant points: %w", err)
	}

	entries = make([]vectorstore.Entry, 0, len(points))
	for _, p := range points {
		entries = append(entries, entryFromPayload(p.GetId().GetUuid(), p.GetPayload(), p.GetVectors().GetVector().GetData()))
	}
	return entries, nil
}

func entryFromPayload(pointID string, payload map[string]*qdrant.Value, vector []float32) vectorstore.Entry {
	e := vectorstore.Entry{
		ID:        pointID,
		Metadata:  make(map[string]any, len(payload)),
		Embedding: vector,
	}
	for k, v := range payload {
		switch k {
		case payloadEntryID:
			if s := v.GetStringValue(); s != "" {
				e.ID = s
			}
		case payloadDocument:
			e.Document = v.GetStringValue()
		default:
			e.Metadata[k] = extractValue(v)
		}
	}
	return e
}

func extractValue(v *qdrant.Value) any {
	if v == nil {
		return nil
	}

	switch val := v.Kind.(type) {
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	case *qdrant.Value_ListValue:
		items := make([]any, 0, len(val.ListValue.GetValues()))
		for _, item := range val.ListValue.GetValues() {
			items = append(items, extractValue(item))
		}
		return items
	case *qdrant.Value_StructValue:
		fields := make(map[string]any, len(val.StructValue.GetFields()))
		for k, item := range val.StructValue.GetFields() {
			fields[k] = extractValue(item)
		}
		return fields
	default:
		return nil
	}
}

// Builder rebuilds in place: the server owns the data, so there is no
// staging copy to swap. Publish and Abort leave the client open.
type Builder struct {
	client *Client
}

func NewBuilder(client *Client) *Builder {
	return &Builder{client: client}
}

func (b *Builder) Build(ctx context.Context) (vectorstore.Client, error) {
	return b.client, nil
}

func (b *Builder) Publish(ctx context.Context) error { return nil }

func (b *Builder) Abort(ctx context.Context) error { return nil }

var (
	_ vectorstore.Client     = (*Client)(nil)
	_ vectorstore.Collection = (*collection)(nil)
	_ vectorstore.Builder    = (*Builder)(nil)
)
