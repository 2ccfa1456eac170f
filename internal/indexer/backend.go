package indexer

import (
	"fmt"

	"github.com/promptdesk/chat-backend/internal/config"
	"github.com/promptdesk/chat-backend/internal/metrics"
	"github.com/promptdesk/chat-backend/internal/vectorstore"
	"github.com/promptdesk/chat-backend/internal/vectorstore/local"
	"github.com/promptdesk/chat-backend/internal/vectorstore/qdrant"
)

// NewTelemetry returns nil when the configuration opts out.
func NewTelemetry(cfg config.VectorStoreConfig) *metrics.VectorStoreMetrics {
	if cfg.TelemetryOptOut {
		return nil
	}
	return metrics.NewVectorStoreMetrics()
}

// OpenStore opens the configured backend for reading.
func OpenStore(cfg config.VectorStoreConfig, m *metrics.VectorStoreMetrics) (vectorstore.Client, error) {
	switch cfg.Backend {
	case config.BackendLocal:
		return local.Open(cfg.PersistDir, m)
	case config.BackendQdrant:
		return qdrant.New(qdrantConfig(cfg), m)
	default:
		return nil, fmt.Errorf("unknown vector backend: %s", cfg.Backend)
	}
}

// NewBuilder returns the rebuild strategy for the configured backend and a
// function that releases whatever connection it holds.
func NewBuilder(cfg config.VectorStoreConfig, m *metrics.VectorStoreMetrics) (vectorstore.Builder, func() error, error) {
	switch cfg.Backend {
	case config.BackendLocal:
		return local.NewBuilder(cfg.PersistDir, m), func() error { return nil }, nil
	case config.BackendQdrant:
		client, err := qdrant.New(qdrantConfig(cfg), m)
		if err != nil {
			return nil, nil, err
		}
		return qdrant.NewBuilder(client), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown vector backend: %s", cfg.Backend)
	}
}

func qdrantConfig(cfg config.VectorStoreConfig) qdrant.Config {
	return qdrant.Config{
		URL:        cfg.QdrantURL,
		APIKey:     cfg.QdrantAPIKey,
		VectorSize: cfg.Size,
	}
}
