package indexer

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptdesk/chat-backend/internal/config"
	"github.com/promptdesk/chat-backend/internal/vectorstore/local"
)

func TestNewTelemetryHonoursOptOut(t *testing.T) {
	assert.Nil(t, NewTelemetry(config.VectorStoreConfig{TelemetryOptOut: true}))
	assert.NotNil(t, NewTelemetry(config.VectorStoreConfig{}))
}

func TestLocalBackendSelection(t *testing.T) {
	cfg := config.VectorStoreConfig{Backend: config.BackendLocal, PersistDir: filepath.Join(t.TempDir(), "manual_db")}

	builder, release, err := NewBuilder(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &local.Builder{}, builder)
	assert.NoError(t, release())

	client, err := OpenStore(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &local.Client{}, client)
	assert.NoError(t, client.Close())
}

func TestUnknownBackend(t *testing.T) {
	cfg := config.VectorStoreConfig{Backend: "chroma"}

	_, _, err := NewBuilder(cfg, nil)
	assert.Error(t, err)

	_, err = OpenStore(cfg, nil)
	assert.Error(t, err)
}
