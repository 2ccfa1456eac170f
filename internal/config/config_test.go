package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, cfg.LLMProvider)
	assert.Equal(t, "gpt-3.5-turbo", cfg.ChatModel)
	assert.Equal(t, "text-embedding-ada-002", cfg.EmbeddingModel)
	assert.Equal(t, "app.db", cfg.DatabaseURL)
	assert.Equal(t, ":8000", cfg.Addr())
	assert.Equal(t, BackendLocal, cfg.VectorStore.Backend)
	assert.Equal(t, "./manual_db", cfg.VectorStore.PersistDir)
	assert.Equal(t, "manual_documents", cfg.VectorStore.Collection)
	assert.False(t, cfg.VectorStore.TelemetryOptOut)
	assert.Equal(t, uint64(1536), cfg.VectorStore.Size)
}

func TestLoadExplicitVectorSizeWins(t *testing.T) {
	t.Setenv("API_KEY", "key")
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("VECTOR_BACKEND", "qdrant")
	t.Setenv("VECTOR_SIZE", "256")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, uint64(256), cfg.VectorStore.Size)
}

func TestLoadGeminiModels(t *testing.T) {
	t.Setenv("API_KEY", "key")
	t.Setenv("LLM_PROVIDER", "Gemini")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderGemini, cfg.LLMProvider)
	assert.Equal(t, "gemini-1.5-flash-latest", cfg.ChatModel)
	assert.Equal(t, "text-embedding-004", cfg.EmbeddingModel)
	assert.Equal(t, uint64(768), cfg.VectorStore.Size)
}

func TestLoadTelemetryOptOut(t *testing.T) {
	t.Setenv("API_KEY", "key")
	t.Setenv("VECTOR_TELEMETRY_OPTOUT", "true")
	t.Setenv("VECTOR_PERSIST_DIR", "/tmp/index")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.VectorStore.TelemetryOptOut)
	assert.Equal(t, "/tmp/index", cfg.VectorStore.PersistDir)
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("API_KEY", "")

	_, err := Load()
	assert.ErrorContains(t, err, "API_KEY")
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("API_KEY", "key")
	t.Setenv("VECTOR_BACKEND", "chroma")

	_, err := Load()
	assert.ErrorContains(t, err, "VECTOR_BACKEND")
}
