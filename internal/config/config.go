package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	BackendLocal  = "local"
	BackendQdrant = "qdrant"
)

type Config struct {
	ServiceName    string `env:"SERVICE_NAME" envDefault:"chat-backend"`
	Environment    string `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort       string `env:"HTTP_PORT" envDefault:"8000"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	DatabaseURL    string `env:"DATABASE_URL" envDefault:"app.db"`
	LLMProvider    string `env:"LLM_PROVIDER" envDefault:"openai"`
	APIKey         string `env:"API_KEY"`
	OpenAIBaseURL  string `env:"OPENAI_BASE_URL"`
	ChatModel      string `env:"CHAT_MODEL"`
	EmbeddingModel string `env:"EMBEDDING_MODEL"`
	DocumentsDir   string `env:"DOCUMENTS_DIR" envDefault:"./documents"`

	VectorStore VectorStoreConfig `envPrefix:"VECTOR_"`
}

// VectorStoreConfig configures where the document index lives.
type VectorStoreConfig struct {
	Backend         string `env:"BACKEND" envDefault:"local"`
	PersistDir      string `env:"PERSIST_DIR" envDefault:"./manual_db"`
	Collection      string `env:"COLLECTION" envDefault:"manual_documents"`
	TelemetryOptOut bool   `env:"TELEMETRY_OPTOUT" envDefault:"false"`
	TelemetryFile   string `env:"TELEMETRY_FILE" envDefault:"index_telemetry.prom"`
	QdrantURL       string `env:"QDRANT_URL" envDefault:"localhost:6334"`
	QdrantAPIKey    string `env:"QDRANT_API_KEY"`
	Size            uint64 `env:"SIZE"` // defaults to the embedding model's dimension
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	cfg.VectorStore.Backend = strings.ToLower(strings.TrimSpace(cfg.VectorStore.Backend))
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	switch cfg.LLMProvider {
	case ProviderGemini:
		if cfg.ChatModel == "" {
			cfg.ChatModel = "gemini-1.5-flash-latest"
		}
		if cfg.EmbeddingModel == "" {
			cfg.EmbeddingModel = "text-embedding-004"
		}
		if cfg.VectorStore.Size == 0 {
			cfg.VectorStore.Size = 768
		}
	default:
		if cfg.ChatModel == "" {
			cfg.ChatModel = "gpt-3.5-turbo"
		}
		if cfg.EmbeddingModel == "" {
			cfg.EmbeddingModel = "text-embedding-ada-002"
		}
		if cfg.VectorStore.Size == 0 {
			cfg.VectorStore.Size = 1536
		}
	}
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("API_KEY environment variable is required")
	}
	if c.LLMProvider != ProviderOpenAI && c.LLMProvider != ProviderGemini {
		return fmt.Errorf("unsupported LLM_PROVIDER %q", c.LLMProvider)
	}
	if c.VectorStore.Backend != BackendLocal && c.VectorStore.Backend != BackendQdrant {
		return fmt.Errorf("unsupported VECTOR_BACKEND %q", c.VectorStore.Backend)
	}
	if c.VectorStore.Collection == "" {
		return fmt.Errorf("VECTOR_COLLECTION must not be empty")
	}
	return nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%s", c.HTTPPort)
}
