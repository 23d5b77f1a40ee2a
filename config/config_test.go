package config

import (
	"errors"
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	keys := []string{
		"OPENROUTER_API_KEY", "OPENROUTER_BASE_URL", "LLM_MODEL",
		"EMBEDDING_MODEL", "EMBEDDING_BASE_URL", "CHUNK_SIZE",
		"CHUNK_OVERLAP", "TOP_K", "VECTOR_STORE", "VECTOR_DB_PATH",
	}
	for _, k := range keys {
		os.Unsetenv(k)
	}

	cfg := Load()

	if cfg.OpenRouterBaseURL != DefaultLLMBaseURL {
		t.Errorf("expected default base URL %q, got %q", DefaultLLMBaseURL, cfg.OpenRouterBaseURL)
	}
	if cfg.LLMModel != DefaultLLMModel {
		t.Errorf("expected default model %q, got %q", DefaultLLMModel, cfg.LLMModel)
	}
	if cfg.EmbeddingModel != DefaultEmbeddingModel {
		t.Errorf("expected default embedding model %q, got %q", DefaultEmbeddingModel, cfg.EmbeddingModel)
	}
	if cfg.ChunkSize != DefaultChunkSize {
		t.Errorf("expected chunk size %d, got %d", DefaultChunkSize, cfg.ChunkSize)
	}
	if cfg.ChunkOverlap != DefaultChunkOverlap {
		t.Errorf("expected chunk overlap %d, got %d", DefaultChunkOverlap, cfg.ChunkOverlap)
	}
	if cfg.TopK != DefaultTopK {
		t.Errorf("expected top k %d, got %d", DefaultTopK, cfg.TopK)
	}
	if cfg.VectorStore != DefaultVectorStore {
		t.Errorf("expected vector store %q, got %q", DefaultVectorStore, cfg.VectorStore)
	}
}

func TestLoadOverrides(t *testing.T) {
	os.Setenv("CHUNK_SIZE", "1000")
	os.Setenv("CHUNK_OVERLAP", "100")
	os.Setenv("LLM_MODEL", "another/model")
	defer func() {
		os.Unsetenv("CHUNK_SIZE")
		os.Unsetenv("CHUNK_OVERLAP")
		os.Unsetenv("LLM_MODEL")
	}()

	cfg := Load()

	if cfg.ChunkSize != 1000 {
		t.Errorf("expected chunk size 1000, got %d", cfg.ChunkSize)
	}
	if cfg.ChunkOverlap != 100 {
		t.Errorf("expected chunk overlap 100, got %d", cfg.ChunkOverlap)
	}
	if cfg.LLMModel != "another/model" {
		t.Errorf("expected model override, got %q", cfg.LLMModel)
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		OpenRouterAPIKey: "sk-test",
		ChunkSize:        500,
		ChunkOverlap:     50,
		TopK:             4,
		VectorStore:      "chromem",
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
		errIs   error
	}{
		{
			name:   "valid configuration",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing API key",
			mutate:  func(c *Config) { c.OpenRouterAPIKey = "" },
			wantErr: true,
			errIs:   ErrMissingAPIKey,
		},
		{
			name:    "zero chunk size",
			mutate:  func(c *Config) { c.ChunkSize = 0 },
			wantErr: true,
		},
		{
			name:    "negative chunk size",
			mutate:  func(c *Config) { c.ChunkSize = -10 },
			wantErr: true,
		},
		{
			name:    "overlap equal to chunk size",
			mutate:  func(c *Config) { c.ChunkOverlap = 500 },
			wantErr: true,
		},
		{
			name:    "overlap greater than chunk size",
			mutate:  func(c *Config) { c.ChunkOverlap = 600 },
			wantErr: true,
		},
		{
			name:    "negative overlap",
			mutate:  func(c *Config) { c.ChunkOverlap = -1 },
			wantErr: true,
		},
		{
			name:    "zero top k",
			mutate:  func(c *Config) { c.TopK = 0 },
			wantErr: true,
		},
		{
			name:    "unknown vector store",
			mutate:  func(c *Config) { c.VectorStore = "faiss" },
			wantErr: true,
		},
		{
			name:    "pgvector without database URL",
			mutate:  func(c *Config) { c.VectorStore = "pgvector" },
			wantErr: true,
			errIs:   ErrMissingDatabaseURL,
		},
		{
			name: "pgvector with database URL",
			mutate: func(c *Config) {
				c.VectorStore = "pgvector"
				c.DatabaseURL = "postgres://localhost/docqa"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected an error but got none")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("did not expect an error but got: %v", err)
			}
			if tt.errIs != nil && !errors.Is(err, tt.errIs) {
				t.Errorf("expected error %v, got %v", tt.errIs, err)
			}
		})
	}
}
