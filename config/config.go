package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Defaults for the tunable pipeline parameters.
const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50
	DefaultTopK         = 4

	DefaultLLMModel       = "meta-llama/llama-3.1-8b-instruct:free"
	DefaultLLMBaseURL     = "https://openrouter.ai/api/v1"
	DefaultEmbeddingModel = "all-MiniLM-L6-v2"
	DefaultEmbeddingURL   = "http://localhost:8081"

	DefaultVectorStore  = "chromem"
	DefaultVectorDBPath = "./chroma_db"
)

var (
	ErrMissingAPIKey      = errors.New("OPENROUTER_API_KEY is not set")
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is required when VECTOR_STORE=pgvector")
)

type Config struct {
	Environment string

	// Language model provider (OpenRouter or any OpenAI-compatible endpoint).
	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	LLMModel          string

	// Embeddings endpoint serving the sentence-transformer model.
	EmbeddingModel   string
	EmbeddingBaseURL string
	EmbeddingAPIKey  string

	// Chunking defaults, overridable per run.
	ChunkSize    int
	ChunkOverlap int
	TopK         int

	// Vector index backend.
	VectorStore  string
	VectorDBPath string
	DatabaseURL  string

	// Web entry point.
	HTTPPort     string
	HTTPSPort    string
	Domains      []string
	CertCacheDir string

	LogDir string
}

var isTest bool

func init() {
	isTest = os.Getenv("GO_ENVIRONMENT") == "test"
	if !isTest {
		err := godotenv.Load()
		if err != nil {
			log.Println("Warning: Error loading .env file:", err)
		}
	}
}

func Load() Config {
	return Config{
		Environment:       getEnv("GO_ENVIRONMENT", "development"),
		OpenRouterAPIKey:  getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterBaseURL: getEnv("OPENROUTER_BASE_URL", DefaultLLMBaseURL),
		LLMModel:          getEnv("LLM_MODEL", DefaultLLMModel),
		EmbeddingModel:    getEnv("EMBEDDING_MODEL", DefaultEmbeddingModel),
		EmbeddingBaseURL:  getEnv("EMBEDDING_BASE_URL", DefaultEmbeddingURL),
		EmbeddingAPIKey:   getEnv("EMBEDDING_API_KEY", ""),
		ChunkSize:         getEnvAsInt("CHUNK_SIZE", DefaultChunkSize),
		ChunkOverlap:      getEnvAsInt("CHUNK_OVERLAP", DefaultChunkOverlap),
		TopK:              getEnvAsInt("TOP_K", DefaultTopK),
		VectorStore:       getEnv("VECTOR_STORE", DefaultVectorStore),
		VectorDBPath:      getEnv("VECTOR_DB_PATH", DefaultVectorDBPath),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		HTTPSPort:         getEnv("HTTPS_PORT", "443"),
		Domains:           []string{getEnv("DOMAIN", "example.com")},
		CertCacheDir:      getEnv("CERT_CACHE_DIR", "certs"),
		LogDir:            getEnv("LOG_DIR", "logs"),
	}
}

// Validate enforces the hard requirements before a pipeline can start:
// a provider credential and sane chunking parameters.
func (c Config) Validate() error {
	if c.OpenRouterAPIKey == "" {
		return ErrMissingAPIKey
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP must satisfy 0 <= overlap < chunk size, got %d (chunk size %d)", c.ChunkOverlap, c.ChunkSize)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("TOP_K must be positive, got %d", c.TopK)
	}
	switch c.VectorStore {
	case "chromem", "memory":
	case "pgvector":
		if c.DatabaseURL == "" {
			return ErrMissingDatabaseURL
		}
	default:
		return fmt.Errorf("unknown VECTOR_STORE backend: %s", c.VectorStore)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
