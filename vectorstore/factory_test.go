package vectorstore_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/serillon/docqa/config"
	"github.com/serillon/docqa/services/embedding_service"
	"github.com/serillon/docqa/vectorstore"
)

func TestFactorySelectsBackend(t *testing.T) {
	cfg := config.Config{VectorStore: "memory"}

	store, err := vectorstore.New(context.Background(), cfg, &embedding_service.MockEmbedder{}, discardLogger())
	if err != nil {
		t.Fatalf("Did not expect an error but got: %v", err)
	}
	if _, ok := store.(*vectorstore.MemoryStore); !ok {
		t.Errorf("Expected a MemoryStore, got %T", store)
	}
}

func TestFactoryChromem(t *testing.T) {
	cfg := config.Config{
		VectorStore:    "chromem",
		VectorDBPath:   t.TempDir(),
		EmbeddingModel: "all-MiniLM-L6-v2",
	}

	store, err := vectorstore.New(context.Background(), cfg, &embedding_service.MockEmbedder{}, discardLogger())
	if err != nil {
		t.Fatalf("Did not expect an error but got: %v", err)
	}
	if _, ok := store.(*vectorstore.ChromemStore); !ok {
		t.Errorf("Expected a ChromemStore, got %T", store)
	}
}

func TestFactoryUnknownBackend(t *testing.T) {
	cfg := config.Config{VectorStore: "qdrant"}

	_, err := vectorstore.New(context.Background(), cfg, &embedding_service.MockEmbedder{}, discardLogger())
	if err == nil {
		t.Fatal("Expected an error but got none")
	}
	if !errors.Is(err, vectorstore.ErrUnknownBackend) {
		t.Errorf("Expected ErrUnknownBackend, got %v", err)
	}
}

func TestFactoryCustomRegistration(t *testing.T) {
	vectorstore.Register("custom", func(_ context.Context, _ config.Config, embedder embedding_service.Embedder, _ *slog.Logger) (vectorstore.Store, error) {
		return vectorstore.NewMemoryStore(embedder), nil
	})

	cfg := config.Config{VectorStore: "custom"}
	store, err := vectorstore.New(context.Background(), cfg, &embedding_service.MockEmbedder{}, discardLogger())
	if err != nil {
		t.Fatalf("Did not expect an error but got: %v", err)
	}
	if _, ok := store.(*vectorstore.MemoryStore); !ok {
		t.Errorf("Expected the registered factory to be used, got %T", store)
	}
}
