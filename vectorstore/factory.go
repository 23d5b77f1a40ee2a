package vectorstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/serillon/docqa/config"
	"github.com/serillon/docqa/services/embedding_service"
)

// Factory builds a Store from configuration.
type Factory func(ctx context.Context, cfg config.Config, embedder embedding_service.Embedder, logger *slog.Logger) (Store, error)

var backends = make(map[string]Factory)

// Register makes a backend available under a name. Registration happens
// at init time; the registry is not synchronized.
func Register(name string, factory Factory) {
	backends[name] = factory
}

// New builds the Store named by cfg.VectorStore.
func New(ctx context.Context, cfg config.Config, embedder embedding_service.Embedder, logger *slog.Logger) (Store, error) {
	factory, ok := backends[cfg.VectorStore]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.VectorStore)
	}
	return factory(ctx, cfg, embedder, logger)
}

func init() {
	Register("chromem", func(_ context.Context, cfg config.Config, embedder embedding_service.Embedder, logger *slog.Logger) (Store, error) {
		return NewChromemStore(cfg.VectorDBPath, cfg.EmbeddingModel, embedder, logger)
	})
	Register("pgvector", func(ctx context.Context, cfg config.Config, embedder embedding_service.Embedder, logger *slog.Logger) (Store, error) {
		return NewPgVectorStore(ctx, cfg.DatabaseURL, embedder, logger)
	})
	Register("memory", func(_ context.Context, _ config.Config, embedder embedding_service.Embedder, _ *slog.Logger) (Store, error) {
		return NewMemoryStore(embedder), nil
	})
}
