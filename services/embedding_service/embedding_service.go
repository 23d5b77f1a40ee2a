package embedding_service

import "context"

// Embedder turns text into vectors. Document embedding happens once per
// indexing pass; query embedding happens once per search.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}
