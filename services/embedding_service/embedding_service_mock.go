package embedding_service

import (
	"context"
)

type MockEmbedder struct {
	EmbedDocumentsFunc func(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQueryFunc     func(ctx context.Context, text string) ([]float32, error)
}

func (m *MockEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if m.EmbedDocumentsFunc != nil {
		return m.EmbedDocumentsFunc(ctx, texts)
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func (m *MockEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if m.EmbedQueryFunc != nil {
		return m.EmbedQueryFunc(ctx, text)
	}
	return []float32{1, 0, 0}, nil
}
