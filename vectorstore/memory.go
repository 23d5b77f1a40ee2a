package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/serillon/docqa/pipeline_type"
	"github.com/serillon/docqa/services/embedding_service"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore is a brute-force cosine index held in process memory. It
// exists for ephemeral runs and for tests that need a deterministic store
// without a network.
type MemoryStore struct {
	embedder embedding_service.Embedder

	mu      sync.RWMutex
	entries []memoryEntry
}

type memoryEntry struct {
	chunk     pipeline_type.Chunk
	embedding []float32
}

func NewMemoryStore(embedder embedding_service.Embedder) *MemoryStore {
	return &MemoryStore{embedder: embedder}
}

func (s *MemoryStore) Add(ctx context.Context, chunks []pipeline_type.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	embeddings, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding chunks: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range chunks {
		s.entries = append(s.entries, memoryEntry{chunk: c, embedding: embeddings[i]})
	}
	return nil
}

func (s *MemoryStore) Search(ctx context.Context, query string, k int) ([]pipeline_type.SearchResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	queryEmbedding, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]pipeline_type.SearchResult, 0, len(s.entries))
	for _, e := range s.entries {
		results = append(results, pipeline_type.SearchResult{
			Chunk: e.chunk,
			Score: cosineSimilarity(queryEmbedding, e.embedding),
		})
	}

	// Stable sort keeps insertion order for tied scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

func (s *MemoryStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
