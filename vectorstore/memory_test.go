package vectorstore_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/serillon/docqa/pipeline_type"
	"github.com/serillon/docqa/services/embedding_service"
	"github.com/serillon/docqa/vectorstore"
)

// vectorsByText gives each known text a fixed embedding so similarity
// ordering is fully deterministic.
func vectorsByText(vectors map[string][]float32) *embedding_service.MockEmbedder {
	lookup := func(text string) []float32 {
		if v, ok := vectors[text]; ok {
			return v
		}
		return []float32{0, 0, 1}
	}
	return &embedding_service.MockEmbedder{
		EmbedDocumentsFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			out := make([][]float32, len(texts))
			for i, t := range texts {
				out[i] = lookup(t)
			}
			return out, nil
		},
		EmbedQueryFunc: func(ctx context.Context, text string) ([]float32, error) {
			return lookup(text), nil
		},
	}
}

func chunk(id, content string, index int) pipeline_type.Chunk {
	return pipeline_type.Chunk{
		ID:       id,
		Content:  content,
		Metadata: map[string]string{"source": "test"},
		Index:    index,
	}
}

func TestMemoryStoreSearchOrdering(t *testing.T) {
	embedder := vectorsByText(map[string][]float32{
		"the sky is blue":       {1, 0, 0},
		"water boils at 100":    {0, 1, 0},
		"grass is green":        {0.8, 0.6, 0},
		"what color is the sky": {1, 0, 0},
	})
	store := vectorstore.NewMemoryStore(embedder)

	err := store.Add(context.Background(), []pipeline_type.Chunk{
		chunk("a", "the sky is blue", 0),
		chunk("b", "water boils at 100", 1),
		chunk("c", "grass is green", 2),
	})
	if err != nil {
		t.Fatalf("Did not expect an error but got: %v", err)
	}

	results, err := store.Search(context.Background(), "what color is the sky", 2)
	if err != nil {
		t.Fatalf("Did not expect an error but got: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].Chunk.ID != "a" {
		t.Errorf("Expected the closest chunk first, got %q", results[0].Chunk.ID)
	}
	if results[1].Chunk.ID != "c" {
		t.Errorf("Expected the second closest chunk next, got %q", results[1].Chunk.ID)
	}
	if results[0].Score < results[1].Score {
		t.Errorf("Expected non-increasing scores, got %f then %f", results[0].Score, results[1].Score)
	}
}

func TestMemoryStoreKClamp(t *testing.T) {
	store := vectorstore.NewMemoryStore(&embedding_service.MockEmbedder{})

	err := store.Add(context.Background(), []pipeline_type.Chunk{
		chunk("a", "one", 0),
		chunk("b", "two", 1),
	})
	if err != nil {
		t.Fatalf("Did not expect an error but got: %v", err)
	}

	results, err := store.Search(context.Background(), "anything", 10)
	if err != nil {
		t.Fatalf("Did not expect an error but got: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("Expected k to clamp to the stored count, got %d results", len(results))
	}

	if _, err := store.Search(context.Background(), "anything", 0); err == nil {
		t.Error("Expected an error for k <= 0 but got none")
	}
}

func TestMemoryStoreTiesKeepInsertionOrder(t *testing.T) {
	// Default mock embeddings are identical, so every score ties.
	store := vectorstore.NewMemoryStore(&embedding_service.MockEmbedder{})

	var chunks []pipeline_type.Chunk
	for i := 0; i < 5; i++ {
		chunks = append(chunks, chunk(fmt.Sprintf("id-%d", i), fmt.Sprintf("content %d", i), i))
	}
	if err := store.Add(context.Background(), chunks); err != nil {
		t.Fatalf("Did not expect an error but got: %v", err)
	}

	results, err := store.Search(context.Background(), "query", 5)
	if err != nil {
		t.Fatalf("Did not expect an error but got: %v", err)
	}
	for i, r := range results {
		if want := fmt.Sprintf("id-%d", i); r.Chunk.ID != want {
			t.Errorf("Result %d: expected %q, got %q", i, want, r.Chunk.ID)
		}
	}
}

func TestMemoryStoreSearchEmpty(t *testing.T) {
	store := vectorstore.NewMemoryStore(&embedding_service.MockEmbedder{})

	results, err := store.Search(context.Background(), "anything", 4)
	if err != nil {
		t.Fatalf("Did not expect an error but got: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected no results from an empty store, got %d", len(results))
	}
}

func TestMemoryStoreCountAndReset(t *testing.T) {
	store := vectorstore.NewMemoryStore(&embedding_service.MockEmbedder{})

	if err := store.Add(context.Background(), []pipeline_type.Chunk{chunk("a", "one", 0)}); err != nil {
		t.Fatalf("Did not expect an error but got: %v", err)
	}

	count, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("Did not expect an error but got: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected count 1, got %d", count)
	}

	if err := store.Reset(context.Background()); err != nil {
		t.Fatalf("Did not expect an error but got: %v", err)
	}
	count, _ = store.Count(context.Background())
	if count != 0 {
		t.Errorf("Expected count 0 after reset, got %d", count)
	}
}
