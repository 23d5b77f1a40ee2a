package vectorstore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"

	chromem "github.com/philippgille/chromem-go"

	"github.com/serillon/docqa/pipeline_type"
	"github.com/serillon/docqa/services/embedding_service"
)

var _ Store = (*ChromemStore)(nil)

// ChromemStore persists the index to a local directory with chromem-go.
// Every run pointed at the same directory and embedding model shares one
// collection, so the index accumulates across runs.
type ChromemStore struct {
	db             *chromem.DB
	embedder       embedding_service.Embedder
	collectionName string
	logger         *slog.Logger
}

func NewChromemStore(path, embeddingModel string, embedder embedding_service.Embedder, logger *slog.Logger) (*ChromemStore, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("creating directory %s: %w", path, err)
	}

	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("creating chromem DB: %w", err)
	}

	store := &ChromemStore{
		db:             db,
		embedder:       embedder,
		collectionName: collectionNameFor(embeddingModel),
		logger:         logger,
	}

	logger.Info("Chromem store initialized",
		slog.String("path", path),
		slog.String("collection", store.collectionName))

	return store, nil
}

var collectionNamePattern = regexp.MustCompile(`[^a-z0-9-]+`)

// collectionNameFor keys the collection by embedding model so vectors from
// different models never mix in one collection.
func collectionNameFor(model string) string {
	name := collectionNamePattern.ReplaceAllString(strings.ToLower(model), "-")
	return "docqa-" + strings.Trim(name, "-")
}

// embeddingFunc adapts the Embedder for chromem, which embeds the query
// itself during Query.
func (s *ChromemStore) embeddingFunc() chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return s.embedder.EmbedQuery(ctx, text)
	}
}

func (s *ChromemStore) Add(ctx context.Context, chunks []pipeline_type.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	collection, err := s.db.GetOrCreateCollection(s.collectionName, nil, s.embeddingFunc())
	if err != nil {
		return fmt.Errorf("getting/creating collection %s: %w", s.collectionName, err)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	embeddings, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding chunks: %w", err)
	}

	docs := make([]chromem.Document, len(chunks))
	for i, c := range chunks {
		metadata := pipeline_type.CloneMetadata(c.Metadata)
		metadata["chunk_index"] = strconv.Itoa(c.Index)
		docs[i] = chromem.Document{
			ID:        c.ID,
			Content:   c.Content,
			Metadata:  metadata,
			Embedding: embeddings[i],
		}
	}

	// Concurrency of 1 since the embeddings are already computed.
	if err := collection.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("adding documents: %w", err)
	}

	s.logger.Debug("Added chunks to chromem",
		slog.String("collection", s.collectionName),
		slog.Int("count", len(chunks)))

	return nil
}

func (s *ChromemStore) Search(ctx context.Context, query string, k int) ([]pipeline_type.SearchResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	collection := s.db.GetCollection(s.collectionName, s.embeddingFunc())
	if collection == nil {
		return []pipeline_type.SearchResult{}, nil
	}

	// chromem requires nResults <= stored document count.
	count := collection.Count()
	if count == 0 {
		return []pipeline_type.SearchResult{}, nil
	}
	if k > count {
		k = count
	}

	results, err := collection.Query(ctx, query, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying collection %s: %w", s.collectionName, err)
	}

	searchResults := make([]pipeline_type.SearchResult, len(results))
	for i, r := range results {
		index := 0
		if v, ok := r.Metadata["chunk_index"]; ok {
			index, _ = strconv.Atoi(v)
		}
		searchResults[i] = pipeline_type.SearchResult{
			Chunk: pipeline_type.Chunk{
				ID:       r.ID,
				Content:  r.Content,
				Metadata: r.Metadata,
				Index:    index,
			},
			Score: r.Similarity,
		}
	}

	return searchResults, nil
}

func (s *ChromemStore) Count(ctx context.Context) (int, error) {
	collection := s.db.GetCollection(s.collectionName, s.embeddingFunc())
	if collection == nil {
		return 0, nil
	}
	return collection.Count(), nil
}

func (s *ChromemStore) Reset(ctx context.Context) error {
	if err := s.db.DeleteCollection(s.collectionName); err != nil {
		return fmt.Errorf("deleting collection %s: %w", s.collectionName, err)
	}
	return nil
}

// Close is a no-op, chromem persists on every write.
func (s *ChromemStore) Close() error {
	return nil
}
