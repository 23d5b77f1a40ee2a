package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/serillon/docqa/pipeline_type"
	"github.com/serillon/docqa/services/embedding_service"
)

var _ Store = (*PgVectorStore)(nil)

// PgVectorStore keeps the index in Postgres with the pgvector extension,
// for deployments that already run Postgres and want the index queryable
// with SQL. The chunks table is created on first insert because the
// vector column width comes from the embedding model.
type PgVectorStore struct {
	pool     *pgxpool.Pool
	embedder embedding_service.Embedder
	logger   *slog.Logger
}

func NewPgVectorStore(ctx context.Context, databaseURL string, embedder embedding_service.Embedder, logger *slog.Logger) (*PgVectorStore, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}

	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse DATABASE_URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to reach the database: %w", err)
	}

	if _, err := pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to create vector extension: %w", err)
	}

	logger.Info("Connected to the pgvector database")

	return &PgVectorStore{
		pool:     pool,
		embedder: embedder,
		logger:   logger,
	}, nil
}

func (s *PgVectorStore) ensureSchema(ctx context.Context, dimensions int) error {
	createTable := fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS docqa_chunks (
            id text PRIMARY KEY,
            content text NOT NULL,
            metadata jsonb,
            chunk_index integer NOT NULL DEFAULT 0,
            embedding vector(%d)
        )`, dimensions)
	if _, err := s.pool.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("creating chunks table: %w", err)
	}

	createIndex := `
        CREATE INDEX IF NOT EXISTS idx_docqa_chunks_embedding
        ON docqa_chunks
        USING ivfflat (embedding vector_cosine_ops)
        WITH (lists = 100)`
	if _, err := s.pool.Exec(ctx, createIndex); err != nil {
		return fmt.Errorf("creating embedding index: %w", err)
	}

	return nil
}

func (s *PgVectorStore) tableExists(ctx context.Context) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, "SELECT to_regclass('docqa_chunks') IS NOT NULL").Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking chunks table: %w", err)
	}
	return exists, nil
}

func (s *PgVectorStore) Add(ctx context.Context, chunks []pipeline_type.Chunk) error {
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

	if err := s.ensureSchema(ctx, len(embeddings[0])); err != nil {
		return err
	}

	for i, c := range chunks {
		metadata, err := json.Marshal(c.Metadata)
		if err != nil {
			return fmt.Errorf("marshaling metadata for chunk %s: %w", c.ID, err)
		}

		_, err = s.pool.Exec(ctx, `
            INSERT INTO docqa_chunks (id, content, metadata, chunk_index, embedding)
            VALUES ($1, $2, $3, $4, $5)
            ON CONFLICT (id) DO NOTHING`,
			c.ID, c.Content, metadata, c.Index, pgvector.NewVector(embeddings[i]))
		if err != nil {
			return fmt.Errorf("inserting chunk %s: %w", c.ID, err)
		}
	}

	s.logger.Debug("Added chunks to pgvector",
		slog.Int("count", len(chunks)))

	return nil
}

func (s *PgVectorStore) Search(ctx context.Context, query string, k int) ([]pipeline_type.SearchResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	exists, err := s.tableExists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return []pipeline_type.SearchResult{}, nil
	}

	queryEmbedding, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
        SELECT id, content, metadata, chunk_index, 1 - (embedding <=> $1) AS score
        FROM docqa_chunks
        ORDER BY embedding <=> $1
        LIMIT $2`,
		pgvector.NewVector(queryEmbedding), k)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var results []pipeline_type.SearchResult
	for rows.Next() {
		var (
			chunk    pipeline_type.Chunk
			metadata []byte
			score    float64
		)
		if err := rows.Scan(&chunk.ID, &chunk.Content, &metadata, &chunk.Index, &score); err != nil {
			return nil, fmt.Errorf("scanning search row: %w", err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &chunk.Metadata); err != nil {
				s.logger.Error("Failed to parse chunk metadata",
					slog.String("chunk_id", chunk.ID),
					slog.String("error", err.Error()))
			}
		}
		results = append(results, pipeline_type.SearchResult{
			Chunk: chunk,
			Score: float32(score),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search rows: %w", err)
	}

	return results, nil
}

func (s *PgVectorStore) Count(ctx context.Context) (int, error) {
	exists, err := s.tableExists(ctx)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, nil
	}

	var count int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM docqa_chunks").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return count, nil
}

func (s *PgVectorStore) Reset(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "DROP TABLE IF EXISTS docqa_chunks"); err != nil {
		return fmt.Errorf("dropping chunks table: %w", err)
	}
	return nil
}

func (s *PgVectorStore) Close() error {
	s.pool.Close()
	return nil
}
