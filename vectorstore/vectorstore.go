// Package vectorstore provides the vector index backends the pipeline
// builds and queries. All backends embed chunks through an
// embedding_service.Embedder exactly once at insert time; searches embed
// only the query.
package vectorstore

import (
	"context"
	"errors"

	"github.com/serillon/docqa/pipeline_type"
)

// ErrUnknownBackend is returned by New for an unregistered backend name.
var ErrUnknownBackend = errors.New("unknown vector store backend")

// Store is the index handle the pipeline threads through a run.
type Store interface {
	// Add embeds the chunks and stores them. Chunks are embedded in one
	// batch; insertion order is preserved.
	Add(ctx context.Context, chunks []pipeline_type.Chunk) error

	// Search returns up to k chunks ordered by descending similarity to
	// the query. It never mutates the index.
	Search(ctx context.Context, query string, k int) ([]pipeline_type.SearchResult, error)

	// Count reports how many chunks the index currently holds.
	Count(ctx context.Context) (int, error)

	// Reset drops every stored chunk.
	Reset(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
