package driven

import (
	"context"

	"github.com/custodia-labs/ragline-cli/internal/core/domain"
)

// VectorIndex is a persisted similarity index over chunk embeddings
// with attached metadata. One named collection per index.
//
// Concurrency: the index supports many concurrent readers; writers are
// serialized, and Reset excludes everything. A batch passed to Add or
// removed by Delete is the unit of atomicity - a concurrent Query never
// observes a partially written or partially deleted document.
type VectorIndex interface {
	// Add embeds each chunk (dispatching on chunk type), attaches its
	// metadata, and inserts the whole batch atomically. Returns the
	// number of chunks written, 0 for an empty batch. A failed insert
	// wraps domain.ErrStoreWrite and leaves nothing behind.
	Add(ctx context.Context, chunks []domain.Chunk, documentID string) (int, error)

	// Query embeds the query text and returns up to TopK nearest
	// neighbours ordered by decreasing relevance. A failing underlying
	// search is logged and absorbed into an empty result, never an
	// error: retrieval degrades, the turn continues.
	Query(ctx context.Context, queryText string, opts domain.QueryOptions) []domain.RetrievedChunk

	// Delete removes all chunks whose document_id matches. Returns true
	// if any were deleted; a missing document is false, not an error.
	Delete(ctx context.Context, documentID string) (bool, error)

	// Stats returns the live chunk count and collection name. On error
	// it returns a zero-count value and logs, since it backs a health
	// check.
	Stats(ctx context.Context) domain.IndexStats

	// Reset drops and recreates the entire collection. Idempotent.
	Reset(ctx context.Context) error

	// Close releases resources.
	Close() error
}
