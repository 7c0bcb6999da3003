package driving

import (
	"context"

	"github.com/custodia-labs/ragline-cli/internal/core/domain"
)

// IngestResult describes the outcome of ingesting one file.
type IngestResult struct {
	// DocumentID is the content-hash identity of the document.
	DocumentID string

	// Metadata is the document-level metadata produced by ingestion.
	Metadata domain.DocumentMetadata

	// ChunksCreated is the number of chunks written to the index.
	ChunksCreated int
}

// IngestService turns files into indexed, retrievable chunks.
type IngestService interface {
	// Ingest processes a single file end to end: classify, chunk,
	// embed, index.
	Ingest(ctx context.Context, path string) (*IngestResult, error)

	// IngestBatch processes multiple files. One file's failure does not
	// abort the rest; each entry reports its own outcome.
	IngestBatch(ctx context.Context, paths []string) []BatchEntry

	// DeleteDocument removes a document and all its chunks from the
	// index. Returns false if the document was not found.
	DeleteDocument(ctx context.Context, documentID string) (bool, error)

	// Stats reports the live index state.
	Stats(ctx context.Context) domain.IndexStats

	// Reset wipes the entire index. Destructive.
	Reset(ctx context.Context) error
}

// BatchEntry is the per-file outcome of a batch ingest.
type BatchEntry struct {
	Path   string
	Result *IngestResult
	Err    error
}
