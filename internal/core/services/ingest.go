package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/ragline-cli/internal/core/domain"
	"github.com/custodia-labs/ragline-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ragline-cli/internal/core/ports/driving"
	"github.com/custodia-labs/ragline-cli/internal/ingest"
	"github.com/custodia-labs/ragline-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService turns files into indexed chunks.
type IngestService struct {
	ingestor *ingest.Ingestor
	index    driven.VectorIndex
}

// NewIngestService creates a new ingest service.
func NewIngestService(ingestor *ingest.Ingestor, index driven.VectorIndex) *IngestService {
	return &IngestService{
		ingestor: ingestor,
		index:    index,
	}
}

// Ingest processes a single file end to end: classify, chunk, embed,
// index. A file that yields no chunks (for example, all whitespace) is
// still a success with zero chunks written.
func (s *IngestService) Ingest(ctx context.Context, path string) (*driving.IngestResult, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", domain.ErrInvalidInput)
	}

	logger.Section("Ingestion")
	chunks, meta, err := s.ingestor.Chunk(ctx, path)
	if err != nil {
		return nil, err
	}

	var documentID string
	if len(chunks) > 0 {
		documentID = chunks[0].DocumentID
	} else {
		documentID, err = ingest.DocumentIDFromFile(path)
		if err != nil {
			return nil, err
		}
	}

	written, err := s.index.Add(ctx, chunks, documentID)
	if err != nil {
		return nil, fmt.Errorf("indexing %s: %w", path, err)
	}

	return &driving.IngestResult{
		DocumentID:    documentID,
		Metadata:      meta,
		ChunksCreated: written,
	}, nil
}

// IngestBatch processes multiple files. One file's failure does not
// abort the rest.
func (s *IngestService) IngestBatch(ctx context.Context, paths []string) []driving.BatchEntry {
	entries := make([]driving.BatchEntry, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			entries = append(entries, driving.BatchEntry{Path: path, Err: err})
			continue
		}

		result, err := s.Ingest(ctx, path)
		if err != nil {
			logger.Warn("skipping %s: %v", path, err)
		}
		entries = append(entries, driving.BatchEntry{Path: path, Result: result, Err: err})
	}
	return entries
}

// DeleteDocument removes a document and all its chunks from the index.
func (s *IngestService) DeleteDocument(ctx context.Context, documentID string) (bool, error) {
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return false, fmt.Errorf("%w: empty document id", domain.ErrInvalidInput)
	}
	return s.index.Delete(ctx, documentID)
}

// Stats reports the live index state.
func (s *IngestService) Stats(ctx context.Context) domain.IndexStats {
	return s.index.Stats(ctx)
}

// Reset wipes the entire index.
func (s *IngestService) Reset(ctx context.Context) error {
	return s.index.Reset(ctx)
}
