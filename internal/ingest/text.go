package ingest

import (
	"github.com/custodia-labs/ragline-cli/internal/core/domain"
	"github.com/custodia-labs/ragline-cli/internal/logger"
)

// textChunks runs the sliding window over raw text and builds text
// chunks tagged with the given page number (0 for plain text files).
// Sequence numbers and chunk ids are assigned later, over the
// document's full emitted chunk list.
func (i *Ingestor) textChunks(content, fileName string, pageNumber int) []domain.Chunk {
	windows := i.chunker.Split(content)

	chunks := make([]domain.Chunk, 0, len(windows))
	for _, w := range windows {
		chunks = append(chunks, domain.Chunk{
			Type:       domain.ChunkTypeText,
			Content:    w,
			FileName:   fileName,
			PageNumber: pageNumber,
		})
	}

	logger.Debug("text chunking: %d windows emitted for %s (page %d)", len(chunks), fileName, pageNumber)
	return chunks
}
