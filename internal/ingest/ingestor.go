package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/ragline-cli/internal/core/domain"
	"github.com/custodia-labs/ragline-cli/internal/ingest/chunker"
	"github.com/custodia-labs/ragline-cli/internal/logger"
)

// documentIDLength is how many hex characters of the content digest
// form the document id.
const documentIDLength = 16

// Ingestor converts files into chunks plus document metadata.
type Ingestor struct {
	chunker *chunker.Processor
}

// New creates an ingestor with the given chunking configuration.
// Fails fast when overlap >= chunk size.
func New(chunkSize, chunkOverlap int) (*Ingestor, error) {
	proc, err := chunker.New(
		chunker.WithChunkSize(chunkSize),
		chunker.WithOverlap(chunkOverlap),
	)
	if err != nil {
		return nil, err
	}
	return &Ingestor{chunker: proc}, nil
}

// DocumentID derives the document identity from raw bytes: the first
// 16 hex characters of the SHA-256 digest. A pure function of content,
// so identical bytes always map to the same id regardless of file
// name.
func DocumentID(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])[:documentIDLength]
}

// DocumentIDFromFile reads a file and derives its document id.
func DocumentIDFromFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return DocumentID(content), nil
}

// Chunk classifies a file, extracts its content, and returns the
// ordered chunk sequence plus document-level metadata. Chunk ids are
// assigned densely over emitted chunks as "{document_id}_{sequence}".
func (i *Ingestor) Chunk(ctx context.Context, path string) ([]domain.Chunk, domain.DocumentMetadata, error) {
	fileType, err := Classify(path)
	if err != nil {
		return nil, domain.DocumentMetadata{}, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.DocumentMetadata{}, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, domain.DocumentMetadata{}, err
	}

	fileName := filepath.Base(path)
	docID := DocumentID(content)

	meta := domain.DocumentMetadata{
		FileName:   fileName,
		FileSize:   int64(len(content)),
		SourcePath: path,
		UploadedAt: time.Now(),
	}

	var chunks []domain.Chunk

	switch fileType {
	case domain.FileTypeText:
		logger.Info("processing text file: %s", path)
		chunks = i.textChunks(string(content), fileName, 0)

	case domain.FileTypeImage:
		logger.Info("processing image file: %s", path)
		chunk, err := imageChunk(content, fileName)
		if err != nil {
			return nil, domain.DocumentMetadata{}, err
		}
		chunks = []domain.Chunk{chunk}

	case domain.FileTypePDF:
		logger.Info("processing pdf file: %s", path)
		var pageCount int
		chunks, pageCount, err = i.pdfChunks(content, fileName)
		if err != nil {
			return nil, domain.DocumentMetadata{}, err
		}
		meta.PageCount = pageCount

	default:
		return nil, domain.DocumentMetadata{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, fileType)
	}

	for seq := range chunks {
		chunks[seq].ID = domain.ChunkID(docID, seq)
		chunks[seq].DocumentID = docID
		chunks[seq].Sequence = seq

		switch chunks[seq].Type {
		case domain.ChunkTypeText:
			meta.HasText = true
		case domain.ChunkTypeImage:
			meta.HasImages = true
		}
	}

	meta.FileType = aggregateFileType(meta.HasText, meta.HasImages)
	logger.Info("ingested %s: %d chunks, type %s", fileName, len(chunks), meta.FileType)

	return chunks, meta, nil
}

// aggregateFileType resolves the document-level type from the chunk
// modalities actually produced: mixed iff both are present.
func aggregateFileType(hasText, hasImages bool) domain.FileType {
	switch {
	case hasText && hasImages:
		return domain.FileTypeMixed
	case hasImages:
		return domain.FileTypeImage
	default:
		return domain.FileTypeText
	}
}
