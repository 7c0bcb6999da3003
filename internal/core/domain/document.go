package domain

import (
	"fmt"
	"time"
)

// FileType classifies an ingested document by its content modalities.
type FileType string

const (
	// FileTypeText is a plain text document (.txt, .md, .csv).
	FileTypeText FileType = "text"

	// FileTypeImage is a standalone image file.
	FileTypeImage FileType = "image"

	// FileTypePDF is a PDF document. The declared type of the resulting
	// Document may still resolve to text, image, or mixed depending on
	// what the pages actually contain.
	FileTypePDF FileType = "pdf"

	// FileTypeMixed is a document containing both text and image chunks.
	FileTypeMixed FileType = "mixed"
)

// ChunkType identifies the modality of a single chunk.
type ChunkType string

const (
	// ChunkTypeText is a span of document text.
	ChunkTypeText ChunkType = "text"

	// ChunkTypeImage is an extracted or standalone image. Its Content
	// field holds a human-readable description, not pixel data.
	ChunkTypeImage ChunkType = "image"
)

// DocumentMetadata describes an ingested document.
// A document's identity is the content hash of its raw bytes, so
// re-ingesting identical bytes always yields the same ID.
type DocumentMetadata struct {
	// FileName is the base name of the source file.
	FileName string

	// FileType is the aggregate modality of the document: mixed when it
	// produced both text and image chunks, text or image otherwise.
	FileType FileType

	// FileSize is the size of the source file in bytes.
	FileSize int64

	// PageCount is set only for PDF documents.
	PageCount int

	// HasText reports whether the document produced any text chunks.
	HasText bool

	// HasImages reports whether the document produced any image chunks.
	HasImages bool

	// SourcePath is the original file path, kept for provenance only.
	SourcePath string

	// UploadedAt is when the document was ingested.
	UploadedAt time.Time
}

// Chunk is one retrievable unit of content: a text span or an image
// with a description. Chunks are immutable once stored; they are
// deleted only with their document or on a full index reset.
type Chunk struct {
	// ID is "{document_id}_{sequence}", unique across the index.
	ID string

	// DocumentID links to the owning document.
	DocumentID string

	// Type is the chunk modality.
	Type ChunkType

	// Content is the text content. For image chunks this is a synthetic
	// description ("Image: photo.png").
	Content string

	// ImageData is the base64-encoded PNG payload for image chunks.
	// Empty for text chunks. It is carried alongside the content, never
	// embedded in it.
	ImageData string

	// Sequence is the dense ordinal of this chunk within the document,
	// assigned over emitted chunks only.
	Sequence int

	// PageNumber is the 1-based source page for PDF chunks, 0 otherwise.
	PageNumber int

	// ImageIndex is the 1-based index of an image within its page,
	// 0 for text chunks.
	ImageIndex int

	// FileName is the source document's file name, denormalised onto
	// every chunk so retrieval results can cite it directly.
	FileName string
}

// ChunkID builds the canonical chunk identifier for a document and
// sequence number.
func ChunkID(documentID string, sequence int) string {
	return fmt.Sprintf("%s_%d", documentID, sequence)
}
