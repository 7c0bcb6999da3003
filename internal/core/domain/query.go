package domain

import "time"

// RetrievedChunk is a chunk returned by a similarity search, with its
// relevance to the query.
type RetrievedChunk struct {
	// ChunkID is the matched chunk's identifier.
	ChunkID string

	// DocumentID is the owning document.
	DocumentID string

	// Type is the chunk modality.
	Type ChunkType

	// Content is the chunk text (or image description).
	Content string

	// FileName is the source document's file name.
	FileName string

	// PageNumber is the source page for PDF chunks, 0 otherwise.
	PageNumber int

	// RelevanceScore is 1 - distance, higher is better. Results are
	// ordered by decreasing score.
	RelevanceScore float64
}

// QueryOptions controls a retrieval pass.
type QueryOptions struct {
	// TopK is the maximum number of chunks to return. Zero means the
	// configured default.
	TopK int

	// Filter restricts results by chunk metadata.
	Filter *Filter

	// IncludeImages controls whether image chunks may be returned.
	// When false the index adds an implicit chunk_type exclusion.
	IncludeImages bool
}

// QueryResult is the transient outcome of one pipeline invocation.
// It is never persisted; the conversation store keeps its own snapshot
// on the assistant message.
type QueryResult struct {
	// Query is the question as asked.
	Query string

	// Answer is the generated answer, or an in-band explanation when
	// retrieval found nothing or generation failed.
	Answer string

	// Retrieved is the ranked list of chunks the answer drew on.
	Retrieved []RetrievedChunk

	// TotalResults is len(Retrieved).
	TotalResults int

	// ProcessingTime is the wall-clock duration of the turn.
	ProcessingTime time.Duration

	// ThreadID identifies the conversation the turn belongs to.
	ThreadID string

	// TokensUsed is the token count charged against the conversation
	// budget for this turn.
	TokensUsed int
}

// IndexStats describes the live state of the vector index.
type IndexStats struct {
	// TotalChunks is the number of chunks currently stored.
	TotalChunks int

	// CollectionName is the index's named collection.
	CollectionName string
}
