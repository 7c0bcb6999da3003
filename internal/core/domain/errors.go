package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a file extension outside the
	// text/image/PDF allow-lists. Rejected before any processing.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrStoreWrite indicates a vector index batch insert failed.
	// Propagated so the document can be retried wholesale; the batch is
	// all-or-nothing, so no partial document state is left behind.
	ErrStoreWrite = errors.New("vector index write failed")

	// ErrStoreRead indicates a vector index query failed. Absorbed
	// inside the index and surfaced as an empty result set; exported so
	// tests and logs can name the condition.
	ErrStoreRead = errors.New("vector index read failed")

	// ErrThreadNotFound indicates a conversation thread does not exist.
	ErrThreadNotFound = errors.New("conversation thread not found")

	// ErrTokenBudget indicates a query, alone or combined with the
	// running conversation total, exceeds the configured token limit.
	// Raised before retrieval or generation run.
	ErrTokenBudget = errors.New("token budget exceeded")

	// ErrGeneration indicates the language model call failed. The
	// pipeline absorbs this into an in-band answer string; the sentinel
	// exists for the boundary where the raw failure is still visible.
	ErrGeneration = errors.New("answer generation failed")

	// ErrLLMUnavailable indicates no language model service is
	// configured or reachable.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates no embedding service is
	// configured or reachable.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)
