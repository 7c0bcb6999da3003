package driven

import "context"

// EmbeddingEngine maps text and images into one fixed-dimensional
// comparison space so cross-modal similarity (text query against image
// chunk) is meaningful.
//
// Implementations are expected to degrade rather than fail: a broken
// primary path substitutes a fallback vector and reports it via the
// Degraded flag, never an error the caller has to handle per chunk.
type EmbeddingEngine interface {
	// EmbedText embeds a text span. The returned vector has Dimensions()
	// elements and unit length. Degraded is true when the fallback text
	// encoder produced the vector; such vectors are not guaranteed to be
	// comparable with primary-space vectors.
	EmbedText(ctx context.Context, text string) (vec []float32, degraded bool, err error)

	// EmbedImage embeds a base64-encoded image payload. On any failure
	// it returns the all-zero vector rather than an error, so the chunk
	// still participates in search but ranks last.
	EmbedImage(ctx context.Context, imageData string) []float32

	// EmbedQuery embeds a search query. Alias of EmbedText.
	EmbedQuery(ctx context.Context, query string) (vec []float32, degraded bool, err error)

	// EmbedBatch embeds multiple texts. Output order matches input
	// order; implementations may batch internally.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the shared embedding space size.
	Dimensions() int

	// Close releases resources.
	Close() error
}
