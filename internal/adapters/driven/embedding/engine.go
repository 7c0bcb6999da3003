// Package embedding composes the primary multimodal backend with the
// fallback text encoder into one engine. The engine owns the shared
// vector space: everything it hands out has the primary backend's
// dimensionality and unit length (or is the all-zero sentinel).
package embedding

import (
	"context"
	"fmt"

	"github.com/custodia-labs/ragline-cli/internal/core/domain"
	"github.com/custodia-labs/ragline-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ragline-cli/internal/logger"
)

// Ensure Engine implements the interface.
var _ driven.EmbeddingEngine = (*Engine)(nil)

// Multimodal is the primary backend: text and images into one space.
type Multimodal interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	EmbedImage(ctx context.Context, imageData string) ([]float32, error)
	Dimensions() int
	Close() error
}

// TextFallback is the degraded path used when the primary backend is
// unreachable. Its native dimensionality may differ from the primary's.
type TextFallback interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Close() error
}

// Engine implements the embedding port over a primary backend and an
// optional fallback.
type Engine struct {
	primary  Multimodal
	fallback TextFallback
}

// NewEngine creates an engine. The fallback may be nil, in which case
// primary failures surface as errors.
func NewEngine(primary Multimodal, fallback TextFallback) *Engine {
	return &Engine{primary: primary, fallback: fallback}
}

// EmbedText embeds one text span. When the primary backend fails and a
// fallback is configured, the fallback vector is resized to the shared
// space and the result is flagged degraded.
func (e *Engine) EmbedText(ctx context.Context, text string) ([]float32, bool, error) {
	vecs, err := e.primary.EmbedTexts(ctx, []string{text})
	if err == nil && len(vecs) == 1 {
		return Normalize(vecs[0]), false, nil
	}

	if e.fallback == nil {
		return nil, false, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}

	logger.Warn("primary embedding backend failed, using fallback: %v", err)
	vec, fbErr := e.fallback.Embed(ctx, text)
	if fbErr != nil {
		return nil, false, fmt.Errorf("%w: primary: %v, fallback: %v", domain.ErrEmbeddingUnavailable, err, fbErr)
	}

	return Normalize(fitDimensions(vec, e.primary.Dimensions())), true, nil
}

// EmbedQuery embeds a search query. Queries and chunks share a space,
// so this is EmbedText under another name.
func (e *Engine) EmbedQuery(ctx context.Context, query string) ([]float32, bool, error) {
	return e.EmbedText(ctx, query)
}

// EmbedImage embeds a base64 image payload. Any failure yields the
// all-zero vector: the chunk stays searchable but has zero similarity
// to every query, so it ranks last instead of poisoning results.
func (e *Engine) EmbedImage(ctx context.Context, imageData string) []float32 {
	vec, err := e.primary.EmbedImage(ctx, imageData)
	if err != nil {
		logger.Warn("image embedding failed, storing zero vector: %v", err)
		return make([]float32, e.primary.Dimensions())
	}
	return Normalize(vec)
}

// EmbedBatch embeds texts preserving input order. The whole batch
// shares one path: all primary, or all fallback.
func (e *Engine) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vecs, err := e.primary.EmbedTexts(ctx, texts)
	if err == nil && len(vecs) == len(texts) {
		for i := range vecs {
			vecs[i] = Normalize(vecs[i])
		}
		return vecs, nil
	}

	if e.fallback == nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}

	logger.Warn("primary embedding backend failed for batch of %d, using fallback: %v", len(texts), err)
	fbVecs, fbErr := e.fallback.EmbedBatch(ctx, texts)
	if fbErr != nil {
		return nil, fmt.Errorf("%w: primary: %v, fallback: %v", domain.ErrEmbeddingUnavailable, err, fbErr)
	}

	dims := e.primary.Dimensions()
	for i := range fbVecs {
		fbVecs[i] = Normalize(fitDimensions(fbVecs[i], dims))
	}
	return fbVecs, nil
}

// Dimensions returns the shared embedding space size.
func (e *Engine) Dimensions() int {
	return e.primary.Dimensions()
}

// Close releases both backends.
func (e *Engine) Close() error {
	err := e.primary.Close()
	if e.fallback != nil {
		if fbErr := e.fallback.Close(); err == nil {
			err = fbErr
		}
	}
	return err
}

// fitDimensions resizes a vector to the target size: truncated when
// longer, zero-padded when shorter.
func fitDimensions(vec []float32, dims int) []float32 {
	if len(vec) == dims {
		return vec
	}
	out := make([]float32, dims)
	copy(out, vec)
	return out
}
