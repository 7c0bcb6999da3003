package embedding

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragline-cli/internal/core/domain"
)

// stubMultimodal is a scriptable primary backend.
type stubMultimodal struct {
	dims     int
	textVecs [][]float32
	imageVec []float32
	err      error
}

func (s *stubMultimodal) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = s.textVecs[i%len(s.textVecs)]
	}
	return out, nil
}

func (s *stubMultimodal) EmbedImage(_ context.Context, _ string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.imageVec, nil
}

func (s *stubMultimodal) Dimensions() int { return s.dims }
func (s *stubMultimodal) Close() error    { return nil }

// stubFallback is a scriptable fallback encoder.
type stubFallback struct {
	vec []float32
	err error
}

func (s *stubFallback) Embed(_ context.Context, _ string) ([]float32, error) {
	return s.vec, s.err
}

func (s *stubFallback) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = s.vec
	}
	return out, nil
}

func (s *stubFallback) Close() error { return nil }

func vectorLength(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

func TestEmbedText_PrimaryPath(t *testing.T) {
	primary := &stubMultimodal{dims: 4, textVecs: [][]float32{{3, 0, 4, 0}}}
	engine := NewEngine(primary, nil)

	vec, degraded, err := engine.EmbedText(context.Background(), "hello")
	require.NoError(t, err)
	assert.False(t, degraded)
	assert.Len(t, vec, 4)
	assert.InDelta(t, 1.0, vectorLength(vec), 1e-6)
}

func TestEmbedText_FallbackResizesAndFlags(t *testing.T) {
	primary := &stubMultimodal{dims: 4, err: errors.New("connection refused")}
	// Fallback is 6-wide, wider than the shared space.
	fallback := &stubFallback{vec: []float32{1, 2, 3, 4, 5, 6}}
	engine := NewEngine(primary, fallback)

	vec, degraded, err := engine.EmbedText(context.Background(), "hello")
	require.NoError(t, err)
	assert.True(t, degraded)
	assert.Len(t, vec, 4, "fallback vector must be resized to the shared space")
	assert.InDelta(t, 1.0, vectorLength(vec), 1e-6)
}

func TestEmbedText_NarrowFallbackIsZeroPadded(t *testing.T) {
	primary := &stubMultimodal{dims: 6, err: errors.New("down")}
	fallback := &stubFallback{vec: []float32{3, 4}}
	engine := NewEngine(primary, fallback)

	vec, degraded, err := engine.EmbedText(context.Background(), "hello")
	require.NoError(t, err)
	assert.True(t, degraded)
	require.Len(t, vec, 6)
	for i := 2; i < 6; i++ {
		assert.Zero(t, vec[i], "padding positions must stay zero")
	}
	assert.InDelta(t, 1.0, vectorLength(vec), 1e-6)
}

func TestEmbedText_BothPathsDown(t *testing.T) {
	primary := &stubMultimodal{dims: 4, err: errors.New("primary down")}
	fallback := &stubFallback{err: errors.New("fallback down")}
	engine := NewEngine(primary, fallback)

	_, _, err := engine.EmbedText(context.Background(), "hello")
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestEmbedText_NoFallbackConfigured(t *testing.T) {
	primary := &stubMultimodal{dims: 4, err: errors.New("primary down")}
	engine := NewEngine(primary, nil)

	_, _, err := engine.EmbedText(context.Background(), "hello")
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestEmbedImage_ZeroVectorOnFailure(t *testing.T) {
	primary := &stubMultimodal{dims: 4, err: errors.New("primary down")}
	engine := NewEngine(primary, &stubFallback{vec: []float32{1, 1}})

	vec := engine.EmbedImage(context.Background(), "ZmFrZQ==")
	require.Len(t, vec, 4)
	for i, v := range vec {
		assert.Zerof(t, v, "position %d", i)
	}
}

func TestEmbedImage_Normalized(t *testing.T) {
	primary := &stubMultimodal{dims: 3, imageVec: []float32{0, 3, 4}}
	engine := NewEngine(primary, nil)

	vec := engine.EmbedImage(context.Background(), "ZmFrZQ==")
	assert.InDelta(t, 1.0, vectorLength(vec), 1e-6)
}

func TestEmbedBatch_OrderAndFallback(t *testing.T) {
	t.Run("primary preserves order", func(t *testing.T) {
		primary := &stubMultimodal{dims: 2, textVecs: [][]float32{{1, 0}, {0, 1}}}
		engine := NewEngine(primary, nil)

		vecs, err := engine.EmbedBatch(context.Background(), []string{"a", "b"})
		require.NoError(t, err)
		require.Len(t, vecs, 2)
		assert.Equal(t, []float32{1, 0}, vecs[0])
		assert.Equal(t, []float32{0, 1}, vecs[1])
	})

	t.Run("fallback resizes whole batch", func(t *testing.T) {
		primary := &stubMultimodal{dims: 4, err: errors.New("down")}
		fallback := &stubFallback{vec: []float32{2, 0}}
		engine := NewEngine(primary, fallback)

		vecs, err := engine.EmbedBatch(context.Background(), []string{"a", "b", "c"})
		require.NoError(t, err)
		require.Len(t, vecs, 3)
		for _, vec := range vecs {
			assert.Len(t, vec, 4)
			assert.InDelta(t, 1.0, vectorLength(vec), 1e-6)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		engine := NewEngine(&stubMultimodal{dims: 4}, nil)
		vecs, err := engine.EmbedBatch(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, vecs)
	})
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"length mismatch", []float32{1}, []float32{1, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-6)
		})
	}
}

func TestNormalize_ZeroVectorUnchanged(t *testing.T) {
	vec := []float32{0, 0, 0}
	assert.Equal(t, vec, Normalize(vec))
}
