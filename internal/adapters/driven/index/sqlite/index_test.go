package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragline-cli/internal/core/domain"
)

// fakeEngine maps known strings to fixed unit vectors so ranking is
// deterministic. Unknown strings embed to a far-away direction.
type fakeEngine struct {
	vectors  map[string][]float32
	textErr  error
	imageVec []float32
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		vectors: map[string][]float32{
			"apples":  {1, 0, 0},
			"oranges": {0.9, 0.43589, 0}, // close to apples
			"ships":   {0, 0, 1},
		},
		imageVec: []float32{0, 1, 0},
	}
}

func (f *fakeEngine) embed(text string) []float32 {
	if vec, ok := f.vectors[text]; ok {
		return vec
	}
	return []float32{0, 0, -1}
}

func (f *fakeEngine) EmbedText(_ context.Context, text string) ([]float32, bool, error) {
	if f.textErr != nil {
		return nil, false, f.textErr
	}
	return f.embed(text), false, nil
}

func (f *fakeEngine) EmbedQuery(ctx context.Context, query string) ([]float32, bool, error) {
	return f.EmbedText(ctx, query)
}

func (f *fakeEngine) EmbedImage(_ context.Context, _ string) []float32 {
	return f.imageVec
}

func (f *fakeEngine) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = f.embed(t)
	}
	return out, nil
}

func (f *fakeEngine) Dimensions() int { return 3 }
func (f *fakeEngine) Close() error    { return nil }

func newTestIndex(t *testing.T, engine *fakeEngine) *Index {
	t.Helper()
	idx, err := New(t.TempDir(), "test_collection", engine)
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func textChunk(id, docID, content string) domain.Chunk {
	return domain.Chunk{
		ID:         id,
		DocumentID: docID,
		Type:       domain.ChunkTypeText,
		Content:    content,
		FileName:   "test.txt",
	}
}

func TestAddAndQuery_Ranking(t *testing.T) {
	idx := newTestIndex(t, newFakeEngine())
	ctx := context.Background()

	chunks := []domain.Chunk{
		textChunk("doc1_0", "doc1", "apples"),
		textChunk("doc1_1", "doc1", "oranges"),
		textChunk("doc1_2", "doc1", "ships"),
	}
	n, err := idx.Add(ctx, chunks, "doc1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	results := idx.Query(ctx, "apples", domain.QueryOptions{TopK: 2})
	require.Len(t, results, 2)
	assert.Equal(t, "doc1_0", results[0].ChunkID, "exact match ranks first")
	assert.Equal(t, "doc1_1", results[1].ChunkID, "nearby vector ranks second")
	assert.Greater(t, results[0].RelevanceScore, results[1].RelevanceScore)
	assert.InDelta(t, 1.0, results[0].RelevanceScore, 1e-5)
}

func TestAdd_EmptyBatch(t *testing.T) {
	idx := newTestIndex(t, newFakeEngine())

	n, err := idx.Add(context.Background(), nil, "doc1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAdd_EmbeddingFailureLeavesNothingBehind(t *testing.T) {
	engine := newFakeEngine()
	idx := newTestIndex(t, engine)
	ctx := context.Background()

	engine.textErr = errors.New("embedding backend down")
	_, err := idx.Add(ctx, []domain.Chunk{textChunk("doc1_0", "doc1", "apples")}, "doc1")
	require.ErrorIs(t, err, domain.ErrStoreWrite)

	engine.textErr = nil
	assert.Zero(t, idx.Stats(ctx).TotalChunks, "failed batch must not be partially visible")
}

func TestAdd_ReingestOverwrites(t *testing.T) {
	idx := newTestIndex(t, newFakeEngine())
	ctx := context.Background()

	first := []domain.Chunk{
		textChunk("doc1_0", "doc1", "apples"),
		textChunk("doc1_1", "doc1", "oranges"),
	}
	_, err := idx.Add(ctx, first, "doc1")
	require.NoError(t, err)

	second := []domain.Chunk{textChunk("doc1_0", "doc1", "ships")}
	n, err := idx.Add(ctx, second, "doc1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, 1, idx.Stats(ctx).TotalChunks, "re-adding a document replaces its chunks")
}

func TestQuery_ExcludesImagesByDefault(t *testing.T) {
	idx := newTestIndex(t, newFakeEngine())
	ctx := context.Background()

	chunks := []domain.Chunk{
		textChunk("doc1_0", "doc1", "apples"),
		{
			ID:         "doc1_1",
			DocumentID: "doc1",
			Type:       domain.ChunkTypeImage,
			Content:    "Image: photo.png",
			ImageData:  "cGF5bG9hZA==",
			FileName:   "photo.png",
		},
	}
	_, err := idx.Add(ctx, chunks, "doc1")
	require.NoError(t, err)

	withoutImages := idx.Query(ctx, "apples", domain.QueryOptions{TopK: 10})
	for _, r := range withoutImages {
		assert.NotEqual(t, domain.ChunkTypeImage, r.Type)
	}
	require.Len(t, withoutImages, 1)

	withImages := idx.Query(ctx, "apples", domain.QueryOptions{TopK: 10, IncludeImages: true})
	assert.Len(t, withImages, 2)
}

func TestQuery_DocumentFilter(t *testing.T) {
	idx := newTestIndex(t, newFakeEngine())
	ctx := context.Background()

	_, err := idx.Add(ctx, []domain.Chunk{textChunk("doc1_0", "doc1", "apples")}, "doc1")
	require.NoError(t, err)
	_, err = idx.Add(ctx, []domain.Chunk{textChunk("doc2_0", "doc2", "oranges")}, "doc2")
	require.NoError(t, err)

	filter := domain.NewFilter().Eq(domain.FieldDocumentID, "doc2")
	results := idx.Query(ctx, "apples", domain.QueryOptions{TopK: 10, Filter: filter})
	require.Len(t, results, 1)
	assert.Equal(t, "doc2", results[0].DocumentID)
}

func TestQuery_InFilter(t *testing.T) {
	idx := newTestIndex(t, newFakeEngine())
	ctx := context.Background()

	for i, doc := range []string{"doc1", "doc2", "doc3"} {
		content := []string{"apples", "oranges", "ships"}[i]
		_, err := idx.Add(ctx, []domain.Chunk{textChunk(doc+"_0", doc, content)}, doc)
		require.NoError(t, err)
	}

	filter := domain.NewFilter().In(domain.FieldDocumentID, "doc1", "doc3")
	results := idx.Query(ctx, "apples", domain.QueryOptions{TopK: 10, Filter: filter})
	require.Len(t, results, 2)
	for _, r := range results {
		assert.NotEqual(t, "doc2", r.DocumentID)
	}
}

func TestQuery_InvalidFilterAbsorbed(t *testing.T) {
	idx := newTestIndex(t, newFakeEngine())
	ctx := context.Background()

	_, err := idx.Add(ctx, []domain.Chunk{textChunk("doc1_0", "doc1", "apples")}, "doc1")
	require.NoError(t, err)

	filter := domain.NewFilter().Eq("no_such_field", "x")
	results := idx.Query(ctx, "apples", domain.QueryOptions{TopK: 10, Filter: filter})
	assert.Empty(t, results, "invalid filter degrades to no results")
}

func TestQuery_EmbeddingFailureAbsorbed(t *testing.T) {
	engine := newFakeEngine()
	idx := newTestIndex(t, engine)
	ctx := context.Background()

	_, err := idx.Add(ctx, []domain.Chunk{textChunk("doc1_0", "doc1", "apples")}, "doc1")
	require.NoError(t, err)

	engine.textErr = errors.New("backend down")
	results := idx.Query(ctx, "apples", domain.QueryOptions{TopK: 10})
	assert.Empty(t, results)
}

func TestDelete(t *testing.T) {
	idx := newTestIndex(t, newFakeEngine())
	ctx := context.Background()

	_, err := idx.Add(ctx, []domain.Chunk{
		textChunk("doc1_0", "doc1", "apples"),
		textChunk("doc1_1", "doc1", "oranges"),
	}, "doc1")
	require.NoError(t, err)

	deleted, err := idx.Delete(ctx, "doc1")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Zero(t, idx.Stats(ctx).TotalChunks)

	deleted, err = idx.Delete(ctx, "doc1")
	require.NoError(t, err)
	assert.False(t, deleted, "deleting a missing document is false, not an error")
}

func TestStatsAndReset(t *testing.T) {
	idx := newTestIndex(t, newFakeEngine())
	ctx := context.Background()

	stats := idx.Stats(ctx)
	assert.Equal(t, "test_collection", stats.CollectionName)
	assert.Zero(t, stats.TotalChunks)

	_, err := idx.Add(ctx, []domain.Chunk{textChunk("doc1_0", "doc1", "apples")}, "doc1")
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Stats(ctx).TotalChunks)

	require.NoError(t, idx.Reset(ctx))
	assert.Zero(t, idx.Stats(ctx).TotalChunks)

	// Idempotent.
	require.NoError(t, idx.Reset(ctx))
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	engine := newFakeEngine()
	ctx := context.Background()

	idx, err := New(dir, "test_collection", engine)
	require.NoError(t, err)
	_, err = idx.Add(ctx, []domain.Chunk{textChunk("doc1_0", "doc1", "apples")}, "doc1")
	require.NoError(t, err)
	require.NoError(t, idx.Close())

	reopened, err := New(dir, "test_collection", engine)
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, 1, reopened.Stats(ctx).TotalChunks)
	results := reopened.Query(ctx, "apples", domain.QueryOptions{TopK: 1})
	require.Len(t, results, 1)
	assert.Equal(t, "doc1_0", results[0].ChunkID)
}

func TestVectorBlobRoundTrip(t *testing.T) {
	vec := []float32{0.1, -2.5, 0, 42}
	decoded := decodeVector(encodeVector(vec))
	assert.Equal(t, vec, decoded)
}
