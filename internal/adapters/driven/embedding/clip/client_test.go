package clip

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedTexts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/embed/text", r.URL.Path)
		var req textRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, []string{"one", "two"}, req.Texts)

		json.NewEncoder(w).Encode(textResponse{
			Embeddings: [][]float64{{0.1, 0.2}, {0.3, 0.4}},
		})
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL, Dimensions: 2})
	vecs, err := client.EmbedTexts(context.Background(), []string{"one", "two"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.InDelta(t, 0.1, vecs[0][0], 1e-6)
	assert.InDelta(t, 0.4, vecs[1][1], 1e-6)
}

func TestEmbedTexts_CountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(textResponse{Embeddings: [][]float64{{0.1}}})
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL})
	_, err := client.EmbedTexts(context.Background(), []string{"one", "two"})
	assert.Error(t, err)
}

func TestEmbedImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/embed/image", r.URL.Path)
		var req imageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "cGF5bG9hZA==", req.Image)

		json.NewEncoder(w).Encode(imageResponse{Embedding: []float64{1, 0}})
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL, Dimensions: 2})
	vec, err := client.EmbedImage(context.Background(), "cGF5bG9hZA==")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, vec)
}

func TestEmbedImage_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL})
	_, err := client.EmbedImage(context.Background(), "cGF5bG9hZA==")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL})
	assert.NoError(t, client.Ping(context.Background()))
}

func TestDefaults(t *testing.T) {
	client := New(Config{})
	assert.Equal(t, DefaultDimensions, client.Dimensions())
	assert.Equal(t, DefaultModel, client.ModelName())
}
