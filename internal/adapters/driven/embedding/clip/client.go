// Package clip provides a client for a CLIP inference server, the
// primary multimodal embedding backend. Text and images are projected
// into the same vector space, which is what makes text-to-image
// retrieval work.
package clip

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:8400"
	DefaultModel      = "clip-ViT-B-32"
	DefaultTimeout    = 60 * time.Second
	DefaultDimensions = 512 // ViT-B/32 projection size
)

// Config holds configuration for the CLIP client.
type Config struct {
	// BaseURL is the inference server base URL (default: http://localhost:8400).
	BaseURL string

	// Model is the CLIP variant served (default: clip-ViT-B-32).
	Model string

	// Timeout is the request timeout (default: 60s). Image embedding
	// on CPU can be slow, hence the generous default.
	Timeout time.Duration

	// Dimensions is the projection size (model-dependent).
	Dimensions int
}

// Client talks to a CLIP inference server over HTTP.
type Client struct {
	client     *http.Client
	baseURL    string
	model      string
	dimensions int
}

// textRequest is the text embedding request format.
type textRequest struct {
	Model string   `json:"model"`
	Texts []string `json:"texts"`
}

// textResponse is the text embedding response format.
type textResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// imageRequest is the image embedding request format. Image is a
// base64-encoded PNG payload.
type imageRequest struct {
	Model string `json:"model"`
	Image string `json:"image"`
}

// imageResponse is the image embedding response format.
type imageResponse struct {
	Embedding []float64 `json:"embedding"`
}

// New creates a CLIP client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}

	return &Client{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}
}

// EmbedTexts embeds a batch of texts in one round trip. Output order
// matches input order.
func (c *Client) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var resp textResponse
	if err := c.post(ctx, "/embed/text", textRequest{Model: c.model, Texts: texts}, &resp); err != nil {
		return nil, err
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("clip: got %d embeddings for %d texts", len(resp.Embeddings), len(texts))
	}

	out := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		out[i] = toFloat32(emb)
	}
	return out, nil
}

// EmbedImage embeds a single base64-encoded image payload.
func (c *Client) EmbedImage(ctx context.Context, imageData string) ([]float32, error) {
	var resp imageResponse
	if err := c.post(ctx, "/embed/image", imageRequest{Model: c.model, Image: imageData}, &resp); err != nil {
		return nil, err
	}
	return toFloat32(resp.Embedding), nil
}

func (c *Client) post(ctx context.Context, path string, reqBody, respBody any) error {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+path,
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("clip error (status %d): failed to read response", resp.StatusCode)
		}
		return fmt.Errorf("clip error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Dimensions returns the projection size of the served model.
func (c *Client) Dimensions() int {
	return c.dimensions
}

// ModelName returns the CLIP variant being served.
func (c *Client) ModelName() string {
	return c.model
}

// Ping validates the server is reachable via its health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", http.NoBody)
	if err != nil {
		return fmt.Errorf("clip: failed to create ping request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("clip: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("clip: health endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// Close releases resources.
func (c *Client) Close() error {
	return nil
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}
