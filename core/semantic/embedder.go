// Package semantic implements the embedding-based routing stage: message
// embedding with caching, top-K search against an external vector index,
// priority-weighted scoring, and index maintenance from agent examples.
//
// Every collaborator failure in this package degrades to "no match"; nothing
// here surfaces an error into the routing pipeline.
package semantic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/viterin/vek/vek32"
)

// Embedder generates text embeddings.
type Embedder interface {
	// Embed generates an embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the embedding dimension.
	Dimension() int
}

// DefaultEmbedTimeout bounds one embedding request.
const DefaultEmbedTimeout = 10 * time.Second

// HTTPEmbedder calls an in-house embedding service: POST {base}/embed with
// {"text": ...} returning {"embedding": [...]}.
type HTTPEmbedder struct {
	baseURL   string
	dimension int
	client    *http.Client
}

// HTTPEmbedderConfig configures an HTTPEmbedder.
type HTTPEmbedderConfig struct {
	BaseURL   string
	Dimension int
	Timeout   time.Duration
}

// NewHTTPEmbedder creates an embedder for the given service.
func NewHTTPEmbedder(cfg HTTPEmbedderConfig) (*HTTPEmbedder, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("embedder base URL is required")
	}
	if cfg.Dimension <= 0 {
		return nil, fmt.Errorf("embedder dimension must be positive")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultEmbedTimeout
	}

	return &HTTPEmbedder{
		baseURL:   cfg.BaseURL,
		dimension: cfg.Dimension,
		client:    &http.Client{Timeout: timeout},
	}, nil
}

// Dimension implements Embedder.
func (e *HTTPEmbedder) Dimension() int { return e.dimension }

type embedRequest struct {
	Text string `json:"text"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed implements Embedder. Non-2xx responses, timeouts and malformed or
// wrong-dimension bodies all report an error; the caller treats every error
// as "no embedding available".
func (e *HTTPEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embedRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("embed service returned %d", resp.StatusCode)
	}

	var parsed embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", err)
	}
	if len(parsed.Embedding) != e.dimension {
		return nil, fmt.Errorf("embed dimension mismatch: got %d, want %d", len(parsed.Embedding), e.dimension)
	}

	return normalizeVector(parsed.Embedding), nil
}

// normalizeVector scales a vector to unit length so cosine similarity reduces
// to a dot product at the index. Zero vectors pass through unchanged.
func normalizeVector(v []float32) []float32 {
	norm := math.Sqrt(float64(vek32.Dot(v, v)))
	if norm == 0 {
		return v
	}
	out := make([]float32, len(v))
	copy(out, v)
	vek32.MulNumber_Inplace(out, float32(1/norm))
	return out
}

// CosineSimilarity computes the cosine similarity of two vectors, or 0 when
// either has zero magnitude or the lengths differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	na := math.Sqrt(float64(vek32.Dot(a, a)))
	nb := math.Sqrt(float64(vek32.Dot(b, b)))
	if na == 0 || nb == 0 {
		return 0
	}
	return float64(vek32.Dot(a, b)) / (na * nb)
}
