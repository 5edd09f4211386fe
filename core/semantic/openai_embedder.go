package semantic

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultOpenAIEmbedModel is the embedding model used when none is
// configured.
const DefaultOpenAIEmbedModel = openai.EmbeddingModelTextEmbedding3Small

// DefaultOpenAIEmbedDimension matches text-embedding-3-small.
const DefaultOpenAIEmbedDimension = 1536

// OpenAIEmbedder generates embeddings with the OpenAI embeddings API. Used
// when no in-house embedding service is deployed.
type OpenAIEmbedder struct {
	client    *openai.Client
	model     openai.EmbeddingModel
	dimension int
}

// OpenAIEmbedderConfig configures an OpenAIEmbedder.
type OpenAIEmbedderConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	Dimension int
}

// NewOpenAIEmbedder creates an OpenAI-backed embedder.
func NewOpenAIEmbedder(cfg OpenAIEmbedderConfig) (*OpenAIEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)

	model := DefaultOpenAIEmbedModel
	if cfg.Model != "" {
		model = openai.EmbeddingModel(cfg.Model)
	}
	dimension := cfg.Dimension
	if dimension <= 0 {
		dimension = DefaultOpenAIEmbedDimension
	}

	return &OpenAIEmbedder{
		client:    &client,
		model:     model,
		dimension: dimension,
	}, nil
}

// Dimension implements Embedder.
func (e *OpenAIEmbedder) Dimension() int { return e.dimension }

// Embed implements Embedder.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(text),
		},
		Model: e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai embed: empty response")
	}

	raw := resp.Data[0].Embedding
	if len(raw) != e.dimension {
		return nil, fmt.Errorf("openai embed dimension mismatch: got %d, want %d", len(raw), e.dimension)
	}

	vec := make([]float32, len(raw))
	for i, v := range raw {
		vec[i] = float32(v)
	}
	return normalizeVector(vec), nil
}
