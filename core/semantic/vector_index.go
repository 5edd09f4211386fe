package semantic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/naru-ai/naru/core/agents"
)

// SearchResult is one labeled example returned by the vector index.
type SearchResult struct {
	AgentID     string  `json:"agent_id"`
	ExampleText string  `json:"example_text"`
	RawScore    float64 `json:"raw_score"`
}

// VectorIndex is the external vector index collaborator. Search failures are
// reported as errors and the semantic stage converts them to fallthrough.
type VectorIndex interface {
	// Search returns the topK nearest labeled examples by cosine similarity.
	Search(ctx context.Context, vector []float32, topK int) ([]SearchResult, error)

	// Upsert writes one indexed point per example. Point ids are derived
	// deterministically from agent id and example text, so re-syncing the
	// same agent set is idempotent.
	Upsert(ctx context.Context, points []IndexPoint) error
}

// IndexPoint is one example utterance stored in the index.
type IndexPoint struct {
	ID      string    `json:"id"`
	Vector  []float32 `json:"vector"`
	AgentID string    `json:"agent_id"`
	Example string    `json:"example"`
}

// DefaultSearchTimeout bounds one index request.
const DefaultSearchTimeout = 10 * time.Second

// HTTPVectorIndex talks to a qdrant-style REST index: POST /points/search
// and PUT /points under a collection base URL.
type HTTPVectorIndex struct {
	baseURL string
	client  *http.Client
}

// HTTPVectorIndexConfig configures an HTTPVectorIndex.
type HTTPVectorIndexConfig struct {
	// BaseURL includes the collection, e.g.
	// http://qdrant:6333/collections/agent-examples
	BaseURL string
	Timeout time.Duration
}

// NewHTTPVectorIndex creates the REST client.
func NewHTTPVectorIndex(cfg HTTPVectorIndexConfig) (*HTTPVectorIndex, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("vector index base URL is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultSearchTimeout
	}
	return &HTTPVectorIndex{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

type searchRequest struct {
	Vector      []float32 `json:"vector"`
	Limit       int       `json:"limit"`
	WithPayload bool      `json:"with_payload"`
}

type searchResponse struct {
	Result []struct {
		Score   float64 `json:"score"`
		Payload struct {
			AgentID string `json:"agent_id"`
			Example string `json:"example"`
		} `json:"payload"`
	} `json:"result"`
}

// Search implements VectorIndex.
func (x *HTTPVectorIndex) Search(ctx context.Context, vector []float32, topK int) ([]SearchResult, error) {
	body, err := json.Marshal(searchRequest{Vector: vector, Limit: topK, WithPayload: true})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	resp, err := x.do(ctx, http.MethodPost, "/points/search", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("vector search returned %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	results := make([]SearchResult, 0, len(parsed.Result))
	for _, r := range parsed.Result {
		if r.Payload.AgentID == "" {
			continue
		}
		results = append(results, SearchResult{
			AgentID:     r.Payload.AgentID,
			ExampleText: r.Payload.Example,
			RawScore:    r.Score,
		})
	}
	return results, nil
}

type upsertRequest struct {
	Points []upsertPoint `json:"points"`
}

type upsertPoint struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

// Upsert implements VectorIndex.
func (x *HTTPVectorIndex) Upsert(ctx context.Context, points []IndexPoint) error {
	if len(points) == 0 {
		return nil
	}

	req := upsertRequest{Points: make([]upsertPoint, 0, len(points))}
	for _, p := range points {
		req.Points = append(req.Points, upsertPoint{
			ID:     p.ID,
			Vector: p.Vector,
			Payload: map[string]any{
				"agent_id": p.AgentID,
				"example":  p.Example,
			},
		})
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal upsert request: %w", err)
	}

	resp, err := x.do(ctx, http.MethodPut, "/points", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("vector upsert returned %d", resp.StatusCode)
	}
	return nil
}

func (x *HTTPVectorIndex) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, x.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build index request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := x.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("index request: %w", err)
	}
	return resp, nil
}

// PointID derives a stable uuid for an (agent, example) pair so repeated
// syncs overwrite instead of duplicating.
func PointID(agentID, example string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(agentID+"\x00"+example)).String()
}

// Indexer pushes agent example utterances into the vector index.
type Indexer struct {
	embedder Embedder
	index    VectorIndex
}

// NewIndexer creates an Indexer.
func NewIndexer(embedder Embedder, index VectorIndex) *Indexer {
	return &Indexer{embedder: embedder, index: index}
}

// SyncAgents embeds and upserts one point per (agent, example). Disabled
// agents are skipped; a failed embedding skips that example rather than
// aborting the sync. Returns the number of points written.
func (ix *Indexer) SyncAgents(ctx context.Context, list []*agents.Agent) (int, error) {
	points := make([]IndexPoint, 0)
	for _, agent := range list {
		if !agent.Enabled {
			continue
		}
		for _, example := range agent.Examples {
			vec, err := ix.embedder.Embed(ctx, example)
			if err != nil {
				continue
			}
			points = append(points, IndexPoint{
				ID:      PointID(agent.ID, example),
				Vector:  vec,
				AgentID: agent.ID,
				Example: example,
			})
		}
	}

	if err := ix.index.Upsert(ctx, points); err != nil {
		return 0, fmt.Errorf("upsert %d points: %w", len(points), err)
	}
	return len(points), nil
}
