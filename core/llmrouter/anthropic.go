package llmrouter

import (
	"context"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultAnthropicModel is used when no model is configured.
const DefaultAnthropicModel = "claude-3-5-haiku-latest"

// DefaultAnthropicMaxTokens bounds the answer; a decision object is tiny.
const DefaultAnthropicMaxTokens = 512

// MessageClient is the slice of the Anthropic SDK the classifier needs.
// Tests substitute a fake.
type MessageClient interface {
	New(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error)
}

type realMessageClient struct {
	messages *anthropic.MessageService
}

func (r *realMessageClient) New(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	return r.messages.New(ctx, params)
}

// AnthropicClassifier is a Runner backed by the Anthropic messages API, for
// deployments without the external CLI installed.
type AnthropicClassifier struct {
	client    MessageClient
	model     string
	maxTokens int
	timeout   time.Duration
}

// AnthropicClassifierConfig configures an AnthropicClassifier.
type AnthropicClassifierConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int

	// Timeout defaults to 30 seconds, same as the subprocess runner.
	Timeout time.Duration

	// Client overrides the real API client; used in tests.
	Client MessageClient
}

// NewAnthropicClassifier creates an API-backed runner.
func NewAnthropicClassifier(cfg AnthropicClassifierConfig) (*AnthropicClassifier, error) {
	client := cfg.Client
	if client == nil {
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("anthropic api key is required")
		}
		opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
		if cfg.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.BaseURL))
		}
		real := anthropic.NewClient(opts...)
		client = &realMessageClient{messages: &real.Messages}
	}

	model := cfg.Model
	if model == "" {
		model = DefaultAnthropicModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultAnthropicMaxTokens
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultRunTimeout
	}

	return &AnthropicClassifier{
		client:    client,
		model:     model,
		maxTokens: maxTokens,
		timeout:   timeout,
	}, nil
}

// Run implements Runner.
func (c *AnthropicClassifier) Run(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(c.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic classify: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return "", fmt.Errorf("anthropic classify: no text content in response")
	}
	return text, nil
}
