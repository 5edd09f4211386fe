// Package config loads the router configuration: defaults first, then an
// optional YAML file, then environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/naru-ai/naru/core/agents"
)

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "NARU_CONFIG"

// DefaultConfigPath is used when NARU_CONFIG is unset.
const DefaultConfigPath = ".naru/config.yaml"

// Config is the full runtime configuration.
type Config struct {
	Router    RouterConfig   `yaml:"router"`
	Embedding EmbedConfig    `yaml:"embedding"`
	Index     IndexConfig    `yaml:"index"`
	LLM       LLMConfig      `yaml:"llm"`
	Storage   StorageConfig  `yaml:"storage"`
	Agents    []agents.Agent `yaml:"agents"`
}

// RouterConfig holds cascade knobs.
type RouterConfig struct {
	CacheTTL           Duration `yaml:"cache_ttl"`
	CacheSize          int      `yaml:"cache_size"`
	SemanticThreshold  float64  `yaml:"semantic_threshold"`
	SemanticTopK       int      `yaml:"semantic_top_k"`
	SearchCacheTTL     Duration `yaml:"search_cache_ttl"`
	EmbeddingCacheTTL  Duration `yaml:"embedding_cache_ttl"`
	FuzzyTypoThreshold int      `yaml:"fuzzy_typo_threshold"`
}

// EmbedConfig selects and configures the embedder.
type EmbedConfig struct {
	// Provider is "http" or "openai"; empty disables the semantic stage.
	Provider  string `yaml:"provider"`
	BaseURL   string `yaml:"base_url"`
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	Dimension int    `yaml:"dimension"`
}

// IndexConfig configures the vector index client.
type IndexConfig struct {
	// BaseURL includes the collection path; empty disables the semantic stage.
	BaseURL string   `yaml:"base_url"`
	Timeout Duration `yaml:"timeout"`
}

// LLMConfig configures the fallback classifier.
type LLMConfig struct {
	// Provider is "exec" or "anthropic"; empty disables the LLM stage.
	Provider  string   `yaml:"provider"`
	Command   string   `yaml:"command"`
	Args      []string `yaml:"args"`
	Timeout   Duration `yaml:"timeout"`
	APIKey    string   `yaml:"api_key"`
	Model     string   `yaml:"model"`
	MaxTokens int      `yaml:"max_tokens"`
}

// StorageConfig holds database paths.
type StorageConfig struct {
	AgentsPath   string `yaml:"agents_path"`
	FeedbackPath string `yaml:"feedback_path"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Router: RouterConfig{
			CacheTTL:           Duration(5 * time.Minute),
			CacheSize:          10000,
			SemanticThreshold:  0.7,
			SemanticTopK:       5,
			SearchCacheTTL:     Duration(10 * time.Minute),
			EmbeddingCacheTTL:  Duration(30 * time.Minute),
			FuzzyTypoThreshold: 2,
		},
		LLM: LLMConfig{
			Provider: "exec",
			Command:  "claude",
			Args:     []string{"-p"},
			Timeout:  Duration(30 * time.Second),
		},
		Storage: StorageConfig{
			AgentsPath:   agents.DefaultStorePath,
			FeedbackPath: ".naru/feedback.db",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (or
// NARU_CONFIG, or the default location), then environment overrides. A
// missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		path = DefaultConfigPath
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvironment(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvironment(cfg *Config) {
	if v := os.Getenv("NARU_EMBEDDING_API_KEY"); v != "" {
		cfg.Embedding.APIKey = v
	}
	if v := os.Getenv("NARU_LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("NARU_LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.LLM.Timeout = Duration(d)
		}
	}
	if v := os.Getenv("NARU_SEMANTIC_TOP_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Router.SemanticTopK = n
		}
	}
	if v := os.Getenv("NARU_INDEX_URL"); v != "" {
		cfg.Index.BaseURL = v
	}
	if v := os.Getenv("NARU_EMBEDDING_URL"); v != "" {
		cfg.Embedding.BaseURL = v
	}
}

func (c *Config) validate() error {
	if c.Router.SemanticThreshold < 0 || c.Router.SemanticThreshold > 1 {
		return fmt.Errorf("semantic_threshold %v outside [0,1]", c.Router.SemanticThreshold)
	}
	if c.Router.SemanticTopK <= 0 {
		return fmt.Errorf("semantic_top_k must be positive")
	}
	switch c.Embedding.Provider {
	case "", "http", "openai":
	default:
		return fmt.Errorf("unknown embedding provider %q", c.Embedding.Provider)
	}
	switch c.LLM.Provider {
	case "", "exec", "anthropic":
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	return nil
}
