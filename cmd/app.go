package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/naru-ai/naru/core/agents"
	"github.com/naru-ai/naru/core/config"
	"github.com/naru-ai/naru/core/feedback"
	"github.com/naru-ai/naru/core/llmrouter"
	"github.com/naru-ai/naru/core/routing"
	"github.com/naru-ai/naru/core/semantic"
)

// app holds everything a command needs wired together.
type app struct {
	cfg      *config.Config
	registry *agents.Registry
	pipeline *routing.Pipeline
	learner  *feedback.SQLiteLearner
	embedder semantic.Embedder
	index    semantic.VectorIndex
	logger   *slog.Logger

	closers []func() error
}

// newApp loads config and builds the pipeline. Stages whose collaborators
// are not configured are left out of the cascade; routing still works on the
// lexical stages alone.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	a := &app{cfg: cfg, logger: logger}

	store, err := agents.NewSQLiteStore(agents.SQLiteStoreConfig{Path: cfg.Storage.AgentsPath})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store.Close)

	registry, err := agents.NewRegistry(ctx, agents.RegistryConfig{Store: store, Logger: logger})
	if err != nil {
		a.close()
		return nil, err
	}
	a.registry = registry

	for i := range cfg.Agents {
		seed := cfg.Agents[i]
		if registry.Get(seed.ID) == nil {
			registry.Add(ctx, &seed)
		}
	}

	stages := []routing.Stage{
		routing.NewKeywordStage(registry),
		routing.NewPatternStage(registry),
		routing.NewFuzzyKoreanStageWithThreshold(registry, cfg.Router.FuzzyTypoThreshold),
	}

	if stage, err := a.buildSemanticStage(); err != nil {
		a.close()
		return nil, err
	} else if stage != nil {
		stages = append(stages, stage)
	}

	if stage, err := a.buildLLMStage(); err != nil {
		a.close()
		return nil, err
	} else if stage != nil {
		stages = append(stages, stage)
	}

	var personalizer routing.Personalizer
	if cfg.Storage.FeedbackPath != "" {
		learner, err := feedback.NewSQLiteLearner(feedback.SQLiteLearnerConfig{Path: cfg.Storage.FeedbackPath})
		if err != nil {
			a.close()
			return nil, err
		}
		a.learner = learner
		a.closers = append(a.closers, learner.Close)

		adjuster, err := feedback.NewAdjuster(feedback.AdjusterConfig{
			Registry: registry,
			Learner:  learner,
			Logger:   logger,
		})
		if err != nil {
			a.close()
			return nil, err
		}
		personalizer = adjuster
	}

	a.pipeline = routing.NewPipeline(routing.PipelineConfig{
		Registry:     registry,
		Stages:       stages,
		Personalizer: personalizer,
		CacheConfig: routing.RouteCacheConfig{
			MaxSize: cfg.Router.CacheSize,
			TTL:     cfg.Router.CacheTTL.Std(),
		},
		Logger: logger,
	})

	return a, nil
}

func (a *app) buildSemanticStage() (routing.Stage, error) {
	cfg := a.cfg

	switch cfg.Embedding.Provider {
	case "http":
		embedder, err := semantic.NewHTTPEmbedder(semantic.HTTPEmbedderConfig{
			BaseURL:   cfg.Embedding.BaseURL,
			Dimension: cfg.Embedding.Dimension,
		})
		if err != nil {
			return nil, fmt.Errorf("embedding config: %w", err)
		}
		a.embedder = embedder
	case "openai":
		embedder, err := semantic.NewOpenAIEmbedder(semantic.OpenAIEmbedderConfig{
			APIKey:    cfg.Embedding.APIKey,
			BaseURL:   cfg.Embedding.BaseURL,
			Model:     cfg.Embedding.Model,
			Dimension: cfg.Embedding.Dimension,
		})
		if err != nil {
			return nil, fmt.Errorf("embedding config: %w", err)
		}
		a.embedder = embedder
	default:
		return nil, nil
	}

	if cfg.Index.BaseURL == "" {
		return nil, nil
	}
	index, err := semantic.NewHTTPVectorIndex(semantic.HTTPVectorIndexConfig{
		BaseURL: cfg.Index.BaseURL,
		Timeout: cfg.Index.Timeout.Std(),
	})
	if err != nil {
		return nil, fmt.Errorf("index config: %w", err)
	}
	a.index = index

	embedCache, err := semantic.NewEmbeddingCache(semantic.EmbeddingCacheConfig{
		TTL: cfg.Router.EmbeddingCacheTTL.Std(),
	})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() error { embedCache.Close(); return nil })

	return semantic.NewStage(semantic.StageConfig{
		Registry:       a.registry,
		Embedder:       a.embedder,
		Index:          index,
		TopK:           cfg.Router.SemanticTopK,
		ScoreThreshold: cfg.Router.SemanticThreshold,
		EmbeddingCache: embedCache,
		SearchCacheTTL: cfg.Router.SearchCacheTTL.Std(),
		Logger:         a.logger,
	})
}

func (a *app) buildLLMStage() (routing.Stage, error) {
	cfg := a.cfg

	var runner llmrouter.Runner
	switch cfg.LLM.Provider {
	case "exec":
		r, err := llmrouter.NewExecRunner(llmrouter.ExecRunnerConfig{
			Command: cfg.LLM.Command,
			Args:    cfg.LLM.Args,
			Timeout: cfg.LLM.Timeout.Std(),
		})
		if err != nil {
			return nil, fmt.Errorf("llm config: %w", err)
		}
		runner = r
	case "anthropic":
		r, err := llmrouter.NewAnthropicClassifier(llmrouter.AnthropicClassifierConfig{
			APIKey:    cfg.LLM.APIKey,
			Model:     cfg.LLM.Model,
			MaxTokens: cfg.LLM.MaxTokens,
			Timeout:   cfg.LLM.Timeout.Std(),
		})
		if err != nil {
			return nil, fmt.Errorf("llm config: %w", err)
		}
		runner = r
	default:
		return nil, nil
	}

	return llmrouter.NewStage(llmrouter.StageConfig{
		Registry: a.registry,
		Runner:   runner,
		Logger:   a.logger,
	})
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
