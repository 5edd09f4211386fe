package llmrouter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/naru-ai/naru/core/agents"
	"github.com/naru-ai/naru/core/routing"
)

// Stage is the LLM fallback classifier. It runs only when every cheaper stage
// has passed, and answers with a fixed confidence of 0.80.
type Stage struct {
	registry *agents.Registry
	runner   Runner
	logger   *slog.Logger
}

// StageConfig configures the LLM stage.
type StageConfig struct {
	Registry *agents.Registry
	Runner   Runner

	// Logger is optional, uses slog.Default() if nil.
	Logger *slog.Logger
}

// NewStage creates the LLM fallback stage.
func NewStage(cfg StageConfig) (*Stage, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if cfg.Runner == nil {
		return nil, fmt.Errorf("runner is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Stage{registry: cfg.Registry, runner: cfg.Runner, logger: logger}, nil
}

// Name implements routing.Stage.
func (s *Stage) Name() string { return "llm" }

// Match implements routing.Stage. Subprocess failure, unparseable output and
// an answer naming an unknown or disabled agent all fall through with nil.
func (s *Stage) Match(ctx context.Context, q *routing.Query) *routing.AgentMatch {
	roster := s.registry.EnabledSnapshot()
	if len(roster) == 0 {
		return nil
	}

	output, err := s.runner.Run(ctx, BuildPrompt(q.Raw, roster))
	if err != nil {
		s.logger.Warn("llm classifier unavailable", "error", err)
		return nil
	}

	decision, err := ParseDecision(output)
	if err != nil {
		s.logger.Warn("llm classifier output rejected", "error", err)
		return nil
	}

	agent := s.registry.GetEnabled(decision.Agent)
	if agent == nil {
		s.logger.Warn("llm classifier named unknown agent", "agent", decision.Agent)
		return nil
	}

	signal := decision.Reasoning
	if signal == "" {
		signal = "llm: " + agent.ID
	}

	return &routing.AgentMatch{
		Agent:         agent,
		Confidence:    routing.ConfidenceLLM,
		MatchedSignal: signal,
		Method:        routing.MethodLLM,
	}
}

// BuildPrompt renders the classification prompt: the enabled roster with
// descriptions, then the message, then the required answer shape.
func BuildPrompt(message string, roster []*agents.Agent) string {
	var b strings.Builder
	b.WriteString("You route messages from a Korean development team to the best specialist agent.\n")
	b.WriteString("Agents:\n")
	for _, a := range roster {
		fmt.Fprintf(&b, "- %s: %s\n", a.ID, a.Description)
	}
	b.WriteString("\nMessage:\n")
	b.WriteString(message)
	b.WriteString("\n\nAnswer with a single JSON object and nothing else, ")
	b.WriteString(`shaped as {"agent": "<agent id>", "reasoning": "<one short sentence>"}. `)
	b.WriteString("The agent field must be one of the listed ids.\n")
	return b.String()
}
