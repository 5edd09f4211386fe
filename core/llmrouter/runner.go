package llmrouter

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultRunTimeout bounds one classification subprocess. A hung CLI must not
// stall routing; the context kill is treated like any other failure.
const DefaultRunTimeout = 30 * time.Second

// Runner executes one classification request and returns the raw model
// output. Implementations: ExecRunner (external CLI) and AnthropicClassifier
// (direct API).
type Runner interface {
	Run(ctx context.Context, prompt string) (string, error)
}

// ExecRunner invokes an external LLM CLI as a subprocess, writing the prompt
// to stdin and reading the answer from stdout.
type ExecRunner struct {
	command string
	args    []string
	timeout time.Duration
}

// ExecRunnerConfig configures an ExecRunner.
type ExecRunnerConfig struct {
	// Command is the CLI binary, e.g. "claude".
	Command string

	// Args are fixed arguments passed on every invocation.
	Args []string

	// Timeout defaults to 30 seconds.
	Timeout time.Duration
}

// NewExecRunner creates a subprocess-backed runner.
func NewExecRunner(cfg ExecRunnerConfig) (*ExecRunner, error) {
	if cfg.Command == "" {
		return nil, fmt.Errorf("runner command is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultRunTimeout
	}
	return &ExecRunner{
		command: cfg.Command,
		args:    append([]string(nil), cfg.Args...),
		timeout: timeout,
	}, nil
}

// Run implements Runner. Non-zero exit, timeout and empty output are all
// reported as errors.
func (r *ExecRunner) Run(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.command, r.args...)
	cmd.Stdin = strings.NewReader(prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("classifier subprocess timed out after %s", r.timeout)
		}
		return "", fmt.Errorf("classifier subprocess: %w (stderr: %s)", err, truncateOutput(stderr.String()))
	}

	output := strings.TrimSpace(stdout.String())
	if output == "" {
		return "", fmt.Errorf("classifier subprocess produced no output")
	}
	return output, nil
}

func truncateOutput(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 256 {
		return s[:256]
	}
	return s
}
