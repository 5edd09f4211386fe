package llmrouter_test

import (
	"context"
	"testing"
	"time"

	"github.com/naru-ai/naru/core/llmrouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunner_Run(t *testing.T) {
	runner, err := llmrouter.NewExecRunner(llmrouter.ExecRunnerConfig{Command: "cat"})
	require.NoError(t, err)

	output, err := runner.Run(context.Background(), `{"agent": "general"}`)
	require.NoError(t, err)
	assert.Equal(t, `{"agent": "general"}`, output)
}

func TestExecRunner_Timeout(t *testing.T) {
	runner, err := llmrouter.NewExecRunner(llmrouter.ExecRunnerConfig{
		Command: "sleep",
		Args:    []string{"5"},
		Timeout: 100 * time.Millisecond,
	})
	require.NoError(t, err)

	_, err = runner.Run(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestExecRunner_NonZeroExit(t *testing.T) {
	runner, err := llmrouter.NewExecRunner(llmrouter.ExecRunnerConfig{Command: "false"})
	require.NoError(t, err)

	_, err = runner.Run(context.Background(), "prompt")
	assert.Error(t, err)
}

func TestExecRunner_EmptyOutput(t *testing.T) {
	runner, err := llmrouter.NewExecRunner(llmrouter.ExecRunnerConfig{Command: "true"})
	require.NoError(t, err)

	_, err = runner.Run(context.Background(), "prompt")
	assert.Error(t, err)
}

func TestExecRunner_RequiresCommand(t *testing.T) {
	_, err := llmrouter.NewExecRunner(llmrouter.ExecRunnerConfig{})
	assert.Error(t, err)
}
