package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/naru-ai/naru/core/agents"
	"github.com/spf13/cobra"
)

var (
	agentName        string
	agentDescription string
	agentKeywords    []string
	agentExamples    []string
	agentTools       []string
	agentModel       string
	agentPriority    int
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "Manage the agent registry",
	Long: `Manage the agent registry.

Examples:
  naru agents list
  naru agents add perf --name "성능 분석가" --keywords 성능,느려
  naru agents disable debug
  naru agents remove perf`,
	RunE: runAgentsList,
}

var agentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered agents",
	RunE:  runAgentsList,
}

var agentsAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Register a new agent",
	Args:  cobra.ExactArgs(1),
	RunE:  runAgentsAdd,
}

var agentsRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove an agent (builtin agents are protected)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAgentsRemove,
}

var agentsEnableCmd = &cobra.Command{
	Use:   "enable <id>",
	Short: "Enable an agent",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setAgentEnabled(cmd, args[0], true) },
}

var agentsDisableCmd = &cobra.Command{
	Use:   "disable <id>",
	Short: "Disable an agent",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setAgentEnabled(cmd, args[0], false) },
}

func init() {
	rootCmd.AddCommand(agentsCmd)
	agentsCmd.AddCommand(agentsListCmd)
	agentsCmd.AddCommand(agentsAddCmd)
	agentsCmd.AddCommand(agentsRemoveCmd)
	agentsCmd.AddCommand(agentsEnableCmd)
	agentsCmd.AddCommand(agentsDisableCmd)

	agentsAddCmd.Flags().StringVar(&agentName, "name", "", "Display name")
	agentsAddCmd.Flags().StringVar(&agentDescription, "description", "", "What the agent handles")
	agentsAddCmd.Flags().StringSliceVar(&agentKeywords, "keywords", nil, "Routing keywords")
	agentsAddCmd.Flags().StringSliceVar(&agentExamples, "examples", nil, "Example utterances for semantic routing")
	agentsAddCmd.Flags().StringSliceVar(&agentTools, "tools", nil, "Allowed tool patterns")
	agentsAddCmd.Flags().StringVar(&agentModel, "model", "", "Model id")
	agentsAddCmd.Flags().IntVar(&agentPriority, "priority", 0, "Routing priority")
}

type agentListOutput struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Enabled  bool     `json:"enabled"`
	Default  bool     `json:"default,omitempty"`
	Builtin  bool     `json:"builtin,omitempty"`
	Priority int      `json:"priority,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
}

func runAgentsList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	list := a.registry.List()
	out := make([]agentListOutput, 0, len(list))
	for _, agent := range list {
		out = append(out, agentListOutput{
			ID:       agent.ID,
			Name:     agent.Name,
			Enabled:  agent.Enabled,
			Default:  agent.IsDefault,
			Builtin:  agents.IsProtected(agent.ID),
			Priority: agent.Priority,
			Keywords: agent.Keywords,
		})
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func runAgentsAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	agent := &agents.Agent{
		ID:           args[0],
		Name:         agentName,
		Description:  agentDescription,
		Keywords:     agentKeywords,
		Examples:     agentExamples,
		AllowedTools: agentTools,
		Model:        agentModel,
		Priority:     agentPriority,
		Enabled:      true,
	}
	if agent.Name == "" {
		agent.Name = agent.ID
	}

	if !a.registry.Add(ctx, agent) {
		return fmt.Errorf("agent %q not added (invalid definition or duplicate id)", agent.ID)
	}
	a.pipeline.InvalidateCache()

	fmt.Fprintf(cmd.OutOrStdout(), "agent %s added\n", agent.ID)
	return nil
}

func runAgentsRemove(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if !a.registry.Remove(ctx, args[0]) {
		return fmt.Errorf("agent %q not removed (unknown or protected)", args[0])
	}
	a.pipeline.InvalidateCache()

	fmt.Fprintf(cmd.OutOrStdout(), "agent %s removed\n", args[0])
	return nil
}

func setAgentEnabled(cmd *cobra.Command, id string, enabled bool) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if !a.registry.SetEnabled(ctx, id, enabled) {
		return fmt.Errorf("agent %q not found", id)
	}
	a.pipeline.InvalidateCache()

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "agent %s %s\n", id, state)
	return nil
}
