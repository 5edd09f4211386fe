package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var routeUser string

var routeCmd = &cobra.Command{
	Use:   "route <message>",
	Short: "Route a message to the best agent",
	Long: `Route a free-text message through the classifier cascade and print
the selected agent, confidence, matched signal and method as JSON.

Examples:
  naru route "이 MR 리뷰해줘"
  naru route "this endpoint crashes under load" --user kim`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRoute,
}

func init() {
	rootCmd.AddCommand(routeCmd)
	routeCmd.Flags().StringVarP(&routeUser, "user", "u", "", "User id for personalized routing")
}

type routeOutput struct {
	AgentID       string  `json:"agent_id"`
	AgentName     string  `json:"agent_name"`
	Confidence    float64 `json:"confidence"`
	Method        string  `json:"method"`
	MatchedSignal string  `json:"matched_signal"`
}

func runRoute(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	message := strings.Join(args, " ")
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("message is empty")
	}

	match := a.pipeline.RouteForUser(ctx, message, routeUser)

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(routeOutput{
		AgentID:       match.Agent.ID,
		AgentName:     match.Agent.Name,
		Confidence:    match.Confidence,
		Method:        string(match.Method),
		MatchedSignal: match.MatchedSignal,
	})
}
