package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var feedbackQuery string

var feedbackCmd = &cobra.Command{
	Use:   "feedback <user> <agent> <score>",
	Short: "Record a routing satisfaction signal",
	Long: `Record how satisfied a user was with an agent for a query. Score is
in [0,1]; signals feed per-user routing personalization.

Example:
  naru feedback kim code-review 0.9 --query "이 MR 리뷰해줘"`,
	Args: cobra.ExactArgs(3),
	RunE: runFeedback,
}

func init() {
	rootCmd.AddCommand(feedbackCmd)
	feedbackCmd.Flags().StringVarP(&feedbackQuery, "query", "q", "", "The query the feedback is about")
	feedbackCmd.MarkFlagRequired("query")
}

func runFeedback(cmd *cobra.Command, args []string) error {
	score, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("score must be a number in [0,1]: %w", err)
	}

	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if a.learner == nil {
		return fmt.Errorf("feedback storage is not configured")
	}
	if a.registry.Get(args[1]) == nil {
		return fmt.Errorf("unknown agent %q", args[1])
	}

	if err := a.learner.Record(ctx, args[0], args[1], feedbackQuery, score); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "recorded feedback for %s -> %s (%.2f)\n", args[0], args[1], score)
	return nil
}
