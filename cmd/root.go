// Package cmd provides the naru CLI: message routing, agent administration,
// vector index maintenance and feedback recording.
package cmd

import (
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "naru",
	Short: "Naru - message routing for a team of AI agents",
	Long: `Naru routes free-text messages, Korean or English, to the best
specialist agent through a cascade of classifiers: keyword, pattern,
Korean fuzzy matching, semantic search and an LLM fallback.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
}

func Execute() error {
	return rootCmd.Execute()
}
