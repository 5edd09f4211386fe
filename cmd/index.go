package cmd

import (
	"context"
	"fmt"

	"github.com/naru-ai/naru/core/semantic"
	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the semantic vector index",
}

var indexSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push agent example utterances to the vector index",
	Long: `Embed every enabled agent's example utterances and upsert them into
the vector index. Point ids are derived from agent id and example text, so
repeated syncs overwrite instead of duplicating.`,
	RunE: runIndexSync,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.AddCommand(indexSyncCmd)
}

func runIndexSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if a.embedder == nil || a.index == nil {
		return fmt.Errorf("semantic routing is not configured (embedding provider and index base_url required)")
	}

	indexer := semantic.NewIndexer(a.embedder, a.index)
	count, err := indexer.SyncAgents(ctx, a.registry.List())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "synced %d example points\n", count)
	return nil
}
