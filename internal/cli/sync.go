// ABOUTME: sync subcommand — runs the Coordinator across one or all registered repos
package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/commitmux/internal/cliutil"
	"github.com/blackwell-systems/commitmux/internal/coordinator"
	"github.com/blackwell-systems/commitmux/internal/store"
)

var (
	syncRepoName string
	syncEmbedOnly bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync one or all registered repos",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.Open(cliutil.ResolveDBPath(dbFlag))
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		var repoName *string
		if syncRepoName != "" {
			repoName = &syncRepoName
		}

		results, err := coordinator.New().Run(context.Background(), db, coordinator.RunOptions{
			RepoName:  repoName,
			EmbedOnly: syncEmbedOnly,
		})
		if err != nil {
			return err
		}

		failed := false
		for _, r := range results {
			if r.IngestSummary != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Syncing '%s'... %d commits indexed, %d already indexed, %d filtered\n",
					r.RepoName, r.IngestSummary.CommitsIndexed, r.IngestSummary.CommitsAlreadyIndexed, r.IngestSummary.CommitsFiltered)
				for _, e := range r.IngestSummary.Errors {
					color.Yellow("  warning: %s", e)
				}
			}
			if r.EmbedSummary != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Embedding '%s'... %d embedded, %d failed\n",
					r.RepoName, r.EmbedSummary.Embedded, r.EmbedSummary.Failed)
				for _, e := range r.EmbedSummary.Errors {
					color.Yellow("  warning: %s", e)
				}
			}
			if r.FatalError != nil {
				if r.EmbedSummary != nil {
					color.Yellow("Warning: embedding failed for '%s': %v", r.RepoName, r.FatalError)
				} else {
					color.Red("Error syncing '%s': %v", r.RepoName, r.FatalError)
				}
				failed = true
			}
		}

		if failed {
			return fmt.Errorf("one or more repos failed to sync")
		}
		return nil
	},
}

func init() {
	syncCmd.Flags().StringVar(&syncRepoName, "repo", "", "Sync only this repo")
	syncCmd.Flags().BoolVar(&syncEmbedOnly, "embed-only", false, "Skip ingest, only backfill embeddings")
	rootCmd.AddCommand(syncCmd)
}
