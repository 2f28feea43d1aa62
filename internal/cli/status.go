// ABOUTME: status subcommand — fixed-width table of repo/commit-count/last-synced
package cli

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/commitmux/internal/cliutil"
	"github.com/blackwell-systems/commitmux/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show indexed commit counts and last-sync time per repo",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.Open(cliutil.ResolveDBPath(dbFlag))
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		repos, err := db.ListRepos()
		if err != nil {
			return fmt.Errorf("failed to list repos: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%-20s %8s  LAST SYNCED\n", "REPO", "COMMITS")
		for _, r := range repos {
			stats, err := db.RepoStats(r.RepoID)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error fetching stats for '%s': %v\n", r.Name, err)
				continue
			}

			lastSynced := "never"
			if stats.LastSyncedAt != nil {
				lastSynced = time.Unix(*stats.LastSyncedAt, 0).UTC().Format("2006-01-02 15:04:05")
			}

			line := fmt.Sprintf("%-20s %8d  %s", r.Name, stats.CommitCount, lastSynced)
			if stats.LastError != nil {
				color.Red(line + "  (last error: " + *stats.LastError + ")")
			} else if stats.LastSyncedAt == nil {
				color.Yellow(line)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
