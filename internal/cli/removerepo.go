// ABOUTME: remove-repo subcommand — drops a repo's rows and its managed clone, if any
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/commitmux/internal/cliutil"
	"github.com/blackwell-systems/commitmux/internal/store"
)

var removeRepoCmd = &cobra.Command{
	Use:   "remove-repo <name>",
	Short: "Unregister a repo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		db, err := store.Open(cliutil.ResolveDBPath(dbFlag))
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		repo, err := db.GetRepoByName(name)
		if err != nil {
			return fmt.Errorf("failed to look up repo '%s': %w", name, err)
		}

		if err := db.RemoveRepo(name); err != nil {
			return fmt.Errorf("failed to remove repo '%s': %w", name, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed repo '%s'\n", name)

		if repo != nil && cliutil.IsManagedClone(repo.LocalPath) {
			if err := os.RemoveAll(repo.LocalPath); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to remove clone at %s: %v\n", repo.LocalPath, err)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed managed clone at %s\n", repo.LocalPath)
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(removeRepoCmd)
}
