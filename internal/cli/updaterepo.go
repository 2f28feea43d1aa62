// ABOUTME: update-repo subcommand — partial updates to fork-of/author-filter/excludes/default-branch
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/commitmux/internal/cliutil"
	"github.com/blackwell-systems/commitmux/internal/commitmux"
	"github.com/blackwell-systems/commitmux/internal/store"
)

var (
	updateRepoForkOf        string
	updateRepoAuthor        string
	updateRepoExclude       []string
	updateRepoDefaultBranch string
)

var updateRepoCmd = &cobra.Command{
	Use:   "update-repo <name>",
	Short: "Update a registered repo's settings",
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
		if repo == nil {
			return fmt.Errorf("repo '%s' not found", name)
		}

		update := &commitmux.RepoUpdate{}
		anyChange := false

		if cmd.Flags().Changed("fork-of") {
			update.ForkOf = optFromFlag(updateRepoForkOf)
			anyChange = true
		}
		if cmd.Flags().Changed("author") {
			update.AuthorFilter = optFromFlag(updateRepoAuthor)
			anyChange = true
		}
		if cmd.Flags().Changed("default-branch") {
			update.DefaultBranch = optFromFlag(updateRepoDefaultBranch)
			anyChange = true
		}
		if len(updateRepoExclude) > 0 {
			update.ExcludePrefixes = updateRepoExclude
			anyChange = true
		}

		if _, err := db.UpdateRepo(repo.RepoID, update); err != nil {
			return fmt.Errorf("failed to update repo '%s': %w", name, err)
		}

		if anyChange {
			fmt.Fprintf(cmd.OutOrStdout(), "Updated repo '%s'\n", name)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Updated repo '%s' (no changes)\n", name)
		}
		return nil
	},
}

// optFromFlag turns an empty flag value into a Clear and a non-empty
// one into a Set, matching the CLI's "pass an empty string to null
// the column" convention for update-repo's optional string flags.
func optFromFlag(v string) *commitmux.OptString {
	if v == "" {
		return commitmux.Clear()
	}
	return commitmux.Set(v)
}

func init() {
	updateRepoCmd.Flags().StringVar(&updateRepoForkOf, "fork-of", "", "Upstream remote URL (empty clears it)")
	updateRepoCmd.Flags().StringVar(&updateRepoAuthor, "author", "", "Author email filter (empty clears it)")
	updateRepoCmd.Flags().StringArrayVar(&updateRepoExclude, "exclude", nil, "Replace the exclude-prefix list (repeatable)")
	updateRepoCmd.Flags().StringVar(&updateRepoDefaultBranch, "default-branch", "", "Default branch to walk (empty clears it)")
	rootCmd.AddCommand(updateRepoCmd)
}
