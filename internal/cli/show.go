// ABOUTME: show subcommand — prints a single commit's metadata as JSON
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/commitmux/internal/cliutil"
	"github.com/blackwell-systems/commitmux/internal/store"
)

var showCmd = &cobra.Command{
	Use:   "show <repo> <sha>",
	Short: "Show a commit's metadata",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, sha := args[0], args[1]

		db, err := store.Open(cliutil.ResolveDBPath(dbFlag))
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		detail, err := db.GetCommit(repo, sha)
		if err != nil {
			return fmt.Errorf("failed to get commit: %w", err)
		}
		if detail == nil {
			return fmt.Errorf("commit not found")
		}

		encoded, err := json.MarshalIndent(detail, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to serialize commit to JSON: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
