// ABOUTME: init subcommand — creates (or opens) the commitmux database
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/commitmux/internal/cliutil"
	"github.com/blackwell-systems/commitmux/internal/store"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the commitmux database",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath := cliutil.ResolveDBPath(dbFlag)

		db, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("failed to open database at %s: %w", dbPath, err)
		}
		defer db.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "Initialized commitmux database at %s\n", dbPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
