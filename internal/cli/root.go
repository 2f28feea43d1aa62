// ABOUTME: Root command definition and global --db flag
package cli

import (
	"github.com/spf13/cobra"
)

var dbFlag string

var rootCmd = &cobra.Command{
	Use:   "commitmux",
	Short: "Cross-repo git history index for AI agents",
	Long:  `commitmux indexes commit history across many local git repos and serves it over an MCP tool surface.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbFlag, "db", "", "Path to the commitmux database (default: $COMMITMUX_DB or ~/.commitmux/db.sqlite3)")
}
