// ABOUTME: serve subcommand — runs the MCP server over stdio
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/commitmux/internal/cliutil"
	"github.com/blackwell-systems/commitmux/internal/mcp"
	"github.com/blackwell-systems/commitmux/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the commitmux MCP server over stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.Open(cliutil.ResolveDBPath(dbFlag))
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		server := mcp.NewServer(db)
		return server.Serve(os.Stdin, os.Stdout, os.Stderr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
