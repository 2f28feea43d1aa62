// ABOUTME: config get/set subcommands — read and write rows in the Store's config table
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/commitmux/internal/cliutil"
	"github.com/blackwell-systems/commitmux/internal/store"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read or write commitmux configuration (e.g. embed.model, embed.endpoint)",
}

// configKeyAllowlist is the set of keys `config set` accepts. The Store
// itself performs no validation (see internal/store.Store.SetConfig);
// every caller that exposes a write path is responsible for checking
// this list first.
var configKeyAllowlist = map[string]bool{
	"embed.model":    true,
	"embed.endpoint": true,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a config value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.Open(cliutil.ResolveDBPath(dbFlag))
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		value, err := db.GetConfig(args[0])
		if err != nil {
			return fmt.Errorf("failed to read config '%s': %w", args[0], err)
		}
		if value == nil {
			return fmt.Errorf("config key '%s' is not set", args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), *value)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !configKeyAllowlist[args[0]] {
			return fmt.Errorf("Unknown config key '%s'. Valid keys: embed.model, embed.endpoint.", args[0])
		}
		if args[1] == "" {
			return fmt.Errorf("config value for '%s' must not be empty", args[0])
		}

		db, err := store.Open(cliutil.ResolveDBPath(dbFlag))
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		if err := db.SetConfig(args[0], args[1]); err != nil {
			return fmt.Errorf("failed to set config '%s': %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
