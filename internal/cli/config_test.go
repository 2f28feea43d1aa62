// ABOUTME: Exercises config set's allowlist and empty-value validation
package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigSetRejectsUnknownKey(t *testing.T) {
	err := configSetCmd.RunE(configSetCmd, []string{"bogus.key", "value"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "Unknown config key 'bogus.key'")
	require.Contains(t, err.Error(), "embed.model, embed.endpoint")
}

func TestConfigSetRejectsEmptyValue(t *testing.T) {
	err := configSetCmd.RunE(configSetCmd, []string{"embed.model", ""})
	require.Error(t, err)
}
