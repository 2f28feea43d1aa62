// ABOUTME: Exercises the flag/env/default precedence of ResolveDBPath
package cliutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveDBPathFlagWins(t *testing.T) {
	t.Setenv("COMMITMUX_DB", "/env/path.db")
	require.Equal(t, "/flag/path.db", ResolveDBPath("/flag/path.db"))
}

func TestResolveDBPathFallsBackToEnv(t *testing.T) {
	t.Setenv("COMMITMUX_DB", "/env/path.db")
	require.Equal(t, "/env/path.db", ResolveDBPath(""))
}

func TestResolveDBPathDefault(t *testing.T) {
	t.Setenv("COMMITMUX_DB", "")
	t.Setenv("HOME", "/home/tester")
	require.Equal(t, filepath.Join("/home/tester", ".commitmux", "db.sqlite3"), ResolveDBPath(""))
}

func TestIsManagedCloneRecognizesChildPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	require.True(t, IsManagedClone(ManagedClonePath("myrepo")))
	require.False(t, IsManagedClone("/some/other/path"))
}

func TestUniqueClonePathAvoidsCollision(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	first := UniqueClonePath("myrepo")
	require.Equal(t, ManagedClonePath("myrepo"), first)

	require.NoError(t, os.MkdirAll(first, 0o755))

	second := UniqueClonePath("myrepo")
	require.NotEqual(t, first, second)
	require.Contains(t, second, ManagedClonePath("myrepo")+"-")
}
