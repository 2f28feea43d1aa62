// ABOUTME: Exercises repo-name scoping, unknown repo names, and embed gating and embed-only mode
package coordinator

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/commitmux/internal/commitmux"
	"github.com/blackwell-systems/commitmux/internal/store"
)

func initRepo(t *testing.T, dir string) {
	t.Helper()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(), "GIT_AUTHOR_NAME=tester", "GIT_AUTHOR_EMAIL=tester@example.com",
			"GIT_COMMITTER_NAME=tester", "GIT_COMMITTER_EMAIL=tester@example.com")
		require.NoError(t, cmd.Run())
	}
	require.NoError(t, os.MkdirAll(dir, 0o755))
	run("init")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o644))
	run("add", "a.txt")
	run("commit", "-m", "initial commit")
}

func TestRunSyncsOnlyNamedRepo(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	initRepo(t, dirA)
	initRepo(t, dirB)

	db, err := store.OpenInMemory()
	require.NoError(t, err)
	defer db.Close()

	_, err = db.AddRepo(&commitmux.RepoInput{Name: "a", LocalPath: dirA})
	require.NoError(t, err)
	_, err = db.AddRepo(&commitmux.RepoInput{Name: "b", LocalPath: dirB})
	require.NoError(t, err)

	name := "a"
	results, err := New().Run(context.Background(), db, RunOptions{RepoName: &name})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "a", results[0].RepoName)
	require.Nil(t, results[0].FatalError)
	require.Equal(t, 1, results[0].IngestSummary.CommitsIndexed)
}

func TestRunUnknownRepoNameErrors(t *testing.T) {
	db, err := store.OpenInMemory()
	require.NoError(t, err)
	defer db.Close()

	name := "nope"
	_, err = New().Run(context.Background(), db, RunOptions{RepoName: &name})
	require.Error(t, err)
	require.True(t, commitmux.IsKind(err, commitmux.KindNotFound))
}

func TestRunSkipsEmbedWhenNotEnabled(t *testing.T) {
	dir := t.TempDir()
	initRepo(t, dir)

	db, err := store.OpenInMemory()
	require.NoError(t, err)
	defer db.Close()

	_, err = db.AddRepo(&commitmux.RepoInput{Name: "a", LocalPath: dir, EmbedEnabled: false})
	require.NoError(t, err)

	results, err := New().Run(context.Background(), db, RunOptions{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Nil(t, results[0].EmbedSummary)
}

func TestRunEmbedOnlySkipsIngest(t *testing.T) {
	dir := t.TempDir()
	initRepo(t, dir)

	db, err := store.OpenInMemory()
	require.NoError(t, err)
	defer db.Close()

	_, err = db.AddRepo(&commitmux.RepoInput{Name: "a", LocalPath: dir, EmbedEnabled: false})
	require.NoError(t, err)

	results, err := New().Run(context.Background(), db, RunOptions{EmbedOnly: true})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Nil(t, results[0].IngestSummary)
}
