// ABOUTME: Exercises diff extraction and ancestor hiding against a repository built on disk in a temp dir
package gitutil

import (
	"os"
	"testing"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/commitmux/internal/commitmux"
)

func initRepo(t *testing.T) (*gogit.Repository, string) {
	t.Helper()
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	return repo, dir
}

func commitFile(t *testing.T, dir string, repo *gogit.Repository, path, content, message string) *object.Commit {
	t.Helper()
	full := dir + "/" + path
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(path)
	require.NoError(t, err)

	hash, err := wt.Commit(message, &gogit.CommitOptions{
		Author: &object.Signature{Name: "Alice", Email: "alice@example.com"},
	})
	require.NoError(t, err)

	commit, err := repo.CommitObject(hash)
	require.NoError(t, err)
	return commit
}

func TestCommitDiffRootCommitAddsAllFiles(t *testing.T) {
	repo, dir := initRepo(t)
	commit := commitFile(t, dir, repo, "a.go", "package a\n", "initial commit")

	files, patch, err := CommitDiff(commit, commitmux.DefaultIgnoreConfig())
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, "a.go", files[0].Path)
	require.Contains(t, patch, "a.go")
}

func TestCommitDiffModifiedFile(t *testing.T) {
	repo, dir := initRepo(t)
	commitFile(t, dir, repo, "a.go", "package a\n", "initial commit")
	second := commitFile(t, dir, repo, "a.go", "package a\n\nfunc F() {}\n", "add F")

	files, patch, err := CommitDiff(second, commitmux.DefaultIgnoreConfig())
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Contains(t, patch, "+func F() {}")
}

func TestCommitDiffExcludesIgnoredPrefix(t *testing.T) {
	repo, dir := initRepo(t)
	require.NoError(t, os.MkdirAll(dir+"/vendor", 0o755))
	full := dir + "/vendor/lib.go"
	require.NoError(t, os.WriteFile(full, []byte("package lib\n"), 0o644))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("vendor/lib.go")
	require.NoError(t, err)
	hash, err := wt.Commit("vendor lib", &gogit.CommitOptions{
		Author: &object.Signature{Name: "Alice", Email: "alice@example.com"},
	})
	require.NoError(t, err)
	commit, err := repo.CommitObject(hash)
	require.NoError(t, err)

	files, patch, err := CommitDiff(commit, commitmux.DefaultIgnoreConfig())
	require.NoError(t, err)
	require.Empty(t, files)
	require.Empty(t, patch)
}

func TestWalkCommitsOldestFirst(t *testing.T) {
	repo, dir := initRepo(t)
	c1 := commitFile(t, dir, repo, "a.go", "v1", "first")
	c2 := commitFile(t, dir, repo, "a.go", "v2", "second")

	commits, err := WalkCommits(repo, c2.Hash, nil)
	require.NoError(t, err)
	require.Len(t, commits, 2)
	require.Equal(t, c1.Hash, commits[0].Hash)
	require.Equal(t, c2.Hash, commits[1].Hash)
}

func TestWalkCommitsHidesAncestors(t *testing.T) {
	repo, dir := initRepo(t)
	c1 := commitFile(t, dir, repo, "a.go", "v1", "first")
	c2 := commitFile(t, dir, repo, "a.go", "v2", "second")

	hide, err := AncestorsOf(repo, c1.Hash)
	require.NoError(t, err)

	commits, err := WalkCommits(repo, c2.Hash, hide)
	require.NoError(t, err)
	require.Len(t, commits, 1)
	require.Equal(t, c2.Hash, commits[0].Hash)
}
