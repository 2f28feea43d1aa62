// ABOUTME: Exercises SyncRepo end-to-end against an in-memory Store and a small on-disk repo
package ingest

import (
	"context"
	"os"
	"testing"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/commitmux/internal/commitmux"
	"github.com/blackwell-systems/commitmux/internal/store"
)

func initRepo(t *testing.T) (*gogit.Repository, string) {
	t.Helper()
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	return repo, dir
}

func commitFile(t *testing.T, dir string, repo *gogit.Repository, path, content, message, authorEmail string) {
	t.Helper()
	require.NoError(t, os.WriteFile(dir+"/"+path, []byte(content), 0o644))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(path)
	require.NoError(t, err)
	_, err = wt.Commit(message, &gogit.CommitOptions{
		Author: &object.Signature{Name: "Author", Email: authorEmail},
	})
	require.NoError(t, err)
}

func TestSyncRepoIndexesAllCommits(t *testing.T) {
	gitRepo, dir := initRepo(t)
	commitFile(t, dir, gitRepo, "a.go", "package a\n", "first commit", "alice@example.com")
	commitFile(t, dir, gitRepo, "a.go", "package a\n\nfunc F() {}\n", "add F\n\nsome detail", "alice@example.com")

	s, err := store.OpenInMemory()
	require.NoError(t, err)
	defer s.Close()

	repo, err := s.AddRepo(&commitmux.RepoInput{Name: "r", LocalPath: dir})
	require.NoError(t, err)

	summary, err := New().SyncRepo(context.Background(), repo, s, commitmux.DefaultIgnoreConfig())
	require.NoError(t, err)
	require.Equal(t, 2, summary.CommitsIndexed)
	require.Empty(t, summary.Errors)

	results, err := s.Search("commit", &commitmux.SearchOpts{})
	require.NoError(t, err)
	require.Len(t, results, 1)

	stats, err := s.RepoStats(repo.RepoID)
	require.NoError(t, err)
	require.Equal(t, int64(2), stats.CommitCount)
	require.NotNil(t, stats.LastSyncedSHA)
}

func TestSyncRepoIsIncremental(t *testing.T) {
	gitRepo, dir := initRepo(t)
	commitFile(t, dir, gitRepo, "a.go", "v1", "first", "alice@example.com")

	s, err := store.OpenInMemory()
	require.NoError(t, err)
	defer s.Close()

	repo, err := s.AddRepo(&commitmux.RepoInput{Name: "r", LocalPath: dir})
	require.NoError(t, err)

	_, err = New().SyncRepo(context.Background(), repo, s, commitmux.DefaultIgnoreConfig())
	require.NoError(t, err)

	commitFile(t, dir, gitRepo, "a.go", "v2", "second", "alice@example.com")

	summary, err := New().SyncRepo(context.Background(), repo, s, commitmux.DefaultIgnoreConfig())
	require.NoError(t, err)
	require.Equal(t, 1, summary.CommitsIndexed)
	require.Equal(t, 1, summary.CommitsAlreadyIndexed)
}

func TestSyncRepoAppliesAuthorFilter(t *testing.T) {
	gitRepo, dir := initRepo(t)
	commitFile(t, dir, gitRepo, "a.go", "v1", "from alice", "alice@example.com")
	commitFile(t, dir, gitRepo, "a.go", "v2", "from bob", "bob@example.com")

	s, err := store.OpenInMemory()
	require.NoError(t, err)
	defer s.Close()

	filter := "alice@example.com"
	repo, err := s.AddRepo(&commitmux.RepoInput{Name: "r", LocalPath: dir, AuthorFilter: &filter})
	require.NoError(t, err)

	summary, err := New().SyncRepo(context.Background(), repo, s, commitmux.DefaultIgnoreConfig())
	require.NoError(t, err)
	require.Equal(t, 1, summary.CommitsIndexed)
	require.Equal(t, 1, summary.CommitsFiltered)
}

func TestSyncRepoStoresPatchRoundTrip(t *testing.T) {
	gitRepo, dir := initRepo(t)
	commitFile(t, dir, gitRepo, "a.go", "package a\n", "first commit", "alice@example.com")
	commitFile(t, dir, gitRepo, "a.go", "package a\n\nfunc F() {}\n", "add F", "alice@example.com")

	s, err := store.OpenInMemory()
	require.NoError(t, err)
	defer s.Close()

	repo, err := s.AddRepo(&commitmux.RepoInput{Name: "r", LocalPath: dir})
	require.NoError(t, err)

	summary, err := New().SyncRepo(context.Background(), repo, s, commitmux.DefaultIgnoreConfig())
	require.NoError(t, err)
	require.Empty(t, summary.Errors)

	head, err := gitRepo.Head()
	require.NoError(t, err)

	patch, err := s.GetPatch("r", head.Hash().String(), nil)
	require.NoError(t, err)
	require.NotNil(t, patch)
	require.Contains(t, patch.PatchText, "func F()")
	require.NotContains(t, patch.PatchText, "\x28\xb5\x2f\xfd") // zstd magic bytes: no leftover compression layer
}

func TestSyncRepoAbortsOnFetchFailure(t *testing.T) {
	gitRepo, dir := initRepo(t)
	commitFile(t, dir, gitRepo, "a.go", "v1", "first", "alice@example.com")

	s, err := store.OpenInMemory()
	require.NoError(t, err)
	defer s.Close()

	remote := "https://example.invalid/does-not-exist.git"
	repo, err := s.AddRepo(&commitmux.RepoInput{Name: "r", LocalPath: dir, RemoteURL: &remote})
	require.NoError(t, err)

	summary, err := New().SyncRepo(context.Background(), repo, s, commitmux.DefaultIgnoreConfig())
	require.Error(t, err)
	require.Nil(t, summary)

	stats, err := s.RepoStats(repo.RepoID)
	require.NoError(t, err)
	require.Zero(t, stats.CommitCount)
}

func TestSplitMessageSeparatesSubjectAndBody(t *testing.T) {
	subject, body := splitMessage("Fix the thing\n\nLonger explanation\nacross two lines\n")
	require.Equal(t, "Fix the thing", subject)
	require.NotNil(t, body)
	require.Equal(t, "Longer explanation\nacross two lines", *body)
}

func TestSplitMessageSubjectOnly(t *testing.T) {
	subject, body := splitMessage("Just a subject\n")
	require.Equal(t, "Just a subject", subject)
	require.Nil(t, body)
}
