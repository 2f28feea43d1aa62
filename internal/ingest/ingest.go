// ABOUTME: Ingester.SyncRepo — walks one repo's commit graph and writes commits/files/patches to a Store
package ingest

import (
	"context"
	"fmt"
	"strings"

	gogit "github.com/go-git/go-git/v5"

	"github.com/blackwell-systems/commitmux/internal/commitmux"
	"github.com/blackwell-systems/commitmux/internal/gitutil"
)

// GitIngester is the default commitmux.Ingester, backed by go-git.
type GitIngester struct{}

var _ commitmux.Ingester = GitIngester{}

func New() GitIngester {
	return GitIngester{}
}

// SyncRepo walks repo's commit graph from its tip, skipping commits
// already in the store, applying the author filter and fork-of
// ancestor hiding, and upserting commits/files/patches as it goes.
// Per-commit failures are recorded in the returned summary and do not
// abort the walk; the ingest_state row is written regardless of the
// outcome. A failure to fetch the remote before the walk starts is
// fatal and aborts the sync immediately.
func (GitIngester) SyncRepo(ctx context.Context, repo *commitmux.Repo, store commitmux.Store, config commitmux.IgnoreConfig) (*commitmux.IngestSummary, error) {
	summary := &commitmux.IngestSummary{RepoName: repo.Name}

	var gitRepo *gogit.Repository
	var err error
	if repo.RemoteURL != nil {
		gitRepo, err = gitutil.CloneOrFetch(ctx, repo.LocalPath, *repo.RemoteURL)
	} else {
		gitRepo, err = gitutil.Open(repo.LocalPath)
	}
	if err != nil {
		return nil, err
	}

	effectiveConfig := config
	for _, p := range repo.ExcludePrefixes {
		if !containsString(effectiveConfig.PathPrefixes, p) {
			effectiveConfig.PathPrefixes = append(effectiveConfig.PathPrefixes, p)
		}
	}

	tip, err := gitutil.ResolveTip(gitRepo, repo.DefaultBranch)
	if err != nil {
		return nil, err
	}

	hide := hideSetForForkOf(ctx, gitRepo, repo, tip, summary)

	commits, err := gitutil.WalkCommits(gitRepo, tip, hide)
	if err != nil {
		return nil, err
	}

	for _, gitCommit := range commits {
		sha := gitCommit.Hash.String()

		exists, err := store.CommitExists(repo.RepoID, sha)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("warning: failed to check commit existence for %s: %v", sha, err))
		} else if exists {
			summary.CommitsAlreadyIndexed++
			continue
		}

		subject, body := splitMessage(gitCommit.Message)

		commit := &commitmux.Commit{
			RepoID:         repo.RepoID,
			SHA:            sha,
			AuthorName:     gitCommit.Author.Name,
			AuthorEmail:    gitCommit.Author.Email,
			CommitterName:  gitCommit.Committer.Name,
			CommitterEmail: gitCommit.Committer.Email,
			AuthorTime:     gitCommit.Author.When.Unix(),
			CommitTime:     gitCommit.Committer.When.Unix(),
			Subject:        subject,
			Body:           body,
			ParentCount:    gitCommit.NumParents(),
		}

		if repo.AuthorFilter != nil && !strings.EqualFold(commit.AuthorEmail, *repo.AuthorFilter) {
			summary.CommitsFiltered++
			continue
		}

		if err := store.UpsertCommit(commit); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("failed to upsert commit %s: %v", sha, err))
			continue
		}

		files, patchText, err := gitutil.CommitDiff(gitCommit, effectiveConfig)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("failed to diff commit %s: %v", sha, err))
		} else {
			for _, f := range files {
				f.RepoID = repo.RepoID
				f.SHA = sha
			}
			if len(files) > 0 {
				if err := store.UpsertCommitFiles(files); err != nil {
					summary.Errors = append(summary.Errors, fmt.Sprintf("failed to upsert files for commit %s: %v", sha, err))
				}
			}

			if patchText != "" {
				if err := storePatch(store, repo.RepoID, sha, patchText); err != nil {
					summary.Errors = append(summary.Errors, fmt.Sprintf("failed to upsert patch for commit %s: %v", sha, err))
				}
			}
		}

		summary.CommitsIndexed++
	}

	state := &commitmux.IngestState{
		RepoID:        repo.RepoID,
		LastSyncedAt:  nowUnix(),
		LastSyncedSHA: strPtr(tip.String()),
	}
	if len(summary.Errors) > 0 {
		state.LastError = strPtr(summary.Errors[len(summary.Errors)-1])
	}
	if err := store.UpdateIngestState(state); err != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("failed to update ingest state: %v", err))
	}

	return summary, nil
}

// storePatch truncates the preview to 500 runes and hands the raw
// patch text to the store, which owns the only zstd compression step
// on the write path.
func storePatch(store commitmux.Store, repoID int64, sha, text string) error {
	preview := text
	runes := []rune(text)
	if len(runes) > 500 {
		preview = string(runes[:500])
	}

	return store.UpsertPatch(&commitmux.CommitPatch{
		RepoID:       repoID,
		SHA:          sha,
		PatchBlob:    []byte(text),
		PatchPreview: preview,
	})
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func strPtr(s string) *string { return &s }
