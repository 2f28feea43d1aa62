// ABOUTME: go-git wrapper: clone/fetch, tip resolution, fork-of ancestor hiding, and diff extraction
// ABOUTME: The Ingester's only window into git plumbing
package gitutil

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"github.com/blackwell-systems/commitmux/internal/commitmux"
)

// Open opens an existing local working copy.
func Open(localPath string) (*gogit.Repository, error) {
	repo, err := gogit.PlainOpen(localPath)
	if err != nil {
		return nil, commitmux.NewError(commitmux.KindGit, fmt.Sprintf("'%s' is not a git repository", localPath), err)
	}
	return repo, nil
}

// CloneOrFetch clones remoteURL into localPath if the path is absent
// or empty, otherwise fetches "origin" to refresh it. Failures here
// are fatal to the calling sync.
func CloneOrFetch(ctx context.Context, localPath, remoteURL string) (*gogit.Repository, error) {
	repo, openErr := gogit.PlainOpen(localPath)
	if openErr == nil {
		err := repo.FetchContext(ctx, &gogit.FetchOptions{
			RemoteName: "origin",
			Auth:       authForURL(remoteURL),
			Force:      true,
		})
		if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
			return nil, commitmux.NewError(commitmux.KindGit, "fetch origin", err)
		}
		return repo, nil
	}

	repo, err := gogit.PlainCloneContext(ctx, localPath, false, &gogit.CloneOptions{
		URL:  remoteURL,
		Auth: authForURL(remoteURL),
	})
	if err != nil {
		return nil, commitmux.NewError(commitmux.KindGit, "clone repository", err)
	}
	return repo, nil
}

// authForURL returns SSH-agent auth for SSH-style remotes and nil
// (anonymous) for HTTPS remotes.
func authForURL(remoteURL string) transport.AuthMethod {
	if strings.HasPrefix(remoteURL, "git@") || strings.HasPrefix(remoteURL, "ssh://") {
		auth, err := ssh.NewSSHAgentAuth("git")
		if err != nil {
			return nil
		}
		return auth
	}
	return nil
}

// ResolveTip resolves the walk tip: the configured default branch if
// set and found, else HEAD.
func ResolveTip(repo *gogit.Repository, defaultBranch *string) (plumbing.Hash, error) {
	if defaultBranch != nil && *defaultBranch != "" {
		if ref, err := repo.Reference(plumbing.NewBranchReferenceName(*defaultBranch), true); err == nil {
			return ref.Hash(), nil
		}
		if hash, err := repo.ResolveRevision(plumbing.Revision(*defaultBranch)); err == nil {
			return *hash, nil
		}
	}
	head, err := repo.Head()
	if err != nil {
		return plumbing.ZeroHash, commitmux.NewError(commitmux.KindGit, "resolve HEAD", err)
	}
	return head.Hash(), nil
}

// EnsureUpstreamRemote creates or repoints the "upstream" remote at
// upstreamURL. Failures are the caller's to treat as non-fatal.
func EnsureUpstreamRemote(repo *gogit.Repository, upstreamURL string) error {
	remoteConfig := &config.RemoteConfig{
		Name: "upstream",
		URLs: []string{upstreamURL},
	}

	remote, err := repo.Remote("upstream")
	if err == gogit.ErrRemoteNotFound {
		_, err = repo.CreateRemote(remoteConfig)
		return err
	}
	if err != nil {
		return err
	}
	cfg := remote.Config()
	if len(cfg.URLs) == 0 || cfg.URLs[0] != upstreamURL {
		if err := repo.DeleteRemote("upstream"); err != nil {
			return err
		}
		_, err = repo.CreateRemote(remoteConfig)
		return err
	}
	return nil
}

// FetchUpstream fetches the "upstream" remote.
func FetchUpstream(ctx context.Context, repo *gogit.Repository) error {
	err := repo.FetchContext(ctx, &gogit.FetchOptions{RemoteName: "upstream"})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return err
	}
	return nil
}

// ResolveUpstreamTip tries refs/remotes/upstream/HEAD, then /main, then
// /master.
func ResolveUpstreamTip(repo *gogit.Repository) (plumbing.Hash, error) {
	for _, name := range []string{"HEAD", "main", "master"} {
		ref, err := repo.Reference(plumbing.NewRemoteReferenceName("upstream", name), true)
		if err == nil {
			return ref.Hash(), nil
		}
	}
	return plumbing.ZeroHash, fmt.Errorf("no upstream tip found")
}

// AncestorsOf returns the set of commit hashes reachable from (and
// including) from, used to hide fork-of history from the walk.
func AncestorsOf(repo *gogit.Repository, from plumbing.Hash) (map[plumbing.Hash]bool, error) {
	iter, err := repo.Log(&gogit.LogOptions{From: from})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	set := make(map[plumbing.Hash]bool)
	err = iter.ForEach(func(c *object.Commit) error {
		set[c.Hash] = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

// WalkCommits returns commits reachable from tip in oldest-first order,
// skipping any hash present in hide.
func WalkCommits(repo *gogit.Repository, tip plumbing.Hash, hide map[plumbing.Hash]bool) ([]*object.Commit, error) {
	iter, err := repo.Log(&gogit.LogOptions{From: tip, Order: gogit.LogOrderCommitterTime})
	if err != nil {
		return nil, commitmux.NewError(commitmux.KindGit, "walk commits", err)
	}
	defer iter.Close()

	var commits []*object.Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if hide != nil && hide[c.Hash] {
			return nil
		}
		commits = append(commits, c)
		return nil
	})
	if err != nil {
		return nil, commitmux.NewError(commitmux.KindGit, "walk commits", err)
	}

	// Newest-first from the log iterator; reverse to oldest-first so
	// downstream idempotency (commit_exists short-circuit) sees parents
	// indexed before children on a resumed walk.
	for i, j := 0, len(commits)-1; i < j; i, j = i+1, j-1 {
		commits[i], commits[j] = commits[j], commits[i]
	}
	return commits, nil
}

// MergeBase returns the merge base of a and b, or ZeroHash if none
// exists.
func MergeBase(repo *gogit.Repository, a, b *object.Commit) (plumbing.Hash, error) {
	bases, err := a.MergeBase(b)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	if len(bases) == 0 {
		return plumbing.ZeroHash, fmt.Errorf("no common ancestor")
	}
	return bases[0].Hash, nil
}
