// ABOUTME: Fork-of ancestor hiding: treat an upstream's history as already seen
package ingest

import (
	"context"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/blackwell-systems/commitmux/internal/commitmux"
	"github.com/blackwell-systems/commitmux/internal/gitutil"
)

// hideSetForForkOf returns the set of commit hashes to exclude from
// the walk when repo.ForkOf names an upstream URL: everything up to
// and including the merge base with that upstream's tip. Any failure
// along the way (remote setup, fetch, tip resolution, merge-base) is
// recorded as a warning and the walk proceeds unhidden — fork-of
// exclusion is an optimization, never a correctness requirement.
func hideSetForForkOf(ctx context.Context, gitRepo *gogit.Repository, repo *commitmux.Repo, tip plumbing.Hash, summary *commitmux.IngestSummary) map[plumbing.Hash]bool {
	if repo.ForkOf == nil || *repo.ForkOf == "" {
		return nil
	}

	if err := gitutil.EnsureUpstreamRemote(gitRepo, *repo.ForkOf); err != nil {
		summary.Errors = append(summary.Errors, "warning: failed to configure upstream remote: "+err.Error())
		return nil
	}
	if err := gitutil.FetchUpstream(ctx, gitRepo); err != nil {
		summary.Errors = append(summary.Errors, "warning: failed to fetch upstream: "+err.Error())
	}

	upstreamTip, err := gitutil.ResolveUpstreamTip(gitRepo)
	if err != nil {
		summary.Errors = append(summary.Errors, "warning: could not resolve upstream tip for '"+*repo.ForkOf+"'")
		return nil
	}

	tipCommit, err := gitRepo.CommitObject(tip)
	if err != nil {
		summary.Errors = append(summary.Errors, "warning: failed to load tip commit: "+err.Error())
		return nil
	}
	upstreamCommit, err := gitRepo.CommitObject(upstreamTip)
	if err != nil {
		summary.Errors = append(summary.Errors, "warning: failed to load upstream tip commit: "+err.Error())
		return nil
	}

	base, err := gitutil.MergeBase(gitRepo, tipCommit, upstreamCommit)
	if err != nil {
		summary.Errors = append(summary.Errors, "warning: no merge base with upstream ("+*repo.ForkOf+"): "+err.Error())
		return nil
	}

	hide, err := gitutil.AncestorsOf(gitRepo, base)
	if err != nil {
		summary.Errors = append(summary.Errors, "warning: failed to hide upstream commits: "+err.Error())
		return nil
	}
	return hide
}
