// ABOUTME: Thin sync orchestration glue: per-repo ingest then embed-backfill, non-fatal to siblings
package coordinator

import (
	"context"

	"github.com/blackwell-systems/commitmux/internal/commitmux"
	"github.com/blackwell-systems/commitmux/internal/embed"
	"github.com/blackwell-systems/commitmux/internal/ingest"
)

// RunOptions narrows a Run call to a single repo and/or skips the
// ingest step entirely (embed-only backfill).
type RunOptions struct {
	RepoName  *string
	EmbedOnly bool
}

// RepoResult is one repo's outcome from a Run call.
type RepoResult struct {
	RepoName      string
	IngestSummary *commitmux.IngestSummary
	EmbedSummary  *commitmux.EmbedSummary
	FatalError    error
}

// Coordinator runs Ingester.SyncRepo followed by Embedder.EmbedPending
// (when the repo opts in) across a set of repos, one at a time.
type Coordinator struct {
	ingester commitmux.Ingester
	config   commitmux.IgnoreConfig
}

func New() *Coordinator {
	return &Coordinator{ingester: ingest.New(), config: commitmux.DefaultIgnoreConfig()}
}

// Run syncs every registered repo, or just opts.RepoName if set. A
// failure to look up the repos is returned from Run. A fatal error on
// one repo (ingest failure, embed setup) does not stop the others; it
// is recorded on that repo's RepoResult.
func (c *Coordinator) Run(ctx context.Context, store commitmux.Store, opts RunOptions) ([]RepoResult, error) {
	repos, err := c.resolveRepos(store, opts.RepoName)
	if err != nil {
		return nil, err
	}

	results := make([]RepoResult, 0, len(repos))
	for _, repo := range repos {
		results = append(results, c.runOne(ctx, store, repo, opts.EmbedOnly))
	}
	return results, nil
}

func (c *Coordinator) resolveRepos(store commitmux.Store, repoName *string) ([]*commitmux.Repo, error) {
	if repoName != nil {
		repo, err := store.GetRepoByName(*repoName)
		if err != nil {
			return nil, err
		}
		if repo == nil {
			return nil, commitmux.NewError(commitmux.KindNotFound, "repo '"+*repoName+"' not found", nil)
		}
		return []*commitmux.Repo{repo}, nil
	}
	return store.ListRepos()
}

func (c *Coordinator) runOne(ctx context.Context, store commitmux.Store, repo *commitmux.Repo, embedOnly bool) RepoResult {
	result := RepoResult{RepoName: repo.Name}

	if !embedOnly {
		summary, err := c.ingester.SyncRepo(ctx, repo, store, c.config)
		if err != nil {
			result.FatalError = err
			return result
		}
		result.IngestSummary = summary
	}

	if !repo.EmbedEnabled {
		return result
	}

	cfg, err := embed.ConfigFromStore(store)
	if err != nil {
		result.FatalError = err
		return result
	}
	embedder := embed.New(cfg)

	embedSummary, err := embed.EmbedPending(ctx, store, embedder, repo.RepoID, embed.DefaultBatchSize)
	result.EmbedSummary = embedSummary
	if err != nil {
		result.FatalError = err
	}
	return result
}
