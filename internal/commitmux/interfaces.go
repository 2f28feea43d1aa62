// ABOUTME: Interface contracts shared by store, ingest, embed, and mcp
// ABOUTME: Store is the single persistence authority; Ingester and Embedder depend on it
package commitmux

import "context"

// Store is the single persistence authority for the core. Every other
// component holds one by interface value and never mutates state
// directly.
type Store interface {
	AddRepo(input *RepoInput) (*Repo, error)
	ListRepos() ([]*Repo, error)
	GetRepoByName(name string) (*Repo, error)
	RemoveRepo(name string) error
	UpdateRepo(repoID int64, update *RepoUpdate) (*Repo, error)
	ListReposWithStats() ([]*RepoListEntry, error)
	RepoStats(repoID int64) (*RepoStats, error)

	UpsertCommit(commit *Commit) error
	UpsertCommitFiles(files []*CommitFile) error
	UpsertPatch(patch *CommitPatch) error
	CommitExists(repoID int64, sha string) (bool, error)

	Search(query string, opts *SearchOpts) ([]*SearchResult, error)
	Touches(pathSubstring string, opts *TouchOpts) ([]*TouchResult, error)
	GetCommit(repoName, shaOrPrefix string) (*CommitDetail, error)
	GetPatch(repoName, sha string, maxBytes *int) (*PatchResult, error)
	SearchSemantic(vector []float32, opts *SemanticSearchOpts) ([]*SearchResult, error)

	UpdateIngestState(state *IngestState) error

	GetConfig(key string) (*string, error)
	SetConfig(key, value string) error

	GetCommitsWithoutEmbeddings(repoID int64, limit int) ([]*EmbedCommit, error)
	StoreEmbedding(c *EmbedCommit, vector []float32) error
	CountEmbeddingsForRepo(repoID int64) (int64, error)

	Close() error
}

// Ingester walks a repository's commit graph and writes to a Store.
type Ingester interface {
	SyncRepo(ctx context.Context, repo *Repo, store Store, config IgnoreConfig) (*IngestSummary, error)
}

// Embedder bridges Commits to the vector table via an embedding endpoint.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	// Endpoint reports the configured base URL, for actionable
	// connection-failure messages.
	Endpoint() string
}
