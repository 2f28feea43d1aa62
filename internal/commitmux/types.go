// ABOUTME: Shared domain types for the commitmux core
// ABOUTME: Repos, commits, files, patches, and the query option/result shapes
package commitmux

// FileStatus classifies how a commit touched a path.
type FileStatus string

const (
	FileAdded    FileStatus = "A"
	FileModified FileStatus = "M"
	FileDeleted  FileStatus = "D"
	FileRenamed  FileStatus = "R"
	FileCopied   FileStatus = "C"
	FileUnknown  FileStatus = "?"
)

// Repo is a registered local git working copy.
type Repo struct {
	RepoID          int64
	Name            string
	LocalPath       string
	RemoteURL       *string
	DefaultBranch   *string
	ForkOf          *string
	AuthorFilter    *string
	ExcludePrefixes []string
	EmbedEnabled    bool
}

// RepoInput is the payload for registering a new repo.
type RepoInput struct {
	Name            string
	LocalPath       string
	RemoteURL       *string
	DefaultBranch   *string
	ForkOf          *string
	AuthorFilter    *string
	ExcludePrefixes []string
	EmbedEnabled    bool
}

// OptString is the "outer-present means set; inner-absent means
// set-to-null; inner-present means set-to-value" wrapper used by
// RepoUpdate's nullable scalar fields. A nil *OptString leaves the
// column untouched. A non-nil OptString with Value == nil clears the
// column. A non-nil OptString with a non-nil Value replaces it.
type OptString struct {
	Value *string
}

// Set builds an OptString that replaces the column with v.
func Set(v string) *OptString {
	return &OptString{Value: &v}
}

// Clear builds an OptString that nulls the column.
func Clear() *OptString {
	return &OptString{Value: nil}
}

// RepoUpdate describes a partial update to a Repo. Fields left nil are
// not touched. ExcludePrefixes and EmbedEnabled are plain
// replace-only/set-only fields (no independent null state).
type RepoUpdate struct {
	ForkOf          *OptString
	AuthorFilter    *OptString
	DefaultBranch   *OptString
	ExcludePrefixes []string
	EmbedEnabled    *bool
}

// RepoListEntry is a lightweight summary row for listing repos with
// their indexed commit count and last sync time; it is the shape
// served by the commitmux_list_repos tool.
type RepoListEntry struct {
	Name          string `json:"name"`
	CommitCount   int64  `json:"commit_count"`
	LastSyncedAt  *int64 `json:"last_synced_at,omitempty"`
}

// RepoStats is the status-reporting shape returned by Store.RepoStats
// and printed by the status command.
type RepoStats struct {
	RepoName       string
	CommitCount    int64
	LastSyncedAt   *int64
	LastSyncedSHA  *string
	LastError      *string
}

// Commit is a single commit observed on the walked branch.
type Commit struct {
	RepoID         int64
	SHA            string
	AuthorName     string
	AuthorEmail    string
	CommitterName  string
	CommitterEmail string
	AuthorTime     int64
	CommitTime     int64
	Subject        string
	Body           *string
	ParentCount    int
}

// CommitFile is one path changed by a commit.
type CommitFile struct {
	RepoID  int64
	SHA     string
	Path    string
	Status  FileStatus
	OldPath *string
}

// CommitPatch is the optional compressed-diff record for a commit.
type CommitPatch struct {
	RepoID       int64
	SHA          string
	PatchBlob    []byte
	PatchPreview string
}

// IngestState tracks the last successful sync for a repo.
type IngestState struct {
	RepoID        int64
	LastSyncedAt  int64
	LastSyncedSHA *string
	LastError     *string
}

// SearchOpts bounds a lexical search call.
type SearchOpts struct {
	Since *int64
	Repos []string
	Paths []string
	Limit int
}

// TouchOpts bounds a path-substring search call.
type TouchOpts struct {
	Since *int64
	Repos []string
	Limit int
}

// SemanticSearchOpts bounds a hybrid kNN search call.
type SemanticSearchOpts struct {
	Since *int64
	Repos []string
	Limit int
}

// SearchResult is a single lexical or semantic search hit.
type SearchResult struct {
	Repo         string   `json:"repo"`
	SHA          string   `json:"sha"`
	Subject      string   `json:"subject"`
	Author       string   `json:"author"`
	Date         int64    `json:"date"`
	MatchedPaths []string `json:"matched_paths"`
	PatchExcerpt string   `json:"patch_excerpt"`
}

// TouchResult is a single (commit, file) hit from a path-touch query.
type TouchResult struct {
	Repo    string `json:"repo"`
	SHA     string `json:"sha"`
	Subject string `json:"subject"`
	Date    int64  `json:"date"`
	Path    string `json:"path"`
	Status  string `json:"status"`
}

// CommitFileDetail is one changed-file row inside a CommitDetail.
type CommitFileDetail struct {
	Path    string  `json:"path"`
	Status  string  `json:"status"`
	OldPath *string `json:"old_path,omitempty"`
}

// CommitDetail is the full metadata returned by commitmux_get_commit.
type CommitDetail struct {
	Repo         string              `json:"repo"`
	SHA          string              `json:"sha"`
	Subject      string              `json:"subject"`
	Body         *string             `json:"body,omitempty"`
	Author       string              `json:"author"`
	Date         string              `json:"date"`
	ChangedFiles []CommitFileDetail  `json:"changed_files"`
}

// PatchResult is the decompressed diff text for a commit.
type PatchResult struct {
	Repo      string `json:"repo"`
	SHA       string `json:"sha"`
	PatchText string `json:"patch_text"`
}

// IngestSummary is the outcome of one SyncRepo call.
type IngestSummary struct {
	RepoName              string
	CommitsIndexed        int
	CommitsAlreadyIndexed int
	CommitsFiltered       int
	Errors                []string
}

// IgnoreConfig controls which paths and diff sizes the Ingester skips.
type IgnoreConfig struct {
	PathPrefixes  []string
	MaxPatchBytes int
}

// DefaultIgnoreConfig mirrors the original implementation's defaults.
func DefaultIgnoreConfig() IgnoreConfig {
	return IgnoreConfig{
		PathPrefixes:  []string{"node_modules/", "vendor/", "dist/", ".git/"},
		MaxPatchBytes: 1 << 20,
	}
}

// EmbedCommit carries everything needed to build an embedding document
// and populate the vector table's auxiliary columns in one shot.
type EmbedCommit struct {
	RepoID       int64
	SHA          string
	Subject      string
	Body         *string
	AuthorName   string
	RepoName     string
	AuthorTime   int64
	PatchPreview *string
	FilesChanged []string
}

// EmbedSummary is the outcome of one EmbedPending backfill call.
type EmbedSummary struct {
	Embedded int
	Skipped  int
	Failed   int
	Errors   []string
}
