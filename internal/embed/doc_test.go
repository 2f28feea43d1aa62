// ABOUTME: Exercises BuildEmbedDoc section assembly and EmbedPending's fail-fast backfill loop
package embed

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/commitmux/internal/commitmux"
)

func TestBuildEmbedDocAllSections(t *testing.T) {
	body := "Longer explanation of the change."
	preview := "diff --git a/x.go b/x.go\n+hello\n"
	doc := BuildEmbedDoc(&commitmux.EmbedCommit{
		Subject:      "Fix the thing",
		Body:         &body,
		FilesChanged: []string{"x.go", "y.go"},
		PatchPreview: &preview,
	})

	require.Contains(t, doc, "Fix the thing")
	require.Contains(t, doc, "Longer explanation")
	require.Contains(t, doc, "Files changed: x.go, y.go")
	require.Contains(t, doc, "diff --git")
}

func TestBuildEmbedDocSubjectOnly(t *testing.T) {
	doc := BuildEmbedDoc(&commitmux.EmbedCommit{Subject: "Just a subject"})
	require.Equal(t, "Just a subject", doc)
}

func TestBuildEmbedDocTruncatesLongPreview(t *testing.T) {
	preview := strings.Repeat("a", 2000)
	doc := BuildEmbedDoc(&commitmux.EmbedCommit{Subject: "s", PatchPreview: &preview})
	require.LessOrEqual(t, len(doc), len("s")+2+previewCharLimit)
}

type stubStore struct {
	pending  [][]*commitmux.EmbedCommit
	stored   []string
	storeErr error
}

func (s *stubStore) AddRepo(*commitmux.RepoInput) (*commitmux.Repo, error)           { panic("unused") }
func (s *stubStore) ListRepos() ([]*commitmux.Repo, error)                           { panic("unused") }
func (s *stubStore) GetRepoByName(string) (*commitmux.Repo, error)                   { panic("unused") }
func (s *stubStore) RemoveRepo(string) error                                         { panic("unused") }
func (s *stubStore) UpdateRepo(int64, *commitmux.RepoUpdate) (*commitmux.Repo, error) { panic("unused") }
func (s *stubStore) ListReposWithStats() ([]*commitmux.RepoListEntry, error)          { panic("unused") }
func (s *stubStore) RepoStats(int64) (*commitmux.RepoStats, error)                   { panic("unused") }
func (s *stubStore) UpsertCommit(*commitmux.Commit) error                           { panic("unused") }
func (s *stubStore) UpsertCommitFiles([]*commitmux.CommitFile) error                 { panic("unused") }
func (s *stubStore) UpsertPatch(*commitmux.CommitPatch) error                        { panic("unused") }
func (s *stubStore) CommitExists(int64, string) (bool, error)                        { panic("unused") }
func (s *stubStore) Search(string, *commitmux.SearchOpts) ([]*commitmux.SearchResult, error) {
	panic("unused")
}
func (s *stubStore) Touches(string, *commitmux.TouchOpts) ([]*commitmux.TouchResult, error) {
	panic("unused")
}
func (s *stubStore) GetCommit(string, string) (*commitmux.CommitDetail, error) { panic("unused") }
func (s *stubStore) GetPatch(string, string, *int) (*commitmux.PatchResult, error) {
	panic("unused")
}
func (s *stubStore) SearchSemantic([]float32, *commitmux.SemanticSearchOpts) ([]*commitmux.SearchResult, error) {
	panic("unused")
}
func (s *stubStore) UpdateIngestState(*commitmux.IngestState) error { panic("unused") }
func (s *stubStore) GetConfig(string) (*string, error)              { panic("unused") }
func (s *stubStore) SetConfig(string, string) error                 { panic("unused") }
func (s *stubStore) Close() error                                    { return nil }

func (s *stubStore) GetCommitsWithoutEmbeddings(repoID int64, limit int) ([]*commitmux.EmbedCommit, error) {
	if len(s.pending) == 0 {
		return nil, nil
	}
	batch := s.pending[0]
	s.pending = s.pending[1:]
	return batch, nil
}

func (s *stubStore) StoreEmbedding(c *commitmux.EmbedCommit, vector []float32) error {
	if s.storeErr != nil {
		return s.storeErr
	}
	s.stored = append(s.stored, c.SHA)
	return nil
}

func (s *stubStore) CountEmbeddingsForRepo(int64) (int64, error) { panic("unused") }

type stubEmbedder struct {
	err      error
	callsSeen []string
}

func (e *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.callsSeen = append(e.callsSeen, text)
	if e.err != nil {
		return nil, e.err
	}
	return []float32{0.1, 0.2}, nil
}

func (e *stubEmbedder) Endpoint() string { return "http://localhost:11434/v1" }

func TestEmbedPendingEmbedsAllBatches(t *testing.T) {
	store := &stubStore{pending: [][]*commitmux.EmbedCommit{
		{{SHA: "a"}, {SHA: "b"}},
	}}
	embedder := &stubEmbedder{}

	summary, err := EmbedPending(context.Background(), store, embedder, 1, DefaultBatchSize)
	require.NoError(t, err)
	require.Equal(t, 2, summary.Embedded)
	require.Equal(t, 0, summary.Failed)
	require.Equal(t, []string{"a", "b"}, store.stored)
}

func TestEmbedPendingAbortsOnConnectionFailure(t *testing.T) {
	store := &stubStore{pending: [][]*commitmux.EmbedCommit{
		{{SHA: "a"}, {SHA: "b"}},
	}}
	embedder := &stubEmbedder{err: &net.OpError{Op: "dial", Err: errors.New("connection refused")}}

	summary, err := EmbedPending(context.Background(), store, embedder, 1, DefaultBatchSize)
	require.Error(t, err)
	require.True(t, commitmux.IsKind(err, commitmux.KindEmbed))
	require.Contains(t, err.Error(), embedder.Endpoint())
	require.Equal(t, 0, summary.Embedded)
	require.Equal(t, 1, summary.Failed)
	require.Len(t, embedder.callsSeen, 1)
}
