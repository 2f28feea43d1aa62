// ABOUTME: Exercises the JSON-RPC dispatcher against a stub Store
package mcp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/commitmux/internal/commitmux"
)

type stubStore struct{}

func (s *stubStore) AddRepo(*commitmux.RepoInput) (*commitmux.Repo, error)           { panic("unused") }
func (s *stubStore) ListRepos() ([]*commitmux.Repo, error) {
	return []*commitmux.Repo{{RepoID: 1, Name: "testrepo"}}, nil
}
func (s *stubStore) GetRepoByName(string) (*commitmux.Repo, error)                   { panic("unused") }
func (s *stubStore) RemoveRepo(string) error                                         { panic("unused") }
func (s *stubStore) UpdateRepo(int64, *commitmux.RepoUpdate) (*commitmux.Repo, error) { panic("unused") }
func (s *stubStore) ListReposWithStats() ([]*commitmux.RepoListEntry, error) {
	return []*commitmux.RepoListEntry{{Name: "testrepo", CommitCount: 3}}, nil
}
func (s *stubStore) RepoStats(int64) (*commitmux.RepoStats, error) { panic("unused") }
func (s *stubStore) UpsertCommit(*commitmux.Commit) error          { panic("unused") }
func (s *stubStore) UpsertCommitFiles([]*commitmux.CommitFile) error { panic("unused") }
func (s *stubStore) UpsertPatch(*commitmux.CommitPatch) error        { panic("unused") }
func (s *stubStore) CommitExists(int64, string) (bool, error)        { panic("unused") }

func (s *stubStore) Search(query string, opts *commitmux.SearchOpts) ([]*commitmux.SearchResult, error) {
	return []*commitmux.SearchResult{}, nil
}

func (s *stubStore) Touches(string, *commitmux.TouchOpts) ([]*commitmux.TouchResult, error) {
	return []*commitmux.TouchResult{}, nil
}

func (s *stubStore) GetCommit(repoName, sha string) (*commitmux.CommitDetail, error) {
	if repoName == "testrepo" && sha == "abc123" {
		return &commitmux.CommitDetail{Repo: repoName, SHA: sha, Subject: "a test commit"}, nil
	}
	return nil, nil
}

func (s *stubStore) GetPatch(repoName, sha string, maxBytes *int) (*commitmux.PatchResult, error) {
	if repoName == "testrepo" && sha == "abc123" {
		return &commitmux.PatchResult{Repo: repoName, SHA: sha, PatchText: "diff --git a/x b/x\n"}, nil
	}
	return nil, nil
}

func (s *stubStore) SearchSemantic([]float32, *commitmux.SemanticSearchOpts) ([]*commitmux.SearchResult, error) {
	return []*commitmux.SearchResult{}, nil
}

func (s *stubStore) UpdateIngestState(*commitmux.IngestState) error { panic("unused") }

func (s *stubStore) GetConfig(key string) (*string, error) { return nil, nil }
func (s *stubStore) SetConfig(string, string) error        { panic("unused") }

func (s *stubStore) GetCommitsWithoutEmbeddings(int64, int) ([]*commitmux.EmbedCommit, error) {
	panic("unused")
}
func (s *stubStore) StoreEmbedding(*commitmux.EmbedCommit, []float32) error { panic("unused") }
func (s *stubStore) CountEmbeddingsForRepo(int64) (int64, error)            { panic("unused") }
func (s *stubStore) Close() error                                           { return nil }

func makeServer() *Server {
	return NewServer(&stubStore{})
}

func TestToolsListResponse(t *testing.T) {
	server := makeServer()
	resp, ok := server.handleMessage([]byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`))
	require.True(t, ok)

	encoded, err := json.Marshal(resp)
	require.NoError(t, err)
	var parsed map[string]any
	require.NoError(t, json.Unmarshal(encoded, &parsed))

	result := parsed["result"].(map[string]any)
	tools := result["tools"].([]any)

	var names []string
	for _, tool := range tools {
		names = append(names, tool.(map[string]any)["name"].(string))
	}

	require.Contains(t, names, "commitmux_search")
	require.Contains(t, names, "commitmux_touches")
	require.Contains(t, names, "commitmux_get_commit")
	require.Contains(t, names, "commitmux_get_patch")
	require.Contains(t, names, "commitmux_search_semantic")
	require.Contains(t, names, "commitmux_list_repos")
	require.Len(t, names, 6)
}

func TestInitializeResponse(t *testing.T) {
	server := makeServer()
	resp, ok := server.handleMessage([]byte(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`))
	require.True(t, ok)

	result := resp.Result.(map[string]any)
	require.Equal(t, protocolVersion, result["protocolVersion"])
	serverInfo := result["serverInfo"].(map[string]any)
	require.Equal(t, serverName, serverInfo["name"])
}

func TestNotificationNoResponse(t *testing.T) {
	server := makeServer()
	_, ok := server.handleMessage([]byte(`{"jsonrpc":"2.0","method":"notifications/initialized","params":{}}`))
	require.False(t, ok, "notifications must not produce a response")
}

func TestToolsCallSearch(t *testing.T) {
	server := makeServer()
	raw := `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"commitmux_search","arguments":{"query":"test","limit":10}}}`
	resp, ok := server.handleMessage([]byte(raw))
	require.True(t, ok)

	result := resp.Result.(toolResult)
	require.False(t, result.IsError)

	var results []*commitmux.SearchResult
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &results))
}

func TestToolsCallGetCommitNotFound(t *testing.T) {
	server := makeServer()
	raw := `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"commitmux_get_commit","arguments":{"repo":"nonexistent","sha":"000000"}}}`
	resp, ok := server.handleMessage([]byte(raw))
	require.True(t, ok)

	result := resp.Result.(toolResult)
	require.True(t, result.IsError)
}

func TestToolsCallGetCommitFound(t *testing.T) {
	server := makeServer()
	raw := `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"commitmux_get_commit","arguments":{"repo":"testrepo","sha":"abc123"}}}`
	resp, ok := server.handleMessage([]byte(raw))
	require.True(t, ok)

	result := resp.Result.(toolResult)
	require.False(t, result.IsError)
	require.Contains(t, result.Content[0].Text, "a test commit")
}

func TestToolsCallSearchSemanticEmptyQuery(t *testing.T) {
	server := makeServer()
	raw := `{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"commitmux_search_semantic","arguments":{"query":"   "}}}`
	resp, ok := server.handleMessage([]byte(raw))
	require.True(t, ok)

	result := resp.Result.(toolResult)
	require.True(t, result.IsError)
	require.Contains(t, result.Content[0].Text, "Query cannot be empty")
}

func TestToolsCallSearchSemanticNegativeLimit(t *testing.T) {
	server := makeServer()
	raw := `{"jsonrpc":"2.0","id":6,"method":"tools/call","params":{"name":"commitmux_search_semantic","arguments":{"query":"fix bug","limit":-1}}}`
	resp, ok := server.handleMessage([]byte(raw))
	require.True(t, ok)

	result := resp.Result.(toolResult)
	require.True(t, result.IsError)
	require.Contains(t, result.Content[0].Text, "Limit must be greater than 0")
}

func TestToolsCallSearchSemanticZeroLimitRejected(t *testing.T) {
	server := makeServer()
	raw := `{"jsonrpc":"2.0","id":10,"method":"tools/call","params":{"name":"commitmux_search_semantic","arguments":{"query":"fix bug","limit":0}}}`
	resp, ok := server.handleMessage([]byte(raw))
	require.True(t, ok)

	result := resp.Result.(toolResult)
	require.True(t, result.IsError)
	require.Contains(t, result.Content[0].Text, "Limit must be greater than 0")
}

func TestToolsCallSearchSemanticUnknownRepo(t *testing.T) {
	server := makeServer()
	raw := `{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"commitmux_search_semantic","arguments":{"query":"fix bug","repos":["nope"]}}}`
	resp, ok := server.handleMessage([]byte(raw))
	require.True(t, ok)

	result := resp.Result.(toolResult)
	require.True(t, result.IsError)
	require.Contains(t, result.Content[0].Text, "Unknown repo(s): nope")
}

func TestToolsCallListRepos(t *testing.T) {
	server := makeServer()
	raw := `{"jsonrpc":"2.0","id":8,"method":"tools/call","params":{"name":"commitmux_list_repos","arguments":{}}}`
	resp, ok := server.handleMessage([]byte(raw))
	require.True(t, ok)

	result := resp.Result.(toolResult)
	require.False(t, result.IsError)
	require.Contains(t, result.Content[0].Text, "testrepo")
}

func TestUnknownMethod(t *testing.T) {
	server := makeServer()
	resp, ok := server.handleMessage([]byte(`{"jsonrpc":"2.0","id":9,"method":"bogus"}`))
	require.True(t, ok)
	require.NotNil(t, resp.Error)
}
