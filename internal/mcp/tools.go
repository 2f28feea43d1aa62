// ABOUTME: tools/call dispatch and the six commitmux tool handlers
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/blackwell-systems/commitmux/internal/commitmux"
	"github.com/blackwell-systems/commitmux/internal/embed"
)

type searchInput struct {
	Query string   `json:"query"`
	Since *int64   `json:"since,omitempty"`
	Repos []string `json:"repos,omitempty"`
	Paths []string `json:"paths,omitempty"`
	Limit int      `json:"limit,omitempty"`
}

type touchesInput struct {
	PathGlob string   `json:"path_glob"`
	Since    *int64   `json:"since,omitempty"`
	Repos    []string `json:"repos,omitempty"`
	Limit    int      `json:"limit,omitempty"`
}

type getCommitInput struct {
	Repo string `json:"repo"`
	SHA  string `json:"sha"`
}

type getPatchInput struct {
	Repo     string `json:"repo"`
	SHA      string `json:"sha"`
	MaxBytes *int   `json:"max_bytes,omitempty"`
}

type searchSemanticInput struct {
	Query string   `json:"query"`
	Since *int64   `json:"since,omitempty"`
	Repos []string `json:"repos,omitempty"`
	Limit *int     `json:"limit,omitempty"`
}

type callParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// toolResult is the envelope every tools/call response takes, success
// or failure: transport/parse errors are a JSON-RPC-level rejection,
// but a tool that ran and failed reports isError:true in-band.
type toolResult struct {
	Content []contentItem `json:"content"`
	IsError bool          `json:"isError"`
}

type contentItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func okResult(payload any) (toolResult, error) {
	text, err := json.Marshal(payload)
	if err != nil {
		return toolResult{}, err
	}
	return toolResult{Content: []contentItem{{Type: "text", Text: string(text)}}}, nil
}

func errResult(err error) toolResult {
	return toolResult{Content: []contentItem{{Type: "text", Text: err.Error()}}, IsError: true}
}

func (s *Server) handleToolsCall(raw json.RawMessage) (any, error) {
	var params callParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, fmt.Errorf("invalid tools/call params: %w", err)
	}

	switch params.Name {
	case "commitmux_search":
		return s.callSearch(params.Arguments)
	case "commitmux_touches":
		return s.callTouches(params.Arguments)
	case "commitmux_get_commit":
		return s.callGetCommit(params.Arguments)
	case "commitmux_get_patch":
		return s.callGetPatch(params.Arguments)
	case "commitmux_search_semantic":
		return s.callSearchSemantic(params.Arguments)
	case "commitmux_list_repos":
		return s.callListRepos()
	default:
		return nil, fmt.Errorf("unknown tool: %s", params.Name)
	}
}

func (s *Server) callSearch(raw json.RawMessage) (toolResult, error) {
	var in searchInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return errResult(err), nil
	}
	results, err := s.store.Search(in.Query, &commitmux.SearchOpts{
		Since: in.Since, Repos: in.Repos, Paths: in.Paths, Limit: in.Limit,
	})
	if err != nil {
		return errResult(err), nil
	}
	return okResult(results)
}

func (s *Server) callTouches(raw json.RawMessage) (toolResult, error) {
	var in touchesInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return errResult(err), nil
	}
	results, err := s.store.Touches(in.PathGlob, &commitmux.TouchOpts{
		Since: in.Since, Repos: in.Repos, Limit: in.Limit,
	})
	if err != nil {
		return errResult(err), nil
	}
	return okResult(results)
}

func (s *Server) callGetCommit(raw json.RawMessage) (toolResult, error) {
	var in getCommitInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return errResult(err), nil
	}
	detail, err := s.store.GetCommit(in.Repo, in.SHA)
	if err != nil {
		return errResult(err), nil
	}
	if detail == nil {
		return errResult(commitmux.NewError(commitmux.KindNotFound, fmt.Sprintf("commit '%s' not found in repo '%s'", in.SHA, in.Repo), nil)), nil
	}
	return okResult(detail)
}

func (s *Server) callGetPatch(raw json.RawMessage) (toolResult, error) {
	var in getPatchInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return errResult(err), nil
	}
	patch, err := s.store.GetPatch(in.Repo, in.SHA, in.MaxBytes)
	if err != nil {
		return errResult(err), nil
	}
	if patch == nil {
		return errResult(commitmux.NewError(commitmux.KindNotFound, fmt.Sprintf("no patch stored for '%s' in repo '%s'", in.SHA, in.Repo), nil)), nil
	}
	return okResult(patch)
}

func (s *Server) callSearchSemantic(raw json.RawMessage) (toolResult, error) {
	var in searchSemanticInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return errResult(err), nil
	}

	if strings.TrimSpace(in.Query) == "" {
		return errResult(commitmux.NewError(commitmux.KindConfig, "Query cannot be empty", nil)), nil
	}
	// Limit is a pointer so an explicit non-positive value (reject) is
	// distinguishable from an omitted field (fall through to Store's default).
	if in.Limit != nil && *in.Limit <= 0 {
		return errResult(commitmux.NewError(commitmux.KindConfig, "Limit must be greater than 0", nil)), nil
	}

	if len(in.Repos) > 0 {
		if unknown, err := s.unknownRepoNames(in.Repos); err != nil {
			return errResult(err), nil
		} else if len(unknown) > 0 {
			return errResult(commitmux.NewError(commitmux.KindConfig, fmt.Sprintf("Unknown repo(s): %s", strings.Join(unknown, ", ")), nil)), nil
		}
	}

	cfg, err := embed.ConfigFromStore(s.store)
	if err != nil {
		return errResult(err), nil
	}
	embedder := embed.New(cfg)

	vector, err := embedder.Embed(context.Background(), in.Query)
	if err != nil {
		return errResult(err), nil
	}

	var limit int
	if in.Limit != nil {
		limit = *in.Limit
	}
	results, err := s.store.SearchSemantic(vector, &commitmux.SemanticSearchOpts{
		Since: in.Since, Repos: in.Repos, Limit: limit,
	})
	if err != nil {
		return errResult(err), nil
	}
	return okResult(results)
}

func (s *Server) callListRepos() (toolResult, error) {
	entries, err := s.store.ListReposWithStats()
	if err != nil {
		return errResult(err), nil
	}
	return okResult(entries)
}

func (s *Server) unknownRepoNames(names []string) ([]string, error) {
	repos, err := s.store.ListRepos()
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(repos))
	for _, r := range repos {
		known[r.Name] = true
	}
	var unknown []string
	for _, n := range names {
		if !known[n] {
			unknown = append(unknown, n)
		}
	}
	return unknown, nil
}
