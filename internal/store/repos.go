// ABOUTME: Repo registration, lookup, update, removal, and stats queries
package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/blackwell-systems/commitmux/internal/commitmux"
)

// AddRepo registers a new repo. Returns commitmux.ErrAlreadyExists if
// the name collides.
func (s *Store) AddRepo(input *commitmux.RepoInput) (*commitmux.Repo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(
		`INSERT INTO repos (name, local_path, remote_url, default_branch, fork_of, author_filter, exclude_prefixes, embed_enabled)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		input.Name, input.LocalPath, input.RemoteURL, input.DefaultBranch, input.ForkOf, input.AuthorFilter,
		marshalExcludePrefixes(input.ExcludePrefixes), boolToInt(input.EmbedEnabled),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, commitmux.NewError(commitmux.KindAlreadyExists,
				fmt.Sprintf("a repo named '%s' already exists", input.Name), err)
		}
		return nil, wrapStoreErr("add repo", err)
	}
	repoID, err := res.LastInsertId()
	if err != nil {
		return nil, wrapStoreErr("add repo", err)
	}
	return s.getRepoByID(repoID)
}

const repoColumns = `repo_id, name, local_path, remote_url, default_branch, fork_of, author_filter, exclude_prefixes, embed_enabled`

func rowToRepo(scan func(dest ...any) error) (*commitmux.Repo, error) {
	var r commitmux.Repo
	var remoteURL, defaultBranch, forkOf, authorFilter sql.NullString
	var excludePrefixes string
	var embedEnabled int64

	if err := scan(&r.RepoID, &r.Name, &r.LocalPath, &remoteURL, &defaultBranch, &forkOf, &authorFilter, &excludePrefixes, &embedEnabled); err != nil {
		return nil, err
	}
	if remoteURL.Valid {
		r.RemoteURL = &remoteURL.String
	}
	if defaultBranch.Valid {
		r.DefaultBranch = &defaultBranch.String
	}
	if forkOf.Valid {
		r.ForkOf = &forkOf.String
	}
	if authorFilter.Valid {
		r.AuthorFilter = &authorFilter.String
	}
	r.ExcludePrefixes = unmarshalExcludePrefixes(excludePrefixes)
	r.EmbedEnabled = embedEnabled != 0
	return &r, nil
}

func (s *Store) getRepoByID(repoID int64) (*commitmux.Repo, error) {
	row := s.db.QueryRow(`SELECT `+repoColumns+` FROM repos WHERE repo_id = ?`, repoID)
	repo, err := rowToRepo(row.Scan)
	if err != nil {
		return nil, wrapStoreErr("load repo", err)
	}
	return repo, nil
}

// ListRepos returns all registered repos.
func (s *Store) ListRepos() ([]*commitmux.Repo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT ` + repoColumns + ` FROM repos ORDER BY name`)
	if err != nil {
		return nil, wrapStoreErr("list repos", err)
	}
	defer rows.Close()

	var out []*commitmux.Repo
	for rows.Next() {
		repo, err := rowToRepo(rows.Scan)
		if err != nil {
			return nil, wrapStoreErr("list repos", err)
		}
		out = append(out, repo)
	}
	return out, wrapStoreErr("list repos", rows.Err())
}

// GetRepoByName looks up a repo by its unique name.
func (s *Store) GetRepoByName(name string) (*commitmux.Repo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRow(`SELECT `+repoColumns+` FROM repos WHERE name = ?`, name)
	repo, err := rowToRepo(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrapStoreErr("get repo by name", err)
	}
	return repo, nil
}

// RemoveRepo cascade-deletes a repo and all its dependent rows, then
// rebuilds the full-text index to evict the deleted commits.
func (s *Store) RemoveRepo(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var repoID int64
	err := s.db.QueryRow(`SELECT repo_id FROM repos WHERE name = ?`, name).Scan(&repoID)
	if err == sql.ErrNoRows {
		return commitmux.NewError(commitmux.KindNotFound, fmt.Sprintf("repo '%s' not found", name), nil)
	}
	if err != nil {
		return wrapStoreErr("remove repo", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return wrapStoreErr("remove repo", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmts := []struct {
		query string
		arg   int64
	}{
		{`DELETE FROM commit_patches WHERE repo_id = ?`, repoID},
		{`DELETE FROM commit_files WHERE repo_id = ?`, repoID},
		{`DELETE FROM ingest_state WHERE repo_id = ?`, repoID},
		{`DELETE FROM commits WHERE repo_id = ?`, repoID},
	}
	for _, st := range stmts {
		if _, err := tx.Exec(st.query, st.arg); err != nil {
			return wrapStoreErr("remove repo", err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO commits_fts(commits_fts) VALUES('rebuild')`); err != nil {
		return wrapStoreErr("rebuild fts index", err)
	}
	if _, err := tx.Exec(
		`DELETE FROM commit_embeddings WHERE embed_id IN (SELECT embed_id FROM commit_embed_map WHERE repo_id = ?)`,
		repoID,
	); err != nil {
		return wrapStoreErr("remove repo", err)
	}
	if _, err := tx.Exec(`DELETE FROM commit_embed_map WHERE repo_id = ?`, repoID); err != nil {
		return wrapStoreErr("remove repo", err)
	}
	if _, err := tx.Exec(`DELETE FROM repos WHERE repo_id = ?`, repoID); err != nil {
		return wrapStoreErr("remove repo", err)
	}

	return wrapStoreErr("remove repo", tx.Commit())
}

// UpdateRepo applies a partial update and returns the updated Repo.
func (s *Store) UpdateRepo(repoID int64, update *commitmux.RepoUpdate) (*commitmux.Repo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sets []string
	var args []any

	appendOptString := func(column string, opt *commitmux.OptString) {
		if opt == nil {
			return
		}
		sets = append(sets, column+" = ?")
		if opt.Value == nil {
			args = append(args, nil)
		} else {
			args = append(args, *opt.Value)
		}
	}

	appendOptString("fork_of", update.ForkOf)
	appendOptString("author_filter", update.AuthorFilter)
	appendOptString("default_branch", update.DefaultBranch)

	if update.ExcludePrefixes != nil {
		sets = append(sets, "exclude_prefixes = ?")
		args = append(args, marshalExcludePrefixes(update.ExcludePrefixes))
	}
	if update.EmbedEnabled != nil {
		sets = append(sets, "embed_enabled = ?")
		args = append(args, boolToInt(*update.EmbedEnabled))
	}

	if len(sets) == 0 {
		return s.getRepoByID(repoID)
	}

	args = append(args, repoID)
	query := `UPDATE repos SET ` + strings.Join(sets, ", ") + ` WHERE repo_id = ?`
	if _, err := s.db.Exec(query, args...); err != nil {
		return nil, wrapStoreErr("update repo", err)
	}
	return s.getRepoByID(repoID)
}

// ListReposWithStats returns a summary row per repo for the
// commitmux_list_repos tool.
func (s *Store) ListReposWithStats() ([]*commitmux.RepoListEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT r.name, COUNT(c.sha) AS commit_count, MAX(i.last_synced_at)
		FROM repos r
		LEFT JOIN commits c ON c.repo_id = r.repo_id
		LEFT JOIN ingest_state i ON i.repo_id = r.repo_id
		GROUP BY r.repo_id
		ORDER BY r.name`)
	if err != nil {
		return nil, wrapStoreErr("list repos with stats", err)
	}
	defer rows.Close()

	var out []*commitmux.RepoListEntry
	for rows.Next() {
		var e commitmux.RepoListEntry
		var lastSynced sql.NullInt64
		if err := rows.Scan(&e.Name, &e.CommitCount, &lastSynced); err != nil {
			return nil, wrapStoreErr("list repos with stats", err)
		}
		if lastSynced.Valid {
			e.LastSyncedAt = &lastSynced.Int64
		}
		out = append(out, &e)
	}
	return out, wrapStoreErr("list repos with stats", rows.Err())
}

// RepoStats returns commit count and last-sync info for one repo.
func (s *Store) RepoStats(repoID int64) (*commitmux.RepoStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var name string
	if err := s.db.QueryRow(`SELECT name FROM repos WHERE repo_id = ?`, repoID).Scan(&name); err != nil {
		return nil, wrapStoreErr("repo stats", err)
	}

	var commitCount int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM commits WHERE repo_id = ?`, repoID).Scan(&commitCount); err != nil {
		return nil, wrapStoreErr("repo stats", err)
	}

	var lastSyncedAt sql.NullInt64
	var lastSyncedSHA, lastError sql.NullString
	err := s.db.QueryRow(
		`SELECT last_synced_at, last_synced_sha, last_error FROM ingest_state WHERE repo_id = ?`, repoID,
	).Scan(&lastSyncedAt, &lastSyncedSHA, &lastError)
	if err != nil && err != sql.ErrNoRows {
		return nil, wrapStoreErr("repo stats", err)
	}

	stats := &commitmux.RepoStats{RepoName: name, CommitCount: commitCount}
	if lastSyncedAt.Valid {
		stats.LastSyncedAt = &lastSyncedAt.Int64
	}
	if lastSyncedSHA.Valid {
		stats.LastSyncedSHA = &lastSyncedSHA.String
	}
	if lastError.Valid {
		stats.LastError = &lastError.String
	}
	return stats, nil
}

// UpdateIngestState upserts the last-synced bookkeeping row for a
// repo. Best-effort by design — a failed write here never unwinds an
// otherwise-successful sync.
func (s *Store) UpdateIngestState(state *commitmux.IngestState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO ingest_state (repo_id, last_synced_at, last_synced_sha, last_error)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(repo_id) DO UPDATE SET
			last_synced_at = excluded.last_synced_at,
			last_synced_sha = excluded.last_synced_sha,
			last_error = excluded.last_error`,
		state.RepoID, state.LastSyncedAt, state.LastSyncedSHA, state.LastError,
	)
	return wrapStoreErr("update ingest state", err)
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
