// ABOUTME: Read queries — lexical search, path touches, commit/patch lookup, hybrid semantic search
package store

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"math"
	"strings"

	"github.com/blackwell-systems/commitmux/internal/commitmux"
	"github.com/klauspost/compress/zstd"
)

// Search executes a lexical full-text match against subject, body, and
// patch_preview, ordered by FTS rank (most relevant first).
func (s *Store) Search(query string, opts *commitmux.SearchOpts) ([]*commitmux.SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	limit := 20
	if opts != nil && opts.Limit > 0 {
		limit = opts.Limit
	}

	sqlQuery := `
		SELECT c.repo_id, c.sha, c.subject, c.author_name, c.author_time, c.patch_preview, r.name
		FROM commits_fts
		JOIN commits c ON c.rowid = commits_fts.rowid
		JOIN repos r ON r.repo_id = c.repo_id
		WHERE commits_fts MATCH ?`
	args := []any{query}

	if opts != nil && opts.Since != nil {
		sqlQuery += " AND c.author_time >= ?"
		args = append(args, *opts.Since)
	}
	if opts != nil && len(opts.Repos) > 0 {
		sqlQuery += " AND r.name IN (" + placeholders(len(opts.Repos)) + ")"
		for _, name := range opts.Repos {
			args = append(args, name)
		}
	}
	sqlQuery += " ORDER BY rank LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(sqlQuery, args...)
	if err != nil {
		return nil, wrapStoreErr("search", err)
	}
	defer rows.Close()

	var results []*commitmux.SearchResult
	for rows.Next() {
		var repoID int64
		var sha, subject, authorName, patchPreview, repoName string
		var authorTime int64
		if err := rows.Scan(&repoID, &sha, &subject, &authorName, &authorTime, &patchPreview, &repoName); err != nil {
			return nil, wrapStoreErr("search", err)
		}

		if opts != nil && len(opts.Paths) > 0 {
			if !commitTouchesAny(s.db, repoID, sha, opts.Paths) {
				continue
			}
		}

		matchedPaths, err := changedPathsFor(s.db, repoID, sha)
		if err != nil {
			return nil, wrapStoreErr("search", err)
		}

		results = append(results, &commitmux.SearchResult{
			Repo:         repoName,
			SHA:          sha,
			Subject:      subject,
			Author:       authorName,
			Date:         authorTime,
			MatchedPaths: matchedPaths,
			PatchExcerpt: truncateRunes(patchPreview, 300),
		})
	}
	return results, wrapStoreErr("search", rows.Err())
}

func commitTouchesAny(db *sql.DB, repoID int64, sha string, paths []string) bool {
	for _, p := range paths {
		var count int
		_ = db.QueryRow(
			`SELECT COUNT(*) FROM commit_files WHERE repo_id = ? AND sha = ? AND path LIKE ?`,
			repoID, sha, "%"+p+"%",
		).Scan(&count)
		if count > 0 {
			return true
		}
	}
	return false
}

// changedPathsFor lists every path a commit touched, independent of
// any paths filter on the search — the filter only gates whether the
// commit is included in results at all, never what its matched_paths
// entry contains.
func changedPathsFor(db *sql.DB, repoID int64, sha string) ([]string, error) {
	rows, err := db.Query(`SELECT path FROM commit_files WHERE repo_id = ? AND sha = ? ORDER BY path`, repoID, sha)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, rows.Err()
}

// Touches returns one row per (commit, matching file) whose path
// contains pathSubstring.
func (s *Store) Touches(pathSubstring string, opts *commitmux.TouchOpts) ([]*commitmux.TouchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	limit := 50
	if opts != nil && opts.Limit > 0 {
		limit = opts.Limit
	}

	query := `
		SELECT cf.path, cf.status, c.sha, c.subject, c.author_time, r.name
		FROM commit_files cf
		JOIN commits c ON c.repo_id = cf.repo_id AND c.sha = cf.sha
		JOIN repos r ON r.repo_id = cf.repo_id
		WHERE cf.path LIKE ?`
	args := []any{"%" + pathSubstring + "%"}

	if opts != nil && opts.Since != nil {
		query += " AND c.author_time >= ?"
		args = append(args, *opts.Since)
	}
	if opts != nil && len(opts.Repos) > 0 {
		query += " AND r.name IN (" + placeholders(len(opts.Repos)) + ")"
		for _, name := range opts.Repos {
			args = append(args, name)
		}
	}
	query += " ORDER BY c.author_time DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, wrapStoreErr("touches", err)
	}
	defer rows.Close()

	var out []*commitmux.TouchResult
	for rows.Next() {
		var r commitmux.TouchResult
		if err := rows.Scan(&r.Path, &r.Status, &r.SHA, &r.Subject, &r.Date, &r.Repo); err != nil {
			return nil, wrapStoreErr("touches", err)
		}
		out = append(out, &r)
	}
	return out, wrapStoreErr("touches", rows.Err())
}

// GetCommit resolves a (repo name, sha or sha prefix) pair to full
// commit metadata plus its changed-file list. Ties among multiple
// prefix matches resolve to the newest commit by author time.
func (s *Store) GetCommit(repoName, shaOrPrefix string) (*commitmux.CommitDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var repoID int64
	var sha, subject, authorName string
	var body sql.NullString
	var authorTime int64

	err := s.db.QueryRow(`
		SELECT c.repo_id, c.sha, c.subject, c.body, c.author_name, c.author_time
		FROM commits c
		JOIN repos r ON r.repo_id = c.repo_id
		WHERE r.name = ? AND c.sha LIKE ?
		ORDER BY c.author_time DESC
		LIMIT 1`,
		repoName, shaOrPrefix+"%",
	).Scan(&repoID, &sha, &subject, &body, &authorName, &authorTime)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrapStoreErr("get commit", err)
	}

	rows, err := s.db.Query(
		`SELECT path, status, old_path FROM commit_files WHERE repo_id = ? AND sha = ? ORDER BY path`,
		repoID, sha,
	)
	if err != nil {
		return nil, wrapStoreErr("get commit: changed files", err)
	}
	defer rows.Close()

	var changed []commitmux.CommitFileDetail
	for rows.Next() {
		var f commitmux.CommitFileDetail
		var oldPath sql.NullString
		if err := rows.Scan(&f.Path, &f.Status, &oldPath); err != nil {
			return nil, wrapStoreErr("get commit: changed files", err)
		}
		if oldPath.Valid {
			f.OldPath = &oldPath.String
		}
		changed = append(changed, f)
	}

	detail := &commitmux.CommitDetail{
		Repo:         repoName,
		SHA:          sha,
		Subject:      subject,
		Author:       authorName,
		Date:         formatISODate(authorTime),
		ChangedFiles: changed,
	}
	if body.Valid && body.String != "" {
		detail.Body = &body.String
	}
	return detail, wrapStoreErr("get commit: changed files", rows.Err())
}

// GetPatch decompresses the stored diff and truncates it to maxBytes
// (character-safe) if given.
func (s *Store) GetPatch(repoName, sha string, maxBytes *int) (*commitmux.PatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var blob []byte
	err := s.db.QueryRow(`
		SELECT cp.patch_blob
		FROM commit_patches cp
		JOIN repos r ON r.repo_id = cp.repo_id
		WHERE r.name = ? AND cp.sha = ?`,
		repoName, sha,
	).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrapStoreErr("get patch", err)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, commitmux.NewError(commitmux.KindIo, "init zstd decoder", err)
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(blob, nil)
	if err != nil {
		return nil, commitmux.NewError(commitmux.KindIo, "decompress patch", err)
	}

	text := string(raw)
	if maxBytes != nil {
		text = truncateRunes(text, *maxBytes)
	}

	return &commitmux.PatchResult{Repo: repoName, SHA: sha, PatchText: text}, nil
}

// SearchSemantic runs the hybrid kNN query: an inner MATCH against the
// vector table declares k at the MATCH site, an outer filter applies
// repo-name and since predicates against the auxiliary columns
// duplicated into the vector table, avoiding a join back to commits.
func (s *Store) SearchSemantic(vector []float32, opts *commitmux.SemanticSearchOpts) ([]*commitmux.SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	limit := 10
	if opts != nil && opts.Limit > 0 {
		limit = opts.Limit
	}

	var reposJSON string
	if opts != nil && len(opts.Repos) > 0 {
		b, err := json.Marshal(opts.Repos)
		if err != nil {
			return nil, commitmux.NewError(commitmux.KindStore, "encode repo filter", err)
		}
		reposJSON = string(b)
	}

	var since int64
	if opts != nil && opts.Since != nil {
		since = *opts.Since
	}

	// Two-stage query: the inner SELECT declares k at the MATCH site so the
	// vector engine performs kNN retrieval first; the outer SELECT then
	// applies repo/since filters against the auxiliary columns carried
	// through from that retrieval. Flattening both into one WHERE would let
	// the outer predicates run before k-selection and starve the result set.
	rows, err := s.db.Query(`
		SELECT repo_name, sha, subject, author_name, author_time, patch_preview
		FROM (
			SELECT ce.repo_name, ce.sha, ce.subject, ce.author_name, ce.author_time, ce.patch_preview, ce.distance
			FROM commit_embeddings ce
			WHERE ce.embedding MATCH ?1
			  AND k = ?2
		)
		WHERE ('' = ?3 OR repo_name IN (SELECT value FROM json_each(?3)))
		  AND (?4 = 0 OR author_time >= ?4)
		ORDER BY distance`,
		encodeVector(vector), limit, reposJSON, since,
	)
	if err != nil {
		return nil, wrapStoreErr("search semantic", err)
	}
	defer rows.Close()

	var out []*commitmux.SearchResult
	for rows.Next() {
		var r commitmux.SearchResult
		var patchPreview string
		if err := rows.Scan(&r.Repo, &r.SHA, &r.Subject, &r.Author, &r.Date, &patchPreview); err != nil {
			return nil, wrapStoreErr("search semantic", err)
		}
		r.PatchExcerpt = truncateRunes(patchPreview, 300)
		out = append(out, &r)
	}
	return out, wrapStoreErr("search semantic", rows.Err())
}

// encodeVector serializes a float32 vector as little-endian bytes, the
// wire format the vector engine expects for a MATCH parameter.
func encodeVector(vector []float32) []byte {
	buf := make([]byte, 4*len(vector))
	for i, f := range vector {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
