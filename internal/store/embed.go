// ABOUTME: Reads and writes for the embedding backfill queue (key-map + vec0 table)
package store

import (
	"database/sql"
	"fmt"

	"github.com/blackwell-systems/commitmux/internal/commitmux"
)

// GetCommitsWithoutEmbeddings returns a bounded, newest-first batch of
// commits for repoID that have no key-map entry yet. Unlike the
// reference implementation this also populates FilesChanged from
// commit_files, since BuildEmbedDoc's "Files changed:" section is only
// meaningful if the field carries real data.
func (s *Store) GetCommitsWithoutEmbeddings(repoID int64, limit int) ([]*commitmux.EmbedCommit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT c.sha, c.subject, c.body, c.author_name, r.name, c.author_time, c.patch_preview
		FROM commits c
		JOIN repos r ON r.repo_id = c.repo_id
		LEFT JOIN commit_embed_map m ON m.repo_id = c.repo_id AND m.sha = c.sha
		WHERE c.repo_id = ? AND m.embed_id IS NULL
		ORDER BY c.author_time DESC
		LIMIT ?`,
		repoID, limit,
	)
	if err != nil {
		return nil, wrapStoreErr("get commits without embeddings", err)
	}
	defer rows.Close()

	var out []*commitmux.EmbedCommit
	for rows.Next() {
		var ec commitmux.EmbedCommit
		var body, patchPreview sql.NullString
		ec.RepoID = repoID
		if err := rows.Scan(&ec.SHA, &ec.Subject, &body, &ec.AuthorName, &ec.RepoName, &ec.AuthorTime, &patchPreview); err != nil {
			return nil, wrapStoreErr("get commits without embeddings", err)
		}
		if body.Valid && body.String != "" {
			ec.Body = &body.String
		}
		if patchPreview.Valid && patchPreview.String != "" {
			ec.PatchPreview = &patchPreview.String
		}
		out = append(out, &ec)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStoreErr("get commits without embeddings", err)
	}

	for _, ec := range out {
		paths, err := s.filesChangedLocked(repoID, ec.SHA)
		if err != nil {
			return nil, err
		}
		ec.FilesChanged = paths
	}
	return out, nil
}

func (s *Store) filesChangedLocked(repoID int64, sha string) ([]string, error) {
	rows, err := s.db.Query(`SELECT path FROM commit_files WHERE repo_id = ? AND sha = ? ORDER BY path`, repoID, sha)
	if err != nil {
		return nil, wrapStoreErr("load changed files", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, wrapStoreErr("load changed files", err)
		}
		paths = append(paths, p)
	}
	return paths, wrapStoreErr("load changed files", rows.Err())
}

// StoreEmbedding assigns (or reuses) a stable embed_id for (repoID,
// sha) and replaces its row in the vector table. The vector engine has
// no in-place upsert, so this deletes before inserting.
func (s *Store) StoreEmbedding(c *commitmux.EmbedCommit, vector []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(vector) != s.embeddingDim {
		return commitmux.NewError(commitmux.KindEmbed, fmt.Sprintf(
			"embedding has %d dimensions, but this database was created with %d; switching models requires rebuilding the vector table",
			len(vector), s.embeddingDim,
		), nil)
	}

	if _, err := s.db.Exec(
		`INSERT OR IGNORE INTO commit_embed_map (repo_id, sha) VALUES (?, ?)`,
		c.RepoID, c.SHA,
	); err != nil {
		return wrapStoreErr("store embedding", err)
	}

	var embedID int64
	if err := s.db.QueryRow(
		`SELECT embed_id FROM commit_embed_map WHERE repo_id = ? AND sha = ?`, c.RepoID, c.SHA,
	).Scan(&embedID); err != nil {
		return wrapStoreErr("store embedding", err)
	}

	if _, err := s.db.Exec(`DELETE FROM commit_embeddings WHERE embed_id = ?`, embedID); err != nil {
		return wrapStoreErr("store embedding", err)
	}

	var patchPreview string
	if c.PatchPreview != nil {
		patchPreview = *c.PatchPreview
	}

	_, err := s.db.Exec(
		`INSERT INTO commit_embeddings (embed_id, embedding, sha, subject, repo_name, author_name, author_time, patch_preview)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		embedID, encodeVector(vector), c.SHA, c.Subject, c.RepoName, c.AuthorName, c.AuthorTime, patchPreview,
	)
	return wrapStoreErr("store embedding", err)
}

// CountEmbeddingsForRepo reports how many commits of repoID have a
// stored embedding, for status reporting.
func (s *Store) CountEmbeddingsForRepo(repoID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	err := s.db.QueryRow(`SELECT COUNT(*) FROM commit_embed_map WHERE repo_id = ?`, repoID).Scan(&count)
	return count, wrapStoreErr("count embeddings for repo", err)
}
