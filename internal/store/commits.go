// ABOUTME: Commit, file, and patch writes — idempotent upserts with manual FTS index maintenance
package store

import (
	"database/sql"

	"github.com/blackwell-systems/commitmux/internal/commitmux"
	"github.com/klauspost/compress/zstd"
)

// UpsertCommit idempotently writes a commit and keeps the full-text
// index in sync via the external-content delete+insert idiom (not a
// trigger): the stale FTS row is removed by rowid before the fresh one
// is inserted, so content-table updates never leave the index stale.
func (s *Store) UpsertCommit(c *commitmux.Commit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upsertCommitLocked(c)
}

func (s *Store) upsertCommitLocked(c *commitmux.Commit) error {
	var oldSubject, oldBody, oldPreview sql.NullString
	var rowid sql.NullInt64
	err := s.db.QueryRow(
		`SELECT rowid, subject, body, patch_preview FROM commits WHERE repo_id = ? AND sha = ?`,
		c.RepoID, c.SHA,
	).Scan(&rowid, &oldSubject, &oldBody, &oldPreview)
	if err != nil && err != sql.ErrNoRows {
		return wrapStoreErr("upsert commit", err)
	}
	if rowid.Valid {
		if _, err := s.db.Exec(
			`INSERT INTO commits_fts(commits_fts, rowid, subject, body, patch_preview) VALUES('delete', ?, ?, ?, ?)`,
			rowid.Int64, oldSubject.String, oldBody.String, oldPreview.String,
		); err != nil {
			return wrapStoreErr("evict stale fts row", err)
		}
	}

	if _, err := s.db.Exec(
		`INSERT OR REPLACE INTO commits
			(repo_id, sha, author_name, author_email, committer_name, committer_email,
			 author_time, commit_time, subject, body, parent_count, patch_preview)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, '')`,
		c.RepoID, c.SHA, c.AuthorName, c.AuthorEmail, c.CommitterName, c.CommitterEmail,
		c.AuthorTime, c.CommitTime, c.Subject, c.Body, c.ParentCount,
	); err != nil {
		return wrapStoreErr("upsert commit", err)
	}

	var newRowid int64
	if err := s.db.QueryRow(`SELECT rowid FROM commits WHERE repo_id = ? AND sha = ?`, c.RepoID, c.SHA).Scan(&newRowid); err != nil {
		return wrapStoreErr("upsert commit", err)
	}
	var body string
	if c.Body != nil {
		body = *c.Body
	}
	if _, err := s.db.Exec(
		`INSERT INTO commits_fts(rowid, subject, body, patch_preview) VALUES (?, ?, ?, '')`,
		newRowid, c.Subject, body,
	); err != nil {
		return wrapStoreErr("reindex commit", err)
	}
	return nil
}

// UpsertCommitFiles replaces any prior rows for the (repo_id, sha) pair
// of the first file in the slice. Callers must pass files for a single
// commit only.
func (s *Store) UpsertCommitFiles(files []*commitmux.CommitFile) error {
	if len(files) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	repoID, sha := files[0].RepoID, files[0].SHA
	if _, err := s.db.Exec(`DELETE FROM commit_files WHERE repo_id = ? AND sha = ?`, repoID, sha); err != nil {
		return wrapStoreErr("upsert commit files", err)
	}
	for _, f := range files {
		if _, err := s.db.Exec(
			`INSERT INTO commit_files (repo_id, sha, path, status, old_path) VALUES (?, ?, ?, ?, ?)`,
			f.RepoID, f.SHA, f.Path, string(f.Status), f.OldPath,
		); err != nil {
			return wrapStoreErr("upsert commit files", err)
		}
	}
	return nil
}

// UpsertPatch compresses the patch text with zstd, stores the blob,
// and re-syncs the commit's preview into both the commits table and
// the FTS index.
func (s *Store) UpsertPatch(p *commitmux.CommitPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return commitmux.NewError(commitmux.KindIo, "init zstd encoder", err)
	}
	defer enc.Close()
	compressed := enc.EncodeAll(p.PatchBlob, nil)

	preview := p.PatchPreview
	if len(preview) > 500 {
		preview = truncateRunes(preview, 500)
	}

	if _, err := s.db.Exec(
		`INSERT OR REPLACE INTO commit_patches (repo_id, sha, patch_blob) VALUES (?, ?, ?)`,
		p.RepoID, p.SHA, compressed,
	); err != nil {
		return wrapStoreErr("upsert patch", err)
	}

	var rowid int64
	var subject string
	var body sql.NullString
	if err := s.db.QueryRow(
		`SELECT rowid, subject, body FROM commits WHERE repo_id = ? AND sha = ?`, p.RepoID, p.SHA,
	).Scan(&rowid, &subject, &body); err != nil {
		return wrapStoreErr("upsert patch: locate commit", err)
	}

	if _, err := s.db.Exec(
		`INSERT INTO commits_fts(commits_fts, rowid, subject, body, patch_preview) VALUES('delete', ?, ?, ?, '')`,
		rowid, subject, body.String,
	); err != nil {
		return wrapStoreErr("evict stale fts row", err)
	}

	if _, err := s.db.Exec(`UPDATE commits SET patch_preview = ? WHERE rowid = ?`, preview, rowid); err != nil {
		return wrapStoreErr("upsert patch: update preview", err)
	}

	if _, err := s.db.Exec(
		`INSERT INTO commits_fts(rowid, subject, body, patch_preview) VALUES (?, ?, ?, ?)`,
		rowid, subject, body.String, preview,
	); err != nil {
		return wrapStoreErr("reindex patch", err)
	}
	return nil
}

// CommitExists is a cheap existence check used by the incremental skip.
func (s *Store) CommitExists(repoID int64, sha string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM commits WHERE repo_id = ? AND sha = ?`, repoID, sha).Scan(&count)
	if err != nil {
		return false, wrapStoreErr("commit exists", err)
	}
	return count > 0, nil
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
