// ABOUTME: SQLite schema definitions for commitmux
// ABOUTME: Tables, FTS5 virtual table, vec0 virtual table, and migration steps
package store

import (
	"fmt"
	"strings"
)

// DefaultEmbeddingDim is the vector width baked into the vec0 schema at
// creation time. Semantic queries must supply vectors of this length.
const DefaultEmbeddingDim = 768

func schemaSQL(embeddingDim int) string {
	return fmt.Sprintf(`
PRAGMA journal_mode=WAL;
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS repos (
    repo_id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    local_path TEXT NOT NULL,
    remote_url TEXT,
    default_branch TEXT,
    fork_of TEXT,
    author_filter TEXT,
    exclude_prefixes TEXT NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS commits (
    repo_id INTEGER NOT NULL REFERENCES repos(repo_id) ON DELETE CASCADE,
    sha TEXT NOT NULL,
    author_name TEXT NOT NULL,
    author_email TEXT NOT NULL,
    committer_name TEXT NOT NULL,
    committer_email TEXT NOT NULL,
    author_time INTEGER NOT NULL,
    commit_time INTEGER NOT NULL,
    subject TEXT NOT NULL,
    body TEXT,
    parent_count INTEGER NOT NULL DEFAULT 0,
    patch_preview TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (repo_id, sha)
);

CREATE INDEX IF NOT EXISTS idx_commits_repo_time ON commits(repo_id, author_time);

CREATE TABLE IF NOT EXISTS commit_files (
    repo_id INTEGER NOT NULL,
    sha TEXT NOT NULL,
    path TEXT NOT NULL,
    status TEXT NOT NULL,
    old_path TEXT
);

CREATE INDEX IF NOT EXISTS idx_commit_files_repo_sha ON commit_files(repo_id, sha);
CREATE INDEX IF NOT EXISTS idx_commit_files_path ON commit_files(path);

CREATE TABLE IF NOT EXISTS commit_patches (
    repo_id INTEGER NOT NULL,
    sha TEXT NOT NULL,
    patch_blob BLOB NOT NULL,
    PRIMARY KEY (repo_id, sha)
);

CREATE TABLE IF NOT EXISTS ingest_state (
    repo_id INTEGER PRIMARY KEY,
    last_synced_at INTEGER NOT NULL,
    last_synced_sha TEXT,
    last_error TEXT
);

CREATE VIRTUAL TABLE IF NOT EXISTS commits_fts USING fts5(
    subject, body, patch_preview,
    content='commits', content_rowid='rowid'
);

CREATE TABLE IF NOT EXISTS config (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS commit_embed_map (
    embed_id INTEGER PRIMARY KEY AUTOINCREMENT,
    repo_id INTEGER NOT NULL,
    sha TEXT NOT NULL,
    UNIQUE(repo_id, sha)
);

CREATE VIRTUAL TABLE IF NOT EXISTS commit_embeddings USING vec0(
    embed_id INTEGER PRIMARY KEY,
    embedding FLOAT[%d],
    +sha TEXT,
    +subject TEXT,
    +repo_name TEXT,
    +author_name TEXT,
    +author_time INTEGER,
    +patch_preview TEXT
);
`, embeddingDim)
}

// repoMigrations adds columns to repos that postdate the base schema.
// Each statement independently suppresses "duplicate column" errors so
// migrations are safe to re-run against an already-migrated database.
var repoMigrations = []string{
	`ALTER TABLE repos ADD COLUMN fork_of TEXT`,
	`ALTER TABLE repos ADD COLUMN author_filter TEXT`,
	`ALTER TABLE repos ADD COLUMN exclude_prefixes TEXT NOT NULL DEFAULT '[]'`,
}

// embedMigrations adds the embed_enabled column, introduced after the
// embedding subsystem.
var embedMigrations = []string{
	`ALTER TABLE repos ADD COLUMN embed_enabled INTEGER NOT NULL DEFAULT 0`,
}

func isDuplicateColumnError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate column name") || strings.Contains(msg, "already exists")
}
