// ABOUTME: SQLite-backed Store: connection setup, migrations, and the write-serializing mutex
package store

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	_ "github.com/asg017/sqlite-vec-go-bindings/ncruces"
	_ "github.com/ncruces/go-sqlite3/driver"

	"github.com/blackwell-systems/commitmux/internal/commitmux"
)

// Store is the SQLite-backed implementation of commitmux.Store. All
// methods serialize on mu; WAL journal mode still lets external
// read-only tools observe a consistent snapshot while a write commits.
type Store struct {
	mu           sync.Mutex
	db           *sql.DB
	embeddingDim int
}

var _ commitmux.Store = (*Store)(nil)

// Open opens (creating if absent) the database at path and applies all
// pending migrations.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec // standard directory perms for user data
			return nil, commitmux.NewError(commitmux.KindIo, "create database directory", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, commitmux.NewError(commitmux.KindStore, "open database", err)
	}

	s := &Store{db: db, embeddingDim: DefaultEmbeddingDim}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := s.seedEmbeddingDimConfig(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// embeddingDimConfigKey records the vector width baked into the vec0
// column at schema-creation time, so operators can see which width the
// database was built with. StoreEmbedding itself checks each vector
// against the width held on the Store, not against this key.
const embeddingDimConfigKey = "embed.dimensions"

func (s *Store) seedEmbeddingDimConfig() error {
	existing, err := s.GetConfig(embeddingDimConfigKey)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	return s.SetConfig(embeddingDimConfigKey, strconv.Itoa(s.embeddingDim))
}

// OpenInMemory opens a private in-memory database, used by tests.
func OpenInMemory() (*Store, error) {
	return Open(":memory:")
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(schemaSQL(s.embeddingDim)); err != nil {
		return commitmux.NewError(commitmux.KindStore, "apply base schema", err)
	}
	for _, stmt := range repoMigrations {
		if _, err := s.db.Exec(stmt); err != nil && !isDuplicateColumnError(err) {
			return commitmux.NewError(commitmux.KindStore, "apply repo migration", err)
		}
	}
	for _, stmt := range embedMigrations {
		if _, err := s.db.Exec(stmt); err != nil && !isDuplicateColumnError(err) {
			return commitmux.NewError(commitmux.KindStore, "apply embed migration", err)
		}
	}
	return nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func wrapStoreErr(action string, err error) error {
	if err == nil {
		return nil
	}
	if err == sql.ErrNoRows {
		return commitmux.NewError(commitmux.KindNotFound, action, err)
	}
	return commitmux.NewError(commitmux.KindStore, action, err)
}

func ptrString(s string) *string { return &s }

func marshalExcludePrefixes(prefixes []string) string {
	if len(prefixes) == 0 {
		return "[]"
	}
	b, err := json.Marshal(prefixes)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func unmarshalExcludePrefixes(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

// formatISODate replaces the original implementation's manual
// Gregorian-calendar arithmetic with the standard library.
func formatISODate(unixSeconds int64) string {
	return time.Unix(unixSeconds, 0).UTC().Format("2006-01-02T15:04:05Z")
}
