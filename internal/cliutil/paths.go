// ABOUTME: DB path resolution and managed-clone directory layout
package cliutil

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const (
	dbEnvVar = "COMMITMUX_DB"
	homeDir  = ".commitmux"
)

// ResolveDBPath applies the flag > env > default precedence: an
// explicit --db flag wins, then COMMITMUX_DB, then
// ~/.commitmux/db.sqlite3.
func ResolveDBPath(flag string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv(dbEnvVar); env != "" {
		return env
	}
	return filepath.Join(commitmuxHome(), "db.sqlite3")
}

// ClonesDir is where add-repo --url clones repos it manages.
func ClonesDir() string {
	return filepath.Join(commitmuxHome(), "clones")
}

// ManagedClonePath is the local path a managed clone of name lives at.
func ManagedClonePath(name string) string {
	return filepath.Join(ClonesDir(), name)
}

// UniqueClonePath returns ManagedClonePath(name), or a path suffixed
// with a short uuid if that path already exists — add-repo's name
// derivation has no registry to consult before picking a directory,
// so two unrelated --url adds that land on the same derived name
// would otherwise collide.
func UniqueClonePath(name string) string {
	path := ManagedClonePath(name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}
	return path + "-" + uuid.New().String()[:8]
}

// IsManagedClone reports whether localPath lives under ClonesDir, the
// signal remove-repo uses to decide whether to delete the working copy
// along with the repo's database rows.
func IsManagedClone(localPath string) bool {
	rel, err := filepath.Rel(ClonesDir(), localPath)
	if err != nil {
		return false
	}
	return rel != ".." && !filepathHasDotDotPrefix(rel)
}

func filepathHasDotDotPrefix(rel string) bool {
	return len(rel) >= 2 && rel[:2] == ".."
}

func commitmuxHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, homeDir)
}
