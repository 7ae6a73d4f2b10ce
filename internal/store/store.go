// Package store persists the board in a local SQLite database and plays the
// role of the remote collaborator for the mutation coordinator: MoveTask and
// RenormalizeColumn are its write surface for status/position.
package store

import (
	"os"
	"path/filepath"

	"flowboard-cli/internal/mutate"
)

const dbFileName = "board.sqlite"

// The store is the coordinator's remote collaborator.
var _ mutate.Remote = Store{}

type Store struct {
	Dir string
}

// DiscoverDir walks up from start looking for a .flowboard directory, so the
// CLI works from anywhere inside a project tree.
func DiscoverDir(start string) (string, bool) {
	dir := start
	for {
		candidate := filepath.Join(dir, ".flowboard")
		if st, err := os.Stat(candidate); err == nil && st.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func DefaultDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if found, ok := DiscoverDir(cwd); ok {
		return found, nil
	}
	return filepath.Join(cwd, ".flowboard"), nil
}

func (s Store) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) dbPath() string {
	return filepath.Join(s.Dir, dbFileName)
}
