// Package storage persists the columns and tasks of a board. Selection,
// filter, search and the editing cursor are transient and never written.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vanderheijden86/kanboard/pkg/model"
)

// FormatVersion is written into every saved board.
const FormatVersion = 1

var (
	// ErrNotFound is returned by Load when nothing has been saved yet.
	ErrNotFound = errors.New("board not found")
	// ErrCorrupt is returned by Load when saved data cannot be decoded.
	ErrCorrupt = errors.New("board data is corrupt")
)

// Backend loads and saves board state.
type Backend interface {
	Load(ctx context.Context) (model.BoardState, error)
	Save(ctx context.Context, state model.BoardState) error
	Close() error
}

// Kind names a backend implementation.
type Kind string

const (
	KindJSON   Kind = "json"
	KindSQLite Kind = "sqlite"
)

// KindForPath guesses the backend from a file extension. Anything that is not
// a SQLite extension is treated as JSON.
func KindForPath(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return KindSQLite
	default:
		return KindJSON
	}
}

// Open returns the backend of the given kind for path. An empty kind is
// derived from the path.
func Open(kind Kind, path string) (Backend, error) {
	if path == "" {
		return nil, fmt.Errorf("open board storage: empty path")
	}
	if kind == "" {
		kind = KindForPath(path)
	}
	switch kind {
	case KindJSON:
		return NewJSONFile(path), nil
	case KindSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("open board storage: unknown backend %q", kind)
	}
}

// OpenExisting is like Open but returns ErrNotFound, without creating
// anything on disk, when nothing exists at path. Read-only callers use it so
// inspecting a board never materializes an empty database.
func OpenExisting(kind Kind, path string) (Backend, error) {
	if path != "" {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
	}
	return Open(kind, path)
}

// LoadOrSeed loads the saved board, or returns seed when nothing has been
// saved yet.
func LoadOrSeed(ctx context.Context, b Backend, seed []model.Column) (model.BoardState, error) {
	st, err := b.Load(ctx)
	if errors.Is(err, ErrNotFound) {
		return model.BoardState{Columns: append([]model.Column(nil), seed...)}, nil
	}
	return st, err
}
