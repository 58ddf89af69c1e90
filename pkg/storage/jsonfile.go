package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/kanboard/pkg/debug"
	"github.com/vanderheijden86/kanboard/pkg/metrics"
	"github.com/vanderheijden86/kanboard/pkg/model"
)

// document is the on-disk JSON layout.
type document struct {
	Version int            `json:"version"`
	SavedAt time.Time      `json:"savedAt"`
	Columns []model.Column `json:"columns"`
	Tasks   []model.Task   `json:"tasks"`
}

// JSONFile stores a board as one JSON document. Saves go through a temporary
// file and a rename so readers never see a partial write.
type JSONFile struct {
	path string
	now  func() time.Time
}

// NewJSONFile returns a backend for path.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path, now: time.Now}
}

// Path returns the file location.
func (f *JSONFile) Path() string { return f.path }

// Load reads the board. A missing file yields ErrNotFound.
func (f *JSONFile) Load(ctx context.Context) (model.BoardState, error) {
	defer metrics.Timer(metrics.StorageLoad)()
	if err := ctx.Err(); err != nil {
		return model.BoardState{}, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.BoardState{}, ErrNotFound
		}
		return model.BoardState{}, fmt.Errorf("reading board: %w", err)
	}
	state, err := Decode(data)
	if err != nil {
		return model.BoardState{}, fmt.Errorf("%s: %w", f.path, err)
	}
	debug.Logger().WithField("path", f.path).Debugf("loaded %d columns, %d tasks", len(state.Columns), len(state.Tasks))
	return state, nil
}

// Save writes the board atomically.
func (f *JSONFile) Save(ctx context.Context, state model.BoardState) error {
	defer metrics.Timer(metrics.StorageSave)()
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Encode(state, f.now())
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating board directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing board: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing board: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replacing board: %w", err)
	}
	debug.Logger().WithField("path", f.path).Debugf("saved %d columns, %d tasks", len(state.Columns), len(state.Tasks))
	return nil
}

// Close is a no-op.
func (f *JSONFile) Close() error { return nil }

// Encode renders state as an indented JSON document.
func Encode(state model.BoardState, savedAt time.Time) ([]byte, error) {
	doc := document{
		Version: FormatVersion,
		SavedAt: savedAt.UTC(),
		Columns: state.Columns,
		Tasks:   state.Tasks,
	}
	if doc.Columns == nil {
		doc.Columns = []model.Column{}
	}
	if doc.Tasks == nil {
		doc.Tasks = []model.Task{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding board: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses a JSON document produced by Encode.
func Decode(data []byte) (model.BoardState, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return model.BoardState{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if doc.Version > FormatVersion {
		return model.BoardState{}, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, doc.Version)
	}
	return model.BoardState{Columns: doc.Columns, Tasks: doc.Tasks}, nil
}
