package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/kanboard/pkg/config"
	"github.com/vanderheijden86/kanboard/pkg/model"
	"github.com/vanderheijden86/kanboard/pkg/storage"
)

func TestResolveBoard(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Storage.Path = filepath.Join(dir, "main.json")
	cfg.Boards = []config.Board{
		{Name: "Home", Path: filepath.Join(dir, "home.db"), Backend: "sqlite"},
	}

	tests := []struct {
		name      string
		board     string
		backend   string
		wantKind  storage.Kind
		wantPath  string
		wantError bool
	}{
		{"config default", "", "", storage.KindJSON, cfg.Storage.Path, false},
		{"named board", "home", "", storage.KindSQLite, filepath.Join(dir, "home.db"), false},
		{"path infers sqlite", "/tmp/x.sqlite", "", storage.KindSQLite, "/tmp/x.sqlite", false},
		{"path infers json", "/tmp/x.txt", "", storage.KindJSON, "/tmp/x.txt", false},
		{"backend flag wins", "/tmp/x.txt", "sqlite", storage.KindSQLite, "/tmp/x.txt", false},
		{"bad backend", "", "redis", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, path, err := resolveBoard(cfg, tt.board, tt.backend)
			if tt.wantError {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveBoard: %v", err)
			}
			if kind != tt.wantKind || path != tt.wantPath {
				t.Errorf("got (%s, %s), want (%s, %s)", kind, path, tt.wantKind, tt.wantPath)
			}
		})
	}
}

func TestOpenBoard_SeedsDefaultColumns(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.UI.Filter = "active"
	path := filepath.Join(t.TempDir(), "board.json")

	store, backend, err := openBoard(context.Background(), cfg, storage.KindJSON, path)
	if err != nil {
		t.Fatalf("openBoard: %v", err)
	}
	defer backend.Close()

	cols := store.Columns()
	if len(cols) != 3 || cols[0].ID != "todo" || cols[2].ID != "done" {
		t.Errorf("expected seeded default columns, got %+v", cols)
	}
	if store.Filter() != model.FilterIncomplete {
		t.Errorf("expected filter from config, got %s", store.Filter())
	}
}

func TestOpenBoard_LoadsSavedState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.db")
	saved := model.BoardState{
		Columns: []model.Column{{ID: "a", Title: "A"}},
		Tasks:   []model.Task{{ID: "t", Text: "x", ColumnID: "a", Completed: true, CreatedAt: time.Now().UTC()}},
	}
	b, err := storage.Open(storage.KindSQLite, path)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Save(context.Background(), saved); err != nil {
		t.Fatal(err)
	}
	b.Close()

	store, backend, err := openBoard(context.Background(), config.DefaultConfig(), storage.KindSQLite, path)
	if err != nil {
		t.Fatalf("openBoard: %v", err)
	}
	defer backend.Close()

	var buf bytes.Buffer
	if err := writeStats(&buf, store); err != nil {
		t.Fatal(err)
	}
	var out statsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}
	if out.Columns != 1 || out.Stats.Total != 1 || out.Stats.Completed != 1 {
		t.Errorf("unexpected stats %+v", out)
	}
}

func TestOpenBoard_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.json")
	// Future format versions are refused rather than overwritten.
	if err := os.WriteFile(path, []byte(`{"version": 99, "columns": [], "tasks": []}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := openBoard(context.Background(), config.DefaultConfig(), storage.KindJSON, path); err == nil {
		t.Fatal("expected error for unreadable board")
	}
}

func TestPeekBoard_MissingSQLiteIsNotCreated(t *testing.T) {
	cfg := config.DefaultConfig()
	path := filepath.Join(t.TempDir(), "data", "board.db")

	store, err := peekBoard(context.Background(), cfg, storage.KindSQLite, path)
	if err != nil {
		t.Fatalf("peekBoard: %v", err)
	}
	if len(store.Columns()) != 3 {
		t.Errorf("expected seeded default columns, got %+v", store.Columns())
	}
	if _, err := os.Stat(filepath.Dir(path)); !os.IsNotExist(err) {
		t.Errorf("read-only open created %s", filepath.Dir(path))
	}
}

func TestPeekBoard_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := peekBoard(context.Background(), config.DefaultConfig(), storage.KindJSON, path); err == nil {
		t.Fatal("expected error for unreadable board")
	}
}

type closeRecorder struct {
	storage.Backend
	closed   bool
	closeErr error
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return c.closeErr
}

func TestFinish(t *testing.T) {
	tests := []struct {
		name     string
		runErr   error
		closeErr error
		wantCode int
		wantErr  string
	}{
		{"clean exit", nil, nil, 0, ""},
		{"run error", errors.New("boom"), nil, 1, "Error running kb: boom"},
		{"close error", nil, errors.New("locked"), 1, "Error closing board: locked"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &closeRecorder{closeErr: tt.closeErr}
			var stderr bytes.Buffer

			code := finish(&stderr, backend, tt.runErr)
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d", code, tt.wantCode)
			}
			if !backend.closed {
				t.Error("backend not closed before exit")
			}
			if tt.wantErr == "" && stderr.Len() != 0 {
				t.Errorf("unexpected stderr %q", stderr.String())
			}
			if !strings.Contains(stderr.String(), tt.wantErr) {
				t.Errorf("stderr = %q, want %q", stderr.String(), tt.wantErr)
			}
		})
	}
}

func TestWriteStatsAll(t *testing.T) {
	dir := t.TempDir()
	work := filepath.Join(dir, "work.json")
	b := storage.NewJSONFile(work)
	err := b.Save(context.Background(), model.BoardState{
		Columns: []model.Column{{ID: "c", Title: "C"}},
		Tasks: []model.Task{
			{ID: "1", Text: "a", ColumnID: "c", CreatedAt: time.Now().UTC()},
			{ID: "2", Text: "b", ColumnID: "c", Completed: true, CreatedAt: time.Now().UTC()},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.Storage.Path = filepath.Join(dir, "missing.json")
	cfg.Boards = []config.Board{{Name: "work", Path: work}}

	var buf bytes.Buffer
	if err := writeStatsAll(context.Background(), &buf, cfg); err != nil {
		t.Fatalf("writeStatsAll: %v", err)
	}
	var out statsSummary
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}

	if len(out.Boards) != 2 {
		t.Fatalf("expected main board plus work, got %+v", out.Boards)
	}
	if out.Boards[0].Name != "default" || !out.Boards[0].Missing {
		t.Errorf("main board should be listed first and missing, got %+v", out.Boards[0])
	}
	if out.Total.Total != 2 || out.Total.Completed != 1 || out.Failed != 0 {
		t.Errorf("unexpected totals %+v", out)
	}
}
