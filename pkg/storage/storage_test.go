package storage_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vanderheijden86/kanboard/pkg/model"
	"github.com/vanderheijden86/kanboard/pkg/storage"
	"github.com/vanderheijden86/kanboard/pkg/testutil"
)

func sampleState() model.BoardState {
	created := time.Date(2025, 3, 14, 9, 26, 53, 589793238, time.UTC)
	return model.BoardState{
		Columns: []model.Column{
			{ID: "todo", Title: "To Do", Order: 0},
			{ID: "done", Title: "Done", Order: 1},
		},
		Tasks: []model.Task{
			{ID: "b", Text: "second in storage", ColumnID: "todo", CreatedAt: created},
			{ID: "a", Text: "ünïcode ✓", ColumnID: "todo", CreatedAt: created.Add(time.Second), Completed: true},
			{ID: "c", Text: "shipped", ColumnID: "done", CreatedAt: created.Add(2 * time.Second)},
		},
	}
}

func backends(t *testing.T) map[string]storage.Backend {
	t.Helper()
	dir := t.TempDir()
	sqlite, err := storage.OpenSQLite(filepath.Join(dir, "board.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })
	return map[string]storage.Backend{
		"json":   storage.NewJSONFile(filepath.Join(dir, "board.json")),
		"sqlite": sqlite,
	}
}

func TestBackends_RoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			want := sampleState()
			if err := b.Save(ctx, want); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, err := b.Load(ctx)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if !got.Equal(want) {
				t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
			}
			if ids := testutil.TaskIDs(got.Tasks); strings.Join(ids, ",") != "b,a,c" {
				t.Errorf("stored task sequence lost: %v", ids)
			}
		})
	}
}

func TestBackends_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := b.Save(ctx, sampleState()); err != nil {
				t.Fatal(err)
			}
			smaller := model.BoardState{Columns: []model.Column{{ID: "only", Title: "Only"}}}
			if err := b.Save(ctx, smaller); err != nil {
				t.Fatal(err)
			}
			got, err := b.Load(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if len(got.Columns) != 1 || len(got.Tasks) != 0 {
				t.Errorf("expected replaced board, got %+v", got)
			}
		})
	}
}

func TestBackends_NotFound(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := b.Load(context.Background())
			if !errors.Is(err, storage.ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestJSONFile_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := storage.NewJSONFile(path).Load(context.Background())
	if !errors.Is(err, storage.ErrCorrupt) {
		t.Errorf("expected ErrCorrupt, got %v", err)
	}
}

func TestDecode_FutureVersion(t *testing.T) {
	_, err := storage.Decode([]byte(`{"version": 99, "columns": [], "tasks": []}`))
	if !errors.Is(err, storage.ErrCorrupt) {
		t.Errorf("expected ErrCorrupt for future version, got %v", err)
	}
}

func TestEncode_UsesWireNames(t *testing.T) {
	data, err := storage.Encode(sampleState(), time.Unix(0, 0))
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"version": 1`, `"columnId"`, `"createdAt"`, `"order"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("encoded document missing %s", key)
		}
	}
}

func TestEncode_EmptyBoardHasArrays(t *testing.T) {
	data, err := storage.Encode(model.BoardState{}, time.Unix(0, 0))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"tasks": []`) {
		t.Errorf("expected empty tasks array, got %s", data)
	}
}

func TestJSONFile_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	b := storage.NewJSONFile(filepath.Join(dir, "board.json"))
	for i := 0; i < 3; i++ {
		if err := b.Save(context.Background(), sampleState()); err != nil {
			t.Fatal(err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only board.json, found %d entries", len(entries))
	}
}

func TestKindForPath(t *testing.T) {
	tests := []struct {
		path string
		want storage.Kind
	}{
		{"board.json", storage.KindJSON},
		{"board", storage.KindJSON},
		{"board.db", storage.KindSQLite},
		{"Board.SQLITE", storage.KindSQLite},
		{"x/y.sqlite3", storage.KindSQLite},
	}
	for _, tt := range tests {
		if got := storage.KindForPath(tt.path); got != tt.want {
			t.Errorf("KindForPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	b, err := storage.Open("", filepath.Join(dir, "board.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()
	if _, ok := b.(*storage.SQLite); !ok {
		t.Errorf("expected SQLite backend, got %T", b)
	}

	if _, err := storage.Open("redis", filepath.Join(dir, "x")); err == nil {
		t.Error("expected error for unknown backend")
	}
	if _, err := storage.Open(storage.KindJSON, ""); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestOpenExisting(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "data", "board.db")

	if _, err := storage.OpenExisting("", missing); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := os.Stat(filepath.Dir(missing)); !os.IsNotExist(err) {
		t.Errorf("OpenExisting created %s", filepath.Dir(missing))
	}

	path := filepath.Join(dir, "board.db")
	b, err := storage.Open("", path)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Save(context.Background(), sampleState()); err != nil {
		t.Fatal(err)
	}
	b.Close()

	b, err = storage.OpenExisting("", path)
	if err != nil {
		t.Fatalf("OpenExisting: %v", err)
	}
	defer b.Close()
	got, err := b.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(sampleState()) {
		t.Errorf("OpenExisting loaded %+v", got)
	}
}

func TestLoadOrSeed(t *testing.T) {
	b := storage.NewJSONFile(filepath.Join(t.TempDir(), "board.json"))
	seed := []model.Column{{ID: "todo", Title: "To Do"}}

	st, err := storage.LoadOrSeed(context.Background(), b, seed)
	if err != nil {
		t.Fatal(err)
	}
	if len(st.Columns) != 1 || st.Columns[0].ID != "todo" {
		t.Errorf("expected seed columns, got %+v", st.Columns)
	}
}
