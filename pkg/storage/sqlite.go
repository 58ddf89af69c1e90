package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/kanboard/pkg/debug"
	"github.com/vanderheijden86/kanboard/pkg/metrics"
	"github.com/vanderheijden86/kanboard/pkg/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS board_meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS board_columns (
	id       TEXT PRIMARY KEY,
	title    TEXT NOT NULL,
	ord      INTEGER NOT NULL,
	position INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS board_tasks (
	id         TEXT PRIMARY KEY,
	text       TEXT NOT NULL,
	completed  INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	column_id  TEXT NOT NULL,
	position   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_board_tasks_position ON board_tasks(position);
`

// SQLite stores a board in a SQLite database. The position columns keep the
// stored sequence of columns and tasks.
type SQLite struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating board directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLite{db: db, path: path}, nil
}

// Path returns the database location.
func (s *SQLite) Path() string { return s.path }

// Close closes the database connection.
func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Load reads the board. A database that has never been saved to yields
// ErrNotFound.
func (s *SQLite) Load(ctx context.Context) (model.BoardState, error) {
	defer metrics.Timer(metrics.StorageLoad)()

	var version string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM board_meta WHERE key = 'version'`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return model.BoardState{}, ErrNotFound
	}
	if err != nil {
		return model.BoardState{}, fmt.Errorf("read version: %w", err)
	}
	if v, err := strconv.Atoi(version); err != nil || v > FormatVersion {
		return model.BoardState{}, fmt.Errorf("%w: unsupported version %q", ErrCorrupt, version)
	}

	var state model.BoardState
	cols, err := s.db.QueryContext(ctx, `SELECT id, title, ord FROM board_columns ORDER BY position`)
	if err != nil {
		return model.BoardState{}, fmt.Errorf("query columns: %w", err)
	}
	defer cols.Close()
	for cols.Next() {
		var c model.Column
		if err := cols.Scan(&c.ID, &c.Title, &c.Order); err != nil {
			return model.BoardState{}, fmt.Errorf("scan column: %w", err)
		}
		state.Columns = append(state.Columns, c)
	}
	if err := cols.Err(); err != nil {
		return model.BoardState{}, fmt.Errorf("iterate columns: %w", err)
	}

	tasks, err := s.db.QueryContext(ctx, `
		SELECT id, text, completed, created_at, column_id
		FROM board_tasks
		ORDER BY position`)
	if err != nil {
		return model.BoardState{}, fmt.Errorf("query tasks: %w", err)
	}
	defer tasks.Close()
	for tasks.Next() {
		var (
			t         model.Task
			completed int
			createdAt string
		)
		if err := tasks.Scan(&t.ID, &t.Text, &completed, &createdAt, &t.ColumnID); err != nil {
			return model.BoardState{}, fmt.Errorf("scan task: %w", err)
		}
		t.Completed = completed != 0
		t.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return model.BoardState{}, fmt.Errorf("%w: task %s created_at: %v", ErrCorrupt, t.ID, err)
		}
		state.Tasks = append(state.Tasks, t)
	}
	if err := tasks.Err(); err != nil {
		return model.BoardState{}, fmt.Errorf("iterate tasks: %w", err)
	}

	debug.Logger().WithField("path", s.path).Debugf("loaded %d columns, %d tasks", len(state.Columns), len(state.Tasks))
	return state, nil
}

// Save replaces the stored board in one transaction.
func (s *SQLite) Save(ctx context.Context, state model.BoardState) error {
	defer metrics.Timer(metrics.StorageSave)()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{`DELETE FROM board_columns`, `DELETE FROM board_tasks`} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear board: %w", err)
		}
	}

	colStmt, err := tx.PrepareContext(ctx, `INSERT INTO board_columns (id, title, ord, position) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare column insert: %w", err)
	}
	defer colStmt.Close()
	for i, c := range state.Columns {
		if _, err := colStmt.ExecContext(ctx, c.ID, c.Title, c.Order, i); err != nil {
			return fmt.Errorf("insert column %s: %w", c.ID, err)
		}
	}

	taskStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO board_tasks (id, text, completed, created_at, column_id, position)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare task insert: %w", err)
	}
	defer taskStmt.Close()
	for i, t := range state.Tasks {
		completed := 0
		if t.Completed {
			completed = 1
		}
		createdAt := t.CreatedAt.UTC().Format(time.RFC3339Nano)
		if _, err := taskStmt.ExecContext(ctx, t.ID, t.Text, completed, createdAt, t.ColumnID, i); err != nil {
			return fmt.Errorf("insert task %s: %w", t.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO board_meta (key, value) VALUES ('version', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		strconv.Itoa(FormatVersion)); err != nil {
		return fmt.Errorf("write version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	debug.Logger().WithField("path", s.path).Debugf("saved %d columns, %d tasks", len(state.Columns), len(state.Tasks))
	return nil
}
