// Package board owns the canonical state of a Kanban board: ordered columns,
// ordered tasks, the selection set and the transient filter, search and
// editing state.
//
// Every exported mutation leaves the store fully consistent on return and
// notifies subscribers at most once. A Store is not safe for concurrent use;
// callers serialize access (the terminal UI drives it from its update loop).
package board

import (
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vanderheijden86/kanboard/pkg/model"
)

// Listener is invoked after an operation changed the store.
type Listener func()

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for task creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator sets the generator used for new column and task ids.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithColumns seeds the store with columns. Columns with duplicate ids are
// skipped.
func WithColumns(cols ...model.Column) Option {
	return func(s *Store) {
		s.columns, _ = dedupeColumns(cols)
		s.columns = renumber(s.columns)
	}
}

// DefaultColumns returns the columns a new board starts with.
func DefaultColumns() []model.Column {
	return []model.Column{
		{ID: "todo", Title: "To Do", Order: 0},
		{ID: "in-progress", Title: "In Progress", Order: 1},
		{ID: "done", Title: "Done", Order: 2},
	}
}

// Store holds a single board.
type Store struct {
	columns  []model.Column
	tasks    []model.Task
	selected map[string]struct{}

	filter  model.FilterMode
	query   string
	editing string

	now   func() time.Time
	newID func() string

	listeners map[int]Listener
	nextSub   int
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		selected:  make(map[string]struct{}),
		filter:    model.FilterAll,
		now:       time.Now,
		newID:     uuid.NewString,
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn to be called after every state change. The returned
// function removes the subscription.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	return func() { delete(s.listeners, id) }
}

func (s *Store) notify() {
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if fn, ok := s.listeners[id]; ok {
			fn()
		}
	}
}

// State returns a deep copy of the persisted portion of the board, with
// columns sorted by order.
func (s *Store) State() model.BoardState {
	return model.BoardState{
		Columns: s.Columns(),
		Tasks:   append([]model.Task(nil), s.tasks...),
	}
}

// Restore replaces columns and tasks with state. Duplicate ids and tasks
// referencing a missing column are dropped and column orders are renumbered
// 0..n-1 in display sequence; selection and the editing cursor are cleared.
// Filter and search are kept.
func (s *Store) Restore(state model.BoardState) {
	cols, known := dedupeColumns(state.Columns)
	cols = renumber(cols)

	seen := make(map[string]bool, len(state.Tasks))
	tasks := make([]model.Task, 0, len(state.Tasks))
	for _, t := range state.Tasks {
		if !known[t.ColumnID] || seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		tasks = append(tasks, t)
	}

	s.columns = cols
	s.tasks = tasks
	s.selected = make(map[string]struct{})
	s.editing = ""
	s.notify()
}

func dedupeColumns(cols []model.Column) ([]model.Column, map[string]bool) {
	known := make(map[string]bool, len(cols))
	out := make([]model.Column, 0, len(cols))
	for _, c := range cols {
		if known[c.ID] {
			continue
		}
		known[c.ID] = true
		out = append(out, c)
	}
	return out, known
}

// renumber sorts cols by order and rewrites each order to its position.
// The input slice is not modified.
func renumber(cols []model.Column) []model.Column {
	out := slices.Clone(cols)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	for i := range out {
		out[i].Order = i
	}
	return out
}

// Columns returns the columns sorted by order. Columns sharing an order value
// keep their creation sequence.
func (s *Store) Columns() []model.Column {
	out := append([]model.Column(nil), s.columns...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Column looks up a column by id.
func (s *Store) Column(id string) (model.Column, bool) {
	if i := s.columnIndex(id); i >= 0 {
		return s.columns[i], true
	}
	return model.Column{}, false
}

// Task looks up a task by id.
func (s *Store) Task(id string) (model.Task, bool) {
	if i := s.taskIndex(id); i >= 0 {
		return s.tasks[i], true
	}
	return model.Task{}, false
}

// TaskColumn returns the id of the column currently holding the task.
func (s *Store) TaskColumn(taskID string) (string, bool) {
	t, ok := s.Task(taskID)
	return t.ColumnID, ok
}

// TasksOfColumn returns the tasks of a column in stored relative order.
func (s *Store) TasksOfColumn(columnID string) []model.Task {
	var out []model.Task
	for _, t := range s.tasks {
		if t.ColumnID == columnID {
			out = append(out, t)
		}
	}
	return out
}

// VisibleTasksOfColumn returns TasksOfColumn narrowed by the filter mode and
// a case-insensitive substring match of the search query.
func (s *Store) VisibleTasksOfColumn(columnID string) []model.Task {
	query := strings.ToLower(s.query)
	var out []model.Task
	for _, t := range s.tasks {
		if t.ColumnID != columnID || !s.filter.Keeps(t.Completed) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(t.Text), query) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Stats counts all tasks, ignoring filter and search.
func (s *Store) Stats() model.Stats {
	st := model.Stats{Total: len(s.tasks)}
	for _, t := range s.tasks {
		if t.Completed {
			st.Completed++
		}
	}
	st.Incomplete = st.Total - st.Completed
	st.Active = st.Incomplete
	return st
}

// Filter returns the current filter mode.
func (s *Store) Filter() model.FilterMode { return s.filter }

// SearchQuery returns the current search text.
func (s *Store) SearchQuery() string { return s.query }

// EditingTask returns the id of the task being edited, or "".
func (s *Store) EditingTask() string { return s.editing }

// SetSearchQuery replaces the search text.
func (s *Store) SetSearchQuery(text string) {
	if s.query == text {
		return
	}
	s.query = text
	s.notify()
}

// SetFilter replaces the filter mode.
func (s *Store) SetFilter(mode model.FilterMode) {
	if s.filter == mode {
		return
	}
	s.filter = mode
	s.notify()
}

// SetEditingTask moves the editing cursor to id. An empty id clears it.
func (s *Store) SetEditingTask(id string) {
	if s.editing == id {
		return
	}
	s.editing = id
	s.notify()
}

func (s *Store) columnIndex(id string) int {
	for i := range s.columns {
		if s.columns[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) taskIndex(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}
