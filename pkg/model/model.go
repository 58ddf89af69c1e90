// Package model defines the board data types shared by the store, the drag
// engine, storage backends and the terminal UI.
package model

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxTaskTextLength is the maximum number of characters in a task's text
// after trimming.
const MaxTaskTextLength = 200

// Column is an ordered bucket of tasks.
type Column struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	Order int    `json:"order" yaml:"order"`
}

// Task is a single to-do item belonging to exactly one column.
type Task struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
	ColumnID  string    `json:"columnId"`
}

// FilterMode restricts the visible tasks by completion state.
type FilterMode string

const (
	FilterAll        FilterMode = "all"
	FilterCompleted  FilterMode = "completed"
	FilterIncomplete FilterMode = "incomplete"
)

// ParseFilterMode accepts the canonical mode names plus "active", which is
// an alias of incomplete.
func ParseFilterMode(s string) (FilterMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "completed":
		return FilterCompleted, nil
	case "incomplete", "active":
		return FilterIncomplete, nil
	default:
		return FilterAll, fmt.Errorf("unknown filter mode %q", s)
	}
}

// Next cycles all -> incomplete -> completed -> all.
func (f FilterMode) Next() FilterMode {
	switch f {
	case FilterAll:
		return FilterIncomplete
	case FilterIncomplete:
		return FilterCompleted
	default:
		return FilterAll
	}
}

// Keeps reports whether a task with the given completion state survives
// the filter. Unknown modes behave like FilterAll.
func (f FilterMode) Keeps(completed bool) bool {
	switch f {
	case FilterCompleted:
		return completed
	case FilterIncomplete:
		return !completed
	default:
		return true
	}
}

// Stats summarizes all tasks on a board regardless of filter or search.
type Stats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Incomplete int `json:"incomplete"`
	// Active mirrors Incomplete.
	Active int `json:"active"`
}

// Add returns the element-wise sum of two stats.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Total:      s.Total + o.Total,
		Completed:  s.Completed + o.Completed,
		Incomplete: s.Incomplete + o.Incomplete,
		Active:     s.Active + o.Active,
	}
}

// BoardState is the persisted portion of a board. Tasks are kept in storage
// sequence; the order of same-column tasks within it is the column order.
type BoardState struct {
	Columns []Column `json:"columns"`
	Tasks   []Task   `json:"tasks"`
}

// Clone returns a deep copy.
func (s BoardState) Clone() BoardState {
	out := BoardState{
		Columns: make([]Column, len(s.Columns)),
		Tasks:   make([]Task, len(s.Tasks)),
	}
	copy(out.Columns, s.Columns)
	copy(out.Tasks, s.Tasks)
	return out
}

// Equal compares two states field by field. Timestamps compare with
// time.Time.Equal so location differences after a round trip are ignored.
func (s BoardState) Equal(o BoardState) bool {
	if len(s.Columns) != len(o.Columns) || len(s.Tasks) != len(o.Tasks) {
		return false
	}
	for i := range s.Columns {
		if s.Columns[i] != o.Columns[i] {
			return false
		}
	}
	for i := range s.Tasks {
		a, b := s.Tasks[i], o.Tasks[i]
		if a.ID != b.ID || a.Text != b.Text || a.Completed != b.Completed ||
			a.ColumnID != b.ColumnID || !a.CreatedAt.Equal(b.CreatedAt) {
			return false
		}
	}
	return true
}

// ValidationError reports user input that cannot be stored.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NormalizeTitle trims a column title and rejects empty results.
func NormalizeTitle(title string) (string, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return "", &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	return t, nil
}

// NormalizeTaskText trims task text and enforces the 1..MaxTaskTextLength
// character range.
func NormalizeTaskText(text string) (string, error) {
	t := strings.TrimSpace(text)
	if t == "" {
		return "", &ValidationError{Field: "text", Reason: "must not be empty"}
	}
	if n := utf8.RuneCountInString(t); n > MaxTaskTextLength {
		return "", &ValidationError{
			Field:  "text",
			Reason: fmt.Sprintf("must be at most %d characters, got %d", MaxTaskTextLength, n),
		}
	}
	return t, nil
}
