package board

import (
	"errors"
	"fmt"
	"slices"

	"github.com/vanderheijden86/kanboard/pkg/model"
)

// ErrIndexOutOfRange is returned when a reorder names a source position
// that does not exist.
var ErrIndexOutOfRange = errors.New("index out of range")

// AddColumn appends a column with order equal to the current column count.
func (s *Store) AddColumn(title string) (model.Column, error) {
	t, err := model.NormalizeTitle(title)
	if err != nil {
		return model.Column{}, err
	}
	col := model.Column{ID: s.newID(), Title: t, Order: len(s.columns)}
	s.columns = append(s.columns, col)
	s.notify()
	return col, nil
}

// DeleteColumn removes the column, every task in it and the selection
// entries of those tasks. The remaining columns are renumbered 0..n-1.
// Unknown ids are ignored.
func (s *Store) DeleteColumn(columnID string) {
	i := s.columnIndex(columnID)
	if i < 0 {
		return
	}
	s.columns = renumber(slices.Delete(slices.Clone(s.columns), i, i+1))

	kept := make([]model.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if t.ColumnID == columnID {
			s.forget(t.ID)
			continue
		}
		kept = append(kept, t)
	}
	s.tasks = kept
	s.notify()
}

// UpdateColumnTitle renames a column. Unknown ids are ignored.
func (s *Store) UpdateColumnTitle(columnID, title string) error {
	t, err := model.NormalizeTitle(title)
	if err != nil {
		return err
	}
	i := s.columnIndex(columnID)
	if i < 0 || s.columns[i].Title == t {
		return nil
	}
	s.columns[i].Title = t
	s.notify()
	return nil
}

// ReorderColumns moves the column at display position from to display
// position to and renumbers every column 0..n-1 in the new sequence.
// A to beyond either end is clamped.
func (s *Store) ReorderColumns(from, to int) error {
	sorted := s.Columns()
	moved, err := spliceMove(sorted, from, to)
	if err != nil {
		return fmt.Errorf("reorder columns: %w", err)
	}
	for i := range moved {
		moved[i].Order = i
	}
	if slices.Equal(moved, s.columns) {
		return nil
	}
	s.columns = moved
	s.notify()
	return nil
}

// spliceMove removes items[from] and inserts it at index to of the shortened
// slice, so a to past the original position lands after the element that
// used to sit there. The input slice is not modified.
func spliceMove[T any](items []T, from, to int) ([]T, error) {
	if from < 0 || from >= len(items) {
		return nil, fmt.Errorf("%w: %d not in [0,%d)", ErrIndexOutOfRange, from, len(items))
	}
	out := slices.Clone(items)
	item := out[from]
	out = slices.Delete(out, from, from+1)
	to = max(0, min(to, len(out)))
	return slices.Insert(out, to, item), nil
}
