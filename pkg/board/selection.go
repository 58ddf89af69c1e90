package board

import (
	"github.com/vanderheijden86/kanboard/pkg/model"
)

// forget drops every transient reference to a task that is being removed.
func (s *Store) forget(taskID string) {
	delete(s.selected, taskID)
	if s.editing == taskID {
		s.editing = ""
	}
}

// IsSelected reports whether a task is in the selection set.
func (s *Store) IsSelected(taskID string) bool {
	_, ok := s.selected[taskID]
	return ok
}

// SelectedCount returns the size of the selection set.
func (s *Store) SelectedCount() int { return len(s.selected) }

// Selected returns the selected task ids in stored task order.
func (s *Store) Selected() []string {
	out := make([]string, 0, len(s.selected))
	for _, t := range s.tasks {
		if s.IsSelected(t.ID) {
			out = append(out, t.ID)
		}
	}
	return out
}

// AllVisibleSelected reports whether a column has visible tasks and every
// one of them is selected.
func (s *Store) AllVisibleSelected(columnID string) bool {
	visible := s.VisibleTasksOfColumn(columnID)
	if len(visible) == 0 {
		return false
	}
	for _, t := range visible {
		if !s.IsSelected(t.ID) {
			return false
		}
	}
	return true
}

// ToggleSelect flips the selection membership of an existing task.
func (s *Store) ToggleSelect(taskID string) {
	if s.taskIndex(taskID) < 0 {
		return
	}
	if s.IsSelected(taskID) {
		delete(s.selected, taskID)
	} else {
		s.selected[taskID] = struct{}{}
	}
	s.notify()
}

// SelectAllInColumn selects every visible task of a column, or deselects
// exactly those tasks when all of them are already selected. Selection in
// other columns is untouched.
func (s *Store) SelectAllInColumn(columnID string) {
	visible := s.VisibleTasksOfColumn(columnID)
	if len(visible) == 0 {
		return
	}
	if s.AllVisibleSelected(columnID) {
		for _, t := range visible {
			delete(s.selected, t.ID)
		}
	} else {
		for _, t := range visible {
			s.selected[t.ID] = struct{}{}
		}
	}
	s.notify()
}

// ClearSelection empties the selection set.
func (s *Store) ClearSelection() {
	if len(s.selected) == 0 {
		return
	}
	s.selected = make(map[string]struct{})
	s.notify()
}

// BulkDelete removes every selected task and clears the selection.
func (s *Store) BulkDelete() {
	if len(s.selected) == 0 {
		return
	}
	kept := make([]model.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if s.IsSelected(t.ID) {
			if s.editing == t.ID {
				s.editing = ""
			}
			continue
		}
		kept = append(kept, t)
	}
	s.tasks = kept
	s.selected = make(map[string]struct{})
	s.notify()
}

// BulkSetCompleted sets the completed flag on every selected task and clears
// the selection.
func (s *Store) BulkSetCompleted(completed bool) {
	if len(s.selected) == 0 {
		return
	}
	tasks := make([]model.Task, len(s.tasks))
	for i, t := range s.tasks {
		if s.IsSelected(t.ID) {
			t.Completed = completed
		}
		tasks[i] = t
	}
	s.tasks = tasks
	s.selected = make(map[string]struct{})
	s.notify()
}

// BulkMoveToColumn moves every selected task to the end of columnID, keeping
// their relative order, and clears the selection. An unknown column leaves
// the board and the selection untouched.
func (s *Store) BulkMoveToColumn(columnID string) {
	if len(s.selected) == 0 || s.columnIndex(columnID) < 0 {
		return
	}
	kept := make([]model.Task, 0, len(s.tasks))
	var moved []model.Task
	for _, t := range s.tasks {
		if s.IsSelected(t.ID) {
			t.ColumnID = columnID
			moved = append(moved, t)
			continue
		}
		kept = append(kept, t)
	}
	s.tasks = append(kept, moved...)
	s.selected = make(map[string]struct{})
	s.notify()
}
