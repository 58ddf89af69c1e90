package board

import (
	"fmt"
	"slices"

	"github.com/vanderheijden86/kanboard/pkg/model"
)

// AddTask appends a new incomplete task to the end of a column.
func (s *Store) AddTask(text, columnID string) (model.Task, error) {
	t, err := model.NormalizeTaskText(text)
	if err != nil {
		return model.Task{}, err
	}
	if s.columnIndex(columnID) < 0 {
		return model.Task{}, &model.ValidationError{
			Field:  "columnId",
			Reason: fmt.Sprintf("column %q does not exist", columnID),
		}
	}
	task := model.Task{
		ID:        s.newID(),
		Text:      t,
		CreatedAt: s.now(),
		ColumnID:  columnID,
	}
	s.tasks = append(s.tasks, task)
	s.notify()
	return task, nil
}

// DeleteTask removes a task and its selection entry. Unknown ids are ignored.
func (s *Store) DeleteTask(taskID string) {
	i := s.taskIndex(taskID)
	if i < 0 {
		return
	}
	s.tasks = slices.Delete(slices.Clone(s.tasks), i, i+1)
	s.forget(taskID)
	s.notify()
}

// UpdateTask replaces the text of a task. Unknown ids are ignored.
func (s *Store) UpdateTask(taskID, text string) error {
	t, err := model.NormalizeTaskText(text)
	if err != nil {
		return err
	}
	i := s.taskIndex(taskID)
	if i < 0 || s.tasks[i].Text == t {
		return nil
	}
	s.tasks[i].Text = t
	s.notify()
	return nil
}

// ToggleTask flips the completed flag of a task.
func (s *Store) ToggleTask(taskID string) {
	i := s.taskIndex(taskID)
	if i < 0 {
		return
	}
	s.tasks[i].Completed = !s.tasks[i].Completed
	s.notify()
}

// MoveTask reassigns a task to newColumnID and makes it the last task of that
// column. Unknown tasks or columns are ignored.
func (s *Store) MoveTask(taskID, newColumnID string) {
	i := s.taskIndex(taskID)
	if i < 0 || s.columnIndex(newColumnID) < 0 {
		return
	}
	task := s.tasks[i]
	if task.ColumnID == newColumnID && i == len(s.tasks)-1 {
		return
	}
	task.ColumnID = newColumnID
	tasks := slices.Delete(slices.Clone(s.tasks), i, i+1)
	s.tasks = append(tasks, task)
	s.notify()
}

// ReorderTasks moves the task at position from of a column to position to of
// the same column. The stored sequence becomes every other task in prior
// relative order followed by the reordered column, which leaves the order of
// every other column untouched. A column with no tasks is ignored.
func (s *Store) ReorderTasks(columnID string, from, to int) error {
	var own, others []model.Task
	for _, t := range s.tasks {
		if t.ColumnID == columnID {
			own = append(own, t)
		} else {
			others = append(others, t)
		}
	}
	if len(own) == 0 {
		return nil
	}
	moved, err := spliceMove(own, from, to)
	if err != nil {
		return fmt.Errorf("reorder tasks in %s: %w", columnID, err)
	}
	next := append(others, moved...)
	if slices.Equal(next, s.tasks) {
		return nil
	}
	s.tasks = next
	s.notify()
	return nil
}
