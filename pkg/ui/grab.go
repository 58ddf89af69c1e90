package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/kanboard/pkg/drag"
)

func (m *Model) startGrab(src drag.Source) {
	m.mode = modeGrab
	m.grab = grabState{source: src, col: m.focusCol}
	if col, ok := m.focusedColumn(); ok {
		m.grab.row = m.rows[col.ID]
	}
	switch src.(type) {
	case drag.TaskDrag:
		m.setStatus("Moving task: h/j/k/l to aim, enter to drop, esc to cancel")
	case drag.ColumnDrag:
		m.setStatus("Moving column: h/l to aim, enter to drop, esc to cancel")
	}
}

func (m Model) handleGrabKeys(msg tea.KeyMsg) Model {
	_, isTask := m.grab.source.(drag.TaskDrag)
	ncols := len(m.store.Columns())

	switch {
	case msg.Type == tea.KeyEsc:
		m.mode = modeBoard
		m.grab = grabState{}
		m.setStatus("Move cancelled")
		return m
	case key.Matches(msg, m.keys.Drop):
		m.finishDrop()
		return m
	case key.Matches(msg, m.keys.Left):
		m.grab.col = clamp(m.grab.col-1, 0, ncols-1)
	case key.Matches(msg, m.keys.Right):
		m.grab.col = clamp(m.grab.col+1, 0, ncols-1)
	case isTask && key.Matches(msg, m.keys.Up):
		m.grab.row--
	case isTask && key.Matches(msg, m.keys.Down):
		m.grab.row++
	}
	m.clampGrab()
	return m
}

func (m *Model) clampGrab() {
	cols := m.store.Columns()
	m.grab.col = clamp(m.grab.col, 0, len(cols)-1)
	if len(cols) == 0 {
		m.grab.row = 0
		return
	}
	n := len(m.store.VisibleTasksOfColumn(cols[m.grab.col].ID))
	m.grab.row = clamp(m.grab.row, 0, n-1)
}

// dropEvent describes the zones under the drop cursor, nearest first. A task
// card sits inside its column, so hovering a card yields both zones; an empty
// column offers only its placeholder.
func (m Model) dropEvent() drag.Event {
	ev := drag.Event{Source: m.grab.source}
	cols := m.store.Columns()
	if m.grab.col < 0 || m.grab.col >= len(cols) {
		return ev
	}
	dest := cols[m.grab.col]

	if _, ok := m.grab.source.(drag.ColumnDrag); ok {
		ev.Targets = []drag.Target{drag.ColumnDropZone{ColumnID: dest.ID, Index: m.grab.col}}
		return ev
	}

	vis := m.store.VisibleTasksOfColumn(dest.ID)
	if len(vis) == 0 {
		ev.Targets = []drag.Target{drag.ColumnDropZone{ColumnID: dest.ID, Index: m.grab.col, Placeholder: true}}
		return ev
	}
	over := vis[clamp(m.grab.row, 0, len(vis)-1)]
	ev.Targets = []drag.Target{
		drag.TaskDropZone{TaskID: over.ID, Index: m.fullIndex(dest.ID, over.ID)},
		drag.ColumnDropZone{ColumnID: dest.ID, Index: m.grab.col},
	}
	return ev
}

func (m *Model) finishDrop() {
	ev := m.dropEvent()
	src := m.grab.source
	m.mode = modeBoard
	m.grab = grabState{}

	action := m.engine.Drop(ev)
	if _, none := action.(drag.NoAction); none {
		m.setStatus("Nothing moved")
		m.clampCursor()
		return
	}

	switch s := src.(type) {
	case drag.TaskDrag:
		m.focusTask(s.Task.ID)
	case drag.ColumnDrag:
		m.focusColumn(s.ColumnID)
	}
	m.clampCursor()
	m.setStatus(action.String())
}

func (m Model) grabbedTaskID() string {
	if m.mode != modeGrab {
		return ""
	}
	if t, ok := m.grab.source.(drag.TaskDrag); ok {
		return t.Task.ID
	}
	return ""
}

func (m Model) grabbedColumnID() string {
	if m.mode != modeGrab {
		return ""
	}
	if c, ok := m.grab.source.(drag.ColumnDrag); ok {
		return c.ColumnID
	}
	return ""
}
