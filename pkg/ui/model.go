// Package ui is the terminal front end of kb. It renders a board.Store and
// acts as the pointer-tracking layer for the drag engine: a keyboard grab and
// drop is turned into the same drag-end event a mouse release would produce.
package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/kanboard/pkg/board"
	"github.com/vanderheijden86/kanboard/pkg/debug"
	"github.com/vanderheijden86/kanboard/pkg/drag"
	"github.com/vanderheijden86/kanboard/pkg/model"
	"github.com/vanderheijden86/kanboard/pkg/storage"
	"github.com/vanderheijden86/kanboard/pkg/watcher"
)

// DefaultColumnWidth is used when no width is configured.
const DefaultColumnWidth = 32

const reloadTimeout = 5 * time.Second

type mode int

const (
	modeBoard mode = iota
	modeInput
	modeGrab
	modeConfirm
)

type inputKind int

const (
	inputAddTask inputKind = iota
	inputEditTask
	inputAddColumn
	inputRenameColumn
	inputSearch
)

// FileChangedMsg is sent when the board file changes on disk
type FileChangedMsg struct{}

// boardLoadedMsg carries the result of re-reading the board from disk.
type boardLoadedMsg struct {
	state model.BoardState
	err   error
}

// WatchFileCmd returns a command that waits for file changes and sends FileChangedMsg
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		<-w.Changed()
		return FileChangedMsg{}
	}
}

// grabState tracks a keyboard drag: what was picked up and where the drop
// cursor currently hovers.
type grabState struct {
	source drag.Source
	col    int // display position of the hovered column
	row    int // row in the hovered column's visible tasks
}

// Option configures a Model.
type Option func(*Model)

// WithStorage lets the model reload from backend when the file changes.
// saver, when set, is consulted so the model's own writes are not reloaded.
func WithStorage(backend storage.Backend, saver *storage.Autosaver) Option {
	return func(m *Model) {
		m.backend = backend
		m.autosaver = saver
	}
}

// WithWatcher reloads the board whenever w reports a change.
func WithWatcher(w *watcher.Watcher) Option {
	return func(m *Model) { m.watcher = w }
}

// WithColumnWidth sets the rendered width of each column.
func WithColumnWidth(w int) Option {
	return func(m *Model) {
		if w > 0 {
			m.colWidth = w
		}
	}
}

// WithTitle sets the text of the title bar.
func WithTitle(title string) Option {
	return func(m *Model) { m.title = title }
}

// WithClock sets the time source for relative dates.
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) { m.copyText = write }
}

// Model is the bubbletea model for one board.
type Model struct {
	store  *board.Store
	engine *drag.Engine

	backend   storage.Backend
	autosaver *storage.Autosaver
	watcher   *watcher.Watcher

	theme Theme
	keys  keyMap
	help  help.Model
	input textinput.Model

	mode      mode
	inputKind inputKind
	confirmID string
	grab      grabState

	focusCol int
	rows     map[string]int // visible row of the cursor, per column id

	width, height int
	colWidth      int
	title         string

	status    string
	statusErr bool

	now      func() time.Time
	copyText func(string) error
}

// NewModel creates a model that renders and edits store.
func NewModel(store *board.Store, opts ...Option) Model {
	ti := textinput.New()
	ti.CharLimit = model.MaxTaskTextLength
	ti.Width = 50

	m := Model{
		store:    store,
		engine:   drag.NewEngine(store),
		theme:    DefaultTheme(lipgloss.DefaultRenderer()),
		keys:     defaultKeyMap(),
		help:     help.New(),
		input:    ti,
		rows:     make(map[string]int),
		width:    120,
		height:   40,
		colWidth: DefaultColumnWidth,
		title:    "kb",
		now:      time.Now,
		copyText: clipboard.WriteAll,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return WatchFileCmd(m.watcher)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case FileChangedMsg:
		return m, tea.Batch(m.loadCmd(), WatchFileCmd(m.watcher))

	case boardLoadedMsg:
		m.applyReload(msg)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeInput:
			return m.handleInputKeys(msg)
		case modeGrab:
			return m.handleGrabKeys(msg), nil
		case modeConfirm:
			return m.handleConfirmKeys(msg), nil
		}
		return m.handleBoardKeys(msg)
	}

	if m.mode == modeInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleBoardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	col, hasCol := m.focusedColumn()
	task, hasTask := m.focusedTask()

	var cmd tea.Cmd
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Left):
		m.focusCol--
	case key.Matches(msg, m.keys.Right):
		m.focusCol++
	case key.Matches(msg, m.keys.Up):
		if hasCol {
			m.rows[col.ID]--
		}
	case key.Matches(msg, m.keys.Down):
		if hasCol {
			m.rows[col.ID]++
		}

	case key.Matches(msg, m.keys.AddTask):
		if hasCol {
			cmd = m.startInput(inputAddTask, "Add to "+col.Title+": ", "")
		}
	case key.Matches(msg, m.keys.EditTask):
		if hasTask {
			m.store.SetEditingTask(task.ID)
			cmd = m.startInput(inputEditTask, "Edit: ", task.Text)
		}
	case key.Matches(msg, m.keys.ToggleDone):
		if hasTask {
			m.store.ToggleTask(task.ID)
		}
	case key.Matches(msg, m.keys.DeleteTask):
		if hasTask {
			m.store.DeleteTask(task.ID)
		}
	case key.Matches(msg, m.keys.AddColumn):
		cmd = m.startInput(inputAddColumn, "New column: ", "")
	case key.Matches(msg, m.keys.RenameCol):
		if hasCol {
			cmd = m.startInput(inputRenameColumn, "Rename column: ", col.Title)
		}
	case key.Matches(msg, m.keys.DeleteCol):
		if hasCol {
			m.mode = modeConfirm
			m.confirmID = col.ID
			m.setStatus(fmt.Sprintf("Delete column %q and its %d tasks? (y/n)", col.Title, len(m.store.TasksOfColumn(col.ID))))
		}

	case key.Matches(msg, m.keys.GrabTask):
		if hasTask {
			m.startGrab(drag.TaskDrag{Task: task, Index: m.fullIndex(col.ID, task.ID)})
		}
	case key.Matches(msg, m.keys.GrabColumn):
		if hasCol {
			m.startGrab(drag.ColumnDrag{ColumnID: col.ID, Index: m.focusCol})
		}

	case key.Matches(msg, m.keys.Select):
		if hasTask {
			m.store.ToggleSelect(task.ID)
		}
	case key.Matches(msg, m.keys.SelectAll):
		if hasCol {
			m.store.SelectAllInColumn(col.ID)
		}
	case key.Matches(msg, m.keys.BulkDone):
		m.store.BulkSetCompleted(true)
	case key.Matches(msg, m.keys.BulkUndone):
		m.store.BulkSetCompleted(false)
	case key.Matches(msg, m.keys.BulkMove):
		if hasCol {
			m.store.BulkMoveToColumn(col.ID)
		}
	case key.Matches(msg, m.keys.BulkDelete):
		m.store.BulkDelete()
	case key.Matches(msg, m.keys.ClearSelect):
		if m.store.SelectedCount() > 0 {
			m.store.ClearSelection()
		} else {
			m.store.SetSearchQuery("")
		}

	case key.Matches(msg, m.keys.Filter):
		m.store.SetFilter(m.store.Filter().Next())
	case key.Matches(msg, m.keys.Search):
		cmd = m.startInput(inputSearch, "/", m.store.SearchQuery())
	case key.Matches(msg, m.keys.Yank):
		if hasTask {
			m.yank(task)
		}
	}

	m.clampCursor()
	return m, cmd
}

func (m *Model) startInput(kind inputKind, prompt, value string) tea.Cmd {
	m.mode = modeInput
	m.inputKind = kind
	m.input.Prompt = prompt
	m.input.SetValue(value)
	m.input.CursorEnd()
	return tea.Batch(m.input.Focus(), textinput.Blink)
}

func (m *Model) endInput() {
	m.mode = modeBoard
	m.input.Blur()
	m.input.SetValue("")
	if m.inputKind == inputEditTask {
		m.store.SetEditingTask("")
	}
}

func (m Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		if m.inputKind == inputSearch {
			m.store.SetSearchQuery("")
		}
		m.endInput()
		m.clampCursor()
		return m, nil
	case tea.KeyEnter:
		m.commitInput()
		m.clampCursor()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.inputKind == inputSearch {
		m.store.SetSearchQuery(m.input.Value())
		m.clampCursor()
	}
	return m, cmd
}

// commitInput applies the input line. Validation errors keep the input open
// so the text can be corrected.
func (m *Model) commitInput() {
	value := m.input.Value()
	col, hasCol := m.focusedColumn()

	var err error
	switch m.inputKind {
	case inputAddTask:
		if !hasCol {
			break
		}
		var t model.Task
		if t, err = m.store.AddTask(value, col.ID); err == nil {
			m.focusTask(t.ID)
		}
	case inputEditTask:
		err = m.store.UpdateTask(m.store.EditingTask(), value)
	case inputAddColumn:
		var c model.Column
		if c, err = m.store.AddColumn(value); err == nil {
			m.focusColumn(c.ID)
		}
	case inputRenameColumn:
		if hasCol {
			err = m.store.UpdateColumnTitle(col.ID, value)
		}
	case inputSearch:
		m.store.SetSearchQuery(value)
	}

	if err != nil {
		m.setError(err)
		return
	}
	m.status = ""
	m.endInput()
}

func (m Model) handleConfirmKeys(msg tea.KeyMsg) Model {
	if msg.String() == "y" || msg.String() == "Y" {
		m.store.DeleteColumn(m.confirmID)
		m.setStatus("Column deleted")
	} else {
		m.status = ""
	}
	m.mode = modeBoard
	m.confirmID = ""
	m.clampCursor()
	return m
}

func (m *Model) yank(t model.Task) {
	if err := m.copyText(t.Text); err != nil {
		m.setError(fmt.Errorf("clipboard: %w", err))
		return
	}
	m.setStatus("Copied task text to clipboard")
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(err error) {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		m.status = verr.Error()
	} else {
		m.status = err.Error()
	}
	m.statusErr = true
}

// loadCmd re-reads the board off the update loop.
func (m Model) loadCmd() tea.Cmd {
	backend := m.backend
	if backend == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
		defer cancel()
		st, err := backend.Load(ctx)
		return boardLoadedMsg{state: st, err: err}
	}
}

// applyReload replaces the board with what is on disk, unless the file only
// reflects this model's own saves or a save of ours is still due.
func (m *Model) applyReload(msg boardLoadedMsg) {
	if msg.err != nil {
		if !errors.Is(msg.err, storage.ErrNotFound) {
			m.setError(fmt.Errorf("reload: %w", msg.err))
		}
		return
	}
	if m.autosaver != nil {
		if m.autosaver.Pending() {
			return
		}
		if last, ok := m.autosaver.LastSaved(); ok && last.Equal(msg.state) {
			return
		}
	}
	if msg.state.Equal(m.store.State()) {
		return
	}

	if m.autosaver != nil {
		m.autosaver.MarkSaved(msg.state)
	}
	m.store.Restore(msg.state)
	debug.Log("ui: reloaded %d columns, %d tasks from disk", len(msg.state.Columns), len(msg.state.Tasks))

	// Restore drops the editing cursor and may remove what was grabbed.
	if m.mode == modeInput && m.inputKind == inputEditTask {
		m.endInput()
	}
	if m.mode == modeGrab || m.mode == modeConfirm {
		m.mode = modeBoard
		m.grab = grabState{}
	}
	m.clampCursor()
	m.setStatus("Board reloaded from disk")
}

// Stop releases the file watcher.
func (m *Model) Stop() {
	if m.watcher != nil {
		m.watcher.Stop()
	}
}

func (m Model) focusedColumn() (model.Column, bool) {
	cols := m.store.Columns()
	if m.focusCol < 0 || m.focusCol >= len(cols) {
		return model.Column{}, false
	}
	return cols[m.focusCol], true
}

func (m Model) focusedTask() (model.Task, bool) {
	col, ok := m.focusedColumn()
	if !ok {
		return model.Task{}, false
	}
	vis := m.store.VisibleTasksOfColumn(col.ID)
	row := m.rows[col.ID]
	if row < 0 || row >= len(vis) {
		return model.Task{}, false
	}
	return vis[row], true
}

// fullIndex returns the position of a task among all tasks of its column,
// which is what the store's reorder operations index into.
func (m Model) fullIndex(columnID, taskID string) int {
	for i, t := range m.store.TasksOfColumn(columnID) {
		if t.ID == taskID {
			return i
		}
	}
	return -1
}

func (m *Model) focusColumn(columnID string) {
	for i, c := range m.store.Columns() {
		if c.ID == columnID {
			m.focusCol = i
			return
		}
	}
}

// focusTask moves the cursor onto a task if it is visible.
func (m *Model) focusTask(taskID string) {
	colID, ok := m.store.TaskColumn(taskID)
	if !ok {
		return
	}
	m.focusColumn(colID)
	for i, t := range m.store.VisibleTasksOfColumn(colID) {
		if t.ID == taskID {
			m.rows[colID] = i
			return
		}
	}
}

func (m *Model) clampCursor() {
	cols := m.store.Columns()
	m.focusCol = clamp(m.focusCol, 0, len(cols)-1)
	for _, c := range cols {
		n := len(m.store.VisibleTasksOfColumn(c.ID))
		m.rows[c.ID] = clamp(m.rows[c.ID], 0, n-1)
	}
	for id := range m.rows {
		if _, ok := m.store.Column(id); !ok {
			delete(m.rows, id)
		}
	}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// FocusedColumnID returns the id of the column under the cursor.
func (m Model) FocusedColumnID() string {
	c, _ := m.focusedColumn()
	return c.ID
}

// FocusedTaskID returns the id of the task under the cursor.
func (m Model) FocusedTaskID() string {
	t, _ := m.focusedTask()
	return t.ID
}

// Status returns the current status line message.
func (m Model) Status() string { return m.status }

// IsGrabbing reports whether a drag is in progress.
func (m Model) IsGrabbing() bool { return m.mode == modeGrab }

// IsEditing reports whether the input line is open.
func (m Model) IsEditing() bool { return m.mode == modeInput }
