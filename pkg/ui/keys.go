package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap lists every board binding. It satisfies help.KeyMap.
type keyMap struct {
	Left, Right, Up, Down key.Binding

	AddTask     key.Binding
	EditTask    key.Binding
	ToggleDone  key.Binding
	DeleteTask  key.Binding
	AddColumn   key.Binding
	RenameCol   key.Binding
	DeleteCol   key.Binding
	GrabTask    key.Binding
	GrabColumn  key.Binding
	Drop        key.Binding
	Select      key.Binding
	SelectAll   key.Binding
	BulkDone    key.Binding
	BulkUndone  key.Binding
	BulkMove    key.Binding
	BulkDelete  key.Binding
	ClearSelect key.Binding
	Filter      key.Binding
	Search      key.Binding
	Yank        key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Left:  key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("←/h", "column left")),
		Right: key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("→/l", "column right")),
		Up:    key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
		Down:  key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),

		AddTask:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add task")),
		EditTask:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit task")),
		ToggleDone: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "toggle done")),
		DeleteTask: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete task")),
		AddColumn:  key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "add column")),
		RenameCol:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename column")),
		DeleteCol:  key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "delete column")),
		GrabTask:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "grab task")),
		GrabColumn: key.NewBinding(key.WithKeys("M"), key.WithHelp("M", "grab column")),
		Drop:       key.NewBinding(key.WithKeys("enter", "m", "M"), key.WithHelp("enter", "drop")),

		Select:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
		SelectAll:   key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "select column")),
		BulkDone:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "complete selected")),
		BulkUndone:  key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "reopen selected")),
		BulkMove:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "move selected here")),
		BulkDelete:  key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete selected")),
		ClearSelect: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear selection")),

		Filter: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "cycle filter")),
		Search: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Yank:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy text")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.AddTask, k.ToggleDone, k.GrabTask, k.Select, k.Filter, k.Search, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down},
		{k.AddTask, k.EditTask, k.ToggleDone, k.DeleteTask, k.Yank},
		{k.AddColumn, k.RenameCol, k.DeleteCol, k.GrabTask, k.GrabColumn, k.Drop},
		{k.Select, k.SelectAll, k.BulkDone, k.BulkUndone, k.BulkMove, k.BulkDelete, k.ClearSelect},
		{k.Filter, k.Search, k.Help, k.Quit},
	}
}
