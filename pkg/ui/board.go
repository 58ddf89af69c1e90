package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/kanboard/pkg/metrics"
	"github.com/vanderheijden86/kanboard/pkg/model"
)

// Card height breakdown: 2 content lines (text, age) + 2 border lines.
const cardHeight = 4

func (m Model) View() string {
	defer metrics.Timer(metrics.UIRender)()

	t := m.theme

	title := m.renderTitleBar()
	status := m.renderStatusBar()
	helpView := m.help.View(m.keys)

	var input string
	if m.mode == modeInput {
		input = m.input.View()
	}

	chrome := lipgloss.Height(title) + lipgloss.Height(status) + lipgloss.Height(helpView) + 1
	if input != "" {
		chrome += lipgloss.Height(input)
	}
	colHeight := m.height - chrome
	if colHeight < cardHeight+2 {
		colHeight = cardHeight + 2
	}

	cols := m.store.Columns()
	var body string
	if len(cols) == 0 {
		body = t.Renderer.NewStyle().
			Width(m.width).
			Height(colHeight).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(t.Secondary).
			Render("No columns yet. Press A to add one.")
	} else {
		start, end := m.columnWindow(len(cols))
		var rendered []string
		for i := start; i < end; i++ {
			rendered = append(rendered, m.renderColumn(i, cols[i], colHeight))
		}
		body = m.joinColumnsWithSeparators(rendered)
	}

	parts := []string{title, body}
	if input != "" {
		parts = append(parts, input)
	}
	parts = append(parts, status, helpView)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// columnWindow picks the range of columns that fit the terminal width while
// keeping the active column (the drop cursor while grabbing) on screen.
func (m Model) columnWindow(n int) (int, int) {
	fit := (m.width + 1) / (m.colWidth + 1)
	if fit < 1 {
		fit = 1
	}
	if fit >= n {
		return 0, n
	}
	active := m.focusCol
	if m.mode == modeGrab {
		active = m.grab.col
	}
	start := 0
	if active >= fit {
		start = active - fit + 1
	}
	return start, start + fit
}

func (m Model) renderTitleBar() string {
	t := m.theme
	title := m.title
	if f := m.store.Filter(); f != model.FilterAll {
		title += fmt.Sprintf(" [%s]", f)
	}
	if q := m.store.SearchQuery(); q != "" {
		title += fmt.Sprintf(" [/%s]", q)
	}
	return t.Title.Width(m.width).Render(title)
}

func (m Model) renderColumn(pos int, col model.Column, height int) string {
	t := m.theme
	width := m.colWidth
	focused := pos == m.focusCol && m.mode != modeGrab
	dropHere := m.mode == modeGrab && pos == m.grab.col

	vis := m.store.VisibleTasksOfColumn(col.ID)
	all := len(m.store.TasksOfColumn(col.ID))

	// Header: "☑ To Do (2/5)". The box reflects the select-all toggle.
	count := fmt.Sprintf("(%d)", all)
	if len(vis) != all {
		count = fmt.Sprintf("(%d/%d)", len(vis), all)
	}
	box := "☐"
	if m.store.AllVisibleSelected(col.ID) {
		box = "☑"
	}
	headerText := fmt.Sprintf("%s %s %s", box, col.Title, count)
	if col.ID == m.grabbedColumnID() {
		headerText = "⇄ " + headerText
	}
	if dropHere && m.grabbedColumnID() != "" {
		headerText = "▼ " + headerText
	}

	accent := columnAccent(pos)
	headerStyle := t.Renderer.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Bold(true).
		Padding(0, 1)
	if focused || dropHere {
		headerStyle = headerStyle.
			Background(accent).
			Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1a1a1a"})
	} else {
		headerStyle = headerStyle.
			Background(ColorHeaderBg).
			Foreground(accent)
	}
	header := headerStyle.Render(truncate(headerText, width-2))

	inner := width - 2*SpaceXS
	visibleCards := (height - 2) / cardHeight
	if visibleCards < 1 {
		visibleCards = 1
	}

	sel := m.rows[col.ID]
	if dropHere {
		sel = m.grab.row
	}
	startRow := 0
	if sel >= visibleCards {
		startRow = sel - visibleCards + 1
	}
	endRow := startRow + visibleCards
	if endRow > len(vis) {
		endRow = len(vis)
	}

	var cards []string
	showTaskDrop := dropHere && m.grabbedTaskID() != ""
	for r := startRow; r < endRow; r++ {
		task := vis[r]
		if showTaskDrop && r == m.grab.row {
			cards = append(cards, t.DropMarker.Render(truncate("▸ drop here", inner)))
		}
		cards = append(cards, m.renderCard(task, inner, focused && r == m.rows[col.ID]))
	}

	if len(vis) == 0 {
		msg := "(empty)"
		if all > 0 {
			msg = "(no matching tasks)"
		}
		if showTaskDrop {
			msg = "▸ drop here"
		}
		cards = append(cards, t.Empty.Width(inner).Render(msg))
	}

	if len(vis) > visibleCards {
		cards = append(cards, t.Empty.Width(inner).Render(fmt.Sprintf("↕ %d/%d", sel+1, len(vis))))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, cards...)
	colStyle := t.Renderer.NewStyle().
		Width(width).
		Height(height).
		Padding(0, SpaceXS)

	return lipgloss.JoinVertical(lipgloss.Center, header, colStyle.Render(content))
}

// renderCard draws one task: completion box, selection mark and text on the
// first line, the creation age on the second.
func (m Model) renderCard(task model.Task, width int, focused bool) string {
	t := m.theme

	style := t.Card
	switch {
	case task.ID == m.grabbedTaskID():
		style = t.CardGrabbed
	case focused:
		style = t.CardFocused
	}
	// Border and padding take 4 cells.
	textWidth := width - 4

	check := "[ ]"
	if task.Completed {
		check = "[✓]"
	}
	prefix := check + " "
	if m.store.IsSelected(task.ID) {
		prefix = t.SelectMark.Render("●") + " " + prefix
	}
	if m.store.EditingTask() == task.ID {
		prefix += "✎ "
	}

	text := truncate(task.Text, textWidth-lipgloss.Width(prefix))
	if task.Completed {
		text = t.DoneText.Render(text)
	}
	line1 := prefix + text
	line2 := t.MutedText.Render(truncate(FormatTimeRel(task.CreatedAt, m.now()), textWidth))

	return style.Width(width - 2).Render(lipgloss.JoinVertical(lipgloss.Left, line1, line2))
}

func (m Model) renderStatusBar() string {
	t := m.theme
	st := m.store.Stats()

	parts := []string{fmt.Sprintf("%d tasks · %d done · %d active", st.Total, st.Completed, st.Active)}
	if n := m.store.SelectedCount(); n > 0 {
		parts = append(parts, t.SelectMark.Render(fmt.Sprintf("%d selected", n)))
	}
	left := strings.Join(parts, "  ")

	if m.status == "" {
		return t.StatusText.Render(left)
	}
	msgStyle := t.StatusText
	if m.statusErr {
		msgStyle = t.StatusError
	}
	return t.StatusText.Render(left) + "  " + msgStyle.Render(m.status)
}

// joinColumnsWithSeparators joins rendered columns with solid vertical separators.
func (m Model) joinColumnsWithSeparators(cols []string) string {
	if len(cols) == 0 {
		return ""
	}
	if len(cols) == 1 {
		return cols[0]
	}

	colLines := make([][]string, len(cols))
	widths := make([]int, len(cols))
	maxLines := 0
	for i, col := range cols {
		colLines[i] = strings.Split(col, "\n")
		widths[i] = lipgloss.Width(col)
		if len(colLines[i]) > maxLines {
			maxLines = len(colLines[i])
		}
	}

	for i := range colLines {
		for len(colLines[i]) < maxLines {
			colLines[i] = append(colLines[i], strings.Repeat(" ", widths[i]))
		}
	}

	sep := m.theme.SecondaryText.Render("│")

	rows := make([]string, 0, maxLines)
	for row := 0; row < maxLines; row++ {
		parts := make([]string, 0, len(colLines))
		for i := range colLines {
			parts = append(parts, colLines[i][row])
		}
		rows = append(rows, strings.Join(parts, sep))
	}
	return strings.Join(rows, "\n")
}
