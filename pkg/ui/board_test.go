package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/kanboard/pkg/board"
)

func TestView_RendersColumnsAndStats(t *testing.T) {
	s := newTestStore()
	tasks := addTasks(t, s, "todo", "write report", "review")
	s.ToggleTask(tasks[1].ID)
	m := newTestModel(t, s)

	view := m.View()
	for _, want := range []string{"Todo (2)", "Done (0)", "write report", "[✓]", "2d ago", "(empty)", "2 tasks · 1 done · 1 active"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestView_FilteredCountShowsVisibleOfTotal(t *testing.T) {
	s := newTestStore()
	tasks := addTasks(t, s, "todo", "a", "b")
	s.ToggleTask(tasks[0].ID)
	s.SetFilter("completed")
	m := newTestModel(t, s)

	if !strings.Contains(m.View(), "Todo (1/2)") {
		t.Error("expected visible/total count in header")
	}
}

func TestView_EmptyBoard(t *testing.T) {
	m := newTestModel(t, board.New())
	if !strings.Contains(m.View(), "No columns yet") {
		t.Error("expected empty board hint")
	}
}

func TestView_GrabShowsDropMarker(t *testing.T) {
	s := newTestStore()
	addTasks(t, s, "todo", "a")
	addTasks(t, s, "done", "b")
	m := newTestModel(t, s)

	m = press(t, m, "m", "l")
	if !strings.Contains(m.View(), "drop here") {
		t.Error("expected drop marker while grabbing")
	}
}

func TestView_EditingMarker(t *testing.T) {
	s := newTestStore()
	addTasks(t, s, "todo", "a")
	m := newTestModel(t, s)

	m = press(t, m, "e")
	if !strings.Contains(m.View(), "✎") {
		t.Error("expected editing marker on the card")
	}
}

func TestView_LongAndWideTextFitsColumn(t *testing.T) {
	s := newTestStore()
	addTasks(t, s, "todo", strings.Repeat("日本語タイトル ", 20))
	m := newTestModel(t, s, WithColumnWidth(24))

	for _, line := range strings.Split(m.View(), "\n") {
		if w := runewidth.StringWidth(stripANSI(line)); w > m.width {
			t.Fatalf("line wider than terminal (%d > %d): %q", w, m.width, line)
		}
	}
}

func TestColumnWindow_KeepsFocusVisible(t *testing.T) {
	s := board.New(board.WithColumns(board.DefaultColumns()...))
	for _, title := range []string{"Four", "Five", "Six"} {
		if _, err := s.AddColumn(title); err != nil {
			t.Fatal(err)
		}
	}
	m := newTestModel(t, s, WithColumnWidth(30))
	m.width = 70 // two columns fit

	m = press(t, m, "l", "l", "l", "l")
	start, end := m.columnWindow(len(s.Columns()))
	if m.focusCol < start || m.focusCol >= end {
		t.Errorf("focused column %d outside window [%d,%d)", m.focusCol, start, end)
	}
	if end-start != 2 {
		t.Errorf("expected two columns in window, got %d", end-start)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"much longer text", 8, "much lo…"},
		{"日本語テキスト", 7, "日本語…"},
		{"anything", 0, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestFormatTimeRel(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		t    time.Time
		want string
	}{
		{time.Time{}, "unknown"},
		{now.Add(time.Hour), "now"},
		{now.Add(-30 * time.Second), "now"},
		{now.Add(-5 * time.Minute), "5m ago"},
		{now.Add(-3 * time.Hour), "3h ago"},
		{now.Add(-49 * time.Hour), "2d ago"},
		{now.Add(-14 * 24 * time.Hour), "2w ago"},
		{time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), "Jan 15, 2024"},
	}
	for _, tt := range tests {
		if got := FormatTimeRel(tt.t, now); got != tt.want {
			t.Errorf("FormatTimeRel(%v) = %q, want %q", tt.t, got, tt.want)
		}
	}
}

// stripANSI removes SGR escape sequences.
func stripANSI(s string) string {
	var b strings.Builder
	in := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			in = true
		case in && r == 'm':
			in = false
		case !in:
			b.WriteRune(r)
		}
	}
	return b.String()
}
