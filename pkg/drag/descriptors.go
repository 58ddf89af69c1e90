// Package drag translates a finished drag gesture into at most one board
// mutation.
//
// The pointer-tracking layer reports a drag-end Event: what was dragged
// (a Source) and the drop zones under the release point, nearest first
// (Targets). Zones stack because a task sits inside a column that is itself
// a drop zone, so the Engine picks the most specific applicable target.
package drag

import "github.com/vanderheijden86/kanboard/pkg/model"

// Source is the payload attached to a drag source. It is implemented only by
// ColumnDrag and TaskDrag.
type Source interface {
	isSource()
}

// ColumnDrag is a column picked up at display position Index.
type ColumnDrag struct {
	ColumnID string
	Index    int
}

// TaskDrag is a task picked up at position Index of its column. Task is the
// snapshot taken when the drag started.
type TaskDrag struct {
	Task  model.Task
	Index int
}

func (ColumnDrag) isSource() {}
func (TaskDrag) isSource()   {}

// Target is the descriptor attached to a drop zone. It is implemented only by
// ColumnDropZone and TaskDropZone.
type Target interface {
	isTarget()
	// Accepts is the drop-eligibility predicate for a source kind.
	Accepts(src Source) bool
}

// ColumnDropZone is a column body, or the placeholder an empty column shows
// in place of its task list.
type ColumnDropZone struct {
	ColumnID    string
	Index       int
	Placeholder bool
}

// TaskDropZone is a task card at position Index of its column.
type TaskDropZone struct {
	TaskID string
	Index  int
}

func (ColumnDropZone) isTarget() {}
func (TaskDropZone) isTarget()   {}

// Accepts reports whether the zone takes src. Column bodies take columns and
// tasks; placeholders only take tasks.
func (z ColumnDropZone) Accepts(src Source) bool {
	switch src.(type) {
	case ColumnDrag:
		return !z.Placeholder
	case TaskDrag:
		return true
	default:
		return false
	}
}

// Accepts reports whether the zone takes src. Task cards take any drag.
func (TaskDropZone) Accepts(src Source) bool {
	switch src.(type) {
	case ColumnDrag, TaskDrag:
		return true
	default:
		return false
	}
}

// Event is the drag-end signal.
type Event struct {
	Source Source
	// Targets are the zones under the release point, nearest first.
	Targets []Target
}

// Eligible returns the targets that accept src, keeping their order.
func Eligible(src Source, targets []Target) []Target {
	var out []Target
	for _, t := range targets {
		if t != nil && t.Accepts(src) {
			out = append(out, t)
		}
	}
	return out
}
