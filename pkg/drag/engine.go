package drag

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vanderheijden86/kanboard/pkg/debug"
	"github.com/vanderheijden86/kanboard/pkg/metrics"
	"github.com/vanderheijden86/kanboard/pkg/model"
)

// Board is the part of the board store the engine reads and mutates.
type Board interface {
	Column(id string) (model.Column, bool)
	TaskColumn(taskID string) (string, bool)
	ReorderColumns(from, to int) error
	MoveTask(taskID, columnID string)
	ReorderTasks(columnID string, from, to int) error
}

// Action is the mutation chosen for an event.
type Action interface {
	isAction()
	fmt.Stringer
}

// NoAction discards the event.
type NoAction struct {
	Reason string
}

// ReorderColumnsAction moves a column between display positions.
type ReorderColumnsAction struct {
	From, To int
}

// MoveTaskAction moves a task to the end of another column.
type MoveTaskAction struct {
	TaskID   string
	ColumnID string
}

// ReorderTasksAction moves a task inside its own column.
type ReorderTasksAction struct {
	ColumnID string
	From, To int
}

func (NoAction) isAction()             {}
func (ReorderColumnsAction) isAction() {}
func (MoveTaskAction) isAction()       {}
func (ReorderTasksAction) isAction()   {}

func (a NoAction) String() string { return "none: " + a.Reason }
func (a ReorderColumnsAction) String() string {
	return fmt.Sprintf("reorder columns %d -> %d", a.From, a.To)
}
func (a MoveTaskAction) String() string {
	return fmt.Sprintf("move task %s to %s", a.TaskID, a.ColumnID)
}
func (a ReorderTasksAction) String() string {
	return fmt.Sprintf("reorder tasks in %s %d -> %d", a.ColumnID, a.From, a.To)
}

// Engine resolves drag-end events against a board. It keeps no state between
// events; every lookup goes to the board at resolution time.
type Engine struct {
	board Board
}

// NewEngine creates an engine bound to b.
func NewEngine(b Board) *Engine {
	return &Engine{board: b}
}

// Resolve decides which mutation an event maps to without applying it.
// Targets that reject the source are ignored. The first matching rule wins:
//
//  1. column dragged onto a column zone at another index: reorder columns
//  2. task dragged onto a column zone of another column: move task
//  3. task dragged onto a task zone: the owning column of the first task zone
//     in the stack is looked up on the board; same column at another index
//     reorders, a different column moves the task to its end
//  4. anything else: no action
func (e *Engine) Resolve(ev Event) Action {
	defer metrics.Timer(metrics.DragResolve)()

	targets := Eligible(ev.Source, ev.Targets)
	if len(targets) == 0 {
		return NoAction{Reason: "no eligible drop target"}
	}

	switch src := ev.Source.(type) {
	case ColumnDrag:
		return e.resolveColumn(src, targets[0])
	case TaskDrag:
		return e.resolveTask(src, targets)
	default:
		return NoAction{Reason: fmt.Sprintf("unknown source %T", ev.Source)}
	}
}

func (e *Engine) resolveColumn(src ColumnDrag, nearest Target) Action {
	zone, ok := nearest.(ColumnDropZone)
	if !ok {
		return NoAction{Reason: "column dropped outside a column zone"}
	}
	if _, ok := e.board.Column(src.ColumnID); !ok {
		return NoAction{Reason: "dragged column no longer exists"}
	}
	if src.Index == zone.Index {
		return NoAction{Reason: "column dropped in place"}
	}
	return ReorderColumnsAction{From: src.Index, To: zone.Index}
}

func (e *Engine) resolveTask(src TaskDrag, targets []Target) Action {
	current, ok := e.board.TaskColumn(src.Task.ID)
	if !ok {
		return NoAction{Reason: "dragged task no longer exists"}
	}

	switch zone := targets[0].(type) {
	case ColumnDropZone:
		if zone.ColumnID == current {
			return NoAction{Reason: "task dropped on its own column"}
		}
		if _, ok := e.board.Column(zone.ColumnID); !ok {
			return NoAction{Reason: "destination column no longer exists"}
		}
		return MoveTaskAction{TaskID: src.Task.ID, ColumnID: zone.ColumnID}

	case TaskDropZone:
		over, _ := firstTaskZone(targets)
		dest, ok := e.board.TaskColumn(over.TaskID)
		if !ok {
			return NoAction{Reason: "task under pointer no longer exists"}
		}
		if dest == current {
			if src.Index == over.Index {
				return NoAction{Reason: "task dropped in place"}
			}
			return ReorderTasksAction{ColumnID: current, From: src.Index, To: over.Index}
		}
		return MoveTaskAction{TaskID: src.Task.ID, ColumnID: dest}

	default:
		return NoAction{Reason: fmt.Sprintf("unknown target %T", targets[0])}
	}
}

func firstTaskZone(targets []Target) (TaskDropZone, bool) {
	for _, t := range targets {
		if z, ok := t.(TaskDropZone); ok {
			return z, true
		}
	}
	return TaskDropZone{}, false
}

// Drop resolves an event and applies the resulting mutation. Board errors are
// absorbed and reported as NoAction.
func (e *Engine) Drop(ev Event) Action {
	action := e.Resolve(ev)

	var err error
	switch a := action.(type) {
	case ReorderColumnsAction:
		err = e.board.ReorderColumns(a.From, a.To)
	case MoveTaskAction:
		e.board.MoveTask(a.TaskID, a.ColumnID)
	case ReorderTasksAction:
		err = e.board.ReorderTasks(a.ColumnID, a.From, a.To)
	}
	if err != nil {
		action = NoAction{Reason: err.Error()}
	}

	debug.Logger().WithFields(log.Fields{
		"source":  fmt.Sprintf("%T", ev.Source),
		"targets": len(ev.Targets),
		"action":  action.String(),
	}).Debug("drop resolved")
	return action
}
