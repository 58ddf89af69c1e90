package testutil

import (
	"fmt"
	"sort"
	"testing"

	"github.com/vanderheijden86/kanboard/pkg/board"
	"github.com/vanderheijden86/kanboard/pkg/model"
)

// TB is the subset of testing.TB the assertions use. Both *testing.T and
// *rapid.T satisfy it.
type TB interface {
	Helper()
	Errorf(format string, args ...any)
}

var _ TB = (*testing.T)(nil)

// AssertContiguousOrders verifies column orders are exactly 0..n-1.
func AssertContiguousOrders(t TB, cols []model.Column) {
	t.Helper()
	orders := make([]int, len(cols))
	for i, c := range cols {
		orders[i] = c.Order
	}
	sort.Ints(orders)
	for i, o := range orders {
		if o != i {
			t.Errorf("column orders not contiguous: %v", orders)
			return
		}
	}
}

// AssertNoOrphans verifies every task references an existing column.
func AssertNoOrphans(t TB, s *board.Store) {
	t.Helper()
	for _, task := range s.State().Tasks {
		if _, ok := s.Column(task.ColumnID); !ok {
			t.Errorf("task %s references missing column %s", task.ID, task.ColumnID)
		}
	}
}

// AssertSelectionValid verifies the selection only holds existing tasks.
func AssertSelectionValid(t TB, s *board.Store) {
	t.Helper()
	for _, id := range s.Selected() {
		if _, ok := s.Task(id); !ok {
			t.Errorf("selection references missing task %s", id)
		}
	}
}

// AssertConsistent runs every board invariant check.
func AssertConsistent(t TB, s *board.Store) {
	t.Helper()
	AssertNoOrphans(t, s)
	AssertSelectionValid(t, s)
	AssertNoDuplicateIDs(t, s.State())
	AssertContiguousOrders(t, s.Columns())
	st := s.Stats()
	if st.Completed+st.Incomplete != st.Total {
		t.Errorf("stats inconsistent: %+v", st)
	}
}

// AssertNoDuplicateIDs verifies column and task ids are unique.
func AssertNoDuplicateIDs(t TB, st model.BoardState) {
	t.Helper()
	seen := make(map[string]bool)
	for _, c := range st.Columns {
		if seen["c:"+c.ID] {
			t.Errorf("duplicate column ID: %s", c.ID)
		}
		seen["c:"+c.ID] = true
	}
	for _, task := range st.Tasks {
		if seen["t:"+task.ID] {
			t.Errorf("duplicate task ID: %s", task.ID)
		}
		seen["t:"+task.ID] = true
	}
}

// AssertTaskIDs verifies the ids of tasks in order.
func AssertTaskIDs(t TB, tasks []model.Task, want ...string) {
	t.Helper()
	got := TaskIDs(tasks)
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("task ids = %v, want %v", got, want)
	}
}

// TaskIDs returns the ids of tasks in order.
func TaskIDs(tasks []model.Task) []string {
	ids := make([]string, len(tasks))
	for i, task := range tasks {
		ids[i] = task.ID
	}
	return ids
}

// ColumnIDs returns the ids of columns in order.
func ColumnIDs(cols []model.Column) []string {
	ids := make([]string, len(cols))
	for i, c := range cols {
		ids[i] = c.ID
	}
	return ids
}
