package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frezix0/TodoReact/internal/model"
)

func TestReduceTodos_DoesNotMutateInput(t *testing.T) {
	s := initialTodoState(10)
	s.Todos = seededTodos()
	s.Summary = seededSummary()
	s.Pagination = model.NewPagination(1, 10, 3)

	next := reduceTodos(s, todoDeleted{id: 1, now: fixedNow})

	assert.Len(t, s.Todos, 3)
	assert.Equal(t, "Write report", s.Todos[0].Title)
	assert.Equal(t, 3, s.Summary.Total)
	assert.Len(t, next.Todos, 2)
}

func TestReduceTodos_FilterChangeResetsPage(t *testing.T) {
	s := initialTodoState(10)
	s = reduceTodos(s, pageChanged{page: 4})
	require.Equal(t, 4, s.Filters.Page)
	require.Equal(t, 4, s.Pagination.CurrentPage)

	f := s.Filters.Clone()
	f.Page = 7
	done := true
	f.Completed = &done
	s = reduceTodos(s, filtersChanged{filters: f})

	assert.Equal(t, 1, s.Filters.Page)
	assert.Equal(t, 1, s.Pagination.CurrentPage)
	assert.True(t, *s.Filters.Completed)
}

func TestPatchSummary_Floors(t *testing.T) {
	s := patchSummary(model.Summary{}, todo(1, "x", true, model.PriorityHigh, 1), -1, fixedNow)
	assert.Equal(t, model.Summary{}, s)

	due := fixedNow.Add(-time.Hour)
	overdue := todo(2, "y", false, model.PriorityLow, 1)
	overdue.DueDate = &due
	s = patchSummary(s, overdue, 1, fixedNow)
	assert.Equal(t, model.Summary{Total: 1, Pending: 1, LowPriority: 1, Overdue: 1}, s)
}

func TestAdjustTotal_KeepsNavigationConsistent(t *testing.T) {
	p := model.NewPagination(1, 2, 2)
	require.False(t, p.HasNext)

	p = adjustTotal(p, 1)
	assert.Equal(t, 3, p.Total)
	assert.Equal(t, 2, p.TotalPages)
	assert.True(t, p.HasNext)

	p = adjustTotal(model.DefaultPagination(10), -1)
	assert.Equal(t, 0, p.Total)
	assert.Equal(t, 1, p.TotalPages)
}

func TestReduceTodos_RefreshFinishedWithoutPageKeepsTodos(t *testing.T) {
	s := initialTodoState(10)
	s.Todos = seededTodos()
	s = reduceTodos(s, refreshStarted{})
	require.True(t, s.Loading.Todos)

	s = reduceTodos(s, refreshFinished{err: "Cannot connect to server"})
	assert.Len(t, s.Todos, 3)
	assert.Equal(t, "Cannot connect to server", s.Error)
	assert.False(t, s.Loading.Todos)
}

func TestReduceTodos_OverlappingUpdatesKeepLoading(t *testing.T) {
	s := initialTodoState(10)
	s.Todos = seededTodos()
	s = reduceTodos(s, mutationStarted{kind: mutationUpdate})
	s = reduceTodos(s, mutationStarted{kind: mutationUpdate})

	done := s.Todos[0]
	done.Completed = !done.Completed
	s = reduceTodos(s, todoUpdated{todo: done, now: fixedNow})
	assert.True(t, s.Loading.Updating, "second update still in flight")

	s = reduceTodos(s, mutationFailed{kind: mutationUpdate, err: "Request timed out"})
	assert.False(t, s.Loading.Updating)
	assert.Equal(t, "Request timed out", s.Error)

	s = reduceTodos(s, mutationFailed{kind: mutationUpdate, err: "late"})
	assert.False(t, s.Loading.Updating)
	assert.Zero(t, s.inFlight[mutationUpdate])
}

func TestReduceTodos_RejectedMutationLeavesLoading(t *testing.T) {
	s := initialTodoState(10)
	s = reduceTodos(s, mutationStarted{kind: mutationCreate})
	s = reduceTodos(s, mutationRejected{err: "Title is required"})

	assert.True(t, s.Loading.Creating)
	assert.Equal(t, "Title is required", s.Error)
}

func TestRefreshOrder(t *testing.T) {
	var o refreshOrder

	first := o.issue(0)
	second := o.issue(0)
	assert.True(t, o.settle(second, 0, false))
	assert.False(t, o.settle(first, 0, false))
	assert.Equal(t, 0, o.inFlight)

	bg := o.issue(0)
	assert.False(t, o.settle(bg, 1, true))

	fg := o.issue(0)
	assert.True(t, o.settle(fg, 1, false))
}
