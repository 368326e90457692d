package sync

import (
	"slices"
	"time"

	"github.com/frezix0/TodoReact/internal/model"
)

// TodoLoading tracks which todo operations are in flight.
type TodoLoading struct {
	Todos    bool
	Creating bool
	Updating bool
	Deleting bool
}

// TodoState is the synchronized todo list plus its UI flags. Values handed
// out by TodoStore.Snapshot are copies.
type TodoState struct {
	Loading    TodoLoading
	Error      string
	Todos      []model.Todo
	Pagination model.Pagination
	Summary    model.Summary
	Filters    model.TodoFilters

	SelectedID        *int64
	FormOpen          bool
	DeleteConfirmOpen bool
	DeleteTargetID    *int64

	// inFlight counts unfinished mutations per kind; a Loading flag
	// clears only when its count reaches zero.
	inFlight [mutationKinds]int
}

// Todo returns the cached todo with the given id.
func (s TodoState) Todo(id int64) (model.Todo, bool) {
	i := indexOfTodo(s.Todos, id)
	if i < 0 {
		return model.Todo{}, false
	}
	return s.Todos[i], true
}

// Selected returns the selected todo, if it is cached.
func (s TodoState) Selected() (model.Todo, bool) {
	if s.SelectedID == nil {
		return model.Todo{}, false
	}
	return s.Todo(*s.SelectedID)
}

func (s TodoState) clone() TodoState {
	out := s
	out.Todos = slices.Clone(s.Todos)
	out.Filters = s.Filters.Clone()
	if s.SelectedID != nil {
		id := *s.SelectedID
		out.SelectedID = &id
	}
	if s.DeleteTargetID != nil {
		id := *s.DeleteTargetID
		out.DeleteTargetID = &id
	}
	return out
}

func initialTodoState(perPage int) TodoState {
	return TodoState{
		Todos:      []model.Todo{},
		Pagination: model.DefaultPagination(perPage),
		Filters:    model.DefaultTodoFilters(),
	}
}

type mutationKind int

const (
	mutationCreate mutationKind = iota
	mutationUpdate
	mutationDelete

	mutationKinds
)

// todoAction is a state transition applied by reduceTodos.
type todoAction interface {
	todoAction()
}

type (
	refreshStarted struct{}

	// refreshFinished carries a page to apply (nil when the fetch produced
	// nothing usable) and the error message to record.
	refreshFinished struct {
		page     *model.TodoPage
		err      string
		inFlight int
	}

	// refreshSettled clears the loading flag for a result that was dropped.
	refreshSettled struct {
		inFlight int
	}

	summaryLoaded struct {
		summary model.Summary
	}

	summaryFailed struct {
		err string
	}

	mutationStarted struct {
		kind mutationKind
	}

	mutationFailed struct {
		kind mutationKind
		err  string
	}

	// mutationRejected records a local precondition failure; nothing was
	// sent, so no in-flight mutation finishes.
	mutationRejected struct {
		err string
	}

	todoCreated struct {
		todo model.Todo
		now  time.Time
	}

	todoUpdated struct {
		todo model.Todo
		now  time.Time
	}

	todoDeleted struct {
		id  int64
		now time.Time
	}

	categoryPurged struct {
		categoryID int64
	}

	filtersChanged struct {
		filters model.TodoFilters
	}

	pageChanged struct {
		page int
	}

	perPageChanged struct {
		perPage int
	}

	todoSelected struct {
		id *int64
	}

	formToggled struct {
		open bool
	}

	deleteConfirmToggled struct {
		id *int64
	}

	errorCleared struct{}
)

func (refreshStarted) todoAction()       {}
func (refreshFinished) todoAction()      {}
func (refreshSettled) todoAction()       {}
func (summaryLoaded) todoAction()        {}
func (summaryFailed) todoAction()        {}
func (mutationStarted) todoAction()      {}
func (mutationFailed) todoAction()       {}
func (mutationRejected) todoAction()     {}
func (todoCreated) todoAction()          {}
func (todoUpdated) todoAction()          {}
func (todoDeleted) todoAction()          {}
func (categoryPurged) todoAction()       {}
func (filtersChanged) todoAction()       {}
func (pageChanged) todoAction()          {}
func (perPageChanged) todoAction()       {}
func (todoSelected) todoAction()         {}
func (formToggled) todoAction()          {}
func (deleteConfirmToggled) todoAction() {}
func (errorCleared) todoAction()         {}

// reduceTodos returns the state that results from applying action to s.
// It never mutates s. Summary patches keep every counter at zero or above
// and re-derive Total from Completed and Pending.
func reduceTodos(s TodoState, action todoAction) TodoState {
	s = s.clone()

	switch a := action.(type) {
	case refreshStarted:
		s.Loading.Todos = true

	case refreshFinished:
		s.Loading.Todos = a.inFlight > 0
		if a.page != nil {
			s.Todos = slices.Clone(a.page.Data)
			if s.Todos == nil {
				s.Todos = []model.Todo{}
			}
			s.Pagination = a.page.Pagination
		}
		s.Error = a.err

	case refreshSettled:
		s.Loading.Todos = a.inFlight > 0

	case summaryLoaded:
		s.Summary = a.summary

	case summaryFailed:
		s.Error = a.err

	case mutationStarted:
		s.inFlight[a.kind]++
		setMutationLoading(&s.Loading, a.kind, true)

	case mutationFailed:
		settleMutation(&s, a.kind)
		s.Error = a.err

	case mutationRejected:
		s.Error = a.err

	case todoCreated:
		settleMutation(&s, mutationCreate)
		s.Error = ""
		s.Todos = append([]model.Todo{a.todo}, s.Todos...)
		s.Pagination = adjustTotal(s.Pagination, 1)
		s.Summary = patchSummary(s.Summary, a.todo, 1, a.now)

	case todoUpdated:
		settleMutation(&s, mutationUpdate)
		s.Error = ""
		if i := indexOfTodo(s.Todos, a.todo.ID); i >= 0 {
			prior := s.Todos[i]
			s.Todos[i] = a.todo
			s.Summary = patchSummary(s.Summary, prior, -1, a.now)
			s.Summary = patchSummary(s.Summary, a.todo, 1, a.now)
		}

	case todoDeleted:
		settleMutation(&s, mutationDelete)
		s.Error = ""
		if i := indexOfTodo(s.Todos, a.id); i >= 0 {
			prior := s.Todos[i]
			s.Todos = slices.Delete(s.Todos, i, i+1)
			s.Summary = patchSummary(s.Summary, prior, -1, a.now)
		}
		s.Pagination = adjustTotal(s.Pagination, -1)
		if s.SelectedID != nil && *s.SelectedID == a.id {
			s.SelectedID = nil
		}
		s.DeleteConfirmOpen = false
		s.DeleteTargetID = nil

	case categoryPurged:
		if sel, ok := s.Selected(); ok && sel.CategoryID == a.categoryID {
			s.SelectedID = nil
		}
		s.Todos = slices.DeleteFunc(s.Todos, func(t model.Todo) bool {
			return t.CategoryID == a.categoryID
		})
		if s.Filters.CategoryID != nil && *s.Filters.CategoryID == a.categoryID {
			s.Filters.CategoryID = nil
			s.Filters.Page = 1
			s.Pagination.CurrentPage = 1
		}

	case filtersChanged:
		s.Filters = a.filters.Clone()
		s.Filters.Page = 1
		s.Pagination.CurrentPage = 1

	case pageChanged:
		page := a.page
		if page < 1 {
			page = 1
		}
		s.Filters.Page = page
		s.Pagination.CurrentPage = page

	case perPageChanged:
		_, perPage := model.ClampPage(1, a.perPage)
		s.Pagination.PerPage = perPage
		s.Filters.Page = 1
		s.Pagination.CurrentPage = 1

	case todoSelected:
		s.SelectedID = a.id

	case formToggled:
		s.FormOpen = a.open
		if !a.open {
			s.Error = ""
		}

	case deleteConfirmToggled:
		s.DeleteTargetID = a.id
		s.DeleteConfirmOpen = a.id != nil

	case errorCleared:
		s.Error = ""
	}

	return s
}

// settleMutation finishes one mutation of kind.
func settleMutation(s *TodoState, kind mutationKind) {
	s.inFlight[kind] = floor(s.inFlight[kind] - 1)
	setMutationLoading(&s.Loading, kind, s.inFlight[kind] > 0)
}

func setMutationLoading(l *TodoLoading, kind mutationKind, on bool) {
	switch kind {
	case mutationCreate:
		l.Creating = on
	case mutationUpdate:
		l.Updating = on
	case mutationDelete:
		l.Deleting = on
	}
}

// adjustTotal moves pagination.total by delta, floored at zero, and keeps
// the page count and navigation flags consistent with it.
func adjustTotal(p model.Pagination, delta int) model.Pagination {
	return model.NewPagination(p.CurrentPage, p.PerPage, floor(p.Total+delta))
}

// patchSummary adds delta to every bucket t falls into.
func patchSummary(s model.Summary, t model.Todo, delta int, now time.Time) model.Summary {
	if t.Completed {
		s.Completed = floor(s.Completed + delta)
	} else {
		s.Pending = floor(s.Pending + delta)
	}

	switch t.Priority {
	case model.PriorityHigh:
		s.HighPriority = floor(s.HighPriority + delta)
	case model.PriorityMedium:
		s.MediumPriority = floor(s.MediumPriority + delta)
	case model.PriorityLow:
		s.LowPriority = floor(s.LowPriority + delta)
	}

	if t.IsOverdue(now) {
		s.Overdue = floor(s.Overdue + delta)
	}

	s.Total = s.Completed + s.Pending
	return s
}

func floor(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func indexOfTodo(todos []model.Todo, id int64) int {
	return slices.IndexFunc(todos, func(t model.Todo) bool {
		return t.ID == id
	})
}
