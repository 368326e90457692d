package sync

import (
	"context"
	"errors"
	gosync "sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/frezix0/TodoReact/internal/gateway"
	"github.com/frezix0/TodoReact/internal/logging"
	"github.com/frezix0/TodoReact/internal/model"
)

// TodoStore keeps a page of todos, the active filters and the summary
// counts in step with the server. Mutations are sent to the gateway first
// and patched into local state only after the server confirms them.
type TodoStore struct {
	gw     TodoGateway
	log    logrus.FieldLogger
	now    func() time.Time
	counts CountTracker

	mu    gosync.Mutex
	state TodoState

	// list and summary refresh ordering; see ticket.
	list    refreshOrder
	summary refreshOrder

	// epoch increases with every confirmed local patch.
	epoch uint64

	changes chan struct{}
}

// TodoOption configures a TodoStore.
type TodoOption func(*TodoStore)

// WithTodoLogger sets the store's logger.
func WithTodoLogger(log logrus.FieldLogger) TodoOption {
	return func(s *TodoStore) {
		s.log = logging.Component(log, "todo-store")
	}
}

// WithPerPage sets the initial page size.
func WithPerPage(perPage int) TodoOption {
	return func(s *TodoStore) {
		_, perPage = model.ClampPage(1, perPage)
		s.state.Pagination.PerPage = perPage
	}
}

// WithClock overrides the time source used for overdue accounting.
func WithClock(now func() time.Time) TodoOption {
	return func(s *TodoStore) {
		s.now = now
	}
}

// WithCountTracker forwards per-category count changes to t, typically the
// CategoryStore.
func WithCountTracker(t CountTracker) TodoOption {
	return func(s *TodoStore) {
		s.counts = t
	}
}

// NewTodoStore creates a todo store backed by gw. The store starts empty;
// call Refresh to load the first page.
func NewTodoStore(gw TodoGateway, opts ...TodoOption) *TodoStore {
	s := &TodoStore{
		gw:      gw,
		log:     logging.Component(nil, "todo-store"),
		now:     time.Now,
		state:   initialTodoState(model.DefaultPerPage),
		changes: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name identifies the store in sync statuses.
func (s *TodoStore) Name() string {
	return "todos"
}

// Snapshot returns a copy of the current state.
func (s *TodoStore) Snapshot() TodoState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Changes returns a channel that receives a value after state changes.
// Notifications are coalesced: one receive may stand for several changes.
func (s *TodoStore) Changes() <-chan struct{} {
	return s.changes
}

// Refresh fetches the current page with the current filters. Failures are
// logged and recorded in State.Error; the previous todos stay visible.
// When several refreshes overlap, the most recently issued one wins.
func (s *TodoStore) Refresh(ctx context.Context) {
	_ = s.refreshList(ctx, false)
}

// RefreshSummary fetches the aggregate counts. Failures are logged and
// recorded in State.Error.
func (s *TodoStore) RefreshSummary(ctx context.Context) {
	_ = s.refreshSummary(ctx, false)
}

// BackgroundRefresh refreshes the list and the summary for the poller.
// Results of requests issued before the latest confirmed mutation are
// discarded so they cannot overwrite the newer local patch.
func (s *TodoStore) BackgroundRefresh(ctx context.Context) error {
	return errors.Join(
		s.refreshList(ctx, true),
		s.refreshSummary(ctx, true),
	)
}

func (s *TodoStore) refreshList(ctx context.Context, background bool) error {
	s.mu.Lock()
	t := s.list.issue(s.epoch)
	filters := s.state.Filters.Clone()
	perPage := s.state.Pagination.PerPage
	s.state = reduceTodos(s.state, refreshStarted{})
	s.mu.Unlock()
	s.notify()

	page, err := s.gw.ListTodos(ctx, filters, perPage)

	s.mu.Lock()
	if !s.list.settle(t, s.epoch, background) {
		s.state = reduceTodos(s.state, refreshSettled{inFlight: s.list.inFlight})
		s.mu.Unlock()
		s.notify()
		s.log.WithField("seq", t.seq).Debug("discarded stale todo list")
		return nil
	}

	var msg string
	if err != nil {
		msg = gateway.Message(err)
	}
	s.state = reduceTodos(s.state, refreshFinished{
		page:     page,
		err:      msg,
		inFlight: s.list.inFlight,
	})
	s.mu.Unlock()
	s.notify()

	if err != nil {
		s.log.WithError(err).WithField("page", filters.Page).Warn("refreshing todos")
		return err
	}
	return nil
}

func (s *TodoStore) refreshSummary(ctx context.Context, background bool) error {
	s.mu.Lock()
	t := s.summary.issue(s.epoch)
	s.mu.Unlock()

	summary, err := s.gw.TodoSummary(ctx)

	s.mu.Lock()
	if !s.summary.settle(t, s.epoch, background) {
		s.mu.Unlock()
		s.log.WithField("seq", t.seq).Debug("discarded stale summary")
		return nil
	}
	if err != nil {
		s.state = reduceTodos(s.state, summaryFailed{err: gateway.Message(err)})
	} else {
		s.state = reduceTodos(s.state, summaryLoaded{summary: *summary})
	}
	s.mu.Unlock()
	s.notify()

	if err != nil {
		s.log.WithError(err).Warn("refreshing summary")
		return err
	}
	return nil
}

// Create submits a new todo and, once the server confirms it, prepends it
// to the list and bumps the totals. A category and a non-blank title are
// required; without them the call fails locally with InvalidRequest.
// Errors are recorded and returned.
func (s *TodoStore) Create(ctx context.Context, payload model.TodoCreate) (model.Todo, error) {
	payload.Normalize()
	if err := validateTodoCreate(payload); err != nil {
		s.dispatch(mutationRejected{err: err.Message})
		return model.Todo{}, err
	}

	s.dispatch(mutationStarted{kind: mutationCreate})
	todo, err := s.gw.CreateTodo(ctx, payload)
	if err != nil {
		s.fail(mutationCreate, "creating todo", err)
		return model.Todo{}, err
	}

	s.commit(todoCreated{todo: *todo, now: s.now()})
	s.trackCount(todo.CategoryID, 1)
	return *todo, nil
}

// Update submits changes to a todo and replaces the cached entry with the
// server's version. Summary buckets move according to the difference
// between the cached todo and the updated one.
func (s *TodoStore) Update(
	ctx context.Context,
	id int64,
	payload model.TodoUpdate,
) (model.Todo, error) {
	payload.Normalize()
	if fields := model.Validate(payload); fields != nil {
		err := gateway.InvalidRequestError("Validation failed", fields)
		s.dispatch(mutationRejected{err: err.Message})
		return model.Todo{}, err
	}

	s.dispatch(mutationStarted{kind: mutationUpdate})
	todo, err := s.gw.UpdateTodo(ctx, id, payload)
	if err != nil {
		s.fail(mutationUpdate, "updating todo", err)
		return model.Todo{}, err
	}

	s.applyUpdated(*todo)
	return *todo, nil
}

// ToggleCompletion sets the completion flag through the dedicated
// completion endpoint and moves the todo between the pending and completed
// buckets.
func (s *TodoStore) ToggleCompletion(
	ctx context.Context,
	id int64,
	completed bool,
) (model.Todo, error) {
	s.dispatch(mutationStarted{kind: mutationUpdate})
	todo, err := s.gw.SetTodoCompletion(ctx, id, completed)
	if err != nil {
		s.fail(mutationUpdate, "toggling todo", err)
		return model.Todo{}, err
	}

	s.applyUpdated(*todo)
	return *todo, nil
}

// Delete removes a todo on the server, then drops it locally and lowers
// the totals. The page is not refetched.
func (s *TodoStore) Delete(ctx context.Context, id int64) error {
	s.dispatch(mutationStarted{kind: mutationDelete})
	if err := s.gw.DeleteTodo(ctx, id); err != nil {
		s.fail(mutationDelete, "deleting todo", err)
		return err
	}

	prior, known := s.commit(todoDeleted{id: id, now: s.now()})
	if known {
		s.trackCount(prior.CategoryID, -1)
	}
	return nil
}

func (s *TodoStore) applyUpdated(todo model.Todo) {
	prior, known := s.commit(todoUpdated{todo: todo, now: s.now()})
	if known && prior.CategoryID != todo.CategoryID {
		s.trackCount(prior.CategoryID, -1)
		s.trackCount(todo.CategoryID, 1)
	}
}

// InvalidateCategory drops every cached todo of a deleted category, then
// reloads the page and the summary.
func (s *TodoStore) InvalidateCategory(ctx context.Context, categoryID int64) {
	s.mu.Lock()
	s.state = reduceTodos(s.state, categoryPurged{categoryID: categoryID})
	s.epoch++
	s.mu.Unlock()
	s.notify()

	s.Refresh(ctx)
	s.RefreshSummary(ctx)
}

// FilterOption changes one aspect of the todo filters.
type FilterOption func(*model.TodoFilters)

// WithSearch sets the free-text search term.
func WithSearch(term string) FilterOption {
	return func(f *model.TodoFilters) {
		f.Search = term
	}
}

// WithCategory filters by category; nil clears the filter.
func WithCategory(id *int64) FilterOption {
	return func(f *model.TodoFilters) {
		f.CategoryID = id
	}
}

// WithCompleted filters by completion; nil clears the filter.
func WithCompleted(completed *bool) FilterOption {
	return func(f *model.TodoFilters) {
		f.Completed = completed
	}
}

// WithPriority filters by priority; nil clears the filter.
func WithPriority(p *model.Priority) FilterOption {
	return func(f *model.TodoFilters) {
		f.Priority = p
	}
}

// WithSort sets the sort key and direction. Invalid values are ignored.
func WithSort(key model.SortKey, order model.SortOrder) FilterOption {
	return func(f *model.TodoFilters) {
		if key.Valid() {
			f.SortBy = key
		}
		if order.Valid() {
			f.SortOrder = order
		}
	}
}

// ResetFilters restores the default filters.
func ResetFilters() FilterOption {
	return func(f *model.TodoFilters) {
		*f = model.DefaultTodoFilters()
	}
}

// SetFilters merges opts into the current filters, moves back to page 1
// and refreshes.
func (s *TodoStore) SetFilters(ctx context.Context, opts ...FilterOption) {
	s.mu.Lock()
	filters := s.state.Filters.Clone()
	for _, opt := range opts {
		opt(&filters)
	}
	s.state = reduceTodos(s.state, filtersChanged{filters: filters})
	s.mu.Unlock()
	s.notify()

	s.Refresh(ctx)
}

// SetPage moves to page n (at least 1) and refreshes.
func (s *TodoStore) SetPage(ctx context.Context, n int) {
	s.dispatch(pageChanged{page: n})
	s.Refresh(ctx)
}

// NextPage moves one page forward when the server reported a next page.
func (s *TodoStore) NextPage(ctx context.Context) {
	snap := s.Snapshot()
	if !snap.Pagination.HasNext {
		return
	}
	s.SetPage(ctx, snap.Filters.Page+1)
}

// PrevPage moves one page back when there is one.
func (s *TodoStore) PrevPage(ctx context.Context) {
	snap := s.Snapshot()
	if snap.Filters.Page <= 1 {
		return
	}
	s.SetPage(ctx, snap.Filters.Page-1)
}

// SetPerPage changes the page size, moves back to page 1 and refreshes.
func (s *TodoStore) SetPerPage(ctx context.Context, n int) {
	s.dispatch(perPageChanged{perPage: n})
	s.Refresh(ctx)
}

// Select marks a todo as selected.
func (s *TodoStore) Select(id int64) {
	s.dispatch(todoSelected{id: &id})
}

// ClearSelection clears the selected todo.
func (s *TodoStore) ClearSelection() {
	s.dispatch(todoSelected{})
}

// OpenForm flags the create/edit form as open.
func (s *TodoStore) OpenForm() {
	s.dispatch(formToggled{open: true})
}

// CloseForm flags the form as closed and clears any form error.
func (s *TodoStore) CloseForm() {
	s.dispatch(formToggled{open: false})
}

// OpenDeleteConfirm asks for confirmation before deleting id.
func (s *TodoStore) OpenDeleteConfirm(id int64) {
	s.dispatch(deleteConfirmToggled{id: &id})
}

// CloseDeleteConfirm dismisses the delete confirmation.
func (s *TodoStore) CloseDeleteConfirm() {
	s.dispatch(deleteConfirmToggled{})
}

// ClearError clears the recorded error.
func (s *TodoStore) ClearError() {
	s.dispatch(errorCleared{})
}

func (s *TodoStore) dispatch(a todoAction) {
	s.mu.Lock()
	s.state = reduceTodos(s.state, a)
	s.mu.Unlock()
	s.notify()
}

// commit applies a confirmed mutation and advances the epoch. It returns
// the cached todo the mutation replaced or removed, if there was one.
func (s *TodoStore) commit(a todoAction) (model.Todo, bool) {
	var id int64
	switch a := a.(type) {
	case todoUpdated:
		id = a.todo.ID
	case todoDeleted:
		id = a.id
	}

	s.mu.Lock()
	prior, known := s.state.Todo(id)
	s.state = reduceTodos(s.state, a)
	s.epoch++
	s.mu.Unlock()
	s.notify()

	return prior, known
}

func (s *TodoStore) fail(kind mutationKind, op string, err error) {
	s.log.WithError(err).Warn(op)
	s.dispatch(mutationFailed{kind: kind, err: gateway.Message(err)})
}

func (s *TodoStore) trackCount(categoryID int64, delta int) {
	if s.counts != nil {
		s.counts.AdjustCount(categoryID, delta)
	}
}

func (s *TodoStore) notify() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

func validateTodoCreate(payload model.TodoCreate) *gateway.Error {
	if payload.CategoryID <= 0 {
		return gateway.InvalidRequestError("Category is required", map[string]string{
			"category_id": "category_id is required",
		})
	}
	if payload.Title == "" {
		return gateway.InvalidRequestError("Title is required", map[string]string{
			"title": "title is required",
		})
	}
	if fields := model.Validate(payload); fields != nil {
		return gateway.InvalidRequestError("Validation failed", fields)
	}
	return nil
}
