package sync

import (
	"context"
	gosync "sync"

	"github.com/sirupsen/logrus"

	"github.com/frezix0/TodoReact/internal/gateway"
	"github.com/frezix0/TodoReact/internal/logging"
	"github.com/frezix0/TodoReact/internal/model"
)

// CategoryStore keeps the category list and per-category todo counts in
// step with the server.
type CategoryStore struct {
	gw  CategoryGateway
	log logrus.FieldLogger

	mu      gosync.Mutex
	state   CategoryState
	order   refreshOrder
	epoch   uint64
	todos   TodoInvalidator
	changes chan struct{}
}

// NewCategoryStore creates a category store backed by gw.
func NewCategoryStore(gw CategoryGateway, log logrus.FieldLogger) *CategoryStore {
	return &CategoryStore{
		gw:      gw,
		log:     logging.Component(log, "category-store"),
		state:   CategoryState{Items: []model.Category{}},
		changes: make(chan struct{}, 1),
	}
}

// LinkTodos registers the todo cache to invalidate when a category is
// deleted, since the server deletes the category's todos with it.
func (s *CategoryStore) LinkTodos(inv TodoInvalidator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.todos = inv
}

// Name identifies the store in sync statuses.
func (s *CategoryStore) Name() string {
	return "categories"
}

// Snapshot returns a copy of the current state.
func (s *CategoryStore) Snapshot() CategoryState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Changes returns a channel that receives a value after state changes.
func (s *CategoryStore) Changes() <-chan struct{} {
	return s.changes
}

// Lookup returns the cached category with the given id.
func (s *CategoryStore) Lookup(id int64) (model.Category, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Lookup(id)
}

// Refresh loads categories with their counts. If the counted list cannot
// be fetched it falls back to the plain list and leaves counts unknown.
// Failures are logged and recorded in State.Error.
func (s *CategoryStore) Refresh(ctx context.Context) {
	_ = s.refresh(ctx, false)
}

// BackgroundRefresh is Refresh for the poller. Results of requests issued
// before the latest confirmed mutation are discarded.
func (s *CategoryStore) BackgroundRefresh(ctx context.Context) error {
	return s.refresh(ctx, true)
}

func (s *CategoryStore) refresh(ctx context.Context, background bool) error {
	s.mu.Lock()
	t := s.order.issue(s.epoch)
	s.state = reduceCategories(s.state, categoriesRequested{})
	s.mu.Unlock()
	s.notify()

	items, err := s.gw.ListCategoriesWithCounts(ctx)
	if err != nil {
		s.log.WithError(err).Warn("loading category counts, falling back to plain list")
		plain, plainErr := s.gw.ListCategories(ctx)
		if plainErr == nil {
			items = plain
		} else {
			err = plainErr
		}
	}

	s.mu.Lock()
	if !s.order.settle(t, s.epoch, background) {
		s.state = reduceCategories(s.state, categoriesSettled{inFlight: s.order.inFlight})
		s.mu.Unlock()
		s.notify()
		s.log.WithField("seq", t.seq).Debug("discarded stale categories")
		return nil
	}

	var msg string
	if err != nil {
		msg = gateway.Message(err)
	}
	if items == nil && err == nil {
		items = []model.Category{}
	}
	s.state = reduceCategories(s.state, categoriesLoaded{
		items:    items,
		err:      msg,
		inFlight: s.order.inFlight,
	})
	s.mu.Unlock()
	s.notify()

	if err != nil {
		s.log.WithError(err).Warn("refreshing categories")
	}
	return err
}

// Create validates and submits a new category, then appends it with a
// count of zero. Errors are recorded and returned.
func (s *CategoryStore) Create(
	ctx context.Context,
	payload model.CategoryCreate,
) (model.Category, error) {
	payload.Normalize()
	if fields := model.Validate(payload); fields != nil {
		err := gateway.InvalidRequestError("Validation failed", fields)
		s.dispatch(categoryFailed{err: err.Message})
		return model.Category{}, err
	}

	s.dispatch(categorySaving{})
	cat, err := s.gw.CreateCategory(ctx, payload)
	if err != nil {
		s.fail("creating category", err)
		return model.Category{}, err
	}

	s.commit(categoryCreated{category: *cat})
	return cat.WithCount(0), nil
}

// Update validates and submits category changes, then replaces the cached
// entry while keeping its known count.
func (s *CategoryStore) Update(
	ctx context.Context,
	id int64,
	payload model.CategoryUpdate,
) (model.Category, error) {
	payload.Normalize()
	if fields := model.Validate(payload); fields != nil {
		err := gateway.InvalidRequestError("Validation failed", fields)
		s.dispatch(categoryFailed{err: err.Message})
		return model.Category{}, err
	}

	s.dispatch(categorySaving{})
	cat, err := s.gw.UpdateCategory(ctx, id, payload)
	if err != nil {
		s.fail("updating category", err)
		return model.Category{}, err
	}

	s.commit(categoryUpdated{category: *cat})
	return *cat, nil
}

// Delete removes a category. The server deletes its todos too, so the
// linked todo cache is purged of that category and reloaded.
func (s *CategoryStore) Delete(ctx context.Context, id int64) error {
	s.dispatch(categoryDeleting{})
	if err := s.gw.DeleteCategory(ctx, id); err != nil {
		s.fail("deleting category", err)
		return err
	}

	s.commit(categoryDeleted{id: id})

	s.mu.Lock()
	inv := s.todos
	s.mu.Unlock()
	if inv != nil {
		inv.InvalidateCategory(ctx, id)
	}
	return nil
}

// AdjustCount moves a category's known todo count by delta, floored at
// zero. Unknown counts stay unknown.
func (s *CategoryStore) AdjustCount(categoryID int64, delta int) {
	s.commit(categoryCountAdjusted{id: categoryID, delta: delta})
}

// Select marks a category as selected.
func (s *CategoryStore) Select(id int64) {
	s.dispatch(categorySelected{id: &id})
}

// ClearSelection clears the selected category.
func (s *CategoryStore) ClearSelection() {
	s.dispatch(categorySelected{})
}

// ClearError clears the recorded error.
func (s *CategoryStore) ClearError() {
	s.dispatch(categoryErrorCleared{})
}

func (s *CategoryStore) dispatch(a categoryAction) {
	s.mu.Lock()
	s.state = reduceCategories(s.state, a)
	s.mu.Unlock()
	s.notify()
}

func (s *CategoryStore) commit(a categoryAction) {
	s.mu.Lock()
	s.state = reduceCategories(s.state, a)
	s.epoch++
	s.mu.Unlock()
	s.notify()
}

func (s *CategoryStore) fail(op string, err error) {
	s.log.WithError(err).Warn(op)
	s.dispatch(categoryFailed{err: gateway.Message(err)})
}

func (s *CategoryStore) notify() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}
