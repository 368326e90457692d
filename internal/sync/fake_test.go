package sync

import (
	"context"
	"errors"
	gosync "sync"

	"github.com/frezix0/TodoReact/internal/gateway"
	"github.com/frezix0/TodoReact/internal/model"
)

var errBoom = errors.New("boom")

// fakeGateway is a scriptable in-memory stand-in for the API client.
type fakeGateway struct {
	mu gosync.Mutex

	listFn       func(ctx context.Context, f model.TodoFilters, perPage int) (*model.TodoPage, error)
	summaryFn    func(ctx context.Context) (*model.Summary, error)
	createFn     func(ctx context.Context, p model.TodoCreate) (*model.Todo, error)
	updateFn     func(ctx context.Context, id int64, p model.TodoUpdate) (*model.Todo, error)
	completeFn   func(ctx context.Context, id int64, completed bool) (*model.Todo, error)
	deleteFn     func(ctx context.Context, id int64) error
	catsFn       func(ctx context.Context) ([]model.Category, error)
	catCountsFn  func(ctx context.Context) ([]model.Category, error)
	catCreateFn  func(ctx context.Context, p model.CategoryCreate) (*model.Category, error)
	catUpdateFn  func(ctx context.Context, id int64, p model.CategoryUpdate) (*model.Category, error)
	catDeleteFn  func(ctx context.Context, id int64) error
	listCalls    []model.TodoFilters
	createCalls  int
	summaryCalls int
}

func (f *fakeGateway) ListTodos(
	ctx context.Context,
	filters model.TodoFilters,
	perPage int,
) (*model.TodoPage, error) {
	f.mu.Lock()
	f.listCalls = append(f.listCalls, filters.Clone())
	fn := f.listFn
	f.mu.Unlock()
	if fn == nil {
		return &model.TodoPage{Data: []model.Todo{}, Pagination: model.NewPagination(filters.Page, perPage, 0)}, nil
	}
	return fn(ctx, filters, perPage)
}

func (f *fakeGateway) TodoSummary(ctx context.Context) (*model.Summary, error) {
	f.mu.Lock()
	f.summaryCalls++
	fn := f.summaryFn
	f.mu.Unlock()
	if fn == nil {
		return &model.Summary{}, nil
	}
	return fn(ctx)
}

func (f *fakeGateway) CreateTodo(ctx context.Context, p model.TodoCreate) (*model.Todo, error) {
	f.mu.Lock()
	f.createCalls++
	f.mu.Unlock()
	return f.createFn(ctx, p)
}

func (f *fakeGateway) UpdateTodo(ctx context.Context, id int64, p model.TodoUpdate) (*model.Todo, error) {
	return f.updateFn(ctx, id, p)
}

func (f *fakeGateway) SetTodoCompletion(ctx context.Context, id int64, completed bool) (*model.Todo, error) {
	return f.completeFn(ctx, id, completed)
}

func (f *fakeGateway) DeleteTodo(ctx context.Context, id int64) error {
	return f.deleteFn(ctx, id)
}

func (f *fakeGateway) ListCategories(ctx context.Context) ([]model.Category, error) {
	return f.catsFn(ctx)
}

func (f *fakeGateway) ListCategoriesWithCounts(ctx context.Context) ([]model.Category, error) {
	return f.catCountsFn(ctx)
}

func (f *fakeGateway) CreateCategory(ctx context.Context, p model.CategoryCreate) (*model.Category, error) {
	return f.catCreateFn(ctx, p)
}

func (f *fakeGateway) UpdateCategory(
	ctx context.Context,
	id int64,
	p model.CategoryUpdate,
) (*model.Category, error) {
	return f.catUpdateFn(ctx, id, p)
}

func (f *fakeGateway) DeleteCategory(ctx context.Context, id int64) error {
	return f.catDeleteFn(ctx, id)
}

func (f *fakeGateway) lastList() model.TodoFilters {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls[len(f.listCalls)-1]
}

func serverError() error {
	return &gateway.Error{Message: "Server error, please try again later", Code: gateway.CodeServerFault, Status: 500}
}

func todo(id int64, title string, completed bool, p model.Priority, categoryID int64) model.Todo {
	return model.Todo{
		ID:         id,
		Title:      title,
		Completed:  completed,
		Priority:   p,
		CategoryID: categoryID,
	}
}
