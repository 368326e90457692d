package sync

import (
	"context"

	"github.com/frezix0/TodoReact/internal/model"
)

// TodoGateway is the subset of the API client the todo store needs.
// *gateway.Client satisfies it.
type TodoGateway interface {
	ListTodos(ctx context.Context, filters model.TodoFilters, perPage int) (*model.TodoPage, error)
	CreateTodo(ctx context.Context, payload model.TodoCreate) (*model.Todo, error)
	UpdateTodo(ctx context.Context, id int64, payload model.TodoUpdate) (*model.Todo, error)
	SetTodoCompletion(ctx context.Context, id int64, completed bool) (*model.Todo, error)
	DeleteTodo(ctx context.Context, id int64) error
	TodoSummary(ctx context.Context) (*model.Summary, error)
}

// CategoryGateway is the subset of the API client the category store needs.
// *gateway.Client satisfies it.
type CategoryGateway interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	ListCategoriesWithCounts(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, payload model.CategoryCreate) (*model.Category, error)
	UpdateCategory(ctx context.Context, id int64, payload model.CategoryUpdate) (*model.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

// TodoInvalidator drops cached todos that a category delete removed on
// the server and schedules a fresh fetch.
type TodoInvalidator interface {
	InvalidateCategory(ctx context.Context, categoryID int64)
}

// CountTracker receives per-category todo count changes caused by
// confirmed todo mutations.
type CountTracker interface {
	AdjustCount(categoryID int64, delta int)
}
