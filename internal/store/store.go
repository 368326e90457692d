package store

import (
	"context"
	"errors"

	"github.com/frezix0/TodoReact/internal/model"
)

// Sentinel errors returned by Store implementations. Callers match them
// with errors.Is.
var (
	ErrNotFound        = errors.New("not found")
	ErrDuplicate       = errors.New("duplicate")
	ErrCategoryMissing = errors.New("category not found")
)

// TodoQuery controls filtering, sorting, and pagination for todo listings.
type TodoQuery struct {
	Search     string
	CategoryID *int64
	Completed  *bool
	Priority   *model.Priority
	SortBy     model.SortKey
	SortOrder  model.SortOrder
	Limit      int
	Offset     int
}

// QueryFromFilters converts list filters plus a page size into a TodoQuery.
func QueryFromFilters(f model.TodoFilters, perPage int) TodoQuery {
	page, perPage := model.ClampPage(f.Page, perPage)
	return TodoQuery{
		Search:     f.Search,
		CategoryID: f.CategoryID,
		Completed:  f.Completed,
		Priority:   f.Priority,
		SortBy:     f.SortBy,
		SortOrder:  f.SortOrder,
		Limit:      perPage,
		Offset:     (page - 1) * perPage,
	}
}

// Store defines the persistence interface for todos and categories.
type Store interface {
	// === Todos ===

	CreateTodo(ctx context.Context, in model.TodoCreate) (*model.Todo, error)
	GetTodo(ctx context.Context, id int64) (*model.Todo, error)
	UpdateTodo(ctx context.Context, id int64, in model.TodoUpdate) (*model.Todo, error)
	SetTodoCompletion(ctx context.Context, id int64, completed bool) (*model.Todo, error)
	DeleteTodo(ctx context.Context, id int64) error
	ListTodos(ctx context.Context, q TodoQuery) ([]model.Todo, int, error)
	TodoSummary(ctx context.Context) (*model.Summary, error)
	SearchTodos(ctx context.Context, term string, limit int) ([]model.Todo, error)

	// === Categories ===

	CreateCategory(ctx context.Context, in model.CategoryCreate) (*model.Category, error)
	GetCategory(ctx context.Context, id int64) (*model.Category, error)
	UpdateCategory(ctx context.Context, id int64, in model.CategoryUpdate) (*model.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]model.Category, error)
	ListCategoriesWithCounts(ctx context.Context) ([]model.Category, error)

	// === Lifecycle ===

	Ping(ctx context.Context) error
	Close() error
}
