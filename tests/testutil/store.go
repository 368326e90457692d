package testutil

import (
	"context"
	"testing"

	"github.com/frezix0/TodoReact/internal/model"
	"github.com/frezix0/TodoReact/internal/store"
)

// NewTestStore creates an in-memory SQLite store with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// SeedCategory creates a category with the default color.
func SeedCategory(t *testing.T, s store.Store, name string) model.Category {
	t.Helper()

	c, err := s.CreateCategory(context.Background(), model.CategoryCreate{Name: name})
	if err != nil {
		t.Fatalf("seeding category %q: %v", name, err)
	}
	return *c
}

// SeedTodo creates a todo in the given category.
func SeedTodo(
	t *testing.T,
	s store.Store,
	categoryID int64,
	title string,
	priority model.Priority,
) model.Todo {
	t.Helper()

	todo, err := s.CreateTodo(context.Background(), model.TodoCreate{
		Title:      title,
		Priority:   priority,
		CategoryID: categoryID,
	})
	if err != nil {
		t.Fatalf("seeding todo %q: %v", title, err)
	}
	return *todo
}
