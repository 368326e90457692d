package sync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frezix0/TodoReact/internal/gateway"
	"github.com/frezix0/TodoReact/internal/model"
)

func seededCategories() []model.Category {
	return []model.Category{
		model.Category{ID: 1, Name: "Work", Color: "#112233"}.WithCount(2),
		model.Category{ID: 2, Name: "Home", Color: "#445566"}.WithCount(1),
	}
}

func newSeededCategoryStore(t *testing.T) (*CategoryStore, *fakeGateway) {
	t.Helper()

	gw := &fakeGateway{
		catCountsFn: func(context.Context) ([]model.Category, error) {
			return seededCategories(), nil
		},
	}
	s := NewCategoryStore(gw, nil)
	s.Refresh(context.Background())
	require.Len(t, s.Snapshot().Items, 2)
	return s, gw
}

func TestCategoryRefresh_LoadsCounts(t *testing.T) {
	s, _ := newSeededCategoryStore(t)

	snap := s.Snapshot()
	assert.Empty(t, snap.Error)
	assert.False(t, snap.Loading.Categories)

	counted := snap.WithCounts()
	require.NotNil(t, counted[0].TodoCount)
	assert.Equal(t, 2, *counted[0].TodoCount)

	for _, c := range snap.Categories() {
		assert.Nil(t, c.TodoCount)
	}
}

func TestCategoryRefresh_FallsBackToPlainList(t *testing.T) {
	gw := &fakeGateway{
		catCountsFn: func(context.Context) ([]model.Category, error) {
			return nil, serverError()
		},
		catsFn: func(context.Context) ([]model.Category, error) {
			return []model.Category{{ID: 1, Name: "Work", Color: "#112233"}}, nil
		},
	}
	s := NewCategoryStore(gw, nil)

	err := s.BackgroundRefresh(context.Background())
	assert.Error(t, err)

	snap := s.Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Nil(t, snap.Items[0].TodoCount)
	assert.Equal(t, 0, *snap.WithCounts()[0].TodoCount)
	assert.NotEmpty(t, snap.Error)
}

func TestCategoryRefresh_BothFailKeepsItems(t *testing.T) {
	s, gw := newSeededCategoryStore(t)
	gw.catCountsFn = func(context.Context) ([]model.Category, error) { return nil, serverError() }
	gw.catsFn = func(context.Context) ([]model.Category, error) {
		return nil, &gateway.Error{Code: gateway.CodeTimeout, Message: "Request timed out"}
	}

	s.Refresh(context.Background())

	snap := s.Snapshot()
	assert.Len(t, snap.Items, 2)
	assert.Equal(t, "Request timed out", snap.Error)
}

func TestCategoryCreate_AppendsWithZeroCount(t *testing.T) {
	s, gw := newSeededCategoryStore(t)
	gw.catCreateFn = func(_ context.Context, p model.CategoryCreate) (*model.Category, error) {
		return &model.Category{ID: 3, Name: p.Name, Color: p.Color}, nil
	}

	cat, err := s.Create(context.Background(), model.CategoryCreate{Name: " Errands "})
	require.NoError(t, err)
	assert.Equal(t, "Errands", cat.Name)
	assert.Equal(t, model.DefaultCategoryColor, cat.Color)

	snap := s.Snapshot()
	require.Len(t, snap.Items, 3)
	last := snap.Items[2]
	require.NotNil(t, last.TodoCount)
	assert.Equal(t, 0, *last.TodoCount)
	assert.Len(t, snap.Categories(), 3)
}

func TestCategoryCreate_RejectsBadColorLocally(t *testing.T) {
	s, gw := newSeededCategoryStore(t)
	gw.catCreateFn = func(context.Context, model.CategoryCreate) (*model.Category, error) {
		t.Fatal("gateway must not be called")
		return nil, nil
	}

	_, err := s.Create(context.Background(), model.CategoryCreate{Name: "Bad", Color: "blue"})
	gwErr, ok := gateway.AsError(err)
	require.True(t, ok)
	assert.Equal(t, gateway.CodeInvalidRequest, gwErr.Code)
	assert.Contains(t, gwErr.Fields, "color")
	assert.Len(t, s.Snapshot().Items, 2)
}

func TestCategoryUpdate_PreservesCount(t *testing.T) {
	s, gw := newSeededCategoryStore(t)
	gw.catUpdateFn = func(_ context.Context, id int64, p model.CategoryUpdate) (*model.Category, error) {
		c := model.Category{ID: id, Name: "Office", Color: "#112233"}
		return &c, nil
	}

	name := "Office"
	_, err := s.Update(context.Background(), 1, model.CategoryUpdate{Name: &name})
	require.NoError(t, err)

	got, ok := s.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, "Office", got.Name)
	require.NotNil(t, got.TodoCount)
	assert.Equal(t, 2, *got.TodoCount)
}

func TestCategoryUpdate_ErrorIsReturned(t *testing.T) {
	s, gw := newSeededCategoryStore(t)
	gw.catUpdateFn = func(context.Context, int64, model.CategoryUpdate) (*model.Category, error) {
		return nil, &gateway.Error{Code: gateway.CodeValidationFailed, Message: "Category name already exists"}
	}
	before := s.Snapshot().Items

	name := "Home"
	_, err := s.Update(context.Background(), 1, model.CategoryUpdate{Name: &name})
	assert.True(t, gateway.IsCode(err, gateway.CodeValidationFailed))

	snap := s.Snapshot()
	assert.Equal(t, before, snap.Items)
	assert.Equal(t, "Category name already exists", snap.Error)
	assert.False(t, snap.Loading.Saving)
}

func TestCategoryDelete_InvalidatesTodos(t *testing.T) {
	s, gw := newSeededCategoryStore(t)
	gw.catDeleteFn = func(context.Context, int64) error { return nil }
	inv := &recordingInvalidator{}
	s.LinkTodos(inv)
	s.Select(1)

	require.NoError(t, s.Delete(context.Background(), 1))

	snap := s.Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, int64(2), snap.Items[0].ID)
	assert.Nil(t, snap.SelectedID)
	assert.Equal(t, []int64{1}, inv.ids)
}

func TestCategoryDelete_FailureSkipsInvalidation(t *testing.T) {
	s, gw := newSeededCategoryStore(t)
	gw.catDeleteFn = func(context.Context, int64) error { return serverError() }
	inv := &recordingInvalidator{}
	s.LinkTodos(inv)

	assert.Error(t, s.Delete(context.Background(), 1))
	assert.Len(t, s.Snapshot().Items, 2)
	assert.Empty(t, inv.ids)
}

func TestCategoryDelete_WithTodoStore(t *testing.T) {
	todoGW := &fakeGateway{
		listFn: func(_ context.Context, f model.TodoFilters, perPage int) (*model.TodoPage, error) {
			return &model.TodoPage{Data: seededTodos(), Pagination: model.NewPagination(1, perPage, 3)}, nil
		},
	}
	todos := NewTodoStore(todoGW)
	todos.Refresh(context.Background())

	cats, gw := newSeededCategoryStore(t)
	gw.catDeleteFn = func(context.Context, int64) error { return nil }
	cats.LinkTodos(todos)

	todoGW.listFn = func(_ context.Context, f model.TodoFilters, perPage int) (*model.TodoPage, error) {
		return &model.TodoPage{
			Data:       []model.Todo{todo(2, "Book flights", true, model.PriorityLow, 2)},
			Pagination: model.NewPagination(1, perPage, 1),
		}, nil
	}

	require.NoError(t, cats.Delete(context.Background(), 1))

	snap := todos.Snapshot()
	require.Len(t, snap.Todos, 1)
	assert.Equal(t, int64(2), snap.Todos[0].CategoryID)
	assert.Equal(t, 1, snap.Pagination.Total)
}

func TestAdjustCount(t *testing.T) {
	s, _ := newSeededCategoryStore(t)

	s.AdjustCount(2, -1)
	s.AdjustCount(2, -1)
	s.AdjustCount(1, 3)
	s.AdjustCount(99, 1)

	one, _ := s.Lookup(1)
	two, _ := s.Lookup(2)
	assert.Equal(t, 5, *one.TodoCount)
	assert.Equal(t, 0, *two.TodoCount)
}

func TestAdjustCount_UnknownStaysUnknown(t *testing.T) {
	s := NewCategoryStore(&fakeGateway{
		catCountsFn: func(context.Context) ([]model.Category, error) { return nil, serverError() },
		catsFn: func(context.Context) ([]model.Category, error) {
			return []model.Category{{ID: 1, Name: "Work", Color: "#112233"}}, nil
		},
	}, nil)
	s.Refresh(context.Background())

	s.AdjustCount(1, 1)
	got, _ := s.Lookup(1)
	assert.Nil(t, got.TodoCount)
}

func TestCategorySnapshotIsACopy(t *testing.T) {
	s, _ := newSeededCategoryStore(t)

	snap := s.Snapshot()
	*snap.Items[0].TodoCount = 100
	snap.Items[1].Name = "mutated"

	fresh := s.Snapshot()
	assert.Equal(t, 2, *fresh.Items[0].TodoCount)
	assert.Equal(t, "Home", fresh.Items[1].Name)
}

type recordingInvalidator struct {
	ids []int64
}

func (r *recordingInvalidator) InvalidateCategory(_ context.Context, categoryID int64) {
	r.ids = append(r.ids, categoryID)
}
