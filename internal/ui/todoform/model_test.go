package todoform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frezix0/TodoReact/internal/model"
)

func TestCreatePayload(t *testing.T) {
	p := createPayload(formBindings{
		title:       "  buy milk ",
		description: "   ",
		priority:    model.PriorityHigh,
		dueDate:     "2026-05-01",
		categoryID:  3,
	})

	assert.Equal(t, "buy milk", p.Title)
	assert.Nil(t, p.Description, "blank description is omitted")
	assert.Equal(t, model.PriorityHigh, p.Priority)
	assert.Equal(t, int64(3), p.CategoryID)
	require.NotNil(t, p.DueDate)
	assert.Equal(t, "2026-05-01", p.DueDate.Format(dateLayout))
	assert.Empty(t, model.Validate(p))
}

func TestUpdatePayloadSetsEveryShownField(t *testing.T) {
	p := updatePayload(formBindings{
		title:      "rename",
		priority:   model.PriorityLow,
		categoryID: 8,
		completed:  true,
	})

	require.NotNil(t, p.Title)
	assert.Equal(t, "rename", *p.Title)
	require.NotNil(t, p.Description)
	assert.Empty(t, *p.Description)
	require.NotNil(t, p.Completed)
	assert.True(t, *p.Completed)
	require.NotNil(t, p.Priority)
	assert.Equal(t, model.PriorityLow, *p.Priority)
	require.NotNil(t, p.CategoryID)
	assert.Equal(t, int64(8), *p.CategoryID)
	assert.Nil(t, p.DueDate)
}

func TestStartEditLoadsTodo(t *testing.T) {
	m := New(80, 30)
	m.SetCategories([]model.Category{{ID: 2, Name: "Home"}})
	due := time.Date(2026, 7, 4, 0, 0, 0, 0, time.Local)
	desc := "fireworks"

	m.StartEdit(model.Todo{
		ID:          11,
		Title:       "party",
		Description: &desc,
		Priority:    model.PriorityHigh,
		DueDate:     &due,
		CategoryID:  2,
		Completed:   true,
	})

	assert.Equal(t, int64(11), m.EditID())
	assert.Equal(t, "party", m.fb.title)
	assert.Equal(t, "fireworks", m.fb.description)
	assert.Equal(t, "2026-07-04", m.fb.dueDate)
	assert.Equal(t, int64(2), m.fb.categoryID)
	assert.True(t, m.fb.completed)
	assert.Contains(t, m.View(), "Edit Todo")
}

func TestStartCreatePicksCategory(t *testing.T) {
	m := New(80, 30)
	m.SetCategories([]model.Category{{ID: 5, Name: "Work"}, {ID: 6, Name: "Home"}})

	m.StartCreate(0)
	assert.Equal(t, int64(5), m.fb.categoryID)
	assert.Equal(t, model.PriorityMedium, m.fb.priority)

	m.StartCreate(6)
	assert.Equal(t, int64(6), m.fb.categoryID)
	assert.Zero(t, m.EditID())
}

func TestFailKeepsValuesAndShowsError(t *testing.T) {
	m := New(80, 30)
	m.SetCategories([]model.Category{{ID: 5, Name: "Work"}})
	m.StartCreate(5)
	m.fb.title = "draft"
	m.saving = true

	m.Fail("Category not found")

	assert.False(t, m.Saving())
	assert.Equal(t, "draft", m.fb.title)
	assert.Contains(t, m.View(), "Category not found")
}

func TestValidateOptionalDate(t *testing.T) {
	assert.NoError(t, validateOptionalDate(""))
	assert.NoError(t, validateOptionalDate("2026-01-31"))
	assert.Error(t, validateOptionalDate("31/01/2026"))
	assert.Nil(t, parseDate("garbage"))
}
