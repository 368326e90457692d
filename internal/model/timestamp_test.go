package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-05-01T10:00:00Z", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-05-01T10:00:00.123456", time.Date(2024, 5, 1, 10, 0, 0, 123456000, time.UTC)},
		{"2024-05-01T10:00:00", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-05-01 10:00:00.5", time.Date(2024, 5, 1, 10, 0, 0, 500000000, time.UTC)},
		{"2024-05-01", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-05-01T12:00:00+02:00", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}

	_, err := ParseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestTodoUnmarshalEmbeddedCategory(t *testing.T) {
	body := `{
		"id": 4,
		"title": "Pay rent",
		"description": null,
		"completed": false,
		"priority": "high",
		"due_date": "2024-05-03T09:30:00",
		"created_at": "2024-05-01T10:00:00.123456",
		"updated_at": "2024-05-02T08:15:00",
		"category": {"id": 7, "name": "Home", "color": "#10B981", "created_at": "2024-04-30T18:00:00.5"}
	}`

	var todo Todo
	require.NoError(t, json.Unmarshal([]byte(body), &todo))

	assert.Equal(t, int64(7), todo.CategoryID)
	require.NotNil(t, todo.Category)
	assert.Equal(t, "Home", todo.Category.Name)
	assert.Equal(t, time.Date(2024, 4, 30, 18, 0, 0, 500000000, time.UTC), todo.Category.CreatedAt)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 123456000, time.UTC), todo.CreatedAt)
	assert.Equal(t, time.Date(2024, 5, 2, 8, 15, 0, 0, time.UTC), todo.UpdatedAt)
	require.NotNil(t, todo.DueDate)
	assert.Equal(t, time.Date(2024, 5, 3, 9, 30, 0, 0, time.UTC), *todo.DueDate)
	assert.Nil(t, todo.Description)
}

func TestTodoUnmarshalKeepsExplicitCategoryID(t *testing.T) {
	var todo Todo
	require.NoError(t, json.Unmarshal([]byte(`{"id": 1, "title": "x", "category_id": 3, "due_date": null}`), &todo))
	assert.Equal(t, int64(3), todo.CategoryID)
	assert.Nil(t, todo.DueDate)
	assert.True(t, todo.CreatedAt.IsZero())
}

func TestTodoJSONRoundTrip(t *testing.T) {
	due := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	in := Todo{
		ID:         2,
		Title:      "Call bank",
		Priority:   PriorityLow,
		DueDate:    &due,
		CreatedAt:  time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		UpdatedAt:  time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC),
		CategoryID: 5,
	}
	raw, err := json.Marshal(in)
	require.NoError(t, err)

	var out Todo
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in, out)
}

func TestTodoUnmarshalBadTimestamp(t *testing.T) {
	var todo Todo
	err := json.Unmarshal([]byte(`{"id": 1, "created_at": "not a date"}`), &todo)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "created_at")
}
