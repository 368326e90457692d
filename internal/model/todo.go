package model

import (
	"strings"
	"time"
)

// Priority is the urgency level of a todo.
type Priority string

// Priority levels, ordered from most to least urgent.
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Priorities lists every valid priority, most urgent first.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Valid reports whether p is one of the known priority levels.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Rank returns a sortable weight for p (high=3, medium=2, low=1, unknown=0).
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Field length limits shared by client-side and server-side validation.
const (
	MaxTitleLength        = 200
	MaxDescriptionLength  = 1000
	MaxCategoryNameLength = 100
)

// Todo is a single to-do item. Every todo belongs to exactly one category.
type Todo struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Completed   bool       `json:"completed"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CategoryID  int64      `json:"category_id"`

	// Category is the owning category as embedded by the API.
	Category *Category `json:"category,omitempty"`
}

// IsOverdue reports whether the todo is past its due date and still open.
func (t Todo) IsOverdue(now time.Time) bool {
	return !t.Completed && t.DueDate != nil && t.DueDate.Before(now)
}

// DescriptionText returns the description or an empty string.
func (t Todo) DescriptionText() string {
	if t.Description == nil {
		return ""
	}
	return *t.Description
}

// TodoCreate is the payload for creating a todo.
type TodoCreate struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=1000"`
	Priority    Priority   `json:"priority" validate:"required,oneof=high medium low"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CategoryID  int64      `json:"category_id" validate:"required,gt=0"`
}

// Normalize trims text fields and applies the default priority.
func (c *TodoCreate) Normalize() {
	c.Title = strings.TrimSpace(c.Title)
	c.Description = trimOptional(c.Description)
	if c.Priority == "" {
		c.Priority = PriorityMedium
	}
}

// TodoUpdate is the payload for updating a todo. Nil fields are left unchanged.
type TodoUpdate struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=1000"`
	Completed   *bool      `json:"completed,omitempty"`
	Priority    *Priority  `json:"priority,omitempty" validate:"omitempty,oneof=high medium low"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CategoryID  *int64     `json:"category_id,omitempty" validate:"omitempty,gt=0"`
}

// Normalize trims text fields.
func (u *TodoUpdate) Normalize() {
	if u.Title != nil {
		title := strings.TrimSpace(*u.Title)
		u.Title = &title
	}
	u.Description = trimOptional(u.Description)
}

// Apply copies the set fields of u onto t.
func (u TodoUpdate) Apply(t *Todo) {
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = u.Description
	}
	if u.Completed != nil {
		t.Completed = *u.Completed
	}
	if u.Priority != nil {
		t.Priority = *u.Priority
	}
	if u.DueDate != nil {
		t.DueDate = u.DueDate
	}
	if u.CategoryID != nil {
		t.CategoryID = *u.CategoryID
	}
}

// CompletionUpdate is the body of the dedicated completion toggle call.
type CompletionUpdate struct {
	Completed bool `json:"completed"`
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
