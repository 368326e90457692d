package model

import (
	"strings"
	"time"
)

// DefaultCategoryColor is used when a category is created without a color.
const DefaultCategoryColor = "#3B82F6"

// Category groups related todos. TodoCount is nil until the server has
// reported a count for it.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	TodoCount *int      `json:"todo_count,omitempty"`
}

// Count returns the todo count, treating an unknown count as zero.
func (c Category) Count() int {
	if c.TodoCount == nil {
		return 0
	}
	return *c.TodoCount
}

// WithCount returns a copy of c carrying the given count.
func (c Category) WithCount(n int) Category {
	c.TodoCount = &n
	return c
}

// CategoryCreate is the payload for creating a category.
type CategoryCreate struct {
	Name  string `json:"name" validate:"required,max=100"`
	Color string `json:"color" validate:"required,len=7,hexcolor"`
}

// Normalize trims the name and applies the default color.
func (c *CategoryCreate) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Color = strings.TrimSpace(c.Color)
	if c.Color == "" {
		c.Color = DefaultCategoryColor
	}
}

// CategoryUpdate is the payload for updating a category. Nil fields are
// left unchanged.
type CategoryUpdate struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Color *string `json:"color,omitempty" validate:"omitempty,len=7,hexcolor"`
}

// Normalize trims the set fields.
func (u *CategoryUpdate) Normalize() {
	u.Name = trimOptional(u.Name)
	u.Color = trimOptional(u.Color)
}

// Apply copies the set fields of u onto c.
func (u CategoryUpdate) Apply(c *Category) {
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Color != nil {
		c.Color = *u.Color
	}
}
