package model

import (
	"net/url"
	"strconv"
	"strings"
)

// SortKey is a column todos can be ordered by.
type SortKey string

// Supported sort keys.
const (
	SortByCreatedAt SortKey = "created_at"
	SortByUpdatedAt SortKey = "updated_at"
	SortByTitle     SortKey = "title"
	SortByPriority  SortKey = "priority"
	SortByDueDate   SortKey = "due_date"
)

// SortKeys lists the supported sort keys in display order.
var SortKeys = []SortKey{
	SortByCreatedAt,
	SortByUpdatedAt,
	SortByTitle,
	SortByPriority,
	SortByDueDate,
}

// Valid reports whether k is a supported sort key.
func (k SortKey) Valid() bool {
	for _, s := range SortKeys {
		if s == k {
			return true
		}
	}
	return false
}

// SortOrder is the direction of a sort.
type SortOrder string

// Sort directions.
const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Valid reports whether o is asc or desc.
func (o SortOrder) Valid() bool {
	return o == SortAsc || o == SortDesc
}

// Flip returns the opposite direction.
func (o SortOrder) Flip() SortOrder {
	if o == SortAsc {
		return SortDesc
	}
	return SortAsc
}

// TodoFilters holds the filter, sort and page criteria for listing todos.
type TodoFilters struct {
	Search     string
	CategoryID *int64
	Completed  *bool
	Priority   *Priority
	SortBy     SortKey
	SortOrder  SortOrder
	Page       int
}

// DefaultTodoFilters returns filters for the first page, newest first.
func DefaultTodoFilters() TodoFilters {
	return TodoFilters{
		SortBy:    SortByCreatedAt,
		SortOrder: SortDesc,
		Page:      1,
	}
}

// Active reports whether any narrowing filter (search, category,
// completion or priority) is set.
func (f TodoFilters) Active() bool {
	return strings.TrimSpace(f.Search) != "" ||
		f.CategoryID != nil ||
		f.Completed != nil ||
		f.Priority != nil
}

// Query encodes f as list query parameters for the given page size.
func (f TodoFilters) Query(perPage int) url.Values {
	q := url.Values{}
	page := f.Page
	if page < 1 {
		page = 1
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))

	if s := strings.TrimSpace(f.Search); s != "" {
		q.Set("search", s)
	}
	if f.CategoryID != nil {
		q.Set("category_id", strconv.FormatInt(*f.CategoryID, 10))
	}
	if f.Completed != nil {
		q.Set("completed", strconv.FormatBool(*f.Completed))
	}
	if f.Priority != nil {
		q.Set("priority", string(*f.Priority))
	}
	if f.SortBy.Valid() {
		q.Set("sort_by", string(f.SortBy))
	}
	if f.SortOrder.Valid() {
		q.Set("sort_order", string(f.SortOrder))
	}
	return q
}

// Clone returns a deep copy of f.
func (f TodoFilters) Clone() TodoFilters {
	out := f
	if f.CategoryID != nil {
		id := *f.CategoryID
		out.CategoryID = &id
	}
	if f.Completed != nil {
		c := *f.Completed
		out.Completed = &c
	}
	if f.Priority != nil {
		p := *f.Priority
		out.Priority = &p
	}
	return out
}
