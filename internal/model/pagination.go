package model

// Page size bounds applied by the API.
const (
	DefaultPerPage = 10
	MaxPerPage     = 50
)

// Pagination is the page metadata returned alongside a list of todos.
type Pagination struct {
	CurrentPage int  `json:"current_page"`
	PerPage     int  `json:"per_page"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrev     bool `json:"has_prev"`
}

// NewPagination derives the page count and navigation flags from the
// current page, page size and total item count. An empty result still
// has one page.
func NewPagination(page, perPage, total int) Pagination {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if page < 1 {
		page = 1
	}
	if total < 0 {
		total = 0
	}

	totalPages := 1
	if total > 0 {
		totalPages = (total + perPage - 1) / perPage
	}

	return Pagination{
		CurrentPage: page,
		PerPage:     perPage,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
	}
}

// DefaultPagination is the metadata used when a response carried none.
func DefaultPagination(perPage int) Pagination {
	return Pagination{
		CurrentPage: 1,
		PerPage:     perPage,
		TotalPages:  1,
	}
}

// ClampPage normalizes page and perPage the same way the API does:
// page below 1 becomes 1, perPage below 1 becomes the default, and
// perPage above the maximum is capped.
func ClampPage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}

// TodoPage is one page of todos with its metadata.
type TodoPage struct {
	Data       []Todo     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Summary holds aggregate todo counts.
type Summary struct {
	Total          int `json:"total"`
	Completed      int `json:"completed"`
	Pending        int `json:"pending"`
	HighPriority   int `json:"high_priority"`
	MediumPriority int `json:"medium_priority"`
	LowPriority    int `json:"low_priority"`
	Overdue        int `json:"overdue"`
}

// Health is the payload of the health probe.
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
