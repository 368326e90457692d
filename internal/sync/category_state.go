package sync

import (
	"slices"

	"github.com/frezix0/TodoReact/internal/model"
)

// CategoryLoading tracks which category operations are in flight.
type CategoryLoading struct {
	Categories bool
	Saving     bool
	Deleting   bool
}

// CategoryState holds the single canonical category list. Each category
// carries its todo count when the server reported one.
type CategoryState struct {
	Loading    CategoryLoading
	Error      string
	Items      []model.Category
	SelectedID *int64
}

// Categories returns the categories without counts.
func (s CategoryState) Categories() []model.Category {
	return deriveCategories(s.Items, false)
}

// WithCounts returns the categories with a count on every entry; unknown
// counts read as zero.
func (s CategoryState) WithCounts() []model.Category {
	return deriveCategories(s.Items, true)
}

// Lookup returns the category with the given id.
func (s CategoryState) Lookup(id int64) (model.Category, bool) {
	i := indexOfCategory(s.Items, id)
	if i < 0 {
		return model.Category{}, false
	}
	return s.Items[i], true
}

// deriveCategories is the one place the list views are computed from the
// canonical items.
func deriveCategories(items []model.Category, withCounts bool) []model.Category {
	out := make([]model.Category, len(items))
	for i, c := range items {
		if withCounts {
			out[i] = c.WithCount(c.Count())
		} else {
			c.TodoCount = nil
			out[i] = c
		}
	}
	return out
}

func (s CategoryState) clone() CategoryState {
	out := s
	out.Items = make([]model.Category, len(s.Items))
	for i, c := range s.Items {
		if c.TodoCount != nil {
			c = c.WithCount(*c.TodoCount)
		}
		out.Items[i] = c
	}
	if s.SelectedID != nil {
		id := *s.SelectedID
		out.SelectedID = &id
	}
	return out
}

type categoryAction interface {
	categoryAction()
}

type (
	categoriesRequested struct{}

	categoriesLoaded struct {
		items    []model.Category
		err      string
		inFlight int
	}

	categoriesSettled struct {
		inFlight int
	}

	categorySaving struct{}

	categoryDeleting struct{}

	categoryFailed struct {
		err string
	}

	categoryCreated struct {
		category model.Category
	}

	categoryUpdated struct {
		category model.Category
	}

	categoryDeleted struct {
		id int64
	}

	categoryCountAdjusted struct {
		id    int64
		delta int
	}

	categorySelected struct {
		id *int64
	}

	categoryErrorCleared struct{}
)

func (categoriesRequested) categoryAction()   {}
func (categoriesLoaded) categoryAction()      {}
func (categoriesSettled) categoryAction()     {}
func (categorySaving) categoryAction()        {}
func (categoryDeleting) categoryAction()      {}
func (categoryFailed) categoryAction()        {}
func (categoryCreated) categoryAction()       {}
func (categoryUpdated) categoryAction()       {}
func (categoryDeleted) categoryAction()       {}
func (categoryCountAdjusted) categoryAction() {}
func (categorySelected) categoryAction()      {}
func (categoryErrorCleared) categoryAction()  {}

// reduceCategories returns the state that results from applying action
// to s without mutating s.
func reduceCategories(s CategoryState, action categoryAction) CategoryState {
	s = s.clone()

	switch a := action.(type) {
	case categoriesRequested:
		s.Loading.Categories = true

	case categoriesLoaded:
		s.Loading.Categories = a.inFlight > 0
		if a.items != nil {
			s.Items = slices.Clone(a.items)
		}
		s.Error = a.err

	case categoriesSettled:
		s.Loading.Categories = a.inFlight > 0

	case categorySaving:
		s.Loading.Saving = true

	case categoryDeleting:
		s.Loading.Deleting = true

	case categoryFailed:
		s.Loading.Saving = false
		s.Loading.Deleting = false
		s.Error = a.err

	case categoryCreated:
		s.Loading.Saving = false
		s.Error = ""
		s.Items = append(s.Items, a.category.WithCount(0))

	case categoryUpdated:
		s.Loading.Saving = false
		s.Error = ""
		if i := indexOfCategory(s.Items, a.category.ID); i >= 0 {
			next := a.category
			next.TodoCount = s.Items[i].TodoCount
			s.Items[i] = next
		}

	case categoryDeleted:
		s.Loading.Deleting = false
		s.Error = ""
		if i := indexOfCategory(s.Items, a.id); i >= 0 {
			s.Items = slices.Delete(s.Items, i, i+1)
		}
		if s.SelectedID != nil && *s.SelectedID == a.id {
			s.SelectedID = nil
		}

	case categoryCountAdjusted:
		if i := indexOfCategory(s.Items, a.id); i >= 0 && s.Items[i].TodoCount != nil {
			s.Items[i] = s.Items[i].WithCount(floor(*s.Items[i].TodoCount + a.delta))
		}

	case categorySelected:
		s.SelectedID = a.id

	case categoryErrorCleared:
		s.Error = ""
	}

	return s
}

func indexOfCategory(items []model.Category, id int64) int {
	return slices.IndexFunc(items, func(c model.Category) bool {
		return c.ID == id
	})
}
