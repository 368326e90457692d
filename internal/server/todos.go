package server

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/frezix0/TodoReact/internal/model"
	"github.com/frezix0/TodoReact/internal/store"
)

const todoResource = "Todo"

func (s *Server) handleListTodos(w http.ResponseWriter, r *http.Request) {
	filters, perPage, err := parseTodoFilters(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err, todoResource)
		return
	}

	page, perPage := model.ClampPage(filters.Page, perPage)
	filters.Page = page

	todos, total, err := s.store.ListTodos(r.Context(), store.QueryFromFilters(filters, perPage))
	if err != nil {
		s.writeError(w, r, err, todoResource)
		return
	}
	if todos == nil {
		todos = []model.Todo{}
	}

	writeJSON(w, http.StatusOK, model.TodoPage{
		Data:       todos,
		Pagination: model.NewPagination(page, perPage, total),
	})
}

func (s *Server) handleCreateTodo(w http.ResponseWriter, r *http.Request) {
	var in model.TodoCreate
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err, todoResource)
		return
	}
	in.Normalize()
	if fields := model.Validate(in); fields != nil {
		s.writeError(w, r, NewValidationError(fields), todoResource)
		return
	}

	todo, err := s.store.CreateTodo(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err, todoResource)
		return
	}
	writeJSON(w, http.StatusCreated, todo)
}

func (s *Server) handleGetTodo(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "todoID")
	if err != nil {
		s.writeError(w, r, err, todoResource)
		return
	}

	todo, err := s.store.GetTodo(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, todoResource)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

func (s *Server) handleUpdateTodo(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "todoID")
	if err != nil {
		s.writeError(w, r, err, todoResource)
		return
	}

	var in model.TodoUpdate
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err, todoResource)
		return
	}
	in.Normalize()
	if fields := model.Validate(in); fields != nil {
		s.writeError(w, r, NewValidationError(fields), todoResource)
		return
	}

	todo, err := s.store.UpdateTodo(r.Context(), id, in)
	if err != nil {
		s.writeError(w, r, err, todoResource)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

func (s *Server) handleSetTodoCompletion(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "todoID")
	if err != nil {
		s.writeError(w, r, err, todoResource)
		return
	}

	var in model.CompletionUpdate
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err, todoResource)
		return
	}

	todo, err := s.store.SetTodoCompletion(r.Context(), id, in.Completed)
	if err != nil {
		s.writeError(w, r, err, todoResource)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

func (s *Server) handleDeleteTodo(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "todoID")
	if err != nil {
		s.writeError(w, r, err, todoResource)
		return
	}

	if err := s.store.DeleteTodo(r.Context(), id); err != nil {
		s.writeError(w, r, err, todoResource)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTodoSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.store.TodoSummary(r.Context())
	if err != nil {
		s.writeError(w, r, err, todoResource)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleSearchTodos(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	term := strings.TrimSpace(q.Get("q"))
	if term == "" {
		s.writeError(w, r, NewValidationError(map[string]string{"q": "q is required"}), todoResource)
		return
	}

	limit := model.DefaultPerPage
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, r, NewValidationError(map[string]string{"limit": "limit must be an integer"}), todoResource)
			return
		}
		_, limit = model.ClampPage(1, n)
	}

	todos, err := s.store.SearchTodos(r.Context(), term, limit)
	if err != nil {
		s.writeError(w, r, err, todoResource)
		return
	}
	if todos == nil {
		todos = []model.Todo{}
	}
	writeJSON(w, http.StatusOK, todos)
}

// parseTodoFilters reads list parameters. Page bounds are clamped later;
// values that do not parse are validation errors. Unknown sort keys and
// orders fall back to the defaults.
func parseTodoFilters(q url.Values) (model.TodoFilters, int, error) {
	f := model.DefaultTodoFilters()
	perPage := model.DefaultPerPage
	fields := map[string]string{}

	intParam := func(name string, dst *int) {
		raw := q.Get(name)
		if raw == "" {
			return
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			fields[name] = name + " must be an integer"
			return
		}
		*dst = n
	}
	intParam("page", &f.Page)
	intParam("per_page", &perPage)

	f.Search = strings.TrimSpace(q.Get("search"))

	if raw := q.Get("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			fields["category_id"] = "category_id must be an integer"
		} else {
			f.CategoryID = &id
		}
	}
	if raw := q.Get("completed"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			fields["completed"] = "completed must be true or false"
		} else {
			f.Completed = &b
		}
	}
	if raw := q.Get("priority"); raw != "" {
		p := model.Priority(strings.ToLower(raw))
		if !p.Valid() {
			fields["priority"] = "priority must be one of: high, medium, low"
		} else {
			f.Priority = &p
		}
	}
	if key := model.SortKey(q.Get("sort_by")); key.Valid() {
		f.SortBy = key
	}
	if order := model.SortOrder(strings.ToLower(q.Get("sort_order"))); order.Valid() {
		f.SortOrder = order
	}

	if len(fields) > 0 {
		return f, perPage, NewValidationError(fields)
	}
	return f, perPage, nil
}
