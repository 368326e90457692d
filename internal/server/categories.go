package server

import (
	"net/http"

	"github.com/frezix0/TodoReact/internal/model"
)

const categoryResource = "Category"

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.store.ListCategories(r.Context())
	if err != nil {
		s.writeError(w, r, err, categoryResource)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(categories))
}

func (s *Server) handleListCategoriesWithCounts(w http.ResponseWriter, r *http.Request) {
	categories, err := s.store.ListCategoriesWithCounts(r.Context())
	if err != nil {
		s.writeError(w, r, err, categoryResource)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(categories))
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "categoryID")
	if err != nil {
		s.writeError(w, r, err, categoryResource)
		return
	}

	c, err := s.store.GetCategory(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, categoryResource)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var in model.CategoryCreate
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err, categoryResource)
		return
	}
	in.Normalize()
	if fields := model.Validate(in); fields != nil {
		s.writeError(w, r, NewValidationError(fields), categoryResource)
		return
	}

	c, err := s.store.CreateCategory(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err, categoryResource)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "categoryID")
	if err != nil {
		s.writeError(w, r, err, categoryResource)
		return
	}

	var in model.CategoryUpdate
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err, categoryResource)
		return
	}
	in.Normalize()
	if fields := model.Validate(in); fields != nil {
		s.writeError(w, r, NewValidationError(fields), categoryResource)
		return
	}

	c, err := s.store.UpdateCategory(r.Context(), id, in)
	if err != nil {
		s.writeError(w, r, err, categoryResource)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "categoryID")
	if err != nil {
		s.writeError(w, r, err, categoryResource)
		return
	}

	if err := s.store.DeleteCategory(r.Context(), id); err != nil {
		s.writeError(w, r, err, categoryResource)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func nonNil(categories []model.Category) []model.Category {
	if categories == nil {
		return []model.Category{}
	}
	return categories
}
