package http

import (
	"net/http"
	"strings"

	"github.com/Zigorr/Wallet-Fullstack/internal/auth"
	"github.com/Zigorr/Wallet-Fullstack/internal/core"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.storage.ListCategories(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	category := core.Category{
		Name:    strings.TrimSpace(req.Name),
		Type:    core.CategoryType(strings.ToUpper(req.Type)),
		Color:   req.Color,
		OwnerID: auth.UserID(r.Context()),
	}
	if err := category.Validate(); err != nil {
		writeError(w, err)
		return
	}

	created, err := s.storage.CreateCategory(r.Context(), category)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryResponse(created))
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	category, err := s.storage.GetCategory(r.Context(), auth.UserID(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(category))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	category := core.Category{
		ID:      id,
		Name:    strings.TrimSpace(req.Name),
		Type:    core.CategoryType(strings.ToUpper(req.Type)),
		Color:   req.Color,
		OwnerID: auth.UserID(r.Context()),
	}
	if err := category.Validate(); err != nil {
		writeError(w, err)
		return
	}

	if err := s.storage.UpdateCategory(r.Context(), category); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(category))
}

// handleDeleteCategory removes a category; its transactions stay and drop to
// uncategorized via the schema's SET NULL.
func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.storage.DeleteCategory(r.Context(), auth.UserID(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
