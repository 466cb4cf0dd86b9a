package api

import (
	"net/http"

	"fjacquet/spendwise/internal/service"
)

// categoryRequest is shared by create and update. On update a parentId of
// "" detaches the category; an absent or null parentId leaves it unchanged.
type categoryRequest struct {
	Name     *string `json:"name"`
	Color    *string `json:"color"`
	ParentID *string `json:"parentId"`
}

// createCategory handles POST /api/categories
func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	category, err := s.svc.Categories.Create(r.Context(), UserIDFrom(r.Context()), service.CategoryInput{
		Name:     deref(req.Name),
		Color:    deref(req.Color),
		ParentID: req.ParentID,
	})
	if err != nil {
		writeServiceError(w, r, s.logger, err, "Failed to create category")
		return
	}
	WriteJSON(w, http.StatusCreated, category)
}

// listCategories handles GET /api/categories
func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Categories.List(r.Context(), UserIDFrom(r.Context()))
	if err != nil {
		writeServiceError(w, r, s.logger, err, "Failed to fetch categories")
		return
	}
	WriteJSON(w, http.StatusOK, list)
}

// getCategory handles GET /api/categories/{id}
func (s *Server) getCategory(w http.ResponseWriter, r *http.Request) {
	category, err := s.svc.Categories.Get(r.Context(), UserIDFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, s.logger, err, "Failed to fetch category")
		return
	}
	WriteJSON(w, http.StatusOK, category)
}

// updateCategory handles PUT /api/categories/{id}
func (s *Server) updateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	category, err := s.svc.Categories.Update(r.Context(), UserIDFrom(r.Context()), r.PathValue("id"), service.CategoryPatch{
		Name:     req.Name,
		Color:    req.Color,
		ParentID: req.ParentID,
	})
	if err != nil {
		writeServiceError(w, r, s.logger, err, "Failed to update category")
		return
	}
	WriteJSON(w, http.StatusOK, category)
}

// deleteCategory handles DELETE /api/categories/{id}
func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Categories.Delete(r.Context(), UserIDFrom(r.Context()), r.PathValue("id")); err != nil {
		writeServiceError(w, r, s.logger, err, "Failed to delete category")
		return
	}
	WriteJSON(w, http.StatusOK, message{Message: "Category deleted successfully"})
}
