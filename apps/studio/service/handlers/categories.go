package handlers

import (
	"net/http"

	"github.com/antinvestor/blueprint/apps/studio/service/catalog"
)

// CategoryHandler serves the category resource.
type CategoryHandler struct {
	service *catalog.CategoryService
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(service *catalog.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// CategoryRequest is the create/update payload.
type CategoryRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	DisplayOrder int    `json:"display_order"`
}

// Create handles POST /api/v1/categories.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	category, err := h.service.Create(r.Context(), req.Name, req.Description, req.DisplayOrder)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusCreated, category)
}

// List handles GET /api/v1/categories.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.List(r.Context(), includeInactive(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusOK, categories)
}

// Get handles GET /api/v1/categories/{id}.
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	category, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusOK, category)
}

// Update handles PUT /api/v1/categories/{id}.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	category, err := h.service.Update(r.Context(), r.PathValue("id"), req.Name, req.Description, req.DisplayOrder)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusOK, category)
}

// Activate handles POST /api/v1/categories/{id}/activate.
func (h *CategoryHandler) Activate(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Activate(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusOK, map[string]string{"status": "active"})
}

// Deactivate handles POST /api/v1/categories/{id}/deactivate.
func (h *CategoryHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Deactivate(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusOK, map[string]string{"status": "inactive"})
}

// Delete handles DELETE /api/v1/categories/{id}.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusOK, map[string]string{"status": "deleted"})
}
