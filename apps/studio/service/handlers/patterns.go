package handlers

import (
	"net/http"

	"github.com/antinvestor/blueprint/apps/studio/service/catalog"
)

// PatternHandler serves the architecture pattern resource.
type PatternHandler struct {
	service *catalog.PatternService
}

// NewPatternHandler creates a new pattern handler.
func NewPatternHandler(service *catalog.PatternService) *PatternHandler {
	return &PatternHandler{service: service}
}

// PatternRequest is the create/update payload.
type PatternRequest struct {
	Name                  string `json:"name"`
	Description           string `json:"description"`
	Guidelines            string `json:"guidelines"`
	ComplexityLevel       int    `json:"complexity_level"`
	SuitableForSmallTeams bool   `json:"suitable_for_small_teams"`
	SuitableForLargeScale bool   `json:"suitable_for_large_scale"`
}

func (req PatternRequest) input() catalog.PatternInput {
	return catalog.PatternInput{
		Name:                  req.Name,
		Description:           req.Description,
		Guidelines:            req.Guidelines,
		ComplexityLevel:       req.ComplexityLevel,
		SuitableForSmallTeams: req.SuitableForSmallTeams,
		SuitableForLargeScale: req.SuitableForLargeScale,
	}
}

// Create handles POST /api/v1/patterns.
func (h *PatternHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req PatternRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	pattern, err := h.service.Create(r.Context(), req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusCreated, pattern)
}

// List handles GET /api/v1/patterns.
func (h *PatternHandler) List(w http.ResponseWriter, r *http.Request) {
	patterns, err := h.service.List(r.Context(), includeInactive(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusOK, patterns)
}

// Get handles GET /api/v1/patterns/{id}.
func (h *PatternHandler) Get(w http.ResponseWriter, r *http.Request) {
	pattern, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusOK, pattern)
}

// Update handles PUT /api/v1/patterns/{id}.
func (h *PatternHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req PatternRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	pattern, err := h.service.Update(r.Context(), r.PathValue("id"), req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusOK, pattern)
}

// Activate handles POST /api/v1/patterns/{id}/activate.
func (h *PatternHandler) Activate(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Activate(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusOK, map[string]string{"status": "active"})
}

// Deactivate handles POST /api/v1/patterns/{id}/deactivate.
func (h *PatternHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Deactivate(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusOK, map[string]string{"status": "inactive"})
}

// Delete handles DELETE /api/v1/patterns/{id}.
func (h *PatternHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusOK, map[string]string{"status": "deleted"})
}
