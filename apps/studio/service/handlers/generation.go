package handlers

import (
	"net/http"
	"strconv"

	"github.com/antinvestor/blueprint/apps/studio/service/generation"
)

// GenerationHandler serves AI generation operations and the response audit
// trail.
type GenerationHandler struct {
	orchestrator *generation.Orchestrator
}

// NewGenerationHandler creates a new generation handler.
func NewGenerationHandler(orchestrator *generation.Orchestrator) *GenerationHandler {
	return &GenerationHandler{orchestrator: orchestrator}
}

// GenerateCategoriesRequest is the category generation payload.
type GenerateCategoriesRequest struct {
	Count int `json:"count"`
}

// GenerateTechStacksRequest is the tech stack generation payload.
type GenerateTechStacksRequest struct {
	CategoryID string `json:"category_id"`
	Count      int    `json:"count"`
}

// GenerateParametersRequest is the parameter generation payload.
type GenerateParametersRequest struct {
	TechStackID string `json:"tech_stack_id"`
	Count       int    `json:"count"`
}

// ReviewRequest is the response review payload.
type ReviewRequest struct {
	Approve    bool     `json:"approve"`
	ReviewedBy string   `json:"reviewed_by"`
	Notes      []string `json:"notes"`
}

// GenerateCategories handles POST /api/v1/generate/categories.
func (h *GenerationHandler) GenerateCategories(w http.ResponseWriter, r *http.Request) {
	var req GenerateCategoriesRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	outcome, err := h.orchestrator.GenerateCategories(r.Context(), req.Count)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusOK, outcome)
}

// GenerateTechStacks handles POST /api/v1/generate/techstacks.
func (h *GenerationHandler) GenerateTechStacks(w http.ResponseWriter, r *http.Request) {
	var req GenerateTechStacksRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	outcome, err := h.orchestrator.GenerateTechStacks(r.Context(), req.CategoryID, req.Count)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusOK, outcome)
}

// GenerateParameters handles POST /api/v1/generate/parameters.
func (h *GenerationHandler) GenerateParameters(w http.ResponseWriter, r *http.Request) {
	var req GenerateParametersRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	outcome, err := h.orchestrator.GenerateParameters(r.Context(), req.TechStackID, req.Count)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusOK, outcome)
}

// ListResponses handles GET /api/v1/responses.
func (h *GenerationHandler) ListResponses(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err == nil && parsed > 0 {
			limit = parsed
		}
	}

	responses, err := h.orchestrator.Responses(r.Context(), r.URL.Query().Get("status"), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusOK, responses)
}

// GetResponse handles GET /api/v1/responses/{id}.
func (h *GenerationHandler) GetResponse(w http.ResponseWriter, r *http.Request) {
	response, err := h.orchestrator.Response(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusOK, response)
}

// ReviewResponse handles POST /api/v1/responses/{id}/review.
func (h *GenerationHandler) ReviewResponse(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	response, err := h.orchestrator.ReviewResponse(
		r.Context(), r.PathValue("id"), req.Approve, req.ReviewedBy, req.Notes...,
	)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusOK, response)
}
