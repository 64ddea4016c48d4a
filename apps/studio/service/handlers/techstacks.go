package handlers

import (
	"net/http"

	"github.com/antinvestor/blueprint/apps/studio/service/catalog"
	"github.com/antinvestor/blueprint/internal/domain"
)

// TechStackHandler serves the tech stack resource, including nested
// parameter definitions.
type TechStackHandler struct {
	service *catalog.TechStackService
}

// NewTechStackHandler creates a new tech stack handler.
func NewTechStackHandler(service *catalog.TechStackService) *TechStackHandler {
	return &TechStackHandler{service: service}
}

// CreateTechStackRequest is the create payload.
type CreateTechStackRequest struct {
	CategoryID  string `json:"category_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UpdateTechStackRequest is the update payload.
type UpdateTechStackRequest struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	DefaultVersion   string `json:"default_version"`
	DocumentationURL string `json:"documentation_url"`
}

// ParameterRequest is the parameter create/update payload.
type ParameterRequest struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Type          string   `json:"type"`
	IsRequired    bool     `json:"is_required"`
	DefaultValue  string   `json:"default_value"`
	AllowedValues []string `json:"allowed_values"`
	DisplayOrder  int      `json:"display_order"`
}

// TechStackResponse is a stack together with its parameter definitions.
type TechStackResponse struct {
	*domain.TechStack
	Parameters []*domain.ParameterDefinition `json:"parameters"`
}

func stackResponse(stack *domain.TechStack) TechStackResponse {
	return TechStackResponse{TechStack: stack, Parameters: stack.Parameters()}
}

// Create handles POST /api/v1/techstacks.
func (h *TechStackHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTechStackRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	stack, err := h.service.Create(r.Context(), req.CategoryID, req.Name, req.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusCreated, stack)
}

// List handles GET /api/v1/techstacks.
func (h *TechStackHandler) List(w http.ResponseWriter, r *http.Request) {
	stacks, err := h.service.List(r.Context(), includeInactive(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusOK, stacks)
}

// ListByCategory handles GET /api/v1/categories/{id}/techstacks.
func (h *TechStackHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	stacks, err := h.service.GetByCategory(r.Context(), r.PathValue("id"), includeInactive(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusOK, stacks)
}

// Get handles GET /api/v1/techstacks/{id}; parameters are always included.
func (h *TechStackHandler) Get(w http.ResponseWriter, r *http.Request) {
	stack, err := h.service.GetWithParameters(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusOK, stackResponse(stack))
}

// Update handles PUT /api/v1/techstacks/{id}.
func (h *TechStackHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateTechStackRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	stack, err := h.service.Update(r.Context(), r.PathValue("id"), catalog.UpdateTechStackInput{
		Name:             req.Name,
		Description:      req.Description,
		DefaultVersion:   req.DefaultVersion,
		DocumentationURL: req.DocumentationURL,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusOK, stack)
}

// Activate handles POST /api/v1/techstacks/{id}/activate.
func (h *TechStackHandler) Activate(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Activate(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusOK, map[string]string{"status": "active"})
}

// Deactivate handles POST /api/v1/techstacks/{id}/deactivate.
func (h *TechStackHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Deactivate(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusOK, map[string]string{"status": "inactive"})
}

// Delete handles DELETE /api/v1/techstacks/{id}.
func (h *TechStackHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// AddParameter handles POST /api/v1/techstacks/{id}/parameters.
func (h *TechStackHandler) AddParameter(w http.ResponseWriter, r *http.Request) {
	var req ParameterRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	stack, err := h.service.AddParameter(r.Context(), r.PathValue("id"), parameterInput(req))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusCreated, stackResponse(stack))
}

// UpdateParameter handles PUT /api/v1/techstacks/{id}/parameters/{name}.
func (h *TechStackHandler) UpdateParameter(w http.ResponseWriter, r *http.Request) {
	var req ParameterRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	stack, err := h.service.UpdateParameter(
		r.Context(), r.PathValue("id"), r.PathValue("name"), parameterInput(req),
	)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusOK, stackResponse(stack))
}

// RemoveParameter handles DELETE /api/v1/techstacks/{id}/parameters/{name}.
func (h *TechStackHandler) RemoveParameter(w http.ResponseWriter, r *http.Request) {
	stack, err := h.service.RemoveParameter(r.Context(), r.PathValue("id"), r.PathValue("name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusOK, stackResponse(stack))
}

func parameterInput(req ParameterRequest) catalog.ParameterInput {
	return catalog.ParameterInput{
		Name:          req.Name,
		Description:   req.Description,
		Type:          domain.ValueType(req.Type),
		IsRequired:    req.IsRequired,
		DefaultValue:  req.DefaultValue,
		AllowedValues: req.AllowedValues,
		DisplayOrder:  req.DisplayOrder,
	}
}
