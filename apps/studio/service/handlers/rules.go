package handlers

import (
	"net/http"

	"github.com/antinvestor/blueprint/apps/studio/service/catalog"
	"github.com/antinvestor/blueprint/internal/domain"
)

// RuleHandler serves the engineering rule resource.
type RuleHandler struct {
	service *catalog.RuleService
}

// NewRuleHandler creates a new rule handler.
func NewRuleHandler(service *catalog.RuleService) *RuleHandler {
	return &RuleHandler{service: service}
}

// RuleRequest is the create/update payload.
type RuleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Rationale   string `json:"rationale"`
	Severity    string `json:"severity"`
	Scope       string `json:"scope"`
	IsEnforced  bool   `json:"is_enforced"`
}

func (req RuleRequest) input() (catalog.RuleInput, error) {
	severity, err := domain.ParseRuleSeverity(req.Severity)
	if err != nil {
		return catalog.RuleInput{}, err
	}
	scope, err := domain.ParseRuleScope(req.Scope)
	if err != nil {
		return catalog.RuleInput{}, err
	}

	return catalog.RuleInput{
		Name:        req.Name,
		Description: req.Description,
		Rationale:   req.Rationale,
		Severity:    severity,
		Scope:       scope,
		IsEnforced:  req.IsEnforced,
	}, nil
}

// Create handles POST /api/v1/rules.
func (h *RuleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req RuleRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	input, err := req.input()
	if err != nil {
		writeError(w, r, err)
		return
	}

	rule, err := h.service.Create(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusCreated, rule)
}

// List handles GET /api/v1/rules.
func (h *RuleHandler) List(w http.ResponseWriter, r *http.Request) {
	rules, err := h.service.List(r.Context(), includeInactive(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusOK, rules)
}

// Get handles GET /api/v1/rules/{id}.
func (h *RuleHandler) Get(w http.ResponseWriter, r *http.Request) {
	rule, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusOK, rule)
}

// Update handles PUT /api/v1/rules/{id}.
func (h *RuleHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req RuleRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	input, err := req.input()
	if err != nil {
		writeError(w, r, err)
		return
	}

	rule, err := h.service.Update(r.Context(), r.PathValue("id"), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusOK, rule)
}

// Activate handles POST /api/v1/rules/{id}/activate.
func (h *RuleHandler) Activate(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Activate(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusOK, map[string]string{"status": "active"})
}

// Deactivate handles POST /api/v1/rules/{id}/deactivate.
func (h *RuleHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Deactivate(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusOK, map[string]string{"status": "inactive"})
}

// Delete handles DELETE /api/v1/rules/{id}.
func (h *RuleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Conflicts handles GET /api/v1/rules/{id}/conflicts.
func (h *RuleHandler) Conflicts(w http.ResponseWriter, r *http.Request) {
	conflicts, err := h.service.Conflicts(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusOK, conflicts)
}
