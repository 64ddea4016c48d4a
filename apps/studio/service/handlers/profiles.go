package handlers

import (
	"net/http"

	"github.com/antinvestor/blueprint/apps/studio/service/profiles"
	"github.com/antinvestor/blueprint/internal/domain"
)

// ProfileHandler serves the project profile resource.
type ProfileHandler struct {
	service *profiles.ProfileService
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(service *profiles.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// CreateProfileRequest is the create payload.
type CreateProfileRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UpdateProfileRequest is the update payload.
type UpdateProfileRequest struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	ProjectName    string `json:"project_name"`
	TargetTeamSize int    `json:"target_team_size"`
}

// AddTechStackRequest attaches a catalog stack with raw parameter values.
type AddTechStackRequest struct {
	TechStackID string            `json:"tech_stack_id"`
	Values      map[string]string `json:"values"`
}

// AddPatternRequest attaches an architecture pattern.
type AddPatternRequest struct {
	PatternID string `json:"pattern_id"`
}

// AddRuleRequest attaches an engineering rule.
type AddRuleRequest struct {
	RuleID string `json:"rule_id"`
}

// ProfileTechStackView is one resolved stack reference in a response.
type ProfileTechStackView struct {
	TechStackID string                       `json:"tech_stack_id"`
	Values      map[string]domain.TypedValue `json:"values"`
}

// ProfileResponse is a profile together with its references.
type ProfileResponse struct {
	*domain.ProjectProfile
	TechStacks []ProfileTechStackView `json:"tech_stacks"`
	PatternIDs []string               `json:"architecture_pattern_ids"`
	RuleIDs    []string               `json:"engineering_rule_ids"`
	IsValid    bool                   `json:"is_valid"`
}

func profileResponse(profile *domain.ProjectProfile) ProfileResponse {
	refs := profile.TechStacks()
	stacks := make([]ProfileTechStackView, 0, len(refs))
	for _, ref := range refs {
		stacks = append(stacks, ProfileTechStackView{
			TechStackID: ref.TechStackID,
			Values:      ref.Values(),
		})
	}

	return ProfileResponse{
		ProjectProfile: profile,
		TechStacks:     stacks,
		PatternIDs:     profile.ArchitecturePatternIDs(),
		RuleIDs:        profile.EngineeringRuleIDs(),
		IsValid:        profile.IsValid(),
	}
}

// Create handles POST /api/v1/profiles.
func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProfileRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	profile, err := h.service.Create(r.Context(), req.Name, req.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusCreated, profileResponse(profile))
}

// List handles GET /api/v1/profiles.
func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusOK, list)
}

// Get handles GET /api/v1/profiles/{id}.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusOK, profileResponse(profile))
}

// Update handles PUT /api/v1/profiles/{id}.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	profile, err := h.service.Update(r.Context(), r.PathValue("id"), profiles.UpdateProfileInput{
		Name:           req.Name,
		Description:    req.Description,
		ProjectName:    req.ProjectName,
		TargetTeamSize: req.TargetTeamSize,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusOK, profileResponse(profile))
}

// Delete handles DELETE /api/v1/profiles/{id}.
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// AddTechStack handles POST /api/v1/profiles/{id}/techstacks.
func (h *ProfileHandler) AddTechStack(w http.ResponseWriter, r *http.Request) {
	var req AddTechStackRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	profile, err := h.service.AddTechStack(r.Context(), r.PathValue("id"), req.TechStackID, req.Values)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusOK, profileResponse(profile))
}

// RemoveTechStack handles DELETE /api/v1/profiles/{id}/techstacks/{stackID}.
func (h *ProfileHandler) RemoveTechStack(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.RemoveTechStack(r.Context(), r.PathValue("id"), r.PathValue("stackID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusOK, profileResponse(profile))
}

// AddPattern handles POST /api/v1/profiles/{id}/patterns.
func (h *ProfileHandler) AddPattern(w http.ResponseWriter, r *http.Request) {
	var req AddPatternRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	profile, err := h.service.AddPattern(r.Context(), r.PathValue("id"), req.PatternID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusOK, profileResponse(profile))
}

// RemovePattern handles DELETE /api/v1/profiles/{id}/patterns/{patternID}.
func (h *ProfileHandler) RemovePattern(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.RemovePattern(r.Context(), r.PathValue("id"), r.PathValue("patternID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusOK, profileResponse(profile))
}

// AddRule handles POST /api/v1/profiles/{id}/rules.
func (h *ProfileHandler) AddRule(w http.ResponseWriter, r *http.Request) {
	var req AddRuleRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	profile, err := h.service.AddRule(r.Context(), r.PathValue("id"), req.RuleID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusOK, profileResponse(profile))
}

// RemoveRule handles DELETE /api/v1/profiles/{id}/rules/{ruleID}.
func (h *ProfileHandler) RemoveRule(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.RemoveRule(r.Context(), r.PathValue("id"), r.PathValue("ruleID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusOK, profileResponse(profile))
}

// Validate handles GET /api/v1/profiles/{id}/validation.
func (h *ProfileHandler) Validate(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Validate(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeValue(w, http.StatusOK, report)
}
