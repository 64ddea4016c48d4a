package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antinvestor/blueprint/apps/studio/service/catalog"
	"github.com/antinvestor/blueprint/apps/studio/service/generation"
	"github.com/antinvestor/blueprint/apps/studio/service/handlers"
	"github.com/antinvestor/blueprint/apps/studio/service/profiles"
	"github.com/antinvestor/blueprint/apps/studio/service/render"
	"github.com/antinvestor/blueprint/apps/studio/service/repository"
	"github.com/antinvestor/blueprint/internal/domain"
	"github.com/antinvestor/blueprint/internal/llm"
)

// stubProvider is a scripted AI client for exercising the API end to end.
type stubProvider struct {
	content    string
	sendErr    error
	connectErr error
}

func (s *stubProvider) Send(_ context.Context, _ *llm.ProviderRequest) (*llm.ProviderResult, error) {
	if s.sendErr != nil {
		return nil, s.sendErr
	}
	return &llm.ProviderResult{
		Content:     s.content,
		ModelUsed:   "claude-sonnet-4-20250514",
		TotalTokens: 128,
	}, nil
}

func (s *stubProvider) ValidateConnection(_ context.Context) error { return s.connectErr }
func (s *stubProvider) ProviderName() string                       { return "anthropic" }
func (s *stubProvider) ModelName() string                          { return "claude-sonnet-4-20250514" }

func newTestAPI(t *testing.T) (*http.ServeMux, *stubProvider) {
	t.Helper()

	categoryRepo := repository.NewMemoryCategoryRepository()
	stackRepo := repository.NewMemoryTechStackRepository()
	patternRepo := repository.NewMemoryPatternRepository()
	ruleRepo := repository.NewMemoryRuleRepository()
	profileRepo := repository.NewMemoryProfileRepository()
	responseRepo := repository.NewMemoryAIResponseRepository()

	provider := &stubProvider{}
	orchestrator, err := generation.NewOrchestrator(provider, categoryRepo, stackRepo, responseRepo, 20)
	require.NoError(t, err)
	renderer, err := render.NewRenderer()
	require.NoError(t, err)

	mux := handlers.NewRouter(handlers.Services{
		Categories:   catalog.NewCategoryService(categoryRepo, stackRepo),
		TechStacks:   catalog.NewTechStackService(categoryRepo, stackRepo, profileRepo),
		Patterns:     catalog.NewPatternService(patternRepo, profileRepo),
		Rules:        catalog.NewRuleService(ruleRepo, profileRepo),
		Profiles:     profiles.NewProfileService(profileRepo, categoryRepo, stackRepo, patternRepo, ruleRepo),
		Orchestrator: orchestrator,
		Provider:     provider,
		Renderer:     renderer,
	})
	return mux, provider
}

// apiEnvelope mirrors the response envelope with the value left raw so each
// test decodes its own shape.
type apiEnvelope struct {
	Success bool            `json:"success"`
	Value   json.RawMessage `json:"value"`
	Errors  []string        `json:"errors"`
}

func doRequest(t *testing.T, mux *http.ServeMux, method, path string, payload any) (int, apiEnvelope) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	var env apiEnvelope
	if w.Body.Len() > 0 && w.Code != http.StatusMethodNotAllowed {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env),
			"%s %s returned a non-envelope body: %s", method, path, w.Body.String())
	}
	return w.Code, env
}

func decodeValue(t *testing.T, env apiEnvelope, dst any) {
	t.Helper()
	require.NotEmpty(t, env.Value)
	require.NoError(t, json.Unmarshal(env.Value, dst))
}

func TestAPI_CategoryLifecycle(t *testing.T) {
	mux, _ := newTestAPI(t)

	code, env := doRequest(t, mux, http.MethodPost, "/api/v1/categories", map[string]any{
		"name":          "Backend Framework",
		"description":   "Server-side frameworks",
		"display_order": 1,
	})
	require.Equal(t, http.StatusCreated, code)
	require.True(t, env.Success)

	var created domain.Category
	decodeValue(t, env, &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Backend Framework", created.Name)
	assert.True(t, created.IsActive)

	code, env = doRequest(t, mux, http.MethodPost, "/api/v1/categories", map[string]any{
		"name": "Backend Framework",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.False(t, env.Success)
	require.NotEmpty(t, env.Errors)
	assert.Contains(t, env.Errors[0], "Backend Framework")

	code, env = doRequest(t, mux, http.MethodGet, "/api/v1/categories/"+created.ID, nil)
	require.Equal(t, http.StatusOK, code)
	var fetched domain.Category
	decodeValue(t, env, &fetched)
	assert.Equal(t, created.ID, fetched.ID)

	code, _ = doRequest(t, mux, http.MethodGet, "/api/v1/categories/missing", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAPI_InvalidJSONBody(t *testing.T) {
	mux, _ := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/categories", bytes.NewReader([]byte("not json")))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var env apiEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
	require.NotEmpty(t, env.Errors)
	assert.Contains(t, env.Errors[0], "invalid JSON body")
}

func TestAPI_MethodNotAllowed(t *testing.T) {
	mux, _ := newTestAPI(t)

	code, _ := doRequest(t, mux, http.MethodDelete, "/api/v1/categories", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, code)
}

func TestAPI_ProfileAssemblyFlow(t *testing.T) {
	mux, _ := newTestAPI(t)

	// Catalog setup through the API itself.
	code, env := doRequest(t, mux, http.MethodPost, "/api/v1/categories", map[string]any{
		"name": "Database",
	})
	require.Equal(t, http.StatusCreated, code)
	var category domain.Category
	decodeValue(t, env, &category)

	code, env = doRequest(t, mux, http.MethodPost, "/api/v1/techstacks", map[string]any{
		"category_id": category.ID,
		"name":        "PostgreSQL",
		"description": "Relational database",
	})
	require.Equal(t, http.StatusCreated, code)
	var stack domain.TechStack
	decodeValue(t, env, &stack)

	code, _ = doRequest(t, mux, http.MethodPost, "/api/v1/techstacks/"+stack.ID+"/parameters", map[string]any{
		"name":           "ssl_mode",
		"type":           "choice",
		"is_required":    true,
		"allowed_values": []string{"disable", "require"},
	})
	require.Equal(t, http.StatusCreated, code)

	code, env = doRequest(t, mux, http.MethodPost, "/api/v1/patterns", map[string]any{
		"name":             "Hexagonal Architecture",
		"complexity_level": 3,
	})
	require.Equal(t, http.StatusCreated, code)
	var pattern domain.ArchitecturePattern
	decodeValue(t, env, &pattern)

	code, env = doRequest(t, mux, http.MethodPost, "/api/v1/rules", map[string]any{
		"name":        "mandatory-code-review",
		"severity":    "error",
		"scope":       "global",
		"is_enforced": true,
	})
	require.Equal(t, http.StatusCreated, code)
	var rule domain.EngineeringRule
	decodeValue(t, env, &rule)

	// Assemble the profile.
	code, env = doRequest(t, mux, http.MethodPost, "/api/v1/profiles", map[string]any{
		"name": "Checkout Service",
	})
	require.Equal(t, http.StatusCreated, code)
	var profile struct {
		ID      string `json:"id"`
		IsValid bool   `json:"is_valid"`
	}
	decodeValue(t, env, &profile)
	assert.False(t, profile.IsValid)

	// Artifacts are refused until the profile passes validation.
	code, _ = doRequest(t, mux, http.MethodPost, "/api/v1/profiles/"+profile.ID+"/artifacts", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	// Attaching without the required parameter fails and changes nothing.
	code, env = doRequest(t, mux, http.MethodPost, "/api/v1/profiles/"+profile.ID+"/techstacks", map[string]any{
		"tech_stack_id": stack.ID,
	})
	assert.Equal(t, http.StatusBadRequest, code)
	require.NotEmpty(t, env.Errors)
	assert.Contains(t, env.Errors[0], "ssl_mode")

	code, _ = doRequest(t, mux, http.MethodPost, "/api/v1/profiles/"+profile.ID+"/techstacks", map[string]any{
		"tech_stack_id": stack.ID,
		"values":        map[string]string{"ssl_mode": "require"},
	})
	require.Equal(t, http.StatusOK, code)

	code, _ = doRequest(t, mux, http.MethodPost, "/api/v1/profiles/"+profile.ID+"/patterns", map[string]any{
		"pattern_id": pattern.ID,
	})
	require.Equal(t, http.StatusOK, code)

	code, _ = doRequest(t, mux, http.MethodPost, "/api/v1/profiles/"+profile.ID+"/rules", map[string]any{
		"rule_id": rule.ID,
	})
	require.Equal(t, http.StatusOK, code)

	code, env = doRequest(t, mux, http.MethodGet, "/api/v1/profiles/"+profile.ID+"/validation", nil)
	require.Equal(t, http.StatusOK, code)
	var report profiles.ValidationReport
	decodeValue(t, env, &report)
	assert.False(t, report.IsValid)
	assert.Contains(t, report.Missing, "a project name")

	code, _ = doRequest(t, mux, http.MethodPut, "/api/v1/profiles/"+profile.ID, map[string]any{
		"name":         "Checkout Service",
		"project_name": "checkout-svc",
	})
	require.Equal(t, http.StatusOK, code)

	code, env = doRequest(t, mux, http.MethodGet, "/api/v1/profiles/"+profile.ID+"/validation", nil)
	require.Equal(t, http.StatusOK, code)
	decodeValue(t, env, &report)
	assert.True(t, report.IsValid)

	code, env = doRequest(t, mux, http.MethodPost, "/api/v1/profiles/"+profile.ID+"/artifacts", nil)
	require.Equal(t, http.StatusOK, code)
	var generated handlers.ArtifactsResponse
	decodeValue(t, env, &generated)
	require.Len(t, generated.Artifacts, 2)
	assert.Equal(t, render.InstructionsFilename, generated.Artifacts[0].Filename)
	assert.Equal(t, render.PolicyFilename, generated.Artifacts[1].Filename)
	assert.Contains(t, generated.Artifacts[0].Content, "checkout-svc")
	assert.Contains(t, generated.Artifacts[0].Content, "PostgreSQL")
	assert.Contains(t, generated.Artifacts[1].Content, "mandatory-code-review")
	assert.Empty(t, generated.OutputDir, "no artifact directory is configured")
}

func TestAPI_ArtifactsUnknownProfile(t *testing.T) {
	mux, _ := newTestAPI(t)

	code, _ := doRequest(t, mux, http.MethodPost, "/api/v1/profiles/missing/artifacts", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAPI_GenerateCategories(t *testing.T) {
	mux, provider := newTestAPI(t)
	provider.content = `[
		{"name": "Backend Framework", "description": "Server-side frameworks", "display_order": 1},
		{"name": "Message Broker", "description": "Async messaging", "display_order": 2}
	]`

	code, env := doRequest(t, mux, http.MethodPost, "/api/v1/generate/categories", map[string]any{
		"count": 2,
	})
	require.Equal(t, http.StatusOK, code)
	require.True(t, env.Success)

	var outcome generation.CategoryOutcome
	decodeValue(t, env, &outcome)
	require.Len(t, outcome.Categories, 2)
	assert.Equal(t, 0, outcome.DuplicateCount)
	assert.NotEmpty(t, outcome.ResponseID)

	// The run leaves a validated audit record.
	code, env = doRequest(t, mux, http.MethodGet, "/api/v1/responses?status=validated", nil)
	require.Equal(t, http.StatusOK, code)
	var audits []*domain.AIResponse
	decodeValue(t, env, &audits)
	require.Len(t, audits, 1)
	assert.Equal(t, outcome.ResponseID, audits[0].ID)
	assert.Equal(t, domain.ValidatedBySystem, audits[0].ValidatedBy)
}

func TestAPI_GenerateCategories_MalformedResponse(t *testing.T) {
	mux, provider := newTestAPI(t)
	provider.content = "certainly, here are some ideas with no JSON at all"

	code, env := doRequest(t, mux, http.MethodPost, "/api/v1/generate/categories", map[string]any{
		"count": 3,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.False(t, env.Success)

	// The defective exchange is still on the audit trail.
	code, env = doRequest(t, mux, http.MethodGet, "/api/v1/responses?status=rejected", nil)
	require.Equal(t, http.StatusOK, code)
	var audits []*domain.AIResponse
	decodeValue(t, env, &audits)
	require.Len(t, audits, 1)
	assert.NotEmpty(t, audits[0].ValidationErrors)
}

func TestAPI_GenerateCategories_ProviderFailure(t *testing.T) {
	mux, provider := newTestAPI(t)
	provider.sendErr = assert.AnError

	code, env := doRequest(t, mux, http.MethodPost, "/api/v1/generate/categories", map[string]any{
		"count": 3,
	})
	assert.Equal(t, http.StatusBadGateway, code)
	assert.False(t, env.Success)
}

func TestAPI_ReviewResponse_TerminalConflict(t *testing.T) {
	mux, provider := newTestAPI(t)
	provider.content = `[{"name": "Backend Framework", "description": "", "display_order": 1}]`

	code, env := doRequest(t, mux, http.MethodPost, "/api/v1/generate/categories", map[string]any{
		"count": 1,
	})
	require.Equal(t, http.StatusOK, code)
	var outcome generation.CategoryOutcome
	decodeValue(t, env, &outcome)

	code, _ = doRequest(t, mux, http.MethodPost, "/api/v1/responses/"+outcome.ResponseID+"/review", map[string]any{
		"approve":     false,
		"reviewed_by": "alice@example.com",
	})
	assert.Equal(t, http.StatusConflict, code, "validated records are terminal")
}

func TestAPI_ProviderStatus(t *testing.T) {
	mux, provider := newTestAPI(t)

	code, env := doRequest(t, mux, http.MethodGet, "/api/v1/provider/status", nil)
	require.Equal(t, http.StatusOK, code)

	var status handlers.ProviderStatus
	decodeValue(t, env, &status)
	assert.Equal(t, "anthropic", status.Provider)
	assert.Equal(t, "claude-sonnet-4-20250514", status.Model)
	assert.True(t, status.Connected)

	provider.connectErr = llm.ErrAuthFailed
	code, env = doRequest(t, mux, http.MethodGet, "/api/v1/provider/status", nil)
	require.Equal(t, http.StatusOK, code, "an unreachable provider is still a status report")
	decodeValue(t, env, &status)
	assert.False(t, status.Connected)
	assert.NotEmpty(t, status.Error)
}
