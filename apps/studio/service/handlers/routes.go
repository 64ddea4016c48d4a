package handlers

import (
	"net/http"

	"github.com/antinvestor/blueprint/apps/studio/service/catalog"
	"github.com/antinvestor/blueprint/apps/studio/service/generation"
	"github.com/antinvestor/blueprint/apps/studio/service/profiles"
	"github.com/antinvestor/blueprint/apps/studio/service/render"
	"github.com/antinvestor/blueprint/internal/llm"
)

// Services carries everything the HTTP layer needs.
type Services struct {
	Categories   *catalog.CategoryService
	TechStacks   *catalog.TechStackService
	Patterns     *catalog.PatternService
	Rules        *catalog.RuleService
	Profiles     *profiles.ProfileService
	Orchestrator *generation.Orchestrator
	Provider     llm.Client
	Renderer     *render.Renderer
	ArtifactDir  string
}

// NewRouter builds the API mux. Routes use method patterns, so a wrong
// method on a known path yields 405 from the mux itself.
func NewRouter(s Services) *http.ServeMux {
	categories := NewCategoryHandler(s.Categories)
	stacks := NewTechStackHandler(s.TechStacks)
	patterns := NewPatternHandler(s.Patterns)
	rules := NewRuleHandler(s.Rules)
	profileHandler := NewProfileHandler(s.Profiles)
	gen := NewGenerationHandler(s.Orchestrator)
	provider := NewProviderHandler(s.Provider)
	artifacts := NewArtifactHandler(s.Profiles, s.Renderer, s.ArtifactDir)

	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/categories", categories.Create)
	mux.HandleFunc("GET /api/v1/categories", categories.List)
	mux.HandleFunc("GET /api/v1/categories/{id}", categories.Get)
	mux.HandleFunc("PUT /api/v1/categories/{id}", categories.Update)
	mux.HandleFunc("DELETE /api/v1/categories/{id}", categories.Delete)
	mux.HandleFunc("POST /api/v1/categories/{id}/activate", categories.Activate)
	mux.HandleFunc("POST /api/v1/categories/{id}/deactivate", categories.Deactivate)
	mux.HandleFunc("GET /api/v1/categories/{id}/techstacks", stacks.ListByCategory)

	mux.HandleFunc("POST /api/v1/techstacks", stacks.Create)
	mux.HandleFunc("GET /api/v1/techstacks", stacks.List)
	mux.HandleFunc("GET /api/v1/techstacks/{id}", stacks.Get)
	mux.HandleFunc("PUT /api/v1/techstacks/{id}", stacks.Update)
	mux.HandleFunc("DELETE /api/v1/techstacks/{id}", stacks.Delete)
	mux.HandleFunc("POST /api/v1/techstacks/{id}/activate", stacks.Activate)
	mux.HandleFunc("POST /api/v1/techstacks/{id}/deactivate", stacks.Deactivate)
	mux.HandleFunc("POST /api/v1/techstacks/{id}/parameters", stacks.AddParameter)
	mux.HandleFunc("PUT /api/v1/techstacks/{id}/parameters/{name}", stacks.UpdateParameter)
	mux.HandleFunc("DELETE /api/v1/techstacks/{id}/parameters/{name}", stacks.RemoveParameter)

	mux.HandleFunc("POST /api/v1/patterns", patterns.Create)
	mux.HandleFunc("GET /api/v1/patterns", patterns.List)
	mux.HandleFunc("GET /api/v1/patterns/{id}", patterns.Get)
	mux.HandleFunc("PUT /api/v1/patterns/{id}", patterns.Update)
	mux.HandleFunc("DELETE /api/v1/patterns/{id}", patterns.Delete)
	mux.HandleFunc("POST /api/v1/patterns/{id}/activate", patterns.Activate)
	mux.HandleFunc("POST /api/v1/patterns/{id}/deactivate", patterns.Deactivate)

	mux.HandleFunc("POST /api/v1/rules", rules.Create)
	mux.HandleFunc("GET /api/v1/rules", rules.List)
	mux.HandleFunc("GET /api/v1/rules/{id}", rules.Get)
	mux.HandleFunc("PUT /api/v1/rules/{id}", rules.Update)
	mux.HandleFunc("DELETE /api/v1/rules/{id}", rules.Delete)
	mux.HandleFunc("POST /api/v1/rules/{id}/activate", rules.Activate)
	mux.HandleFunc("POST /api/v1/rules/{id}/deactivate", rules.Deactivate)
	mux.HandleFunc("GET /api/v1/rules/{id}/conflicts", rules.Conflicts)

	mux.HandleFunc("POST /api/v1/profiles", profileHandler.Create)
	mux.HandleFunc("GET /api/v1/profiles", profileHandler.List)
	mux.HandleFunc("GET /api/v1/profiles/{id}", profileHandler.Get)
	mux.HandleFunc("PUT /api/v1/profiles/{id}", profileHandler.Update)
	mux.HandleFunc("DELETE /api/v1/profiles/{id}", profileHandler.Delete)
	mux.HandleFunc("POST /api/v1/profiles/{id}/techstacks", profileHandler.AddTechStack)
	mux.HandleFunc("DELETE /api/v1/profiles/{id}/techstacks/{stackID}", profileHandler.RemoveTechStack)
	mux.HandleFunc("POST /api/v1/profiles/{id}/patterns", profileHandler.AddPattern)
	mux.HandleFunc("DELETE /api/v1/profiles/{id}/patterns/{patternID}", profileHandler.RemovePattern)
	mux.HandleFunc("POST /api/v1/profiles/{id}/rules", profileHandler.AddRule)
	mux.HandleFunc("DELETE /api/v1/profiles/{id}/rules/{ruleID}", profileHandler.RemoveRule)
	mux.HandleFunc("GET /api/v1/profiles/{id}/validation", profileHandler.Validate)
	mux.HandleFunc("POST /api/v1/profiles/{id}/artifacts", artifacts.Generate)

	mux.HandleFunc("POST /api/v1/generate/categories", gen.GenerateCategories)
	mux.HandleFunc("POST /api/v1/generate/techstacks", gen.GenerateTechStacks)
	mux.HandleFunc("POST /api/v1/generate/parameters", gen.GenerateParameters)
	mux.HandleFunc("GET /api/v1/responses", gen.ListResponses)
	mux.HandleFunc("GET /api/v1/responses/{id}", gen.GetResponse)
	mux.HandleFunc("POST /api/v1/responses/{id}/review", gen.ReviewResponse)

	mux.HandleFunc("GET /api/v1/provider/status", provider.Status)

	return mux
}
