package handlers

import (
	"net/http"

	"github.com/pitabwire/util"

	"github.com/antinvestor/blueprint/apps/studio/service/profiles"
	"github.com/antinvestor/blueprint/apps/studio/service/render"
)

// ArtifactHandler generates profile artifacts.
type ArtifactHandler struct {
	profiles  *profiles.ProfileService
	renderer  *render.Renderer
	outputDir string
}

// NewArtifactHandler creates a new artifact handler. A non-empty outputDir
// additionally writes generated files to disk.
func NewArtifactHandler(
	profileService *profiles.ProfileService,
	renderer *render.Renderer,
	outputDir string,
) *ArtifactHandler {
	return &ArtifactHandler{
		profiles:  profileService,
		renderer:  renderer,
		outputDir: outputDir,
	}
}

// ArtifactsResponse is the artifact generation payload.
type ArtifactsResponse struct {
	Artifacts []render.Artifact `json:"artifacts"`
	OutputDir string            `json:"output_dir,omitempty"`
}

// Generate handles POST /api/v1/profiles/{id}/artifacts. The profile must
// pass the validity gate before anything renders.
func (h *ArtifactHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	input, err := h.profiles.BuildRenderInput(ctx, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	artifacts, err := h.renderer.Render(input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response := ArtifactsResponse{Artifacts: artifacts}
	if h.outputDir != "" {
		if err = render.WriteArtifacts(h.outputDir, artifacts); err != nil {
			writeError(w, r, err)
			return
		}
		response.OutputDir = h.outputDir
	}

	util.Log(ctx).Info("artifacts generated",
		"profile_id", r.PathValue("id"),
		"artifacts", len(artifacts),
		"output_dir", h.outputDir)
	writeValue(w, http.StatusOK, response)
}
