package handlers

import (
	"net/http"

	"github.com/antinvestor/blueprint/internal/llm"
)

// ProviderHandler reports the configured AI provider's identity and
// reachability.
type ProviderHandler struct {
	client llm.Client
}

// NewProviderHandler creates a new provider handler.
func NewProviderHandler(client llm.Client) *ProviderHandler {
	return &ProviderHandler{client: client}
}

// ProviderStatus is the provider status payload.
type ProviderStatus struct {
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	Connected bool   `json:"connected"`
	Error     string `json:"error,omitempty"`
}

// Status handles GET /api/v1/provider/status. The connection probe failing
// is still a successful status report.
func (h *ProviderHandler) Status(w http.ResponseWriter, r *http.Request) {
	status := ProviderStatus{
		Provider: h.client.ProviderName(),
		Model:    h.client.ModelName(),
	}

	if err := h.client.ValidateConnection(r.Context()); err != nil {
		status.Error = err.Error()
	} else {
		status.Connected = true
	}
	writeValue(w, http.StatusOK, status)
}
