package config

import (
	"github.com/pitabwire/frame/config"
)

// StudioConfig defines configuration for the profile studio service.
// The studio hosts the technology catalog, AI-assisted catalog population,
// and project profile assembly with artifact generation.
type StudioConfig struct {
	config.ConfigurationDefault

	// ==========================================================================
	// AI Provider Configuration
	// ==========================================================================

	// AIProvider selects the AI provider used for catalog generation.
	AIProvider string `envDefault:"anthropic" env:"AI_PROVIDER"`

	// AIModel overrides the provider's default model.
	AIModel string `env:"AI_MODEL"`

	// AnthropicAPIKey is the API key for Anthropic Claude.
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`

	// OpenAIAPIKey is the API key for OpenAI.
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`

	// GoogleAPIKey is the API key for Google AI.
	GoogleAPIKey string `env:"GOOGLE_API_KEY"`

	// AITimeoutSeconds is the timeout for AI requests.
	AITimeoutSeconds int `envDefault:"120" env:"AI_TIMEOUT_SECONDS"`

	// AIMaxRetries is the maximum retries for AI requests.
	AIMaxRetries int `envDefault:"3" env:"AI_MAX_RETRIES"`

	// AIRetryBaseDelayMS is the base delay between retries, doubled per attempt.
	AIRetryBaseDelayMS int `envDefault:"1000" env:"AI_RETRY_BASE_DELAY_MS"`

	// AIMaxOutputTokens caps the completion size per request.
	AIMaxOutputTokens int `envDefault:"8192" env:"AI_MAX_OUTPUT_TOKENS"`

	// AITemperature is the sampling temperature for generation requests.
	AITemperature float64 `envDefault:"0.2" env:"AI_TEMPERATURE"`

	// AIRequestsPerMinute throttles outbound AI requests. Zero disables the
	// client-side limiter.
	AIRequestsPerMinute int `envDefault:"30" env:"AI_REQUESTS_PER_MINUTE"`

	// AIBurstSize is the throttle burst allowance.
	AIBurstSize int `envDefault:"5" env:"AI_BURST_SIZE"`

	// ==========================================================================
	// Generation Limits
	// ==========================================================================

	// GenerationMaxCount caps the number of candidates requested per
	// generation call.
	GenerationMaxCount int `envDefault:"20" env:"GENERATION_MAX_COUNT"`

	// ==========================================================================
	// Artifact Output
	// ==========================================================================

	// ArtifactOutputDir is the directory generated artifacts are written to.
	// Empty keeps artifacts API-only.
	ArtifactOutputDir string `env:"ARTIFACT_OUTPUT_DIR"`
}
