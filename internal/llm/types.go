// Package llm provides AI provider clients for catalog content generation.
package llm

// Provider identifies an AI provider.
type Provider string

// AI provider constants.
const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderGoogle    Provider = "google"
)

// Model identifies an AI model.
type Model string

// Anthropic model constants.
const (
	ModelClaudeSonnet Model = "claude-sonnet-4-20250514"
	ModelClaudeOpus   Model = "claude-opus-4-20250514"
	ModelClaudeHaiku  Model = "claude-3-5-haiku-20241022"
)

// OpenAI model constants.
const (
	ModelGPT4o     Model = "gpt-4o"
	ModelGPT4oMini Model = "gpt-4o-mini"
)

// Google model constants.
const (
	ModelGeminiFlash Model = "gemini-2.0-flash"
)

// defaultModelForProvider returns the model used when none is configured.
func defaultModelForProvider(p Provider) Model {
	switch p {
	case ProviderOpenAI:
		return ModelGPT4o
	case ProviderGoogle:
		return ModelGeminiFlash
	case ProviderAnthropic:
		return ModelClaudeSonnet
	}
	return ModelClaudeSonnet
}

// Function identifies a generation function.
type Function string

// Generation function constants.
const (
	FunctionGenerateCategories Function = "GenerateCategories"
	FunctionGenerateTechStacks Function = "GenerateTechStacks"
	FunctionGenerateParameters Function = "GenerateParameters"
)

// ProviderRequest is a request to an AI provider.
type ProviderRequest struct {
	Prompt         string
	SystemMessage  string
	RequestContext string
	MaxTokens      int
	Temperature    float64
	ExpectedFormat string // "json" or "text"
}

// ProviderResult is the outcome of a provider call.
type ProviderResult struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	ModelUsed        string
	RequestID        string
	StopReason       string
}

// CategoryCandidate is one proposed technology category in a generation
// response.
type CategoryCandidate struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	DisplayOrder int    `json:"display_order,omitempty"`
}

// TechStackCandidate is one proposed technology in a generation response.
type TechStackCandidate struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	DefaultVersion   string `json:"default_version,omitempty"`
	DocumentationURL string `json:"documentation_url,omitempty"`
}

// ParameterCandidate is one proposed parameter definition in a generation
// response.
type ParameterCandidate struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Type          string   `json:"type"`
	IsRequired    bool     `json:"is_required"`
	DefaultValue  string   `json:"default_value,omitempty"`
	AllowedValues []string `json:"allowed_values,omitempty"`
	DisplayOrder  int      `json:"display_order,omitempty"`
}

// Default configuration constants.
const (
	defaultTimeoutSeconds   = 120
	defaultMaxRetries       = 3
	defaultRetryBaseDelayMS = 1000
	defaultMaxOutputTokens  = 8192
	defaultTemperature      = 0.2
)

// ClientConfig contains AI client configuration.
type ClientConfig struct {
	// Provider selection
	Provider Provider
	Model    Model

	// Provider credentials
	AnthropicAPIKey string
	OpenAIAPIKey    string
	GoogleAPIKey    string

	// Timeouts and retries
	TimeoutSeconds   int
	MaxRetries       int
	RetryBaseDelayMS int

	// Token limits
	MaxOutputTokens int
	Temperature     float64

	// Client-side request throttling; zero disables it.
	RequestsPerMinute int
	BurstSize         int
}

// DefaultClientConfig returns default client configuration.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Provider:         ProviderAnthropic,
		TimeoutSeconds:   defaultTimeoutSeconds,
		MaxRetries:       defaultMaxRetries,
		RetryBaseDelayMS: defaultRetryBaseDelayMS,
		MaxOutputTokens:  defaultMaxOutputTokens,
		Temperature:      defaultTemperature,
	}
}

// withDefaults fills unset fields from DefaultClientConfig.
func (c ClientConfig) withDefaults() ClientConfig {
	defaults := DefaultClientConfig()
	if c.Provider == "" {
		c.Provider = defaults.Provider
	}
	if c.Model == "" {
		c.Model = defaultModelForProvider(c.Provider)
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = defaults.TimeoutSeconds
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = defaults.MaxRetries
	}
	if c.RetryBaseDelayMS <= 0 {
		c.RetryBaseDelayMS = defaults.RetryBaseDelayMS
	}
	if c.MaxOutputTokens <= 0 {
		c.MaxOutputTokens = defaults.MaxOutputTokens
	}
	if c.BurstSize <= 0 {
		c.BurstSize = 1
	}
	return c
}
