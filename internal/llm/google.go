package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	googleAPIURLTemplate = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"
	googleModelsAPIURL   = "https://generativelanguage.googleapis.com/v1beta/models"
)

// GoogleClient implements Client for Google AI.
type GoogleClient struct {
	apiKey     string
	model      string
	httpClient *http.Client
	config     ClientConfig
}

// NewGoogleClient creates a new Google AI client.
func NewGoogleClient(apiKey string, cfg ClientConfig) *GoogleClient {
	model := string(cfg.Model)
	if model == "" {
		model = string(defaultModelForProvider(ProviderGoogle))
	}

	return &GoogleClient{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		config: cfg,
	}
}

// ProviderName implements Client.
func (c *GoogleClient) ProviderName() string {
	return string(ProviderGoogle)
}

// ModelName implements Client.
func (c *GoogleClient) ModelName() string {
	return c.model
}

// googleRequest is the request body for the Google AI API.
type googleRequest struct {
	Contents          []googleContent        `json:"contents"`
	GenerationConfig  googleGenerationConfig `json:"generationConfig,omitzero"`
	SystemInstruction *googleContent         `json:"systemInstruction,omitempty"`
}

// googleContent is content in the Google AI API.
type googleContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []googlePart `json:"parts"`
}

// googlePart is a part of content.
type googlePart struct {
	Text string `json:"text"`
}

// googleGenerationConfig is the generation configuration.
type googleGenerationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float64 `json:"temperature,omitempty"`
}

// googleResponse is the response body from the Google AI API.
type googleResponse struct {
	Candidates    []googleCandidate   `json:"candidates"`
	UsageMetadata googleUsageMetadata `json:"usageMetadata"`
	ModelVersion  string              `json:"modelVersion,omitempty"`
}

// googleCandidate is a candidate response.
type googleCandidate struct {
	Content      googleContent `json:"content"`
	FinishReason string        `json:"finishReason"`
}

// googleUsageMetadata is usage information from Google AI.
type googleUsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// googleError is an error response from Google AI.
type googleError struct {
	Error googleErrorDetail `json:"error"`
}

// googleErrorDetail contains error details.
type googleErrorDetail struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Send implements Client.
func (c *GoogleClient) Send(ctx context.Context, req *ProviderRequest) (*ProviderResult, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.config.MaxOutputTokens
	}

	googleReq := googleRequest{
		Contents: []googleContent{
			{
				Role: "user",
				Parts: []googlePart{
					{Text: req.Prompt},
				},
			},
		},
		GenerationConfig: googleGenerationConfig{
			MaxOutputTokens: maxTokens,
			Temperature:     req.Temperature,
		},
	}

	if req.SystemMessage != "" {
		googleReq.SystemInstruction = &googleContent{
			Parts: []googlePart{
				{Text: req.SystemMessage},
			},
		}
	}

	body, err := json.Marshal(googleReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf(googleAPIURLTemplate, c.model) + "?key=" + c.apiKey

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(httpResp.StatusCode, respBody)
	}

	var googleResp googleResponse
	if unmarshalErr := json.Unmarshal(respBody, &googleResp); unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal response: %w", unmarshalErr)
	}

	var content string
	var finishReason string
	if len(googleResp.Candidates) > 0 {
		candidate := googleResp.Candidates[0]
		if len(candidate.Content.Parts) > 0 {
			content = candidate.Content.Parts[0].Text
		}
		finishReason = candidate.FinishReason
	}

	modelUsed := googleResp.ModelVersion
	if modelUsed == "" {
		modelUsed = c.model
	}

	return &ProviderResult{
		Content:          content,
		PromptTokens:     googleResp.UsageMetadata.PromptTokenCount,
		CompletionTokens: googleResp.UsageMetadata.CandidatesTokenCount,
		TotalTokens:      googleResp.UsageMetadata.TotalTokenCount,
		ModelUsed:        modelUsed,
		RequestID:        "", // Google doesn't return a request ID
		StopReason:       finishReason,
	}, nil
}

// ValidateConnection implements Client. Listing models is a free
// authenticated call.
func (c *GoogleClient) ValidateConnection(ctx context.Context) error {
	url := googleModelsAPIURL + "?key=" + c.apiKey

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(httpResp.Body)
		return c.handleErrorResponse(httpResp.StatusCode, respBody)
	}

	return nil
}

// handleErrorResponse maps Google AI API errors to sentinels.
func (c *GoogleClient) handleErrorResponse(statusCode int, body []byte) error {
	var errResp googleError
	if err := json.Unmarshal(body, &errResp); err != nil {
		return fmt.Errorf("API error (status %d): %s", statusCode, string(body))
	}

	errMsg := errResp.Error.Message
	errStatus := errResp.Error.Status

	switch statusCode {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, errMsg)
	case http.StatusPaymentRequired:
		return fmt.Errorf("%w: %s", ErrQuotaExceeded, errMsg)
	case http.StatusBadRequest:
		if errStatus == "INVALID_ARGUMENT" && containsContextLengthError(errMsg) {
			return fmt.Errorf("%w: %s", ErrContextTooLong, errMsg)
		}
		return fmt.Errorf("bad request: %s", errMsg)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrAuthFailed, errMsg)
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return fmt.Errorf("server error: %s", errMsg)
	default:
		return fmt.Errorf("API error (status %d): %s", statusCode, errMsg)
	}
}
