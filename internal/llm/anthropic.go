package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	anthropicAPIURL     = "https://api.anthropic.com/v1/messages"
	anthropicAPIVersion = "2023-06-01"
)

// AnthropicClient implements Client for Anthropic.
type AnthropicClient struct {
	apiKey     string
	model      string
	httpClient *http.Client
	config     ClientConfig
}

// NewAnthropicClient creates a new Anthropic client.
func NewAnthropicClient(apiKey string, cfg ClientConfig) *AnthropicClient {
	model := string(cfg.Model)
	if model == "" {
		model = string(defaultModelForProvider(ProviderAnthropic))
	}

	return &AnthropicClient{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		config: cfg,
	}
}

// ProviderName implements Client.
func (c *AnthropicClient) ProviderName() string {
	return string(ProviderAnthropic)
}

// ModelName implements Client.
func (c *AnthropicClient) ModelName() string {
	return c.model
}

// anthropicRequest is the request body for the Anthropic API.
type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature,omitempty"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

// anthropicMessage is a message in the Anthropic API.
type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// anthropicResponse is the response body from the Anthropic API.
type anthropicResponse struct {
	ID         string             `json:"id"`
	Type       string             `json:"type"`
	Role       string             `json:"role"`
	Content    []anthropicContent `json:"content"`
	Model      string             `json:"model"`
	StopReason string             `json:"stop_reason"`
	Usage      anthropicUsage     `json:"usage"`
}

// anthropicContent is content in the Anthropic response.
type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// anthropicUsage is usage information from Anthropic.
type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// anthropicError is an error response from Anthropic.
type anthropicError struct {
	Type  string               `json:"type"`
	Error anthropicErrorDetail `json:"error"`
}

// anthropicErrorDetail contains error details.
type anthropicErrorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Send implements Client.
func (c *AnthropicClient) Send(ctx context.Context, req *ProviderRequest) (*ProviderResult, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.config.MaxOutputTokens
	}

	anthropicReq := anthropicRequest{
		Model:       c.model,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
		System:      req.SystemMessage,
		Messages: []anthropicMessage{
			{
				Role:    "user",
				Content: req.Prompt,
			},
		},
	}

	respBody, _, err := c.post(ctx, anthropicReq)
	if err != nil {
		return nil, err
	}

	var anthropicResp anthropicResponse
	if unmarshalErr := json.Unmarshal(respBody, &anthropicResp); unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal response: %w", unmarshalErr)
	}

	var content string
	for _, block := range anthropicResp.Content {
		if block.Type == "text" {
			content = block.Text
			break
		}
	}

	return &ProviderResult{
		Content:          content,
		PromptTokens:     anthropicResp.Usage.InputTokens,
		CompletionTokens: anthropicResp.Usage.OutputTokens,
		TotalTokens:      anthropicResp.Usage.InputTokens + anthropicResp.Usage.OutputTokens,
		ModelUsed:        anthropicResp.Model,
		RequestID:        anthropicResp.ID,
		StopReason:       anthropicResp.StopReason,
	}, nil
}

// ValidateConnection implements Client. A single-token message exercises the
// full auth path without meaningful spend.
func (c *AnthropicClient) ValidateConnection(ctx context.Context) error {
	probe := anthropicRequest{
		Model:     c.model,
		MaxTokens: 1,
		Messages: []anthropicMessage{
			{Role: "user", Content: "ping"},
		},
	}

	_, _, err := c.post(ctx, probe)
	return err
}

// post sends a request body to the messages endpoint and returns the raw
// response for a 200, or a mapped error otherwise.
func (c *AnthropicClient) post(ctx context.Context, reqBody anthropicRequest) ([]byte, int, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		anthropicAPIURL,
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", c.apiKey)
	httpReq.Header.Set("Anthropic-Version", anthropicAPIVersion)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("send request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, httpResp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, httpResp.StatusCode, c.handleErrorResponse(httpResp.StatusCode, respBody)
	}

	return respBody, httpResp.StatusCode, nil
}

// handleErrorResponse maps Anthropic API errors to sentinels.
func (c *AnthropicClient) handleErrorResponse(statusCode int, body []byte) error {
	var errResp anthropicError
	if err := json.Unmarshal(body, &errResp); err != nil {
		return fmt.Errorf("API error (status %d): %s", statusCode, string(body))
	}

	errType := errResp.Error.Type
	errMsg := errResp.Error.Message

	switch statusCode {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, errMsg)
	case http.StatusPaymentRequired:
		return fmt.Errorf("%w: %s", ErrQuotaExceeded, errMsg)
	case http.StatusBadRequest:
		if errType == "invalid_request_error" && containsContextLengthError(errMsg) {
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

// containsContextLengthError checks if an error message indicates context
// length issues.
func containsContextLengthError(msg string) bool {
	lowered := strings.ToLower(msg)
	keywords := []string{
		"context_length",
		"too many tokens",
		"maximum context length",
		"token limit",
	}
	for _, kw := range keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}
