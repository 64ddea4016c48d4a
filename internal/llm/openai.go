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
	openaiAPIURL       = "https://api.openai.com/v1/chat/completions"
	openaiModelsAPIURL = "https://api.openai.com/v1/models"
)

// OpenAIClient implements Client for OpenAI.
type OpenAIClient struct {
	apiKey     string
	model      string
	httpClient *http.Client
	config     ClientConfig
}

// NewOpenAIClient creates a new OpenAI client.
func NewOpenAIClient(apiKey string, cfg ClientConfig) *OpenAIClient {
	model := string(cfg.Model)
	if model == "" {
		model = string(defaultModelForProvider(ProviderOpenAI))
	}

	return &OpenAIClient{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		config: cfg,
	}
}

// ProviderName implements Client.
func (c *OpenAIClient) ProviderName() string {
	return string(ProviderOpenAI)
}

// ModelName implements Client.
func (c *OpenAIClient) ModelName() string {
	return c.model
}

// openaiRequest is the request body for the OpenAI API.
type openaiRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float64         `json:"temperature,omitempty"`
}

// openaiMessage is a message in the OpenAI API.
type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// openaiResponse is the response body from the OpenAI API.
type openaiResponse struct {
	ID      string         `json:"id"`
	Object  string         `json:"object"`
	Created int64          `json:"created"`
	Model   string         `json:"model"`
	Choices []openaiChoice `json:"choices"`
	Usage   openaiUsage    `json:"usage"`
}

// openaiChoice is a choice in the OpenAI response.
type openaiChoice struct {
	Index        int           `json:"index"`
	Message      openaiMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

// openaiUsage is usage information from OpenAI.
type openaiUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// openaiError is an error response from OpenAI.
type openaiError struct {
	Error openaiErrorDetail `json:"error"`
}

// openaiErrorDetail contains error details.
type openaiErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// Send implements Client.
func (c *OpenAIClient) Send(ctx context.Context, req *ProviderRequest) (*ProviderResult, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.config.MaxOutputTokens
	}

	messages := []openaiMessage{}
	if req.SystemMessage != "" {
		messages = append(messages, openaiMessage{
			Role:    "system",
			Content: req.SystemMessage,
		})
	}
	messages = append(messages, openaiMessage{
		Role:    "user",
		Content: req.Prompt,
	})

	openaiReq := openaiRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
	}

	body, err := json.Marshal(openaiReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		openaiAPIURL,
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

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

	var openaiResp openaiResponse
	if unmarshalErr := json.Unmarshal(respBody, &openaiResp); unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal response: %w", unmarshalErr)
	}

	var content string
	var finishReason string
	if len(openaiResp.Choices) > 0 {
		content = openaiResp.Choices[0].Message.Content
		finishReason = openaiResp.Choices[0].FinishReason
	}

	return &ProviderResult{
		Content:          content,
		PromptTokens:     openaiResp.Usage.PromptTokens,
		CompletionTokens: openaiResp.Usage.CompletionTokens,
		TotalTokens:      openaiResp.Usage.TotalTokens,
		ModelUsed:        openaiResp.Model,
		RequestID:        openaiResp.ID,
		StopReason:       finishReason,
	}, nil
}

// ValidateConnection implements Client. Listing models is a free
// authenticated call.
func (c *OpenAIClient) ValidateConnection(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, openaiModelsAPIURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

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

// handleErrorResponse maps OpenAI API errors to sentinels.
func (c *OpenAIClient) handleErrorResponse(statusCode int, body []byte) error {
	var errResp openaiError
	if err := json.Unmarshal(body, &errResp); err != nil {
		return fmt.Errorf("API error (status %d): %s", statusCode, string(body))
	}

	errMsg := errResp.Error.Message
	errCode := errResp.Error.Code

	switch statusCode {
	case http.StatusTooManyRequests:
		if errResp.Error.Type == "insufficient_quota" {
			return fmt.Errorf("%w: %s", ErrQuotaExceeded, errMsg)
		}
		return fmt.Errorf("%w: %s", ErrRateLimited, errMsg)
	case http.StatusPaymentRequired:
		return fmt.Errorf("%w: %s", ErrQuotaExceeded, errMsg)
	case http.StatusBadRequest:
		if errCode == "context_length_exceeded" {
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
