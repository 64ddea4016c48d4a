package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
)

const (
	maxPromptLength      = 10000
	maxRawResponseLength = 50000
)

// ResponseStatus tracks an AI response through validation. Transitions only
// move away from pending; validated and rejected are terminal.
type ResponseStatus string

const (
	ResponseStatusPending        ResponseStatus = "pending"
	ResponseStatusValidated      ResponseStatus = "validated"
	ResponseStatusRejected       ResponseStatus = "rejected"
	ResponseStatusRequiresReview ResponseStatus = "requires_review"
)

// ParseResponseStatus normalises a stored or user supplied status string.
func ParseResponseStatus(raw string) (ResponseStatus, error) {
	status := ResponseStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !status.IsValid() {
		return "", fmt.Errorf("%w: unknown response status %q", ErrInvalidArgument, raw)
	}
	return status, nil
}

// IsValid reports whether the status is one of the known states.
func (s ResponseStatus) IsValid() bool {
	switch s {
	case ResponseStatusPending, ResponseStatusValidated, ResponseStatusRejected, ResponseStatusRequiresReview:
		return true
	}
	return false
}

// IsTerminal reports whether the status permits no further transitions.
func (s ResponseStatus) IsTerminal() bool {
	return s == ResponseStatusValidated || s == ResponseStatusRejected
}

func (s ResponseStatus) String() string {
	return string(s)
}

// Validator identities recorded on status transitions.
const (
	ValidatedBySystem   = "System"
	ValidatedByProvider = "AI Provider"
)

// AIResponse is the audit record for one AI generation exchange: the prompt
// sent, the raw text received and the validation outcome. The raw response is
// preserved as received so failures can be inspected later; the record itself
// never interprets the content.
type AIResponse struct {
	ID               string         `json:"id"                          gorm:"primaryKey"`
	Prompt           string         `json:"prompt"`
	RawResponse      string         `json:"raw_response,omitempty"`
	ModelUsed        string         `json:"model_used,omitempty"`
	TokensUsed       int            `json:"tokens_used,omitempty"`
	DurationMS       int64          `json:"duration_ms,omitempty"`
	RequestContext   string         `json:"request_context,omitempty"`
	Status           ResponseStatus `json:"status"`
	ValidatedBy      string         `json:"validated_by,omitempty"`
	ValidationErrors string         `json:"validation_errors,omitempty"`
	RequestedAt      time.Time      `json:"requested_at"`
	RespondedAt      time.Time      `json:"responded_at,omitempty"`
	ValidatedAt      time.Time      `json:"validated_at,omitempty"`

	responseRecorded bool
}

// TableName returns the table name for the AIResponse model.
func (AIResponse) TableName() string {
	return "ai_responses"
}

// NewAIResponse opens an audit record for a prompt about to be sent. The
// record starts pending with the request time stamped.
func NewAIResponse(prompt, requestContext string) (*AIResponse, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("%w: prompt is required", ErrInvalidArgument)
	}
	if len(prompt) > maxPromptLength {
		return nil, fmt.Errorf("%w: prompt must be %d characters or less",
			ErrInvalidArgument, maxPromptLength)
	}

	return &AIResponse{
		ID:             xid.New().String(),
		Prompt:         prompt,
		RequestContext: requestContext,
		Status:         ResponseStatusPending,
		RequestedAt:    time.Now(),
	}, nil
}

// RestoreAIResponse rebuilds a record from stored state. For repository use.
func RestoreAIResponse(record AIResponse) *AIResponse {
	restored := record
	restored.responseRecorded = restored.RawResponse != ""
	return &restored
}

// RecordResponse captures the provider's answer exactly once: the raw text,
// the model that produced it, token usage and elapsed time. Oversized
// responses are truncated to a storable length.
func (r *AIResponse) RecordResponse(raw, model string, tokensUsed int, durationMS int64) error {
	if r.Status != ResponseStatusPending {
		return fmt.Errorf("%w: response %s is already %s", ErrInvalidTransition, r.ID, r.Status)
	}
	if r.responseRecorded {
		return fmt.Errorf("%w: response %s already recorded", ErrInvalidTransition, r.ID)
	}

	if len(raw) > maxRawResponseLength {
		raw = raw[:maxRawResponseLength]
	}
	r.RawResponse = raw
	r.ModelUsed = model
	r.TokensUsed = tokensUsed
	r.DurationMS = durationMS
	r.RespondedAt = time.Now()
	r.responseRecorded = true
	return nil
}

// MarkValidated moves the record to its terminal validated state.
func (r *AIResponse) MarkValidated(validatedBy string) error {
	return r.transition(ResponseStatusValidated, validatedBy)
}

// MarkRejected moves the record to its terminal rejected state, capturing why.
func (r *AIResponse) MarkRejected(validatedBy string, reasons ...string) error {
	if err := r.transition(ResponseStatusRejected, validatedBy); err != nil {
		return err
	}
	r.ValidationErrors = strings.Join(reasons, "; ")
	return nil
}

// MarkRequiresReview flags the record for a human decision. Unlike the
// terminal states a later review may still validate or reject it.
func (r *AIResponse) MarkRequiresReview(validatedBy string, reasons ...string) error {
	if err := r.transition(ResponseStatusRequiresReview, validatedBy); err != nil {
		return err
	}
	r.ValidationErrors = strings.Join(reasons, "; ")
	return nil
}

func (r *AIResponse) transition(target ResponseStatus, validatedBy string) error {
	if r.Status.IsTerminal() {
		return fmt.Errorf("%w: response %s is already %s", ErrInvalidTransition, r.ID, r.Status)
	}
	if r.Status == target {
		return fmt.Errorf("%w: response %s is already %s", ErrInvalidTransition, r.ID, r.Status)
	}
	r.Status = target
	r.ValidatedBy = validatedBy
	r.ValidatedAt = time.Now()
	return nil
}
