package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResponse(t *testing.T) *AIResponse {
	t.Helper()
	response, err := NewAIResponse("Generate 5 technology categories", "category_generation")
	require.NoError(t, err)
	return response
}

func TestNewAIResponse_StartsPending(t *testing.T) {
	response := newTestResponse(t)

	assert.NotEmpty(t, response.ID)
	assert.Equal(t, ResponseStatusPending, response.Status)
	assert.False(t, response.RequestedAt.IsZero())
	assert.True(t, response.RespondedAt.IsZero())
	assert.Empty(t, response.ValidatedBy)
}

func TestNewAIResponse_PromptRequired(t *testing.T) {
	_, err := NewAIResponse("  ", "category_generation")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewAIResponse(strings.Repeat("p", maxPromptLength+1), "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestAIResponse_RecordResponse(t *testing.T) {
	response := newTestResponse(t)

	err := response.RecordResponse(`[{"name":"Backend"}]`, "claude-sonnet-4-5", 1200, 2500)

	require.NoError(t, err)
	assert.Equal(t, `[{"name":"Backend"}]`, response.RawResponse)
	assert.Equal(t, "claude-sonnet-4-5", response.ModelUsed)
	assert.Equal(t, 1200, response.TokensUsed)
	assert.EqualValues(t, 2500, response.DurationMS)
	assert.False(t, response.RespondedAt.IsZero())
	assert.Equal(t, ResponseStatusPending, response.Status, "recording does not validate")
}

func TestAIResponse_RecordResponseWriteOnce(t *testing.T) {
	response := newTestResponse(t)
	require.NoError(t, response.RecordResponse("first", "model", 10, 100))

	err := response.RecordResponse("second", "model", 10, 100)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, "first", response.RawResponse)
}

func TestAIResponse_RecordResponseTruncatesOversized(t *testing.T) {
	response := newTestResponse(t)

	require.NoError(t, response.RecordResponse(strings.Repeat("x", maxRawResponseLength+500), "model", 10, 100))

	assert.Len(t, response.RawResponse, maxRawResponseLength)
}

func TestAIResponse_MarkValidated(t *testing.T) {
	response := newTestResponse(t)
	require.NoError(t, response.RecordResponse("[]", "model", 10, 100))

	require.NoError(t, response.MarkValidated(ValidatedBySystem))

	assert.Equal(t, ResponseStatusValidated, response.Status)
	assert.Equal(t, ValidatedBySystem, response.ValidatedBy)
	assert.False(t, response.ValidatedAt.IsZero())
}

func TestAIResponse_MarkRejectedCapturesReasons(t *testing.T) {
	response := newTestResponse(t)

	require.NoError(t, response.MarkRejected(ValidatedBySystem, "response is not valid JSON", "no entities found"))

	assert.Equal(t, ResponseStatusRejected, response.Status)
	assert.Equal(t, "response is not valid JSON; no entities found", response.ValidationErrors)
}

func TestAIResponse_TerminalStatesRejectFurtherTransitions(t *testing.T) {
	tests := []struct {
		name     string
		terminal func(r *AIResponse) error
	}{
		{"validated", func(r *AIResponse) error { return r.MarkValidated(ValidatedBySystem) }},
		{"rejected", func(r *AIResponse) error { return r.MarkRejected(ValidatedBySystem, "bad") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			response := newTestResponse(t)
			require.NoError(t, tt.terminal(response))

			assert.ErrorIs(t, response.MarkValidated(ValidatedBySystem), ErrInvalidTransition)
			assert.ErrorIs(t, response.MarkRejected(ValidatedBySystem, "x"), ErrInvalidTransition)
			assert.ErrorIs(t, response.MarkRequiresReview(ValidatedBySystem, "x"), ErrInvalidTransition)
			assert.ErrorIs(t, response.RecordResponse("late", "model", 1, 1), ErrInvalidTransition)
		})
	}
}

func TestAIResponse_RequiresReviewCanStillBeResolved(t *testing.T) {
	response := newTestResponse(t)
	require.NoError(t, response.RecordResponse("[]", "model", 10, 100))
	require.NoError(t, response.MarkRequiresReview(ValidatedBySystem, "2 of 5 entities invalid"))

	require.NoError(t, response.MarkValidated("reviewer@example.com"))

	assert.Equal(t, ResponseStatusValidated, response.Status)
	assert.Equal(t, "reviewer@example.com", response.ValidatedBy)
}

func TestRestoreAIResponse_GuardsRecordedResponse(t *testing.T) {
	restored := RestoreAIResponse(AIResponse{
		ID:          "resp-1",
		Prompt:      "Generate categories",
		RawResponse: "[]",
		Status:      ResponseStatusPending,
	})

	err := restored.RecordResponse("again", "model", 1, 1)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestParseResponseStatus(t *testing.T) {
	status, err := ParseResponseStatus(" Requires_Review ")
	require.NoError(t, err)
	assert.Equal(t, ResponseStatusRequiresReview, status)

	_, err = ParseResponseStatus("done")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestResponseStatus_IsTerminal(t *testing.T) {
	assert.True(t, ResponseStatusValidated.IsTerminal())
	assert.True(t, ResponseStatusRejected.IsTerminal())
	assert.False(t, ResponseStatusPending.IsTerminal())
	assert.False(t, ResponseStatusRequiresReview.IsTerminal())
}
