package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/pitabwire/util"

	"github.com/antinvestor/blueprint/internal/domain"
)

// Responses lists audit records newest first. An empty status matches all
// statuses.
func (o *Orchestrator) Responses(ctx context.Context, status string, limit int) ([]*domain.AIResponse, error) {
	var filter domain.ResponseStatus
	if strings.TrimSpace(status) != "" {
		parsed, err := domain.ParseResponseStatus(status)
		if err != nil {
			return nil, err
		}
		filter = parsed
	}
	return o.responses.List(ctx, filter, limit)
}

// Response retrieves a single audit record.
func (o *Orchestrator) Response(ctx context.Context, id string) (*domain.AIResponse, error) {
	return o.responses.GetByID(ctx, id)
}

// ReviewResponse resolves a requires_review record: approval marks it
// validated, refusal marks it rejected with the reviewer's notes. Terminal
// records fail with ErrInvalidTransition.
func (o *Orchestrator) ReviewResponse(
	ctx context.Context, id string, approve bool, reviewedBy string, notes ...string,
) (*domain.AIResponse, error) {
	if strings.TrimSpace(reviewedBy) == "" {
		return nil, fmt.Errorf("%w: reviewer identity is required", domain.ErrInvalidArgument)
	}

	response, err := o.responses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if approve {
		err = response.MarkValidated(reviewedBy)
	} else {
		err = response.MarkRejected(reviewedBy, notes...)
	}
	if err != nil {
		return nil, err
	}

	if err = o.responses.Update(ctx, response); err != nil {
		return nil, err
	}

	util.Log(ctx).Info("response reviewed",
		"response_id", id,
		"approved", approve,
		"reviewed_by", reviewedBy)
	return response, nil
}
