// Package generation drives AI-assisted catalog population. Every provider
// call leaves an AIResponse audit record regardless of outcome; catalog
// writes happen only after the response content has been parsed and each
// candidate has passed duplicate and domain validation checks.
package generation

import (
	"context"
	"fmt"
	"time"

	"github.com/pitabwire/util"

	"github.com/antinvestor/blueprint/apps/studio/service/repository"
	"github.com/antinvestor/blueprint/internal/domain"
	"github.com/antinvestor/blueprint/internal/llm"
)

const defaultMaxCount = 20

// CategoryOutcome is the result of a category generation run.
type CategoryOutcome struct {
	Categories     []*domain.Category `json:"categories"`
	DuplicateCount int                `json:"duplicate_count"`
	SkippedInvalid []string           `json:"skipped_invalid,omitempty"`
	ResponseID     string             `json:"response_id"`
}

// TechStackOutcome is the result of a tech stack generation run.
type TechStackOutcome struct {
	TechStacks     []*domain.TechStack `json:"tech_stacks"`
	DuplicateCount int                 `json:"duplicate_count"`
	SkippedInvalid []string            `json:"skipped_invalid,omitempty"`
	ResponseID     string              `json:"response_id"`
}

// ParameterOutcome is the result of a parameter generation run.
type ParameterOutcome struct {
	Parameters     []*domain.ParameterDefinition `json:"parameters"`
	DuplicateCount int                           `json:"duplicate_count"`
	SkippedInvalid []string                      `json:"skipped_invalid,omitempty"`
	ResponseID     string                        `json:"response_id"`
}

// Orchestrator coordinates prompt building, the provider call, response
// auditing and catalog persistence for generation operations.
type Orchestrator struct {
	client     llm.Client
	prompts    *llm.PromptBuilder
	categories repository.CategoryRepository
	stacks     repository.TechStackRepository
	responses  repository.AIResponseRepository
	maxCount   int
}

// NewOrchestrator creates a generation orchestrator. maxCount caps the
// number of entities requested per run; values <= 0 fall back to the
// default cap.
func NewOrchestrator(
	client llm.Client,
	categories repository.CategoryRepository,
	stacks repository.TechStackRepository,
	responses repository.AIResponseRepository,
	maxCount int,
) (*Orchestrator, error) {
	prompts, err := llm.NewPromptBuilder()
	if err != nil {
		return nil, err
	}
	if maxCount <= 0 {
		maxCount = defaultMaxCount
	}

	return &Orchestrator{
		client:     client,
		prompts:    prompts,
		categories: categories,
		stacks:     stacks,
		responses:  responses,
		maxCount:   maxCount,
	}, nil
}

// GenerateCategories asks the provider for new technology categories and
// persists the ones that survive duplicate and validation checks.
func (o *Orchestrator) GenerateCategories(ctx context.Context, count int) (*CategoryOutcome, error) {
	count, err := o.clampCount(ctx, count)
	if err != nil {
		return nil, err
	}

	existing, err := o.categories.List(ctx, true)
	if err != nil {
		return nil, err
	}
	existingNames := make([]string, 0, len(existing))
	for _, category := range existing {
		existingNames = append(existingNames, category.Name)
	}

	prompt, err := o.prompts.Build(llm.FunctionGenerateCategories, llm.CategoriesPromptInput{
		Count:         count,
		ExistingNames: existingNames,
	})
	if err != nil {
		return nil, err
	}

	response, content, err := o.callProvider(ctx, prompt, llm.CategoryRequestContext())
	if err != nil {
		return nil, err
	}

	candidates, err := parseCandidates[llm.CategoryCandidate](content)
	if err != nil {
		return nil, o.rejectResponse(ctx, response, err)
	}
	if len(candidates) == 0 {
		return nil, o.rejectResponse(ctx, response,
			fmt.Errorf("%w: response contained no candidates", domain.ErrParseFailure))
	}

	var (
		created    []*domain.Category
		duplicates int
		skipped    []string
		seen       = make(map[string]bool)
	)
	for _, candidate := range candidates {
		if seen[candidate.Name] {
			duplicates++
			continue
		}
		seen[candidate.Name] = true

		exists, existsErr := o.categories.ExistsByName(ctx, candidate.Name)
		if existsErr != nil {
			return nil, existsErr
		}
		if exists {
			duplicates++
			continue
		}

		category, newErr := domain.NewCategory(candidate.Name, candidate.Description, candidate.DisplayOrder)
		if newErr != nil {
			skipped = append(skipped, fmt.Sprintf("%s: %v", candidate.Name, newErr))
			continue
		}
		category.MarkAIGenerated()
		created = append(created, category)
	}

	if err = writeBatch(ctx, created, o.categories.CreateBatch); err != nil {
		return nil, err
	}
	o.resolveResponse(ctx, response, skipped)

	util.Log(ctx).Info("category generation completed",
		"response_id", response.ID,
		"created", len(created),
		"duplicates", duplicates,
		"skipped", len(skipped))

	return &CategoryOutcome{
		Categories:     created,
		DuplicateCount: duplicates,
		SkippedInvalid: skipped,
		ResponseID:     response.ID,
	}, nil
}

// GenerateTechStacks asks the provider for new tech stacks within a category
// and persists the ones that survive duplicate and validation checks.
func (o *Orchestrator) GenerateTechStacks(
	ctx context.Context, categoryID string, count int,
) (*TechStackOutcome, error) {
	count, err := o.clampCount(ctx, count)
	if err != nil {
		return nil, err
	}

	category, err := o.categories.GetByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	existing, err := o.stacks.GetByCategoryID(ctx, categoryID, true)
	if err != nil {
		return nil, err
	}
	existingNames := make([]string, 0, len(existing))
	for _, stack := range existing {
		existingNames = append(existingNames, stack.Name)
	}

	prompt, err := o.prompts.Build(llm.FunctionGenerateTechStacks, llm.TechStacksPromptInput{
		Count:               count,
		CategoryName:        category.Name,
		CategoryDescription: category.Description,
		ExistingNames:       existingNames,
	})
	if err != nil {
		return nil, err
	}

	response, content, err := o.callProvider(ctx, prompt, llm.TechStackRequestContext(category.Name))
	if err != nil {
		return nil, err
	}

	candidates, err := parseCandidates[llm.TechStackCandidate](content)
	if err != nil {
		return nil, o.rejectResponse(ctx, response, err)
	}
	if len(candidates) == 0 {
		return nil, o.rejectResponse(ctx, response,
			fmt.Errorf("%w: response contained no candidates", domain.ErrParseFailure))
	}

	var (
		created    []*domain.TechStack
		duplicates int
		skipped    []string
		seen       = make(map[string]bool)
	)
	for _, candidate := range candidates {
		if seen[candidate.Name] {
			duplicates++
			continue
		}
		seen[candidate.Name] = true

		exists, existsErr := o.stacks.ExistsByName(ctx, categoryID, candidate.Name)
		if existsErr != nil {
			return nil, existsErr
		}
		if exists {
			duplicates++
			continue
		}

		stack, buildErr := buildTechStack(categoryID, candidate)
		if buildErr != nil {
			skipped = append(skipped, fmt.Sprintf("%s: %v", candidate.Name, buildErr))
			continue
		}
		created = append(created, stack)
	}

	if err = writeBatch(ctx, created, o.stacks.CreateBatch); err != nil {
		return nil, err
	}
	o.resolveResponse(ctx, response, skipped)

	util.Log(ctx).Info("tech stack generation completed",
		"response_id", response.ID,
		"category_id", categoryID,
		"created", len(created),
		"duplicates", duplicates,
		"skipped", len(skipped))

	return &TechStackOutcome{
		TechStacks:     created,
		DuplicateCount: duplicates,
		SkippedInvalid: skipped,
		ResponseID:     response.ID,
	}, nil
}

// GenerateParameters asks the provider for parameter definitions of a tech
// stack and saves the updated aggregate with the ones that survive
// duplicate and validation checks.
func (o *Orchestrator) GenerateParameters(
	ctx context.Context, techStackID string, count int,
) (*ParameterOutcome, error) {
	count, err := o.clampCount(ctx, count)
	if err != nil {
		return nil, err
	}

	stack, err := o.stacks.GetWithParameters(ctx, techStackID)
	if err != nil {
		return nil, err
	}
	category, err := o.categories.GetByID(ctx, stack.CategoryID)
	if err != nil {
		return nil, err
	}

	existingNames := make([]string, 0, stack.ParameterCount())
	for _, param := range stack.Parameters() {
		existingNames = append(existingNames, param.Name)
	}

	prompt, err := o.prompts.Build(llm.FunctionGenerateParameters, llm.ParametersPromptInput{
		Count:                count,
		TechStackName:        stack.Name,
		TechStackDescription: stack.Description,
		CategoryName:         category.Name,
		ExistingNames:        existingNames,
	})
	if err != nil {
		return nil, err
	}

	response, content, err := o.callProvider(ctx, prompt, llm.ParameterRequestContext(stack.Name))
	if err != nil {
		return nil, err
	}

	candidates, err := parseCandidates[llm.ParameterCandidate](content)
	if err != nil {
		return nil, o.rejectResponse(ctx, response, err)
	}
	if len(candidates) == 0 {
		return nil, o.rejectResponse(ctx, response,
			fmt.Errorf("%w: response contained no candidates", domain.ErrParseFailure))
	}

	var (
		added      []*domain.ParameterDefinition
		duplicates int
		skipped    []string
	)
	for _, candidate := range candidates {
		// Parameter names collide case-insensitively inside the aggregate,
		// so membership doubles as the duplicate check.
		if _, taken := stack.Parameter(candidate.Name); taken {
			duplicates++
			continue
		}

		param, buildErr := buildParameter(candidate)
		if buildErr != nil {
			skipped = append(skipped, fmt.Sprintf("%s: %v", candidate.Name, buildErr))
			continue
		}
		if addErr := stack.AddParameter(param); addErr != nil {
			skipped = append(skipped, fmt.Sprintf("%s: %v", candidate.Name, addErr))
			continue
		}
		added = append(added, param)
	}

	if len(added) > 0 {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if err = o.stacks.Save(ctx, stack); err != nil {
			return nil, err
		}
	}
	o.resolveResponse(ctx, response, skipped)

	util.Log(ctx).Info("parameter generation completed",
		"response_id", response.ID,
		"tech_stack_id", techStackID,
		"created", len(added),
		"duplicates", duplicates,
		"skipped", len(skipped))

	return &ParameterOutcome{
		Parameters:     added,
		DuplicateCount: duplicates,
		SkippedInvalid: skipped,
		ResponseID:     response.ID,
	}, nil
}

// callProvider sends the prompt, timing the call, and persists the audit
// record. On provider failure the record is created already rejected and the
// returned error wraps ErrProviderFailure.
func (o *Orchestrator) callProvider(
	ctx context.Context, prompt, requestContext string,
) (*domain.AIResponse, string, error) {
	log := util.Log(ctx)

	response, err := domain.NewAIResponse(prompt, requestContext)
	if err != nil {
		return nil, "", err
	}

	start := time.Now()
	result, sendErr := o.client.Send(ctx, &llm.ProviderRequest{
		Prompt:         prompt,
		RequestContext: requestContext,
		ExpectedFormat: "json",
	})
	elapsed := time.Since(start)

	if sendErr != nil {
		if markErr := response.MarkRejected(domain.ValidatedByProvider, sendErr.Error()); markErr != nil {
			log.WithError(markErr).Error("failed to mark provider failure", "response_id", response.ID)
		}
		if createErr := o.responses.Create(ctx, response); createErr != nil {
			log.WithError(createErr).Error("failed to persist audit record", "response_id", response.ID)
		}
		log.WithError(sendErr).Error("provider call failed",
			"request_context", requestContext,
			"duration_ms", elapsed.Milliseconds())
		return nil, "", fmt.Errorf("%w: %s", domain.ErrProviderFailure, sendErr.Error())
	}

	if err = response.RecordResponse(result.Content, result.ModelUsed, result.TotalTokens, elapsed.Milliseconds()); err != nil {
		return nil, "", err
	}
	if err = o.responses.Create(ctx, response); err != nil {
		return nil, "", err
	}

	log.Debug("provider call succeeded",
		"request_context", requestContext,
		"model", result.ModelUsed,
		"total_tokens", result.TotalTokens,
		"duration_ms", elapsed.Milliseconds())
	return response, result.Content, nil
}

// rejectResponse marks the audit record rejected for unusable content and
// returns the original failure.
func (o *Orchestrator) rejectResponse(ctx context.Context, response *domain.AIResponse, cause error) error {
	log := util.Log(ctx)
	if err := response.MarkRejected(domain.ValidatedBySystem, cause.Error()); err != nil {
		log.WithError(err).Error("failed to mark response rejected", "response_id", response.ID)
	}
	if err := o.responses.Update(ctx, response); err != nil {
		log.WithError(err).Error("failed to persist response rejection", "response_id", response.ID)
	}
	return cause
}

// resolveResponse settles the audit record after persistence: validated on a
// clean run, requires_review when some candidates had to be skipped.
func (o *Orchestrator) resolveResponse(ctx context.Context, response *domain.AIResponse, skipped []string) {
	log := util.Log(ctx)

	var err error
	if len(skipped) > 0 {
		err = response.MarkRequiresReview(domain.ValidatedBySystem, skipped...)
	} else {
		err = response.MarkValidated(domain.ValidatedBySystem)
	}
	if err != nil {
		log.WithError(err).Error("failed to mark response resolved", "response_id", response.ID)
		return
	}
	if err = o.responses.Update(ctx, response); err != nil {
		log.WithError(err).Error("failed to persist response resolution", "response_id", response.ID)
	}
}

func (o *Orchestrator) clampCount(ctx context.Context, count int) (int, error) {
	if count <= 0 {
		return 0, fmt.Errorf("%w: count must be positive", domain.ErrInvalidArgument)
	}
	if count > o.maxCount {
		util.Log(ctx).Warn("requested count exceeds cap",
			"requested", count,
			"cap", o.maxCount)
		return o.maxCount, nil
	}
	return count, nil
}

// writeBatch persists survivors atomically. The context is checked first so
// a cancelled operation commits nothing.
func writeBatch[T any](ctx context.Context, entities []T, create func(context.Context, []T) error) error {
	if len(entities) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return create(ctx, entities)
}

func buildTechStack(categoryID string, candidate llm.TechStackCandidate) (*domain.TechStack, error) {
	stack, err := domain.NewTechStack(categoryID, candidate.Name, candidate.Description)
	if err != nil {
		return nil, err
	}
	if err = stack.SetDefaultVersion(candidate.DefaultVersion); err != nil {
		return nil, err
	}
	if err = stack.SetDocumentationURL(candidate.DocumentationURL); err != nil {
		return nil, err
	}
	stack.MarkAIGenerated()
	return stack, nil
}

func buildParameter(candidate llm.ParameterCandidate) (*domain.ParameterDefinition, error) {
	param, err := domain.NewParameterDefinition(
		candidate.Name, candidate.Description,
		domain.ValueType(candidate.Type), candidate.IsRequired,
	)
	if err != nil {
		return nil, err
	}
	if len(candidate.AllowedValues) > 0 {
		if err = param.SetAllowedValues(candidate.AllowedValues); err != nil {
			return nil, err
		}
	}
	if err = param.SetDefaultValue(candidate.DefaultValue); err != nil {
		return nil, err
	}
	param.SetDisplayOrder(candidate.DisplayOrder)
	return param, nil
}
