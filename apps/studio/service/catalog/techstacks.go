package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/pitabwire/util"

	"github.com/antinvestor/blueprint/apps/studio/service/repository"
	"github.com/antinvestor/blueprint/internal/domain"
)

// UpdateTechStackInput carries replacement field values for a tech stack.
type UpdateTechStackInput struct {
	Name             string
	Description      string
	DefaultVersion   string
	DocumentationURL string
}

// ParameterInput carries the fields of a parameter definition.
type ParameterInput struct {
	Name          string
	Description   string
	Type          domain.ValueType
	IsRequired    bool
	DefaultValue  string
	AllowedValues []string
	DisplayOrder  int
}

// TechStackService manages tech stacks and their parameter definitions.
type TechStackService struct {
	categories repository.CategoryRepository
	stacks     repository.TechStackRepository
	profiles   repository.ProfileRepository
}

// NewTechStackService creates a new tech stack service.
func NewTechStackService(
	categories repository.CategoryRepository,
	stacks repository.TechStackRepository,
	profiles repository.ProfileRepository,
) *TechStackService {
	return &TechStackService{
		categories: categories,
		stacks:     stacks,
		profiles:   profiles,
	}
}

// Create validates and persists a new tech stack under an existing category.
func (s *TechStackService) Create(
	ctx context.Context, categoryID, name, description string,
) (*domain.TechStack, error) {
	if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
		return nil, err
	}

	stack, err := domain.NewTechStack(categoryID, name, description)
	if err != nil {
		return nil, err
	}

	exists, err := s.stacks.ExistsByName(ctx, categoryID, stack.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: tech stack %q in this category", domain.ErrDuplicateName, stack.Name)
	}

	if err = s.stacks.Create(ctx, stack); err != nil {
		return nil, err
	}

	util.Log(ctx).Info("tech stack created",
		"tech_stack_id", stack.ID,
		"category_id", categoryID,
		"name", stack.Name)
	return stack, nil
}

// Get retrieves a tech stack by ID without parameters.
func (s *TechStackService) Get(ctx context.Context, id string) (*domain.TechStack, error) {
	return s.stacks.GetByID(ctx, id)
}

// GetWithParameters retrieves a tech stack with its parameter definitions.
func (s *TechStackService) GetWithParameters(ctx context.Context, id string) (*domain.TechStack, error) {
	return s.stacks.GetWithParameters(ctx, id)
}

// GetByCategory retrieves the tech stacks of an existing category.
func (s *TechStackService) GetByCategory(
	ctx context.Context, categoryID string, includeInactive bool,
) ([]*domain.TechStack, error) {
	if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
		return nil, err
	}
	return s.stacks.GetByCategoryID(ctx, categoryID, includeInactive)
}

// List retrieves tech stacks across all categories.
func (s *TechStackService) List(ctx context.Context, includeInactive bool) ([]*domain.TechStack, error) {
	return s.stacks.List(ctx, includeInactive)
}

// Update applies replacement field values, re-validating through the domain
// model.
func (s *TechStackService) Update(
	ctx context.Context, id string, input UpdateTechStackInput,
) (*domain.TechStack, error) {
	stack, err := s.stacks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != stack.Name {
		exists, existsErr := s.stacks.ExistsByName(ctx, stack.CategoryID, input.Name)
		if existsErr != nil {
			return nil, existsErr
		}
		if exists {
			return nil, fmt.Errorf("%w: tech stack %q in this category", domain.ErrDuplicateName, input.Name)
		}
	}

	if err = stack.Rename(input.Name); err != nil {
		return nil, err
	}
	if err = stack.SetDescription(input.Description); err != nil {
		return nil, err
	}
	if err = stack.SetDefaultVersion(input.DefaultVersion); err != nil {
		return nil, err
	}
	if err = stack.SetDocumentationURL(input.DocumentationURL); err != nil {
		return nil, err
	}

	if err = s.stacks.Update(ctx, stack); err != nil {
		return nil, err
	}
	return stack, nil
}

// Activate marks a tech stack active again.
func (s *TechStackService) Activate(ctx context.Context, id string) error {
	return s.setActive(ctx, id, true)
}

// Deactivate soft-deletes a tech stack; profile references stay intact.
func (s *TechStackService) Deactivate(ctx context.Context, id string) error {
	return s.setActive(ctx, id, false)
}

func (s *TechStackService) setActive(ctx context.Context, id string, active bool) error {
	stack, err := s.stacks.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if active {
		stack.Activate()
	} else {
		stack.Deactivate()
	}
	return s.stacks.Update(ctx, stack)
}

// Delete removes a tech stack and its parameters. Refused while profiles
// still reference it.
func (s *TechStackService) Delete(ctx context.Context, id string) error {
	if _, err := s.stacks.GetByID(ctx, id); err != nil {
		return err
	}

	count, err := s.profiles.CountReferencingTechStack(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: tech stack %s is referenced by %d profiles", domain.ErrEntityInUse, id, count)
	}

	if err = s.stacks.Delete(ctx, id); err != nil {
		return err
	}

	util.Log(ctx).Info("tech stack deleted", "tech_stack_id", id)
	return nil
}

// AddParameter attaches a new parameter definition to a stack and saves the
// aggregate.
func (s *TechStackService) AddParameter(
	ctx context.Context, techStackID string, input ParameterInput,
) (*domain.TechStack, error) {
	stack, err := s.stacks.GetWithParameters(ctx, techStackID)
	if err != nil {
		return nil, err
	}

	param, err := domain.NewParameterDefinition(input.Name, input.Description, input.Type, input.IsRequired)
	if err != nil {
		return nil, err
	}
	if err = applyParameterSettings(param, input); err != nil {
		return nil, err
	}

	if err = stack.AddParameter(param); err != nil {
		return nil, err
	}
	if err = s.stacks.Save(ctx, stack); err != nil {
		return nil, err
	}

	util.Log(ctx).Info("parameter added",
		"tech_stack_id", techStackID,
		"parameter", param.Name)
	return stack, nil
}

// UpdateParameter applies replacement values to an existing parameter
// definition. The value type is fixed at creation; stored profile values
// would silently stop validating if it changed.
func (s *TechStackService) UpdateParameter(
	ctx context.Context, techStackID, parameterName string, input ParameterInput,
) (*domain.TechStack, error) {
	stack, err := s.stacks.GetWithParameters(ctx, techStackID)
	if err != nil {
		return nil, err
	}

	param, ok := stack.Parameter(parameterName)
	if !ok {
		return nil, fmt.Errorf("%w: parameter %q", domain.ErrNotFound, parameterName)
	}

	if input.Type != "" && input.Type != param.Type {
		return nil, fmt.Errorf("%w: parameter type cannot change after creation", domain.ErrInvalidOperation)
	}

	if !strings.EqualFold(input.Name, param.Name) {
		if _, taken := stack.Parameter(input.Name); taken {
			return nil, fmt.Errorf("%w: parameter %q", domain.ErrDuplicateName, input.Name)
		}
	}

	if err = param.SetName(input.Name); err != nil {
		return nil, err
	}
	if err = param.SetDescription(input.Description); err != nil {
		return nil, err
	}
	param.SetRequired(input.IsRequired)
	if err = applyParameterSettings(param, input); err != nil {
		return nil, err
	}

	if err = s.stacks.Save(ctx, stack); err != nil {
		return nil, err
	}
	return stack, nil
}

// RemoveParameter detaches a parameter definition and saves the aggregate.
func (s *TechStackService) RemoveParameter(
	ctx context.Context, techStackID, parameterName string,
) (*domain.TechStack, error) {
	stack, err := s.stacks.GetWithParameters(ctx, techStackID)
	if err != nil {
		return nil, err
	}

	if err = stack.RemoveParameter(parameterName); err != nil {
		return nil, err
	}
	if err = s.stacks.Save(ctx, stack); err != nil {
		return nil, err
	}

	util.Log(ctx).Info("parameter removed",
		"tech_stack_id", techStackID,
		"parameter", parameterName)
	return stack, nil
}

// applyParameterSettings applies allowed values before the default so a
// choice default is checked against the final membership list.
func applyParameterSettings(param *domain.ParameterDefinition, input ParameterInput) error {
	if len(input.AllowedValues) > 0 {
		if err := param.SetAllowedValues(input.AllowedValues); err != nil {
			return err
		}
	}
	if err := param.SetDefaultValue(input.DefaultValue); err != nil {
		return err
	}
	param.SetDisplayOrder(input.DisplayOrder)
	return nil
}
