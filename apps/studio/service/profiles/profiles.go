// Package profiles manages project profile assembly: catalog references are
// existence-checked against the catalog before the aggregate accepts them,
// and a validity gate guards artifact generation.
package profiles

import (
	"context"
	"fmt"
	"time"

	"github.com/pitabwire/util"

	"github.com/antinvestor/blueprint/apps/studio/service/render"
	"github.com/antinvestor/blueprint/apps/studio/service/repository"
	"github.com/antinvestor/blueprint/internal/domain"
)

// UpdateProfileInput carries replacement field values for a profile.
type UpdateProfileInput struct {
	Name           string
	Description    string
	ProjectName    string
	TargetTeamSize int
}

// ValidationReport summarizes whether a profile can generate artifacts.
type ValidationReport struct {
	IsValid bool     `json:"is_valid"`
	Missing []string `json:"missing,omitempty"`
}

// ProfileService manages project profiles.
type ProfileService struct {
	profiles   repository.ProfileRepository
	categories repository.CategoryRepository
	stacks     repository.TechStackRepository
	patterns   repository.PatternRepository
	rules      repository.RuleRepository
}

// NewProfileService creates a new profile service.
func NewProfileService(
	profiles repository.ProfileRepository,
	categories repository.CategoryRepository,
	stacks repository.TechStackRepository,
	patterns repository.PatternRepository,
	rules repository.RuleRepository,
) *ProfileService {
	return &ProfileService{
		profiles:   profiles,
		categories: categories,
		stacks:     stacks,
		patterns:   patterns,
		rules:      rules,
	}
}

// Create validates and persists a new profile.
func (s *ProfileService) Create(ctx context.Context, name, description string) (*domain.ProjectProfile, error) {
	profile, err := domain.NewProjectProfile(name, description)
	if err != nil {
		return nil, err
	}

	if err = s.profiles.Create(ctx, profile); err != nil {
		return nil, err
	}

	util.Log(ctx).Info("profile created",
		"profile_id", profile.ID,
		"name", profile.Name)
	return profile, nil
}

// Get retrieves a profile with all its references.
func (s *ProfileService) Get(ctx context.Context, id string) (*domain.ProjectProfile, error) {
	return s.profiles.GetWithDetails(ctx, id)
}

// List retrieves profile records without references.
func (s *ProfileService) List(ctx context.Context) ([]*domain.ProjectProfile, error) {
	return s.profiles.List(ctx)
}

// Update applies replacement field values, re-validating through the domain
// model.
func (s *ProfileService) Update(
	ctx context.Context, id string, input UpdateProfileInput,
) (*domain.ProjectProfile, error) {
	profile, err := s.profiles.GetWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	if err = profile.Rename(input.Name); err != nil {
		return nil, err
	}
	if err = profile.SetDescription(input.Description); err != nil {
		return nil, err
	}
	if err = profile.SetProjectName(input.ProjectName); err != nil {
		return nil, err
	}
	if err = profile.SetTargetTeamSize(input.TargetTeamSize); err != nil {
		return nil, err
	}

	if err = s.profiles.Save(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// Delete removes a profile and its references.
func (s *ProfileService) Delete(ctx context.Context, id string) error {
	if err := s.profiles.Delete(ctx, id); err != nil {
		return err
	}

	util.Log(ctx).Info("profile deleted", "profile_id", id)
	return nil
}

// AddTechStack attaches a catalog tech stack to the profile with raw
// parameter values. The stack is loaded with its parameter definitions so
// required and supplied values validate before anything persists.
func (s *ProfileService) AddTechStack(
	ctx context.Context, profileID, techStackID string, values map[string]string,
) (*domain.ProjectProfile, error) {
	profile, err := s.profiles.GetWithDetails(ctx, profileID)
	if err != nil {
		return nil, err
	}

	stack, err := s.stacks.GetWithParameters(ctx, techStackID)
	if err != nil {
		return nil, err
	}

	if err = profile.AddTechStack(stack, values); err != nil {
		return nil, err
	}
	if err = s.profiles.Save(ctx, profile); err != nil {
		return nil, err
	}

	util.Log(ctx).Info("tech stack added to profile",
		"profile_id", profileID,
		"tech_stack_id", techStackID)
	return profile, nil
}

// RemoveTechStack detaches a tech stack reference.
func (s *ProfileService) RemoveTechStack(
	ctx context.Context, profileID, techStackID string,
) (*domain.ProjectProfile, error) {
	profile, err := s.profiles.GetWithDetails(ctx, profileID)
	if err != nil {
		return nil, err
	}

	if err = profile.RemoveTechStack(techStackID); err != nil {
		return nil, err
	}
	if err = s.profiles.Save(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// AddPattern attaches an existing architecture pattern to the profile.
func (s *ProfileService) AddPattern(
	ctx context.Context, profileID, patternID string,
) (*domain.ProjectProfile, error) {
	profile, err := s.profiles.GetWithDetails(ctx, profileID)
	if err != nil {
		return nil, err
	}

	if _, err = s.patterns.GetByID(ctx, patternID); err != nil {
		return nil, err
	}

	if err = profile.AddArchitecturePattern(patternID); err != nil {
		return nil, err
	}
	if err = s.profiles.Save(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// RemovePattern detaches an architecture pattern reference.
func (s *ProfileService) RemovePattern(
	ctx context.Context, profileID, patternID string,
) (*domain.ProjectProfile, error) {
	profile, err := s.profiles.GetWithDetails(ctx, profileID)
	if err != nil {
		return nil, err
	}

	if err = profile.RemoveArchitecturePattern(patternID); err != nil {
		return nil, err
	}
	if err = s.profiles.Save(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// AddRule attaches an existing engineering rule to the profile.
func (s *ProfileService) AddRule(
	ctx context.Context, profileID, ruleID string,
) (*domain.ProjectProfile, error) {
	profile, err := s.profiles.GetWithDetails(ctx, profileID)
	if err != nil {
		return nil, err
	}

	if _, err = s.rules.GetByID(ctx, ruleID); err != nil {
		return nil, err
	}

	if err = profile.AddEngineeringRule(ruleID); err != nil {
		return nil, err
	}
	if err = s.profiles.Save(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// RemoveRule detaches an engineering rule reference.
func (s *ProfileService) RemoveRule(
	ctx context.Context, profileID, ruleID string,
) (*domain.ProjectProfile, error) {
	profile, err := s.profiles.GetWithDetails(ctx, profileID)
	if err != nil {
		return nil, err
	}

	if err = profile.RemoveEngineeringRule(ruleID); err != nil {
		return nil, err
	}
	if err = s.profiles.Save(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// Validate reports whether the profile passes the artifact generation gate.
func (s *ProfileService) Validate(ctx context.Context, id string) (*ValidationReport, error) {
	profile, err := s.profiles.GetWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	return &ValidationReport{
		IsValid: profile.IsValid(),
		Missing: profile.MissingRequirements(),
	}, nil
}

// BuildRenderInput dereferences every catalog entity the profile points at
// into the fully-resolved shape the renderer consumes. Fails with
// ErrInvalidOperation while the profile does not pass the validity gate.
func (s *ProfileService) BuildRenderInput(ctx context.Context, id string) (*render.Input, error) {
	profile, err := s.profiles.GetWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	if !profile.IsValid() {
		return nil, fmt.Errorf("%w: profile is not ready for generation (missing: %v)",
			domain.ErrInvalidOperation, profile.MissingRequirements())
	}

	input := &render.Input{
		ProfileName:    profile.Name,
		Description:    profile.Description,
		ProjectName:    profile.ProjectName,
		TargetTeamSize: profile.TargetTeamSize,
		GeneratedAt:    time.Now(),
	}

	for _, ref := range profile.TechStacks() {
		stack, stackErr := s.stacks.GetWithParameters(ctx, ref.TechStackID)
		if stackErr != nil {
			return nil, stackErr
		}
		category, categoryErr := s.categories.GetByID(ctx, stack.CategoryID)
		if categoryErr != nil {
			return nil, categoryErr
		}

		entry := render.TechStackEntry{
			Name:             stack.Name,
			CategoryName:     category.Name,
			Description:      stack.Description,
			DefaultVersion:   stack.DefaultVersion,
			DocumentationURL: stack.DocumentationURL,
		}
		for _, param := range stack.Parameters() {
			value, ok := ref.Value(param.Name)
			if !ok {
				continue
			}
			entry.Values = append(entry.Values, render.ValueEntry{
				Name:  param.Name,
				Type:  string(value.Type()),
				Value: value.Raw(),
			})
		}
		input.TechStacks = append(input.TechStacks, entry)
	}

	for _, patternID := range profile.ArchitecturePatternIDs() {
		pattern, patternErr := s.patterns.GetByID(ctx, patternID)
		if patternErr != nil {
			return nil, patternErr
		}
		input.Patterns = append(input.Patterns, render.PatternEntry{
			Name:                  pattern.Name,
			Description:           pattern.Description,
			Guidelines:            pattern.Guidelines,
			ComplexityLevel:       pattern.ComplexityLevel,
			SuitableForSmallTeams: pattern.SuitableForSmallTeams,
			SuitableForLargeScale: pattern.SuitableForLargeScale,
		})
	}

	for _, ruleID := range profile.EngineeringRuleIDs() {
		rule, ruleErr := s.rules.GetByID(ctx, ruleID)
		if ruleErr != nil {
			return nil, ruleErr
		}
		input.Rules = append(input.Rules, render.RuleEntry{
			Name:        rule.Name,
			Description: rule.Description,
			Rationale:   rule.Rationale,
			Severity:    string(rule.Severity),
			Scope:       string(rule.Scope),
			IsEnforced:  rule.IsEnforced,
		})
	}

	return input, nil
}
