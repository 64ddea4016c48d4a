package catalog

import (
	"context"
	"fmt"

	"github.com/pitabwire/util"

	"github.com/antinvestor/blueprint/apps/studio/service/repository"
	"github.com/antinvestor/blueprint/internal/domain"
)

// PatternInput carries the fields of an architecture pattern.
type PatternInput struct {
	Name                  string
	Description           string
	Guidelines            string
	ComplexityLevel       int
	SuitableForSmallTeams bool
	SuitableForLargeScale bool
}

// PatternService manages architecture patterns.
type PatternService struct {
	patterns repository.PatternRepository
	profiles repository.ProfileRepository
}

// NewPatternService creates a new pattern service.
func NewPatternService(
	patterns repository.PatternRepository,
	profiles repository.ProfileRepository,
) *PatternService {
	return &PatternService{
		patterns: patterns,
		profiles: profiles,
	}
}

// Create validates and persists a new pattern.
func (s *PatternService) Create(ctx context.Context, input PatternInput) (*domain.ArchitecturePattern, error) {
	pattern, err := domain.NewArchitecturePattern(
		input.Name, input.Description, input.Guidelines,
		input.ComplexityLevel, input.SuitableForSmallTeams, input.SuitableForLargeScale,
	)
	if err != nil {
		return nil, err
	}

	exists, err := s.patterns.ExistsByName(ctx, pattern.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: architecture pattern %q", domain.ErrDuplicateName, pattern.Name)
	}

	if err = s.patterns.Create(ctx, pattern); err != nil {
		return nil, err
	}

	util.Log(ctx).Info("architecture pattern created",
		"pattern_id", pattern.ID,
		"name", pattern.Name)
	return pattern, nil
}

// Get retrieves a pattern by ID.
func (s *PatternService) Get(ctx context.Context, id string) (*domain.ArchitecturePattern, error) {
	return s.patterns.GetByID(ctx, id)
}

// List retrieves patterns, optionally including deactivated ones.
func (s *PatternService) List(ctx context.Context, includeInactive bool) ([]*domain.ArchitecturePattern, error) {
	return s.patterns.List(ctx, includeInactive)
}

// Update applies replacement field values, re-validating through the domain
// model.
func (s *PatternService) Update(
	ctx context.Context, id string, input PatternInput,
) (*domain.ArchitecturePattern, error) {
	pattern, err := s.patterns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != pattern.Name {
		exists, existsErr := s.patterns.ExistsByName(ctx, input.Name)
		if existsErr != nil {
			return nil, existsErr
		}
		if exists {
			return nil, fmt.Errorf("%w: architecture pattern %q", domain.ErrDuplicateName, input.Name)
		}
	}

	if err = pattern.Rename(input.Name); err != nil {
		return nil, err
	}
	if err = pattern.SetComplexityLevel(input.ComplexityLevel); err != nil {
		return nil, err
	}
	pattern.SetDescription(input.Description)
	pattern.SetGuidelines(input.Guidelines)
	pattern.SetSuitability(input.SuitableForSmallTeams, input.SuitableForLargeScale)

	if err = s.patterns.Update(ctx, pattern); err != nil {
		return nil, err
	}
	return pattern, nil
}

// Activate marks a pattern active again.
func (s *PatternService) Activate(ctx context.Context, id string) error {
	return s.setActive(ctx, id, true)
}

// Deactivate soft-deletes a pattern; profile references stay intact.
func (s *PatternService) Deactivate(ctx context.Context, id string) error {
	return s.setActive(ctx, id, false)
}

func (s *PatternService) setActive(ctx context.Context, id string, active bool) error {
	pattern, err := s.patterns.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if active {
		pattern.Activate()
	} else {
		pattern.Deactivate()
	}
	return s.patterns.Update(ctx, pattern)
}

// Delete removes a pattern. Refused while profiles still reference it.
func (s *PatternService) Delete(ctx context.Context, id string) error {
	if _, err := s.patterns.GetByID(ctx, id); err != nil {
		return err
	}

	count, err := s.profiles.CountReferencingPattern(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: architecture pattern %s is referenced by %d profiles", domain.ErrEntityInUse, id, count)
	}

	if err = s.patterns.Delete(ctx, id); err != nil {
		return err
	}

	util.Log(ctx).Info("architecture pattern deleted", "pattern_id", id)
	return nil
}
