package catalog

import (
	"context"
	"fmt"

	"github.com/pitabwire/util"

	"github.com/antinvestor/blueprint/apps/studio/service/repository"
	"github.com/antinvestor/blueprint/internal/domain"
)

// RuleInput carries the fields of an engineering rule.
type RuleInput struct {
	Name        string
	Description string
	Rationale   string
	Severity    domain.RuleSeverity
	Scope       domain.RuleScope
	IsEnforced  bool
}

// RuleService manages engineering rules.
type RuleService struct {
	rules    repository.RuleRepository
	profiles repository.ProfileRepository
}

// NewRuleService creates a new rule service.
func NewRuleService(
	rules repository.RuleRepository,
	profiles repository.ProfileRepository,
) *RuleService {
	return &RuleService{
		rules:    rules,
		profiles: profiles,
	}
}

// Create validates and persists a new rule.
func (s *RuleService) Create(ctx context.Context, input RuleInput) (*domain.EngineeringRule, error) {
	rule, err := domain.NewEngineeringRule(
		input.Name, input.Description, input.Rationale,
		input.Severity, input.Scope, input.IsEnforced,
	)
	if err != nil {
		return nil, err
	}

	exists, err := s.rules.ExistsByName(ctx, rule.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: engineering rule %q", domain.ErrDuplicateName, rule.Name)
	}

	if err = s.rules.Create(ctx, rule); err != nil {
		return nil, err
	}

	util.Log(ctx).Info("engineering rule created",
		"rule_id", rule.ID,
		"name", rule.Name,
		"severity", rule.Severity)
	return rule, nil
}

// Get retrieves a rule by ID.
func (s *RuleService) Get(ctx context.Context, id string) (*domain.EngineeringRule, error) {
	return s.rules.GetByID(ctx, id)
}

// List retrieves rules, optionally including deactivated ones.
func (s *RuleService) List(ctx context.Context, includeInactive bool) ([]*domain.EngineeringRule, error) {
	return s.rules.List(ctx, includeInactive)
}

// Update applies replacement field values, re-validating through the domain
// model.
func (s *RuleService) Update(ctx context.Context, id string, input RuleInput) (*domain.EngineeringRule, error) {
	rule, err := s.rules.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != rule.Name {
		exists, existsErr := s.rules.ExistsByName(ctx, input.Name)
		if existsErr != nil {
			return nil, existsErr
		}
		if exists {
			return nil, fmt.Errorf("%w: engineering rule %q", domain.ErrDuplicateName, input.Name)
		}
	}

	if err = rule.Rename(input.Name); err != nil {
		return nil, err
	}
	if err = rule.SetConstraint(input.Severity, input.Scope); err != nil {
		return nil, err
	}
	rule.SetDescription(input.Description)
	rule.SetRationale(input.Rationale)
	rule.SetEnforced(input.IsEnforced)

	if err = s.rules.Update(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// Activate marks a rule active again.
func (s *RuleService) Activate(ctx context.Context, id string) error {
	return s.setActive(ctx, id, true)
}

// Deactivate soft-deletes a rule; profile references stay intact.
func (s *RuleService) Deactivate(ctx context.Context, id string) error {
	return s.setActive(ctx, id, false)
}

func (s *RuleService) setActive(ctx context.Context, id string, active bool) error {
	rule, err := s.rules.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if active {
		rule.Activate()
	} else {
		rule.Deactivate()
	}
	return s.rules.Update(ctx, rule)
}

// Delete removes a rule. Refused while profiles still reference it.
func (s *RuleService) Delete(ctx context.Context, id string) error {
	if _, err := s.rules.GetByID(ctx, id); err != nil {
		return err
	}

	count, err := s.profiles.CountReferencingRule(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: engineering rule %s is referenced by %d profiles", domain.ErrEntityInUse, id, count)
	}

	if err = s.rules.Delete(ctx, id); err != nil {
		return err
	}

	util.Log(ctx).Info("engineering rule deleted", "rule_id", id)
	return nil
}

// Conflicts lists catalog rules that share the given rule's name while
// disagreeing on severity or scope. Name uniqueness is exact, so variants
// that differ only in case can coexist and end up here.
func (s *RuleService) Conflicts(ctx context.Context, id string) ([]*domain.EngineeringRule, error) {
	rule, err := s.rules.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	all, err := s.rules.List(ctx, true)
	if err != nil {
		return nil, err
	}

	conflicts := make([]*domain.EngineeringRule, 0)
	for _, other := range all {
		if rule.ConflictsWith(other) {
			conflicts = append(conflicts, other)
		}
	}
	return conflicts, nil
}
