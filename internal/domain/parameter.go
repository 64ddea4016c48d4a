package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/xid"
)

// Validation limits for parameter definitions.
const (
	maxParameterNameLength        = 100
	maxParameterDescriptionLength = 500
)

// ParameterDefinition declares a configurable knob on a tech stack: its type,
// requiredness, optional default and, for choice parameters, the allowed set.
// Definitions belong to exactly one stack and are mutated only through their
// validating setters.
type ParameterDefinition struct {
	ID           string    `json:"id"            gorm:"primaryKey"`
	TechStackID  string    `json:"tech_stack_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Type         ValueType `json:"type"`
	IsRequired   bool      `json:"is_required"`
	DefaultValue string    `json:"default_value,omitempty"`
	DisplayOrder int       `json:"display_order"`

	allowedValues []string
}

// NewParameterDefinition creates a definition with a generated ID. Choice
// parameters start without allowed values; call SetAllowedValues before the
// definition can validate candidates.
func NewParameterDefinition(
	name, description string,
	valueType ValueType,
	isRequired bool,
) (*ParameterDefinition, error) {
	if err := requireName(name, "parameter", maxParameterNameLength); err != nil {
		return nil, err
	}
	if err := requireMaxLen(description, "parameter description", maxParameterDescriptionLength); err != nil {
		return nil, err
	}
	if !valueType.IsValid() {
		return nil, fmt.Errorf("%w: unknown value type %q", ErrInvalidArgument, valueType)
	}

	return &ParameterDefinition{
		ID:          xid.New().String(),
		Name:        name,
		Description: description,
		Type:        valueType,
		IsRequired:  isRequired,
	}, nil
}

// RestoreParameterDefinition rebuilds a definition from stored state. For
// repository use; the state is assumed to have been validated at creation.
func RestoreParameterDefinition(
	id, techStackID, name, description string,
	valueType ValueType,
	isRequired bool,
	defaultValue string,
	displayOrder int,
	allowedValues []string,
) *ParameterDefinition {
	return &ParameterDefinition{
		ID:            id,
		TechStackID:   techStackID,
		Name:          name,
		Description:   description,
		Type:          valueType,
		IsRequired:    isRequired,
		DefaultValue:  defaultValue,
		DisplayOrder:  displayOrder,
		allowedValues: append([]string(nil), allowedValues...),
	}
}

// Validate checks a candidate string against the definition.
func (p *ParameterDefinition) Validate(candidate string) error {
	if strings.TrimSpace(candidate) == "" {
		return fmt.Errorf("%w: parameter %q requires a value", ErrInvalidValue, p.Name)
	}

	switch p.Type {
	case ValueTypeText:
		return nil
	case ValueTypeNumber:
		if _, err := strconv.ParseFloat(candidate, 64); err != nil {
			return fmt.Errorf("%w: parameter %q expects a number, got %q", ErrInvalidValue, p.Name, candidate)
		}
	case ValueTypeBoolean:
		if _, err := strconv.ParseBool(candidate); err != nil {
			return fmt.Errorf("%w: parameter %q expects a boolean, got %q", ErrInvalidValue, p.Name, candidate)
		}
	case ValueTypeChoice:
		if !p.isAllowed(candidate) {
			return fmt.Errorf("%w: parameter %q does not allow %q (allowed: %s)",
				ErrInvalidValue, p.Name, candidate, strings.Join(p.allowedValues, ", "))
		}
	case ValueTypeVersion:
		if _, err := semver.NewVersion(strings.TrimSpace(candidate)); err != nil {
			return fmt.Errorf("%w: parameter %q expects a version, got %q", ErrInvalidValue, p.Name, candidate)
		}
	default:
		return fmt.Errorf("%w: parameter %q has unknown type %q", ErrInvalidValue, p.Name, p.Type)
	}

	return nil
}

// CreateValue validates a candidate and returns the matching typed value.
func (p *ParameterDefinition) CreateValue(candidate string) (TypedValue, error) {
	if err := p.Validate(candidate); err != nil {
		return TypedValue{}, err
	}
	return NewTypedValue(p.Type, candidate)
}

// SetAllowedValues replaces the allowed set for a choice parameter. The set
// is de-duplicated case-insensitively, first occurrence wins.
func (p *ParameterDefinition) SetAllowedValues(values []string) error {
	if p.Type != ValueTypeChoice {
		return fmt.Errorf("%w: allowed values only apply to choice parameters, %q is %s",
			ErrInvalidOperation, p.Name, p.Type)
	}

	seen := make(map[string]bool, len(values))
	deduped := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, v)
	}

	if len(deduped) == 0 {
		return fmt.Errorf("%w: parameter %q requires at least one allowed value", ErrInvalidArgument, p.Name)
	}

	p.allowedValues = deduped
	return nil
}

// AllowedValues returns a copy of the allowed set.
func (p *ParameterDefinition) AllowedValues() []string {
	return append([]string(nil), p.allowedValues...)
}

// SetName renames the parameter.
func (p *ParameterDefinition) SetName(name string) error {
	if err := requireName(name, "parameter", maxParameterNameLength); err != nil {
		return err
	}
	p.Name = name
	return nil
}

// SetDescription replaces the description.
func (p *ParameterDefinition) SetDescription(description string) error {
	if err := requireMaxLen(description, "parameter description", maxParameterDescriptionLength); err != nil {
		return err
	}
	p.Description = description
	return nil
}

// SetDefaultValue sets the default; an empty string clears it. A non-empty
// default must itself pass validation.
func (p *ParameterDefinition) SetDefaultValue(value string) error {
	if value == "" {
		p.DefaultValue = ""
		return nil
	}
	if err := p.Validate(value); err != nil {
		return err
	}
	p.DefaultValue = value
	return nil
}

// SetDisplayOrder sets the ordering hint.
func (p *ParameterDefinition) SetDisplayOrder(order int) {
	p.DisplayOrder = order
}

// SetRequired toggles requiredness.
func (p *ParameterDefinition) SetRequired(required bool) {
	p.IsRequired = required
}

// HasDefault reports whether a default value is configured.
func (p *ParameterDefinition) HasDefault() bool {
	return p.DefaultValue != ""
}

func (p *ParameterDefinition) isAllowed(candidate string) bool {
	for _, v := range p.allowedValues {
		if strings.EqualFold(v, candidate) {
			return true
		}
	}
	return false
}
