package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
)

const (
	maxProfileNameLength        = 200
	maxProfileDescriptionLength = 1000
)

// ProfileTechStack pairs a tech stack reference with the resolved parameter
// values the operator chose for it. Owned by a profile; not independently
// persisted or addressed.
type ProfileTechStack struct {
	TechStackID string
	values      map[string]TypedValue
}

// Value looks up a resolved parameter value by name.
func (p ProfileTechStack) Value(name string) (TypedValue, bool) {
	v, ok := p.values[name]
	return v, ok
}

// Values returns a copy of the resolved parameter values.
func (p ProfileTechStack) Values() map[string]TypedValue {
	out := make(map[string]TypedValue, len(p.values))
	for k, v := range p.values {
		out[k] = v
	}
	return out
}

// RestoreProfileTechStack rebuilds an owned stack entry from stored state.
// For repository use.
func RestoreProfileTechStack(techStackID string, values map[string]TypedValue) ProfileTechStack {
	copied := make(map[string]TypedValue, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return ProfileTechStack{TechStackID: techStackID, values: copied}
}

// ProjectProfile is the root aggregate an operator assembles: tech stack
// references with resolved values, architecture pattern references and
// engineering rule references. All mutation goes through the profile, and
// owned collections are exposed only as copies. A profile gates artifact
// generation through IsValid.
type ProjectProfile struct {
	ID             string    `json:"id"               gorm:"primaryKey"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	ProjectName    string    `json:"project_name,omitempty"`
	TargetTeamSize int       `json:"target_team_size,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	techStacks []ProfileTechStack
	patternIDs []string
	ruleIDs    []string
}

// TableName returns the table name for the ProjectProfile model.
func (ProjectProfile) TableName() string {
	return "project_profiles"
}

// NewProjectProfile creates an empty profile with a generated ID.
func NewProjectProfile(name, description string) (*ProjectProfile, error) {
	if err := requireName(name, "profile", maxProfileNameLength); err != nil {
		return nil, err
	}
	if err := requireMaxLen(description, "profile description", maxProfileDescriptionLength); err != nil {
		return nil, err
	}

	return &ProjectProfile{
		ID:          xid.New().String(),
		Name:        name,
		Description: description,
	}, nil
}

// RestoreProjectProfile rebuilds a profile aggregate from stored state. For
// repository use.
func RestoreProjectProfile(
	profile ProjectProfile,
	techStacks []ProfileTechStack,
	patternIDs, ruleIDs []string,
) *ProjectProfile {
	restored := profile
	restored.techStacks = append([]ProfileTechStack(nil), techStacks...)
	restored.patternIDs = append([]string(nil), patternIDs...)
	restored.ruleIDs = append([]string(nil), ruleIDs...)
	return &restored
}

// AddTechStack adds a reference to the given stack with raw candidate values
// keyed by parameter name. Every required parameter must be supplied; every
// supplied value must validate against its definition; unset optional
// parameters fall back to their default when one is configured. Supplying a
// name the stack does not declare is a validation failure.
func (p *ProjectProfile) AddTechStack(stack *TechStack, rawValues map[string]string) error {
	if stack == nil {
		return fmt.Errorf("%w: tech stack is required", ErrInvalidArgument)
	}
	if p.HasTechStack(stack.ID) {
		return fmt.Errorf("%w: tech stack %q is already part of profile %q",
			ErrDuplicateReference, stack.Name, p.Name)
	}

	for name := range rawValues {
		if _, ok := stack.Parameter(name); !ok {
			return fmt.Errorf("%w: tech stack %q has no parameter %q",
				ErrInvalidValue, stack.Name, name)
		}
	}

	resolved := make(map[string]TypedValue)
	for _, param := range stack.Parameters() {
		raw, supplied := valueFor(rawValues, param.Name)
		switch {
		case supplied:
			value, err := param.CreateValue(raw)
			if err != nil {
				return err
			}
			resolved[param.Name] = value
		case param.IsRequired:
			return fmt.Errorf("%w: parameter %q of tech stack %q",
				ErrMissingRequiredParameter, param.Name, stack.Name)
		case param.HasDefault():
			value, err := param.CreateValue(param.DefaultValue)
			if err != nil {
				return err
			}
			resolved[param.Name] = value
		}
	}

	p.techStacks = append(p.techStacks, ProfileTechStack{
		TechStackID: stack.ID,
		values:      resolved,
	})
	p.UpdatedAt = time.Now()
	return nil
}

// RemoveTechStack drops a stack reference.
func (p *ProjectProfile) RemoveTechStack(techStackID string) error {
	for i, ts := range p.techStacks {
		if ts.TechStackID == techStackID {
			p.techStacks = append(p.techStacks[:i], p.techStacks[i+1:]...)
			p.UpdatedAt = time.Now()
			return nil
		}
	}
	return fmt.Errorf("%w: tech stack %s on profile %q", ErrNotFound, techStackID, p.Name)
}

// HasTechStack reports whether the profile references the stack.
func (p *ProjectProfile) HasTechStack(techStackID string) bool {
	for _, ts := range p.techStacks {
		if ts.TechStackID == techStackID {
			return true
		}
	}
	return false
}

// TechStacks returns a copy of the owned stack entries.
func (p *ProjectProfile) TechStacks() []ProfileTechStack {
	return append([]ProfileTechStack(nil), p.techStacks...)
}

// TechStackCount returns the number of referenced stacks.
func (p *ProjectProfile) TechStackCount() int {
	return len(p.techStacks)
}

// AddArchitecturePattern adds a pattern reference.
func (p *ProjectProfile) AddArchitecturePattern(patternID string) error {
	if strings.TrimSpace(patternID) == "" {
		return fmt.Errorf("%w: pattern reference is required", ErrInvalidArgument)
	}
	if containsID(p.patternIDs, patternID) {
		return fmt.Errorf("%w: architecture pattern %s is already part of profile %q",
			ErrDuplicateReference, patternID, p.Name)
	}
	p.patternIDs = append(p.patternIDs, patternID)
	p.UpdatedAt = time.Now()
	return nil
}

// RemoveArchitecturePattern drops a pattern reference.
func (p *ProjectProfile) RemoveArchitecturePattern(patternID string) error {
	for i, id := range p.patternIDs {
		if id == patternID {
			p.patternIDs = append(p.patternIDs[:i], p.patternIDs[i+1:]...)
			p.UpdatedAt = time.Now()
			return nil
		}
	}
	return fmt.Errorf("%w: architecture pattern %s on profile %q", ErrNotFound, patternID, p.Name)
}

// ArchitecturePatternIDs returns a copy of the pattern references.
func (p *ProjectProfile) ArchitecturePatternIDs() []string {
	return append([]string(nil), p.patternIDs...)
}

// AddEngineeringRule adds a rule reference.
func (p *ProjectProfile) AddEngineeringRule(ruleID string) error {
	if strings.TrimSpace(ruleID) == "" {
		return fmt.Errorf("%w: rule reference is required", ErrInvalidArgument)
	}
	if containsID(p.ruleIDs, ruleID) {
		return fmt.Errorf("%w: engineering rule %s is already part of profile %q",
			ErrDuplicateReference, ruleID, p.Name)
	}
	p.ruleIDs = append(p.ruleIDs, ruleID)
	p.UpdatedAt = time.Now()
	return nil
}

// RemoveEngineeringRule drops a rule reference.
func (p *ProjectProfile) RemoveEngineeringRule(ruleID string) error {
	for i, id := range p.ruleIDs {
		if id == ruleID {
			p.ruleIDs = append(p.ruleIDs[:i], p.ruleIDs[i+1:]...)
			p.UpdatedAt = time.Now()
			return nil
		}
	}
	return fmt.Errorf("%w: engineering rule %s on profile %q", ErrNotFound, ruleID, p.Name)
}

// EngineeringRuleIDs returns a copy of the rule references.
func (p *ProjectProfile) EngineeringRuleIDs() []string {
	return append([]string(nil), p.ruleIDs...)
}

// IsValid reports whether the profile is complete enough for artifact
// generation: at least one tech stack, at least one architecture pattern and
// a project name. Pure predicate, no side effects.
func (p *ProjectProfile) IsValid() bool {
	return len(p.techStacks) > 0 &&
		len(p.patternIDs) > 0 &&
		strings.TrimSpace(p.ProjectName) != ""
}

// MissingRequirements names whatever IsValid still lacks.
func (p *ProjectProfile) MissingRequirements() []string {
	var missing []string
	if len(p.techStacks) == 0 {
		missing = append(missing, "at least one tech stack")
	}
	if len(p.patternIDs) == 0 {
		missing = append(missing, "at least one architecture pattern")
	}
	if strings.TrimSpace(p.ProjectName) == "" {
		missing = append(missing, "a project name")
	}
	return missing
}

// Rename changes the profile name.
func (p *ProjectProfile) Rename(name string) error {
	if err := requireName(name, "profile", maxProfileNameLength); err != nil {
		return err
	}
	p.Name = name
	p.UpdatedAt = time.Now()
	return nil
}

// SetDescription replaces the description.
func (p *ProjectProfile) SetDescription(description string) error {
	if err := requireMaxLen(description, "profile description", maxProfileDescriptionLength); err != nil {
		return err
	}
	p.Description = description
	p.UpdatedAt = time.Now()
	return nil
}

// SetProjectName sets the generated project's name; an empty string clears it.
func (p *ProjectProfile) SetProjectName(projectName string) error {
	if err := requireMaxLen(projectName, "project name", maxProfileNameLength); err != nil {
		return err
	}
	p.ProjectName = strings.TrimSpace(projectName)
	p.UpdatedAt = time.Now()
	return nil
}

// SetTargetTeamSize sets the expected team size; zero clears it.
func (p *ProjectProfile) SetTargetTeamSize(size int) error {
	if size < 0 {
		return fmt.Errorf("%w: target team size must be non-negative", ErrInvalidArgument)
	}
	p.TargetTeamSize = size
	p.UpdatedAt = time.Now()
	return nil
}

func valueFor(rawValues map[string]string, name string) (string, bool) {
	if v, ok := rawValues[name]; ok {
		return v, true
	}
	// Parameter names match case-insensitively everywhere else.
	for k, v := range rawValues {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

func containsID(ids []string, id string) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}
