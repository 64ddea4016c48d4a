package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
)

const maxRuleNameLength = 200

// RuleSeverity grades how strongly an engineering rule binds.
type RuleSeverity string

const (
	RuleSeverityInfo     RuleSeverity = "info"
	RuleSeverityWarning  RuleSeverity = "warning"
	RuleSeverityError    RuleSeverity = "error"
	RuleSeverityCritical RuleSeverity = "critical"
)

// ParseRuleSeverity converts untrusted input into a RuleSeverity.
func ParseRuleSeverity(s string) (RuleSeverity, error) {
	switch sev := RuleSeverity(strings.ToLower(strings.TrimSpace(s))); sev {
	case RuleSeverityInfo, RuleSeverityWarning, RuleSeverityError, RuleSeverityCritical:
		return sev, nil
	default:
		return "", fmt.Errorf("%w: unknown rule severity %q", ErrInvalidArgument, s)
	}
}

// IsValid reports whether the severity is one of the known grades.
func (s RuleSeverity) IsValid() bool {
	switch s {
	case RuleSeverityInfo, RuleSeverityWarning, RuleSeverityError, RuleSeverityCritical:
		return true
	}
	return false
}

// RuleScope names the area of a codebase a rule applies to.
type RuleScope string

const (
	RuleScopeGlobal   RuleScope = "global"
	RuleScopeBackend  RuleScope = "backend"
	RuleScopeFrontend RuleScope = "frontend"
	RuleScopeDatabase RuleScope = "database"
	RuleScopeTesting  RuleScope = "testing"
	RuleScopeSecurity RuleScope = "security"
	RuleScopeDevOps   RuleScope = "devops"
)

// ParseRuleScope converts untrusted input into a RuleScope.
func ParseRuleScope(s string) (RuleScope, error) {
	switch sc := RuleScope(strings.ToLower(strings.TrimSpace(s))); sc {
	case RuleScopeGlobal, RuleScopeBackend, RuleScopeFrontend, RuleScopeDatabase,
		RuleScopeTesting, RuleScopeSecurity, RuleScopeDevOps:
		return sc, nil
	default:
		return "", fmt.Errorf("%w: unknown rule scope %q", ErrInvalidArgument, s)
	}
}

// IsValid reports whether the scope is one of the known areas.
func (s RuleScope) IsValid() bool {
	switch s {
	case RuleScopeGlobal, RuleScopeBackend, RuleScopeFrontend, RuleScopeDatabase,
		RuleScopeTesting, RuleScopeSecurity, RuleScopeDevOps:
		return true
	}
	return false
}

// EngineeringRule is a catalog engineering practice with a severity and scope
// constraint. Two rules conflict when they share a name but differ in
// constraint.
type EngineeringRule struct {
	ID            string       `json:"id"             gorm:"primaryKey"`
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	Rationale     string       `json:"rationale"`
	Severity      RuleSeverity `json:"severity"`
	Scope         RuleScope    `json:"scope"`
	IsEnforced    bool         `json:"is_enforced"`
	IsActive      bool         `json:"is_active"`
	IsAIGenerated bool         `json:"is_ai_generated"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// TableName returns the table name for the EngineeringRule model.
func (EngineeringRule) TableName() string {
	return "engineering_rules"
}

// NewEngineeringRule creates an active rule with a generated ID.
func NewEngineeringRule(
	name, description, rationale string,
	severity RuleSeverity,
	scope RuleScope,
	enforced bool,
) (*EngineeringRule, error) {
	if err := requireName(name, "engineering rule", maxRuleNameLength); err != nil {
		return nil, err
	}
	if !severity.IsValid() {
		return nil, fmt.Errorf("%w: unknown rule severity %q", ErrInvalidArgument, severity)
	}
	if !scope.IsValid() {
		return nil, fmt.Errorf("%w: unknown rule scope %q", ErrInvalidArgument, scope)
	}

	return &EngineeringRule{
		ID:          xid.New().String(),
		Name:        name,
		Description: description,
		Rationale:   rationale,
		Severity:    severity,
		Scope:       scope,
		IsEnforced:  enforced,
		IsActive:    true,
	}, nil
}

// ConflictsWith reports whether two rules share a name but disagree on the
// constraint.
func (r *EngineeringRule) ConflictsWith(other *EngineeringRule) bool {
	if other == nil || r.ID == other.ID {
		return false
	}
	if !strings.EqualFold(r.Name, other.Name) {
		return false
	}
	return r.Severity != other.Severity || r.Scope != other.Scope
}

// Rename changes the rule name.
func (r *EngineeringRule) Rename(name string) error {
	if err := requireName(name, "engineering rule", maxRuleNameLength); err != nil {
		return err
	}
	r.Name = name
	r.UpdatedAt = time.Now()
	return nil
}

// SetDescription replaces the description.
func (r *EngineeringRule) SetDescription(description string) {
	r.Description = description
	r.UpdatedAt = time.Now()
}

// SetRationale replaces the rationale.
func (r *EngineeringRule) SetRationale(rationale string) {
	r.Rationale = rationale
	r.UpdatedAt = time.Now()
}

// SetConstraint replaces the severity/scope constraint.
func (r *EngineeringRule) SetConstraint(severity RuleSeverity, scope RuleScope) error {
	if !severity.IsValid() {
		return fmt.Errorf("%w: unknown rule severity %q", ErrInvalidArgument, severity)
	}
	if !scope.IsValid() {
		return fmt.Errorf("%w: unknown rule scope %q", ErrInvalidArgument, scope)
	}
	r.Severity = severity
	r.Scope = scope
	r.UpdatedAt = time.Now()
	return nil
}

// SetEnforced toggles enforcement.
func (r *EngineeringRule) SetEnforced(enforced bool) {
	r.IsEnforced = enforced
	r.UpdatedAt = time.Now()
}

// Activate marks the rule active.
func (r *EngineeringRule) Activate() {
	r.IsActive = true
	r.UpdatedAt = time.Now()
}

// Deactivate soft-deletes the rule.
func (r *EngineeringRule) Deactivate() {
	r.IsActive = false
	r.UpdatedAt = time.Now()
}

// MarkAIGenerated flags the rule as AI-proposed.
func (r *EngineeringRule) MarkAIGenerated() {
	r.IsAIGenerated = true
}
