package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/xid"
)

// Validation limits for tech stacks.
const (
	maxTechStackNameLength        = 200
	maxTechStackDescriptionLength = 1000
)

// TechStack is a catalog technology (a database, a framework, a runtime)
// inside a category. It owns its parameter definitions: all parameter
// mutation is routed through the stack, and the collection is only exposed
// as copies. Names are unique within the owning category, enforced at the
// service layer.
type TechStack struct {
	ID               string    `json:"id"                gorm:"primaryKey"`
	CategoryID       string    `json:"category_id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	DefaultVersion   string    `json:"default_version,omitempty"`
	DocumentationURL string    `json:"documentation_url,omitempty"`
	IsActive         bool      `json:"is_active"`
	IsAIGenerated    bool      `json:"is_ai_generated"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	parameters []*ParameterDefinition
}

// TableName returns the table name for the TechStack model.
func (TechStack) TableName() string {
	return "tech_stacks"
}

// NewTechStack creates an active tech stack with a generated ID. The category
// reference is required; its existence is checked at the service layer.
func NewTechStack(categoryID, name, description string) (*TechStack, error) {
	if strings.TrimSpace(categoryID) == "" {
		return nil, fmt.Errorf("%w: tech stack requires a category reference", ErrInvalidArgument)
	}
	if err := requireName(name, "tech stack", maxTechStackNameLength); err != nil {
		return nil, err
	}
	if err := requireMaxLen(description, "tech stack description", maxTechStackDescriptionLength); err != nil {
		return nil, err
	}

	return &TechStack{
		ID:          xid.New().String(),
		CategoryID:  categoryID,
		Name:        name,
		Description: description,
		IsActive:    true,
	}, nil
}

// RestoreTechStack rebuilds a stack and its owned parameters from stored
// state. For repository use.
func RestoreTechStack(stack TechStack, parameters []*ParameterDefinition) *TechStack {
	restored := stack
	restored.parameters = append([]*ParameterDefinition(nil), parameters...)
	return &restored
}

// AddParameter attaches a definition to the stack. Names collide
// case-insensitively.
func (t *TechStack) AddParameter(param *ParameterDefinition) error {
	if param == nil {
		return fmt.Errorf("%w: parameter is required", ErrInvalidArgument)
	}
	for _, existing := range t.parameters {
		if strings.EqualFold(existing.Name, param.Name) {
			return fmt.Errorf("%w: parameter %q already exists on tech stack %q",
				ErrDuplicateName, param.Name, t.Name)
		}
	}

	param.TechStackID = t.ID
	t.parameters = append(t.parameters, param)
	t.UpdatedAt = time.Now()
	return nil
}

// RemoveParameter detaches a definition by name.
func (t *TechStack) RemoveParameter(name string) error {
	for i, existing := range t.parameters {
		if strings.EqualFold(existing.Name, name) {
			t.parameters = append(t.parameters[:i], t.parameters[i+1:]...)
			t.UpdatedAt = time.Now()
			return nil
		}
	}
	return fmt.Errorf("%w: parameter %q on tech stack %q", ErrNotFound, name, t.Name)
}

// Parameter looks up a definition by name, case-insensitively.
func (t *TechStack) Parameter(name string) (*ParameterDefinition, bool) {
	for _, existing := range t.parameters {
		if strings.EqualFold(existing.Name, name) {
			return existing, true
		}
	}
	return nil, false
}

// Parameters returns a copy of the owned definitions.
func (t *TechStack) Parameters() []*ParameterDefinition {
	return append([]*ParameterDefinition(nil), t.parameters...)
}

// RequiredParameters returns the definitions that must be resolved before the
// stack can join a profile.
func (t *TechStack) RequiredParameters() []*ParameterDefinition {
	var required []*ParameterDefinition
	for _, p := range t.parameters {
		if p.IsRequired {
			required = append(required, p)
		}
	}
	return required
}

// ParameterCount returns the number of owned definitions.
func (t *TechStack) ParameterCount() int {
	return len(t.parameters)
}

// Rename changes the stack name.
func (t *TechStack) Rename(name string) error {
	if err := requireName(name, "tech stack", maxTechStackNameLength); err != nil {
		return err
	}
	t.Name = name
	t.UpdatedAt = time.Now()
	return nil
}

// SetDescription replaces the description.
func (t *TechStack) SetDescription(description string) error {
	if err := requireMaxLen(description, "tech stack description", maxTechStackDescriptionLength); err != nil {
		return err
	}
	t.Description = description
	t.UpdatedAt = time.Now()
	return nil
}

// SetDefaultVersion sets the suggested version; an empty string clears it.
func (t *TechStack) SetDefaultVersion(version string) error {
	if version != "" {
		if _, err := semver.NewVersion(strings.TrimSpace(version)); err != nil {
			return fmt.Errorf("%w: %q is not a version", ErrInvalidValue, version)
		}
	}
	t.DefaultVersion = version
	t.UpdatedAt = time.Now()
	return nil
}

// SetDocumentationURL sets the docs link; an empty string clears it.
func (t *TechStack) SetDocumentationURL(docURL string) error {
	if docURL != "" {
		parsed, err := url.Parse(docURL)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return fmt.Errorf("%w: documentation URL must be a valid http(s) URL", ErrInvalidArgument)
		}
	}
	t.DocumentationURL = docURL
	t.UpdatedAt = time.Now()
	return nil
}

// Activate marks the stack active.
func (t *TechStack) Activate() {
	t.IsActive = true
	t.UpdatedAt = time.Now()
}

// Deactivate soft-deletes the stack.
func (t *TechStack) Deactivate() {
	t.IsActive = false
	t.UpdatedAt = time.Now()
}

// MarkAIGenerated flags the stack as AI-proposed.
func (t *TechStack) MarkAIGenerated() {
	t.IsAIGenerated = true
}
