package domain

import (
	"fmt"
	"time"

	"github.com/rs/xid"
)

// Complexity bounds for architecture patterns.
const (
	minComplexityLevel = 1
	maxComplexityLevel = 5

	maxPatternNameLength = 200
)

// ArchitecturePattern is a catalog architecture style (layered, hexagonal,
// event-driven) with guidance on when it fits.
type ArchitecturePattern struct {
	ID                    string    `json:"id"                      gorm:"primaryKey"`
	Name                  string    `json:"name"`
	Description           string    `json:"description"`
	Guidelines            string    `json:"guidelines"`
	ComplexityLevel       int       `json:"complexity_level"`
	SuitableForSmallTeams bool      `json:"suitable_for_small_teams"`
	SuitableForLargeScale bool      `json:"suitable_for_large_scale"`
	IsActive              bool      `json:"is_active"`
	IsAIGenerated         bool      `json:"is_ai_generated"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// TableName returns the table name for the ArchitecturePattern model.
func (ArchitecturePattern) TableName() string {
	return "architecture_patterns"
}

// NewArchitecturePattern creates an active pattern with a generated ID.
func NewArchitecturePattern(
	name, description, guidelines string,
	complexityLevel int,
	smallTeams, largeScale bool,
) (*ArchitecturePattern, error) {
	if err := requireName(name, "architecture pattern", maxPatternNameLength); err != nil {
		return nil, err
	}
	if err := validateComplexity(complexityLevel); err != nil {
		return nil, err
	}

	return &ArchitecturePattern{
		ID:                    xid.New().String(),
		Name:                  name,
		Description:           description,
		Guidelines:            guidelines,
		ComplexityLevel:       complexityLevel,
		SuitableForSmallTeams: smallTeams,
		SuitableForLargeScale: largeScale,
		IsActive:              true,
	}, nil
}

// Rename changes the pattern name.
func (p *ArchitecturePattern) Rename(name string) error {
	if err := requireName(name, "architecture pattern", maxPatternNameLength); err != nil {
		return err
	}
	p.Name = name
	p.UpdatedAt = time.Now()
	return nil
}

// SetDescription replaces the description.
func (p *ArchitecturePattern) SetDescription(description string) {
	p.Description = description
	p.UpdatedAt = time.Now()
}

// SetGuidelines replaces the guidance text.
func (p *ArchitecturePattern) SetGuidelines(guidelines string) {
	p.Guidelines = guidelines
	p.UpdatedAt = time.Now()
}

// SetComplexityLevel sets the 1..5 complexity rating.
func (p *ArchitecturePattern) SetComplexityLevel(level int) error {
	if err := validateComplexity(level); err != nil {
		return err
	}
	p.ComplexityLevel = level
	p.UpdatedAt = time.Now()
	return nil
}

// SetSuitability sets the team-size suitability flags.
func (p *ArchitecturePattern) SetSuitability(smallTeams, largeScale bool) {
	p.SuitableForSmallTeams = smallTeams
	p.SuitableForLargeScale = largeScale
	p.UpdatedAt = time.Now()
}

// Activate marks the pattern active.
func (p *ArchitecturePattern) Activate() {
	p.IsActive = true
	p.UpdatedAt = time.Now()
}

// Deactivate soft-deletes the pattern.
func (p *ArchitecturePattern) Deactivate() {
	p.IsActive = false
	p.UpdatedAt = time.Now()
}

// MarkAIGenerated flags the pattern as AI-proposed.
func (p *ArchitecturePattern) MarkAIGenerated() {
	p.IsAIGenerated = true
}

func validateComplexity(level int) error {
	if level < minComplexityLevel || level > maxComplexityLevel {
		return fmt.Errorf("%w: complexity level must be between %d and %d",
			ErrInvalidArgument, minComplexityLevel, maxComplexityLevel)
	}
	return nil
}
