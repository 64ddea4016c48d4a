package domain

import (
	"time"

	"github.com/rs/xid"
)

// Validation limits for categories.
const (
	maxCategoryNameLength        = 100
	maxCategoryDescriptionLength = 500
)

// Category groups related tech stacks in the catalog. Names are unique across
// the whole catalog; uniqueness is enforced at the service layer. Categories
// are deactivated rather than deleted while tech stacks reference them.
type Category struct {
	ID            string    `json:"id"              gorm:"primaryKey"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	IsActive      bool      `json:"is_active"`
	IsAIGenerated bool      `json:"is_ai_generated"`
	DisplayOrder  int       `json:"display_order"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName returns the table name for the Category model.
func (Category) TableName() string {
	return "categories"
}

// NewCategory creates an active category with a generated ID.
func NewCategory(name, description string, displayOrder int) (*Category, error) {
	if err := requireName(name, "category", maxCategoryNameLength); err != nil {
		return nil, err
	}
	if err := requireMaxLen(description, "category description", maxCategoryDescriptionLength); err != nil {
		return nil, err
	}

	return &Category{
		ID:           xid.New().String(),
		Name:         name,
		Description:  description,
		IsActive:     true,
		DisplayOrder: displayOrder,
	}, nil
}

// Rename changes the category name.
func (c *Category) Rename(name string) error {
	if err := requireName(name, "category", maxCategoryNameLength); err != nil {
		return err
	}
	c.Name = name
	c.UpdatedAt = time.Now()
	return nil
}

// SetDescription replaces the description.
func (c *Category) SetDescription(description string) error {
	if err := requireMaxLen(description, "category description", maxCategoryDescriptionLength); err != nil {
		return err
	}
	c.Description = description
	c.UpdatedAt = time.Now()
	return nil
}

// SetDisplayOrder sets the ordering hint.
func (c *Category) SetDisplayOrder(order int) {
	c.DisplayOrder = order
	c.UpdatedAt = time.Now()
}

// Activate marks the category active.
func (c *Category) Activate() {
	c.IsActive = true
	c.UpdatedAt = time.Now()
}

// Deactivate soft-deletes the category.
func (c *Category) Deactivate() {
	c.IsActive = false
	c.UpdatedAt = time.Now()
}

// MarkAIGenerated flags the category as AI-proposed.
func (c *Category) MarkAIGenerated() {
	c.IsAIGenerated = true
}
