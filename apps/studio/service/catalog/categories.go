// Package catalog provides CRUD services over the catalog entities. Each
// service validates through the domain model, enforces name uniqueness and
// guards deletes against live references.
package catalog

import (
	"context"
	"fmt"

	"github.com/pitabwire/util"

	"github.com/antinvestor/blueprint/apps/studio/service/repository"
	"github.com/antinvestor/blueprint/internal/domain"
)

// CategoryService manages tech stack categories.
type CategoryService struct {
	categories repository.CategoryRepository
	stacks     repository.TechStackRepository
}

// NewCategoryService creates a new category service.
func NewCategoryService(
	categories repository.CategoryRepository,
	stacks repository.TechStackRepository,
) *CategoryService {
	return &CategoryService{
		categories: categories,
		stacks:     stacks,
	}
}

// Create validates and persists a new category.
func (s *CategoryService) Create(
	ctx context.Context, name, description string, displayOrder int,
) (*domain.Category, error) {
	category, err := domain.NewCategory(name, description, displayOrder)
	if err != nil {
		return nil, err
	}

	exists, err := s.categories.ExistsByName(ctx, category.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: category %q", domain.ErrDuplicateName, category.Name)
	}

	if err = s.categories.Create(ctx, category); err != nil {
		return nil, err
	}

	util.Log(ctx).Info("category created",
		"category_id", category.ID,
		"name", category.Name)
	return category, nil
}

// Get retrieves a category by ID.
func (s *CategoryService) Get(ctx context.Context, id string) (*domain.Category, error) {
	return s.categories.GetByID(ctx, id)
}

// List retrieves categories, optionally including deactivated ones.
func (s *CategoryService) List(ctx context.Context, includeInactive bool) ([]*domain.Category, error) {
	return s.categories.List(ctx, includeInactive)
}

// Update renames and redescribes a category, re-validating through the
// domain model.
func (s *CategoryService) Update(
	ctx context.Context, id, name, description string, displayOrder int,
) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if name != category.Name {
		exists, existsErr := s.categories.ExistsByName(ctx, name)
		if existsErr != nil {
			return nil, existsErr
		}
		if exists {
			return nil, fmt.Errorf("%w: category %q", domain.ErrDuplicateName, name)
		}
	}

	if err = category.Rename(name); err != nil {
		return nil, err
	}
	if err = category.SetDescription(description); err != nil {
		return nil, err
	}
	category.SetDisplayOrder(displayOrder)

	if err = s.categories.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Activate marks a category active again.
func (s *CategoryService) Activate(ctx context.Context, id string) error {
	return s.setActive(ctx, id, true)
}

// Deactivate soft-deletes a category; existing stack references stay intact.
func (s *CategoryService) Deactivate(ctx context.Context, id string) error {
	return s.setActive(ctx, id, false)
}

func (s *CategoryService) setActive(ctx context.Context, id string, active bool) error {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if active {
		category.Activate()
	} else {
		category.Deactivate()
	}
	return s.categories.Update(ctx, category)
}

// Delete removes a category. Refused while tech stacks still reference it.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if _, err := s.categories.GetByID(ctx, id); err != nil {
		return err
	}

	count, err := s.stacks.CountByCategoryID(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: category %s has %d tech stacks", domain.ErrEntityInUse, id, count)
	}

	if err = s.categories.Delete(ctx, id); err != nil {
		return err
	}

	util.Log(ctx).Info("category deleted", "category_id", id)
	return nil
}
