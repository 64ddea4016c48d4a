package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/antinvestor/blueprint/internal/domain"
	"github.com/pitabwire/frame/datastore/pool"
	"gorm.io/gorm"
)

// CategoryRepository defines the interface for category persistence.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	CreateBatch(ctx context.Context, categories []*domain.Category) error
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	List(ctx context.Context, includeInactive bool) ([]*domain.Category, error)
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id string) error
	ExistsByName(ctx context.Context, name string) (bool, error)
}

// NewCategoryRepository creates a category repository. With a database pool
// it persists to PostgreSQL, otherwise it falls back to in-memory storage.
func NewCategoryRepository(_ context.Context, p pool.Pool) CategoryRepository {
	if p != nil {
		return &PGCategoryRepository{pool: p}
	}
	return NewMemoryCategoryRepository()
}

// PGCategoryRepository is the PostgreSQL implementation of CategoryRepository.
type PGCategoryRepository struct {
	pool pool.Pool
}

func (r *PGCategoryRepository) db(ctx context.Context, readOnly bool) *gorm.DB {
	if r.pool == nil {
		return nil
	}
	return r.pool.DB(ctx, readOnly)
}

// Create creates a category record.
func (r *PGCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	db := r.db(ctx, false)
	if db == nil {
		return ErrDatabaseUnavailable
	}

	category.CreatedAt = time.Now()
	category.UpdatedAt = time.Now()
	return db.Create(category).Error
}

// CreateBatch inserts categories in a single transaction.
func (r *PGCategoryRepository) CreateBatch(ctx context.Context, categories []*domain.Category) error {
	if len(categories) == 0 {
		return nil
	}

	db := r.db(ctx, false)
	if db == nil {
		return ErrDatabaseUnavailable
	}

	now := time.Now()
	for _, category := range categories {
		category.CreatedAt = now
		category.UpdatedAt = now
	}
	return db.Create(categories).Error
}

// GetByID retrieves a category by ID.
func (r *PGCategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	db := r.db(ctx, true)
	if db == nil {
		return nil, ErrDatabaseUnavailable
	}

	var category domain.Category
	if err := db.First(&category, "id = ?", id).Error; err != nil {
		return nil, translateGormError(err, "category", id)
	}
	return &category, nil
}

// List retrieves categories ordered for display.
func (r *PGCategoryRepository) List(ctx context.Context, includeInactive bool) ([]*domain.Category, error) {
	db := r.db(ctx, true)
	if db == nil {
		return nil, ErrDatabaseUnavailable
	}

	query := db.Order("display_order, name")
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	var categories []*domain.Category
	if err := query.Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// Update persists category changes.
func (r *PGCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	db := r.db(ctx, false)
	if db == nil {
		return ErrDatabaseUnavailable
	}

	result := db.Model(&domain.Category{}).Where("id = ?", category.ID).Updates(map[string]any{
		"name":            category.Name,
		"description":     category.Description,
		"is_active":       category.IsActive,
		"is_ai_generated": category.IsAIGenerated,
		"display_order":   category.DisplayOrder,
		"updated_at":      category.UpdatedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound("category", category.ID)
	}
	return nil
}

// Delete removes a category record.
func (r *PGCategoryRepository) Delete(ctx context.Context, id string) error {
	db := r.db(ctx, false)
	if db == nil {
		return ErrDatabaseUnavailable
	}

	result := db.Delete(&domain.Category{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound("category", id)
	}
	return nil
}

// ExistsByName reports whether a category with the exact name exists.
func (r *PGCategoryRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	db := r.db(ctx, true)
	if db == nil {
		return false, ErrDatabaseUnavailable
	}

	var count int64
	if err := db.Model(&domain.Category{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// MemoryCategoryRepository is an in-memory category repository.
type MemoryCategoryRepository struct {
	mu         sync.RWMutex
	categories map[string]*domain.Category
}

// NewMemoryCategoryRepository creates an empty in-memory category repository.
func NewMemoryCategoryRepository() *MemoryCategoryRepository {
	return &MemoryCategoryRepository{
		categories: make(map[string]*domain.Category),
	}
}

// Create creates a category record.
func (r *MemoryCategoryRepository) Create(_ context.Context, category *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	category.CreatedAt = time.Now()
	category.UpdatedAt = time.Now()
	copied := *category
	r.categories[category.ID] = &copied
	return nil
}

// CreateBatch inserts categories; in memory all-or-nothing is trivial.
func (r *MemoryCategoryRepository) CreateBatch(ctx context.Context, categories []*domain.Category) error {
	for _, category := range categories {
		if err := r.Create(ctx, category); err != nil {
			return err
		}
	}
	return nil
}

// GetByID retrieves a category by ID.
func (r *MemoryCategoryRepository) GetByID(_ context.Context, id string) (*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	category, ok := r.categories[id]
	if !ok {
		return nil, notFound("category", id)
	}
	copied := *category
	return &copied, nil
}

// List retrieves categories ordered for display.
func (r *MemoryCategoryRepository) List(_ context.Context, includeInactive bool) ([]*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Category, 0, len(r.categories))
	for _, category := range r.categories {
		if !includeInactive && !category.IsActive {
			continue
		}
		copied := *category
		result = append(result, &copied)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].DisplayOrder != result[j].DisplayOrder {
			return result[i].DisplayOrder < result[j].DisplayOrder
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// Update persists category changes.
func (r *MemoryCategoryRepository) Update(_ context.Context, category *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[category.ID]; !ok {
		return notFound("category", category.ID)
	}
	copied := *category
	r.categories[category.ID] = &copied
	return nil
}

// Delete removes a category record.
func (r *MemoryCategoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[id]; !ok {
		return notFound("category", id)
	}
	delete(r.categories, id)
	return nil
}

// ExistsByName reports whether a category with the exact name exists.
func (r *MemoryCategoryRepository) ExistsByName(_ context.Context, name string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, category := range r.categories {
		if category.Name == name {
			return true, nil
		}
	}
	return false, nil
}
