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

// PatternRepository defines the interface for architecture pattern
// persistence.
type PatternRepository interface {
	Create(ctx context.Context, pattern *domain.ArchitecturePattern) error
	GetByID(ctx context.Context, id string) (*domain.ArchitecturePattern, error)
	List(ctx context.Context, includeInactive bool) ([]*domain.ArchitecturePattern, error)
	Update(ctx context.Context, pattern *domain.ArchitecturePattern) error
	Delete(ctx context.Context, id string) error
	ExistsByName(ctx context.Context, name string) (bool, error)
}

// NewPatternRepository creates a pattern repository. With a database pool it
// persists to PostgreSQL, otherwise it falls back to in-memory storage.
func NewPatternRepository(_ context.Context, p pool.Pool) PatternRepository {
	if p != nil {
		return &PGPatternRepository{pool: p}
	}
	return NewMemoryPatternRepository()
}

// PGPatternRepository is the PostgreSQL implementation of PatternRepository.
type PGPatternRepository struct {
	pool pool.Pool
}

func (r *PGPatternRepository) db(ctx context.Context, readOnly bool) *gorm.DB {
	if r.pool == nil {
		return nil
	}
	return r.pool.DB(ctx, readOnly)
}

// Create creates a pattern record.
func (r *PGPatternRepository) Create(ctx context.Context, pattern *domain.ArchitecturePattern) error {
	db := r.db(ctx, false)
	if db == nil {
		return ErrDatabaseUnavailable
	}

	pattern.CreatedAt = time.Now()
	pattern.UpdatedAt = time.Now()
	return db.Create(pattern).Error
}

// GetByID retrieves a pattern by ID.
func (r *PGPatternRepository) GetByID(ctx context.Context, id string) (*domain.ArchitecturePattern, error) {
	db := r.db(ctx, true)
	if db == nil {
		return nil, ErrDatabaseUnavailable
	}

	var pattern domain.ArchitecturePattern
	if err := db.First(&pattern, "id = ?", id).Error; err != nil {
		return nil, translateGormError(err, "architecture pattern", id)
	}
	return &pattern, nil
}

// List retrieves patterns ordered by name.
func (r *PGPatternRepository) List(ctx context.Context, includeInactive bool) ([]*domain.ArchitecturePattern, error) {
	db := r.db(ctx, true)
	if db == nil {
		return nil, ErrDatabaseUnavailable
	}

	query := db.Order("name")
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	var patterns []*domain.ArchitecturePattern
	if err := query.Find(&patterns).Error; err != nil {
		return nil, err
	}
	return patterns, nil
}

// Update persists pattern changes.
func (r *PGPatternRepository) Update(ctx context.Context, pattern *domain.ArchitecturePattern) error {
	db := r.db(ctx, false)
	if db == nil {
		return ErrDatabaseUnavailable
	}

	result := db.Model(&domain.ArchitecturePattern{}).Where("id = ?", pattern.ID).Updates(map[string]any{
		"name":                     pattern.Name,
		"description":              pattern.Description,
		"guidelines":               pattern.Guidelines,
		"complexity_level":         pattern.ComplexityLevel,
		"suitable_for_small_teams": pattern.SuitableForSmallTeams,
		"suitable_for_large_scale": pattern.SuitableForLargeScale,
		"is_active":                pattern.IsActive,
		"is_ai_generated":          pattern.IsAIGenerated,
		"updated_at":               pattern.UpdatedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound("architecture pattern", pattern.ID)
	}
	return nil
}

// Delete removes a pattern record.
func (r *PGPatternRepository) Delete(ctx context.Context, id string) error {
	db := r.db(ctx, false)
	if db == nil {
		return ErrDatabaseUnavailable
	}

	result := db.Delete(&domain.ArchitecturePattern{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound("architecture pattern", id)
	}
	return nil
}

// ExistsByName reports whether a pattern with the exact name exists.
func (r *PGPatternRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	db := r.db(ctx, true)
	if db == nil {
		return false, ErrDatabaseUnavailable
	}

	var count int64
	if err := db.Model(&domain.ArchitecturePattern{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// MemoryPatternRepository is an in-memory pattern repository.
type MemoryPatternRepository struct {
	mu       sync.RWMutex
	patterns map[string]*domain.ArchitecturePattern
}

// NewMemoryPatternRepository creates an empty in-memory pattern repository.
func NewMemoryPatternRepository() *MemoryPatternRepository {
	return &MemoryPatternRepository{
		patterns: make(map[string]*domain.ArchitecturePattern),
	}
}

// Create creates a pattern record.
func (r *MemoryPatternRepository) Create(_ context.Context, pattern *domain.ArchitecturePattern) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	pattern.CreatedAt = time.Now()
	pattern.UpdatedAt = time.Now()
	copied := *pattern
	r.patterns[pattern.ID] = &copied
	return nil
}

// GetByID retrieves a pattern by ID.
func (r *MemoryPatternRepository) GetByID(_ context.Context, id string) (*domain.ArchitecturePattern, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pattern, ok := r.patterns[id]
	if !ok {
		return nil, notFound("architecture pattern", id)
	}
	copied := *pattern
	return &copied, nil
}

// List retrieves patterns ordered by name.
func (r *MemoryPatternRepository) List(_ context.Context, includeInactive bool) ([]*domain.ArchitecturePattern, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.ArchitecturePattern, 0, len(r.patterns))
	for _, pattern := range r.patterns {
		if !includeInactive && !pattern.IsActive {
			continue
		}
		copied := *pattern
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// Update persists pattern changes.
func (r *MemoryPatternRepository) Update(_ context.Context, pattern *domain.ArchitecturePattern) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.patterns[pattern.ID]; !ok {
		return notFound("architecture pattern", pattern.ID)
	}
	copied := *pattern
	r.patterns[pattern.ID] = &copied
	return nil
}

// Delete removes a pattern record.
func (r *MemoryPatternRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.patterns[id]; !ok {
		return notFound("architecture pattern", id)
	}
	delete(r.patterns, id)
	return nil
}

// ExistsByName reports whether a pattern with the exact name exists.
func (r *MemoryPatternRepository) ExistsByName(_ context.Context, name string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, pattern := range r.patterns {
		if pattern.Name == name {
			return true, nil
		}
	}
	return false, nil
}
