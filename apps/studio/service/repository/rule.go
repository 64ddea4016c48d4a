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

// RuleRepository defines the interface for engineering rule persistence.
type RuleRepository interface {
	Create(ctx context.Context, rule *domain.EngineeringRule) error
	GetByID(ctx context.Context, id string) (*domain.EngineeringRule, error)
	List(ctx context.Context, includeInactive bool) ([]*domain.EngineeringRule, error)
	Update(ctx context.Context, rule *domain.EngineeringRule) error
	Delete(ctx context.Context, id string) error
	ExistsByName(ctx context.Context, name string) (bool, error)
}

// NewRuleRepository creates a rule repository. With a database pool it
// persists to PostgreSQL, otherwise it falls back to in-memory storage.
func NewRuleRepository(_ context.Context, p pool.Pool) RuleRepository {
	if p != nil {
		return &PGRuleRepository{pool: p}
	}
	return NewMemoryRuleRepository()
}

// PGRuleRepository is the PostgreSQL implementation of RuleRepository.
type PGRuleRepository struct {
	pool pool.Pool
}

func (r *PGRuleRepository) db(ctx context.Context, readOnly bool) *gorm.DB {
	if r.pool == nil {
		return nil
	}
	return r.pool.DB(ctx, readOnly)
}

// Create creates a rule record.
func (r *PGRuleRepository) Create(ctx context.Context, rule *domain.EngineeringRule) error {
	db := r.db(ctx, false)
	if db == nil {
		return ErrDatabaseUnavailable
	}

	rule.CreatedAt = time.Now()
	rule.UpdatedAt = time.Now()
	return db.Create(rule).Error
}

// GetByID retrieves a rule by ID.
func (r *PGRuleRepository) GetByID(ctx context.Context, id string) (*domain.EngineeringRule, error) {
	db := r.db(ctx, true)
	if db == nil {
		return nil, ErrDatabaseUnavailable
	}

	var rule domain.EngineeringRule
	if err := db.First(&rule, "id = ?", id).Error; err != nil {
		return nil, translateGormError(err, "engineering rule", id)
	}
	return &rule, nil
}

// List retrieves rules ordered by name.
func (r *PGRuleRepository) List(ctx context.Context, includeInactive bool) ([]*domain.EngineeringRule, error) {
	db := r.db(ctx, true)
	if db == nil {
		return nil, ErrDatabaseUnavailable
	}

	query := db.Order("name")
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	var rules []*domain.EngineeringRule
	if err := query.Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// Update persists rule changes.
func (r *PGRuleRepository) Update(ctx context.Context, rule *domain.EngineeringRule) error {
	db := r.db(ctx, false)
	if db == nil {
		return ErrDatabaseUnavailable
	}

	result := db.Model(&domain.EngineeringRule{}).Where("id = ?", rule.ID).Updates(map[string]any{
		"name":            rule.Name,
		"description":     rule.Description,
		"rationale":       rule.Rationale,
		"severity":        rule.Severity,
		"scope":           rule.Scope,
		"is_enforced":     rule.IsEnforced,
		"is_active":       rule.IsActive,
		"is_ai_generated": rule.IsAIGenerated,
		"updated_at":      rule.UpdatedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound("engineering rule", rule.ID)
	}
	return nil
}

// Delete removes a rule record.
func (r *PGRuleRepository) Delete(ctx context.Context, id string) error {
	db := r.db(ctx, false)
	if db == nil {
		return ErrDatabaseUnavailable
	}

	result := db.Delete(&domain.EngineeringRule{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound("engineering rule", id)
	}
	return nil
}

// ExistsByName reports whether a rule with the exact name exists.
func (r *PGRuleRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	db := r.db(ctx, true)
	if db == nil {
		return false, ErrDatabaseUnavailable
	}

	var count int64
	if err := db.Model(&domain.EngineeringRule{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// MemoryRuleRepository is an in-memory rule repository.
type MemoryRuleRepository struct {
	mu    sync.RWMutex
	rules map[string]*domain.EngineeringRule
}

// NewMemoryRuleRepository creates an empty in-memory rule repository.
func NewMemoryRuleRepository() *MemoryRuleRepository {
	return &MemoryRuleRepository{
		rules: make(map[string]*domain.EngineeringRule),
	}
}

// Create creates a rule record.
func (r *MemoryRuleRepository) Create(_ context.Context, rule *domain.EngineeringRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rule.CreatedAt = time.Now()
	rule.UpdatedAt = time.Now()
	copied := *rule
	r.rules[rule.ID] = &copied
	return nil
}

// GetByID retrieves a rule by ID.
func (r *MemoryRuleRepository) GetByID(_ context.Context, id string) (*domain.EngineeringRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.rules[id]
	if !ok {
		return nil, notFound("engineering rule", id)
	}
	copied := *rule
	return &copied, nil
}

// List retrieves rules ordered by name.
func (r *MemoryRuleRepository) List(_ context.Context, includeInactive bool) ([]*domain.EngineeringRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.EngineeringRule, 0, len(r.rules))
	for _, rule := range r.rules {
		if !includeInactive && !rule.IsActive {
			continue
		}
		copied := *rule
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// Update persists rule changes.
func (r *MemoryRuleRepository) Update(_ context.Context, rule *domain.EngineeringRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rules[rule.ID]; !ok {
		return notFound("engineering rule", rule.ID)
	}
	copied := *rule
	r.rules[rule.ID] = &copied
	return nil
}

// Delete removes a rule record.
func (r *MemoryRuleRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rules[id]; !ok {
		return notFound("engineering rule", id)
	}
	delete(r.rules, id)
	return nil
}

// ExistsByName reports whether a rule with the exact name exists.
func (r *MemoryRuleRepository) ExistsByName(_ context.Context, name string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rule := range r.rules {
		if rule.Name == name {
			return true, nil
		}
	}
	return false, nil
}
