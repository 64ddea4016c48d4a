package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/antinvestor/blueprint/internal/domain"
	"github.com/pitabwire/frame/datastore/pool"
	"gorm.io/gorm"
)

// parameterRow is the storage shape for a parameter definition. Allowed
// values are kept as a JSON-encoded array in a single column.
type parameterRow struct {
	ID            string           `gorm:"primaryKey"`
	TechStackID   string           `gorm:"index"`
	Name          string
	Description   string
	Type          domain.ValueType
	IsRequired    bool
	DefaultValue  string
	AllowedValues string
	DisplayOrder  int
}

// TableName returns the table name for parameter definitions.
func (parameterRow) TableName() string {
	return "parameter_definitions"
}

func parameterRowFromDefinition(stackID string, def *domain.ParameterDefinition) (parameterRow, error) {
	allowed := "[]"
	if values := def.AllowedValues(); len(values) > 0 {
		encoded, err := json.Marshal(values)
		if err != nil {
			return parameterRow{}, fmt.Errorf("encode allowed values for parameter %q: %w", def.Name, err)
		}
		allowed = string(encoded)
	}

	return parameterRow{
		ID:            def.ID,
		TechStackID:   stackID,
		Name:          def.Name,
		Description:   def.Description,
		Type:          def.Type,
		IsRequired:    def.IsRequired,
		DefaultValue:  def.DefaultValue,
		AllowedValues: allowed,
		DisplayOrder:  def.DisplayOrder,
	}, nil
}

func definitionFromRow(row parameterRow) (*domain.ParameterDefinition, error) {
	var allowed []string
	if row.AllowedValues != "" {
		if err := json.Unmarshal([]byte(row.AllowedValues), &allowed); err != nil {
			return nil, fmt.Errorf("decode allowed values for parameter %q: %w", row.Name, err)
		}
	}

	return domain.RestoreParameterDefinition(
		row.ID, row.TechStackID, row.Name, row.Description,
		row.Type, row.IsRequired, row.DefaultValue, row.DisplayOrder, allowed,
	), nil
}

// TechStackRepository defines the interface for tech stack persistence.
type TechStackRepository interface {
	Create(ctx context.Context, stack *domain.TechStack) error
	CreateBatch(ctx context.Context, stacks []*domain.TechStack) error
	GetByID(ctx context.Context, id string) (*domain.TechStack, error)
	GetWithParameters(ctx context.Context, id string) (*domain.TechStack, error)
	GetByCategoryID(ctx context.Context, categoryID string, includeInactive bool) ([]*domain.TechStack, error)
	List(ctx context.Context, includeInactive bool) ([]*domain.TechStack, error)
	Update(ctx context.Context, stack *domain.TechStack) error
	Save(ctx context.Context, stack *domain.TechStack) error
	Delete(ctx context.Context, id string) error
	ExistsByName(ctx context.Context, categoryID, name string) (bool, error)
	CountByCategoryID(ctx context.Context, categoryID string) (int64, error)
}

// NewTechStackRepository creates a tech stack repository. With a database
// pool it persists to PostgreSQL, otherwise it falls back to in-memory
// storage.
func NewTechStackRepository(_ context.Context, p pool.Pool) TechStackRepository {
	if p != nil {
		return &PGTechStackRepository{pool: p}
	}
	return NewMemoryTechStackRepository()
}

// PGTechStackRepository is the PostgreSQL implementation of
// TechStackRepository.
type PGTechStackRepository struct {
	pool pool.Pool
}

func (r *PGTechStackRepository) db(ctx context.Context, readOnly bool) *gorm.DB {
	if r.pool == nil {
		return nil
	}
	return r.pool.DB(ctx, readOnly)
}

// Create creates a tech stack record without parameters.
func (r *PGTechStackRepository) Create(ctx context.Context, stack *domain.TechStack) error {
	db := r.db(ctx, false)
	if db == nil {
		return ErrDatabaseUnavailable
	}

	stack.CreatedAt = time.Now()
	stack.UpdatedAt = time.Now()
	return db.Create(stack).Error
}

// CreateBatch inserts tech stacks in a single transaction.
func (r *PGTechStackRepository) CreateBatch(ctx context.Context, stacks []*domain.TechStack) error {
	if len(stacks) == 0 {
		return nil
	}

	db := r.db(ctx, false)
	if db == nil {
		return ErrDatabaseUnavailable
	}

	now := time.Now()
	for _, stack := range stacks {
		stack.CreatedAt = now
		stack.UpdatedAt = now
	}
	return db.Create(stacks).Error
}

// GetByID retrieves a tech stack by ID without its parameters.
func (r *PGTechStackRepository) GetByID(ctx context.Context, id string) (*domain.TechStack, error) {
	db := r.db(ctx, true)
	if db == nil {
		return nil, ErrDatabaseUnavailable
	}

	var stack domain.TechStack
	if err := db.First(&stack, "id = ?", id).Error; err != nil {
		return nil, translateGormError(err, "tech stack", id)
	}
	return &stack, nil
}

// GetWithParameters retrieves a tech stack with its parameter definitions
// loaded.
func (r *PGTechStackRepository) GetWithParameters(ctx context.Context, id string) (*domain.TechStack, error) {
	db := r.db(ctx, true)
	if db == nil {
		return nil, ErrDatabaseUnavailable
	}

	var record domain.TechStack
	if err := db.First(&record, "id = ?", id).Error; err != nil {
		return nil, translateGormError(err, "tech stack", id)
	}

	var rows []parameterRow
	if err := db.Where("tech_stack_id = ?", id).Order("display_order, name").Find(&rows).Error; err != nil {
		return nil, err
	}

	parameters := make([]*domain.ParameterDefinition, 0, len(rows))
	for _, row := range rows {
		def, err := definitionFromRow(row)
		if err != nil {
			return nil, err
		}
		parameters = append(parameters, def)
	}
	return domain.RestoreTechStack(record, parameters), nil
}

// GetByCategoryID retrieves tech stacks belonging to a category.
func (r *PGTechStackRepository) GetByCategoryID(
	ctx context.Context, categoryID string, includeInactive bool,
) ([]*domain.TechStack, error) {
	db := r.db(ctx, true)
	if db == nil {
		return nil, ErrDatabaseUnavailable
	}

	query := db.Where("category_id = ?", categoryID).Order("name")
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	var stacks []*domain.TechStack
	if err := query.Find(&stacks).Error; err != nil {
		return nil, err
	}
	return stacks, nil
}

// List retrieves tech stacks across all categories.
func (r *PGTechStackRepository) List(ctx context.Context, includeInactive bool) ([]*domain.TechStack, error) {
	db := r.db(ctx, true)
	if db == nil {
		return nil, ErrDatabaseUnavailable
	}

	query := db.Order("name")
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	var stacks []*domain.TechStack
	if err := query.Find(&stacks).Error; err != nil {
		return nil, err
	}
	return stacks, nil
}

// Update persists stack field changes without touching parameters.
func (r *PGTechStackRepository) Update(ctx context.Context, stack *domain.TechStack) error {
	db := r.db(ctx, false)
	if db == nil {
		return ErrDatabaseUnavailable
	}

	result := db.Model(&domain.TechStack{}).Where("id = ?", stack.ID).Updates(map[string]any{
		"category_id":       stack.CategoryID,
		"name":              stack.Name,
		"description":       stack.Description,
		"default_version":   stack.DefaultVersion,
		"documentation_url": stack.DocumentationURL,
		"is_active":         stack.IsActive,
		"is_ai_generated":   stack.IsAIGenerated,
		"updated_at":        stack.UpdatedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound("tech stack", stack.ID)
	}
	return nil
}

// Save persists the full aggregate: stack fields plus parameter rows,
// replacing the stored parameter set, in one transaction.
func (r *PGTechStackRepository) Save(ctx context.Context, stack *domain.TechStack) error {
	db := r.db(ctx, false)
	if db == nil {
		return ErrDatabaseUnavailable
	}

	rows := make([]parameterRow, 0, stack.ParameterCount())
	for _, def := range stack.Parameters() {
		row, err := parameterRowFromDefinition(stack.ID, def)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	stack.UpdatedAt = time.Now()
	return db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.TechStack{}).Where("id = ?", stack.ID).Updates(map[string]any{
			"category_id":       stack.CategoryID,
			"name":              stack.Name,
			"description":       stack.Description,
			"default_version":   stack.DefaultVersion,
			"documentation_url": stack.DocumentationURL,
			"is_active":         stack.IsActive,
			"is_ai_generated":   stack.IsAIGenerated,
			"updated_at":        stack.UpdatedAt,
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return notFound("tech stack", stack.ID)
		}

		if err := tx.Where("tech_stack_id = ?", stack.ID).Delete(&parameterRow{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

// Delete removes a tech stack and its parameter rows.
func (r *PGTechStackRepository) Delete(ctx context.Context, id string) error {
	db := r.db(ctx, false)
	if db == nil {
		return ErrDatabaseUnavailable
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tech_stack_id = ?", id).Delete(&parameterRow{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&domain.TechStack{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return notFound("tech stack", id)
		}
		return nil
	})
}

// ExistsByName reports whether a stack with the exact name exists. An empty
// categoryID checks across the whole catalog.
func (r *PGTechStackRepository) ExistsByName(ctx context.Context, categoryID, name string) (bool, error) {
	db := r.db(ctx, true)
	if db == nil {
		return false, ErrDatabaseUnavailable
	}

	query := db.Model(&domain.TechStack{}).Where("name = ?", name)
	if categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountByCategoryID counts stacks referencing a category.
func (r *PGTechStackRepository) CountByCategoryID(ctx context.Context, categoryID string) (int64, error) {
	db := r.db(ctx, true)
	if db == nil {
		return 0, ErrDatabaseUnavailable
	}

	var count int64
	err := db.Model(&domain.TechStack{}).Where("category_id = ?", categoryID).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// MemoryTechStackRepository is an in-memory tech stack repository.
type MemoryTechStackRepository struct {
	mu         sync.RWMutex
	stacks     map[string]*domain.TechStack
	parameters map[string][]parameterRow
}

// NewMemoryTechStackRepository creates an empty in-memory tech stack
// repository.
func NewMemoryTechStackRepository() *MemoryTechStackRepository {
	return &MemoryTechStackRepository{
		stacks:     make(map[string]*domain.TechStack),
		parameters: make(map[string][]parameterRow),
	}
}

// Create creates a tech stack record without parameters.
func (r *MemoryTechStackRepository) Create(_ context.Context, stack *domain.TechStack) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stack.CreatedAt = time.Now()
	stack.UpdatedAt = time.Now()
	record := *stack
	r.stacks[stack.ID] = domain.RestoreTechStack(record, nil)
	return nil
}

// CreateBatch inserts tech stacks.
func (r *MemoryTechStackRepository) CreateBatch(ctx context.Context, stacks []*domain.TechStack) error {
	for _, stack := range stacks {
		if err := r.Create(ctx, stack); err != nil {
			return err
		}
	}
	return nil
}

// GetByID retrieves a tech stack by ID without its parameters.
func (r *MemoryTechStackRepository) GetByID(_ context.Context, id string) (*domain.TechStack, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stack, ok := r.stacks[id]
	if !ok {
		return nil, notFound("tech stack", id)
	}
	record := *stack
	return domain.RestoreTechStack(record, nil), nil
}

// GetWithParameters retrieves a tech stack with its parameter definitions
// loaded.
func (r *MemoryTechStackRepository) GetWithParameters(_ context.Context, id string) (*domain.TechStack, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stack, ok := r.stacks[id]
	if !ok {
		return nil, notFound("tech stack", id)
	}

	rows := r.parameters[id]
	parameters := make([]*domain.ParameterDefinition, 0, len(rows))
	for _, row := range rows {
		def, err := definitionFromRow(row)
		if err != nil {
			return nil, err
		}
		parameters = append(parameters, def)
	}

	record := *stack
	return domain.RestoreTechStack(record, parameters), nil
}

// GetByCategoryID retrieves tech stacks belonging to a category.
func (r *MemoryTechStackRepository) GetByCategoryID(
	_ context.Context, categoryID string, includeInactive bool,
) ([]*domain.TechStack, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.TechStack, 0)
	for _, stack := range r.stacks {
		if stack.CategoryID != categoryID {
			continue
		}
		if !includeInactive && !stack.IsActive {
			continue
		}
		record := *stack
		result = append(result, domain.RestoreTechStack(record, nil))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// List retrieves tech stacks across all categories.
func (r *MemoryTechStackRepository) List(_ context.Context, includeInactive bool) ([]*domain.TechStack, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.TechStack, 0, len(r.stacks))
	for _, stack := range r.stacks {
		if !includeInactive && !stack.IsActive {
			continue
		}
		record := *stack
		result = append(result, domain.RestoreTechStack(record, nil))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// Update persists stack field changes without touching parameters.
func (r *MemoryTechStackRepository) Update(_ context.Context, stack *domain.TechStack) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stacks[stack.ID]; !ok {
		return notFound("tech stack", stack.ID)
	}
	record := *stack
	r.stacks[stack.ID] = domain.RestoreTechStack(record, nil)
	return nil
}

// Save persists the full aggregate, replacing the stored parameter set.
func (r *MemoryTechStackRepository) Save(_ context.Context, stack *domain.TechStack) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stacks[stack.ID]; !ok {
		return notFound("tech stack", stack.ID)
	}

	rows := make([]parameterRow, 0, stack.ParameterCount())
	for _, def := range stack.Parameters() {
		row, err := parameterRowFromDefinition(stack.ID, def)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	stack.UpdatedAt = time.Now()
	record := *stack
	r.stacks[stack.ID] = domain.RestoreTechStack(record, nil)
	r.parameters[stack.ID] = rows
	return nil
}

// Delete removes a tech stack and its parameter rows.
func (r *MemoryTechStackRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stacks[id]; !ok {
		return notFound("tech stack", id)
	}
	delete(r.stacks, id)
	delete(r.parameters, id)
	return nil
}

// ExistsByName reports whether a stack with the exact name exists. An empty
// categoryID checks across the whole catalog.
func (r *MemoryTechStackRepository) ExistsByName(_ context.Context, categoryID, name string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, stack := range r.stacks {
		if categoryID != "" && stack.CategoryID != categoryID {
			continue
		}
		if stack.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// CountByCategoryID counts stacks referencing a category.
func (r *MemoryTechStackRepository) CountByCategoryID(_ context.Context, categoryID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, stack := range r.stacks {
		if stack.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}
