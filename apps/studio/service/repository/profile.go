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

// profileStackRow stores one tech stack reference of a profile. Parameter
// values are kept as a JSON-encoded object in a single column.
type profileStackRow struct {
	ProfileID   string `gorm:"primaryKey"`
	TechStackID string `gorm:"primaryKey"`
	Values      string
}

// TableName returns the table name for profile tech stack references.
func (profileStackRow) TableName() string {
	return "profile_tech_stacks"
}

// profilePatternRow stores one architecture pattern reference of a profile.
type profilePatternRow struct {
	ProfileID string `gorm:"primaryKey"`
	PatternID string `gorm:"primaryKey"`
}

// TableName returns the table name for profile pattern references.
func (profilePatternRow) TableName() string {
	return "profile_patterns"
}

// profileRuleRow stores one engineering rule reference of a profile.
type profileRuleRow struct {
	ProfileID string `gorm:"primaryKey"`
	RuleID    string `gorm:"primaryKey"`
}

// TableName returns the table name for profile rule references.
func (profileRuleRow) TableName() string {
	return "profile_rules"
}

func stackRowFromReference(profileID string, ref domain.ProfileTechStack) (profileStackRow, error) {
	encoded, err := json.Marshal(ref.Values())
	if err != nil {
		return profileStackRow{}, fmt.Errorf("encode values for tech stack %s: %w", ref.TechStackID, err)
	}
	return profileStackRow{
		ProfileID:   profileID,
		TechStackID: ref.TechStackID,
		Values:      string(encoded),
	}, nil
}

func referenceFromStackRow(row profileStackRow) (domain.ProfileTechStack, error) {
	values := make(map[string]domain.TypedValue)
	if row.Values != "" {
		if err := json.Unmarshal([]byte(row.Values), &values); err != nil {
			return domain.ProfileTechStack{}, fmt.Errorf("decode values for tech stack %s: %w", row.TechStackID, err)
		}
	}
	return domain.RestoreProfileTechStack(row.TechStackID, values), nil
}

// ProfileRepository defines the interface for project profile persistence.
type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.ProjectProfile) error
	GetByID(ctx context.Context, id string) (*domain.ProjectProfile, error)
	GetWithDetails(ctx context.Context, id string) (*domain.ProjectProfile, error)
	List(ctx context.Context) ([]*domain.ProjectProfile, error)
	Save(ctx context.Context, profile *domain.ProjectProfile) error
	Delete(ctx context.Context, id string) error
	CountReferencingTechStack(ctx context.Context, techStackID string) (int64, error)
	CountReferencingPattern(ctx context.Context, patternID string) (int64, error)
	CountReferencingRule(ctx context.Context, ruleID string) (int64, error)
}

// NewProfileRepository creates a profile repository. With a database pool it
// persists to PostgreSQL, otherwise it falls back to in-memory storage.
func NewProfileRepository(_ context.Context, p pool.Pool) ProfileRepository {
	if p != nil {
		return &PGProfileRepository{pool: p}
	}
	return NewMemoryProfileRepository()
}

// PGProfileRepository is the PostgreSQL implementation of ProfileRepository.
type PGProfileRepository struct {
	pool pool.Pool
}

func (r *PGProfileRepository) db(ctx context.Context, readOnly bool) *gorm.DB {
	if r.pool == nil {
		return nil
	}
	return r.pool.DB(ctx, readOnly)
}

// Create creates a profile record together with any references already
// attached to the aggregate.
func (r *PGProfileRepository) Create(ctx context.Context, profile *domain.ProjectProfile) error {
	db := r.db(ctx, false)
	if db == nil {
		return ErrDatabaseUnavailable
	}

	profile.CreatedAt = time.Now()
	profile.UpdatedAt = time.Now()
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(profile).Error; err != nil {
			return err
		}
		return insertProfileReferences(tx, profile)
	})
}

// GetByID retrieves the profile record without references.
func (r *PGProfileRepository) GetByID(ctx context.Context, id string) (*domain.ProjectProfile, error) {
	db := r.db(ctx, true)
	if db == nil {
		return nil, ErrDatabaseUnavailable
	}

	var profile domain.ProjectProfile
	if err := db.First(&profile, "id = ?", id).Error; err != nil {
		return nil, translateGormError(err, "profile", id)
	}
	return &profile, nil
}

// GetWithDetails retrieves the full aggregate: profile record plus tech
// stack, pattern and rule references.
func (r *PGProfileRepository) GetWithDetails(ctx context.Context, id string) (*domain.ProjectProfile, error) {
	db := r.db(ctx, true)
	if db == nil {
		return nil, ErrDatabaseUnavailable
	}

	var record domain.ProjectProfile
	if err := db.First(&record, "id = ?", id).Error; err != nil {
		return nil, translateGormError(err, "profile", id)
	}

	var stackRows []profileStackRow
	if err := db.Where("profile_id = ?", id).Order("tech_stack_id").Find(&stackRows).Error; err != nil {
		return nil, err
	}
	techStacks := make([]domain.ProfileTechStack, 0, len(stackRows))
	for _, row := range stackRows {
		ref, err := referenceFromStackRow(row)
		if err != nil {
			return nil, err
		}
		techStacks = append(techStacks, ref)
	}

	var patternRows []profilePatternRow
	if err := db.Where("profile_id = ?", id).Order("pattern_id").Find(&patternRows).Error; err != nil {
		return nil, err
	}
	patternIDs := make([]string, 0, len(patternRows))
	for _, row := range patternRows {
		patternIDs = append(patternIDs, row.PatternID)
	}

	var ruleRows []profileRuleRow
	if err := db.Where("profile_id = ?", id).Order("rule_id").Find(&ruleRows).Error; err != nil {
		return nil, err
	}
	ruleIDs := make([]string, 0, len(ruleRows))
	for _, row := range ruleRows {
		ruleIDs = append(ruleIDs, row.RuleID)
	}

	return domain.RestoreProjectProfile(record, techStacks, patternIDs, ruleIDs), nil
}

// List retrieves profile records ordered by name, without references.
func (r *PGProfileRepository) List(ctx context.Context) ([]*domain.ProjectProfile, error) {
	db := r.db(ctx, true)
	if db == nil {
		return nil, ErrDatabaseUnavailable
	}

	var profiles []*domain.ProjectProfile
	if err := db.Order("name").Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

// Save persists the full aggregate in one transaction, replacing the stored
// reference rows with the aggregate's current state.
func (r *PGProfileRepository) Save(ctx context.Context, profile *domain.ProjectProfile) error {
	db := r.db(ctx, false)
	if db == nil {
		return ErrDatabaseUnavailable
	}

	profile.UpdatedAt = time.Now()
	return db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.ProjectProfile{}).Where("id = ?", profile.ID).Updates(map[string]any{
			"name":             profile.Name,
			"description":      profile.Description,
			"project_name":     profile.ProjectName,
			"target_team_size": profile.TargetTeamSize,
			"updated_at":       profile.UpdatedAt,
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return notFound("profile", profile.ID)
		}

		if err := deleteProfileReferences(tx, profile.ID); err != nil {
			return err
		}
		return insertProfileReferences(tx, profile)
	})
}

// Delete removes a profile and its reference rows.
func (r *PGProfileRepository) Delete(ctx context.Context, id string) error {
	db := r.db(ctx, false)
	if db == nil {
		return ErrDatabaseUnavailable
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := deleteProfileReferences(tx, id); err != nil {
			return err
		}
		result := tx.Delete(&domain.ProjectProfile{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return notFound("profile", id)
		}
		return nil
	})
}

// CountReferencingTechStack counts profiles referencing a tech stack.
func (r *PGProfileRepository) CountReferencingTechStack(ctx context.Context, techStackID string) (int64, error) {
	db := r.db(ctx, true)
	if db == nil {
		return 0, ErrDatabaseUnavailable
	}

	var count int64
	err := db.Model(&profileStackRow{}).Where("tech_stack_id = ?", techStackID).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// CountReferencingPattern counts profiles referencing a pattern.
func (r *PGProfileRepository) CountReferencingPattern(ctx context.Context, patternID string) (int64, error) {
	db := r.db(ctx, true)
	if db == nil {
		return 0, ErrDatabaseUnavailable
	}

	var count int64
	err := db.Model(&profilePatternRow{}).Where("pattern_id = ?", patternID).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// CountReferencingRule counts profiles referencing a rule.
func (r *PGProfileRepository) CountReferencingRule(ctx context.Context, ruleID string) (int64, error) {
	db := r.db(ctx, true)
	if db == nil {
		return 0, ErrDatabaseUnavailable
	}

	var count int64
	err := db.Model(&profileRuleRow{}).Where("rule_id = ?", ruleID).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func insertProfileReferences(tx *gorm.DB, profile *domain.ProjectProfile) error {
	stackRows := make([]profileStackRow, 0, profile.TechStackCount())
	for _, ref := range profile.TechStacks() {
		row, err := stackRowFromReference(profile.ID, ref)
		if err != nil {
			return err
		}
		stackRows = append(stackRows, row)
	}
	if len(stackRows) > 0 {
		if err := tx.Create(&stackRows).Error; err != nil {
			return err
		}
	}

	patternIDs := profile.ArchitecturePatternIDs()
	patternRows := make([]profilePatternRow, 0, len(patternIDs))
	for _, patternID := range patternIDs {
		patternRows = append(patternRows, profilePatternRow{ProfileID: profile.ID, PatternID: patternID})
	}
	if len(patternRows) > 0 {
		if err := tx.Create(&patternRows).Error; err != nil {
			return err
		}
	}

	ruleIDs := profile.EngineeringRuleIDs()
	ruleRows := make([]profileRuleRow, 0, len(ruleIDs))
	for _, ruleID := range ruleIDs {
		ruleRows = append(ruleRows, profileRuleRow{ProfileID: profile.ID, RuleID: ruleID})
	}
	if len(ruleRows) > 0 {
		if err := tx.Create(&ruleRows).Error; err != nil {
			return err
		}
	}
	return nil
}

func deleteProfileReferences(tx *gorm.DB, profileID string) error {
	if err := tx.Where("profile_id = ?", profileID).Delete(&profileStackRow{}).Error; err != nil {
		return err
	}
	if err := tx.Where("profile_id = ?", profileID).Delete(&profilePatternRow{}).Error; err != nil {
		return err
	}
	return tx.Where("profile_id = ?", profileID).Delete(&profileRuleRow{}).Error
}

// MemoryProfileRepository is an in-memory profile repository.
type MemoryProfileRepository struct {
	mu       sync.RWMutex
	records  map[string]*domain.ProjectProfile
	stacks   map[string][]profileStackRow
	patterns map[string][]string
	rules    map[string][]string
}

// NewMemoryProfileRepository creates an empty in-memory profile repository.
func NewMemoryProfileRepository() *MemoryProfileRepository {
	return &MemoryProfileRepository{
		records:  make(map[string]*domain.ProjectProfile),
		stacks:   make(map[string][]profileStackRow),
		patterns: make(map[string][]string),
		rules:    make(map[string][]string),
	}
}

// Create creates a profile record together with any references already
// attached to the aggregate.
func (r *MemoryProfileRepository) Create(_ context.Context, profile *domain.ProjectProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile.CreatedAt = time.Now()
	profile.UpdatedAt = time.Now()
	return r.store(profile)
}

// GetByID retrieves the profile record without references.
func (r *MemoryProfileRepository) GetByID(_ context.Context, id string) (*domain.ProjectProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[id]
	if !ok {
		return nil, notFound("profile", id)
	}
	copied := *record
	return domain.RestoreProjectProfile(copied, nil, nil, nil), nil
}

// GetWithDetails retrieves the full aggregate.
func (r *MemoryProfileRepository) GetWithDetails(_ context.Context, id string) (*domain.ProjectProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[id]
	if !ok {
		return nil, notFound("profile", id)
	}

	rows := r.stacks[id]
	techStacks := make([]domain.ProfileTechStack, 0, len(rows))
	for _, row := range rows {
		ref, err := referenceFromStackRow(row)
		if err != nil {
			return nil, err
		}
		techStacks = append(techStacks, ref)
	}

	copied := *record
	return domain.RestoreProjectProfile(copied, techStacks, r.patterns[id], r.rules[id]), nil
}

// List retrieves profile records ordered by name, without references.
func (r *MemoryProfileRepository) List(_ context.Context) ([]*domain.ProjectProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.ProjectProfile, 0, len(r.records))
	for _, record := range r.records {
		copied := *record
		result = append(result, domain.RestoreProjectProfile(copied, nil, nil, nil))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// Save persists the full aggregate, replacing the stored references.
func (r *MemoryProfileRepository) Save(_ context.Context, profile *domain.ProjectProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[profile.ID]; !ok {
		return notFound("profile", profile.ID)
	}
	profile.UpdatedAt = time.Now()
	return r.store(profile)
}

// Delete removes a profile and its references.
func (r *MemoryProfileRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return notFound("profile", id)
	}
	delete(r.records, id)
	delete(r.stacks, id)
	delete(r.patterns, id)
	delete(r.rules, id)
	return nil
}

// CountReferencingTechStack counts profiles referencing a tech stack.
func (r *MemoryProfileRepository) CountReferencingTechStack(_ context.Context, techStackID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, rows := range r.stacks {
		for _, row := range rows {
			if row.TechStackID == techStackID {
				count++
				break
			}
		}
	}
	return count, nil
}

// CountReferencingPattern counts profiles referencing a pattern.
func (r *MemoryProfileRepository) CountReferencingPattern(_ context.Context, patternID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, ids := range r.patterns {
		for _, id := range ids {
			if id == patternID {
				count++
				break
			}
		}
	}
	return count, nil
}

// CountReferencingRule counts profiles referencing a rule.
func (r *MemoryProfileRepository) CountReferencingRule(_ context.Context, ruleID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, ids := range r.rules {
		for _, id := range ids {
			if id == ruleID {
				count++
				break
			}
		}
	}
	return count, nil
}

// store writes the record and reference rows; callers hold the write lock.
func (r *MemoryProfileRepository) store(profile *domain.ProjectProfile) error {
	rows := make([]profileStackRow, 0, profile.TechStackCount())
	for _, ref := range profile.TechStacks() {
		row, err := stackRowFromReference(profile.ID, ref)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	copied := *profile
	r.records[profile.ID] = domain.RestoreProjectProfile(copied, nil, nil, nil)
	r.stacks[profile.ID] = rows
	r.patterns[profile.ID] = profile.ArchitecturePatternIDs()
	r.rules[profile.ID] = profile.EngineeringRuleIDs()
	return nil
}
