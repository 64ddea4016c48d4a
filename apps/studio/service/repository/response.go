package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/antinvestor/blueprint/internal/domain"
	"github.com/pitabwire/frame/datastore/pool"
	"gorm.io/gorm"
)

// AIResponseRepository defines the interface for AI response audit
// persistence.
type AIResponseRepository interface {
	Create(ctx context.Context, response *domain.AIResponse) error
	GetByID(ctx context.Context, id string) (*domain.AIResponse, error)
	Update(ctx context.Context, response *domain.AIResponse) error
	List(ctx context.Context, status domain.ResponseStatus, limit int) ([]*domain.AIResponse, error)
}

// NewAIResponseRepository creates an AI response repository. With a database
// pool it persists to PostgreSQL, otherwise it falls back to in-memory
// storage.
func NewAIResponseRepository(_ context.Context, p pool.Pool) AIResponseRepository {
	if p != nil {
		return &PGAIResponseRepository{pool: p}
	}
	return NewMemoryAIResponseRepository()
}

// PGAIResponseRepository is the PostgreSQL implementation of
// AIResponseRepository.
type PGAIResponseRepository struct {
	pool pool.Pool
}

func (r *PGAIResponseRepository) db(ctx context.Context, readOnly bool) *gorm.DB {
	if r.pool == nil {
		return nil
	}
	return r.pool.DB(ctx, readOnly)
}

// Create creates an AI response audit record.
func (r *PGAIResponseRepository) Create(ctx context.Context, response *domain.AIResponse) error {
	db := r.db(ctx, false)
	if db == nil {
		return ErrDatabaseUnavailable
	}
	return db.Create(response).Error
}

// GetByID retrieves an AI response by ID.
func (r *PGAIResponseRepository) GetByID(ctx context.Context, id string) (*domain.AIResponse, error) {
	db := r.db(ctx, true)
	if db == nil {
		return nil, ErrDatabaseUnavailable
	}

	var record domain.AIResponse
	if err := db.First(&record, "id = ?", id).Error; err != nil {
		return nil, translateGormError(err, "AI response", id)
	}
	return domain.RestoreAIResponse(record), nil
}

// Update persists response state changes.
func (r *PGAIResponseRepository) Update(ctx context.Context, response *domain.AIResponse) error {
	db := r.db(ctx, false)
	if db == nil {
		return ErrDatabaseUnavailable
	}

	result := db.Model(&domain.AIResponse{}).Where("id = ?", response.ID).Updates(map[string]any{
		"raw_response":      response.RawResponse,
		"model_used":        response.ModelUsed,
		"tokens_used":       response.TokensUsed,
		"duration_ms":       response.DurationMS,
		"status":            response.Status,
		"validated_by":      response.ValidatedBy,
		"validation_errors": response.ValidationErrors,
		"responded_at":      response.RespondedAt,
		"validated_at":      response.ValidatedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound("AI response", response.ID)
	}
	return nil
}

// List retrieves responses newest first. An empty status matches all
// statuses; limit <= 0 means no limit.
func (r *PGAIResponseRepository) List(
	ctx context.Context, status domain.ResponseStatus, limit int,
) ([]*domain.AIResponse, error) {
	db := r.db(ctx, true)
	if db == nil {
		return nil, ErrDatabaseUnavailable
	}

	query := db.Order("requested_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var records []domain.AIResponse
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}

	responses := make([]*domain.AIResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, domain.RestoreAIResponse(record))
	}
	return responses, nil
}

// MemoryAIResponseRepository is an in-memory AI response repository.
type MemoryAIResponseRepository struct {
	mu        sync.RWMutex
	responses map[string]*domain.AIResponse
}

// NewMemoryAIResponseRepository creates an empty in-memory AI response
// repository.
func NewMemoryAIResponseRepository() *MemoryAIResponseRepository {
	return &MemoryAIResponseRepository{
		responses: make(map[string]*domain.AIResponse),
	}
}

// Create creates an AI response audit record.
func (r *MemoryAIResponseRepository) Create(_ context.Context, response *domain.AIResponse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record := *response
	r.responses[response.ID] = domain.RestoreAIResponse(record)
	return nil
}

// GetByID retrieves an AI response by ID.
func (r *MemoryAIResponseRepository) GetByID(_ context.Context, id string) (*domain.AIResponse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	response, ok := r.responses[id]
	if !ok {
		return nil, notFound("AI response", id)
	}
	record := *response
	return domain.RestoreAIResponse(record), nil
}

// Update persists response state changes.
func (r *MemoryAIResponseRepository) Update(_ context.Context, response *domain.AIResponse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.responses[response.ID]; !ok {
		return notFound("AI response", response.ID)
	}
	record := *response
	r.responses[response.ID] = domain.RestoreAIResponse(record)
	return nil
}

// List retrieves responses newest first. An empty status matches all
// statuses; limit <= 0 means no limit.
func (r *MemoryAIResponseRepository) List(
	_ context.Context, status domain.ResponseStatus, limit int,
) ([]*domain.AIResponse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.AIResponse, 0, len(r.responses))
	for _, response := range r.responses {
		if status != "" && response.Status != status {
			continue
		}
		record := *response
		result = append(result, domain.RestoreAIResponse(record))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].RequestedAt.After(result[j].RequestedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
