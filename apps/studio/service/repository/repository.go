// Package repository provides persistence for the catalog, profile and audit
// entities. Each entity family has an interface, a PostgreSQL implementation
// backed by the service datastore pool and an in-memory implementation used
// in tests and when no database is configured.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/pitabwire/frame/datastore/pool"
	"gorm.io/gorm"

	"github.com/antinvestor/blueprint/internal/domain"
)

// ErrDatabaseUnavailable is returned when the database connection is not available.
var ErrDatabaseUnavailable = errors.New("database connection is not available")

// notFound wraps the domain sentinel with entity context.
func notFound(what, id string) error {
	return fmt.Errorf("%w: %s %s", domain.ErrNotFound, what, id)
}

// translateGormError maps record-not-found onto the domain sentinel so
// callers never match on gorm internals.
func translateGormError(err error, what, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(what, id)
	}
	return err
}

// Migrate creates or updates the studio schema.
func Migrate(ctx context.Context, p pool.Pool) error {
	if p == nil {
		return ErrDatabaseUnavailable
	}
	db := p.DB(ctx, false)
	if db == nil {
		return ErrDatabaseUnavailable
	}

	return db.AutoMigrate(
		&domain.Category{},
		&domain.TechStack{},
		&parameterRow{},
		&domain.ArchitecturePattern{},
		&domain.EngineeringRule{},
		&domain.ProjectProfile{},
		&profileStackRow{},
		&profilePatternRow{},
		&profileRuleRow{},
		&domain.AIResponse{},
	)
}
