package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antinvestor/blueprint/apps/studio/service/catalog"
	"github.com/antinvestor/blueprint/apps/studio/service/repository"
	"github.com/antinvestor/blueprint/internal/domain"
)

type stackFixture struct {
	service  *catalog.TechStackService
	stacks   repository.TechStackRepository
	profiles repository.ProfileRepository
	category *domain.Category
}

func newStackFixture(t *testing.T) *stackFixture {
	t.Helper()
	ctx := context.Background()

	categories := repository.NewMemoryCategoryRepository()
	stacks := repository.NewMemoryTechStackRepository()
	profiles := repository.NewMemoryProfileRepository()

	category, err := domain.NewCategory("Database", "Data storage", 0)
	require.NoError(t, err)
	require.NoError(t, categories.Create(ctx, category))

	return &stackFixture{
		service:  catalog.NewTechStackService(categories, stacks, profiles),
		stacks:   stacks,
		profiles: profiles,
		category: category,
	}
}

func numberParam(name string) catalog.ParameterInput {
	return catalog.ParameterInput{
		Name:        name,
		Description: "a numeric knob",
		Type:        domain.ValueTypeNumber,
	}
}

func TestTechStackService_Create(t *testing.T) {
	ctx := context.Background()
	f := newStackFixture(t)

	stack, err := f.service.Create(ctx, f.category.ID, "PostgreSQL", "Relational database")
	require.NoError(t, err)

	assert.NotEmpty(t, stack.ID)
	assert.Equal(t, f.category.ID, stack.CategoryID)
	assert.True(t, stack.IsActive)
}

func TestTechStackService_Create_UnknownCategory(t *testing.T) {
	ctx := context.Background()
	f := newStackFixture(t)

	_, err := f.service.Create(ctx, "missing", "PostgreSQL", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTechStackService_Create_DuplicateInCategory(t *testing.T) {
	ctx := context.Background()
	f := newStackFixture(t)

	_, err := f.service.Create(ctx, f.category.ID, "PostgreSQL", "")
	require.NoError(t, err)

	_, err = f.service.Create(ctx, f.category.ID, "PostgreSQL", "again")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateName)
}

func TestTechStackService_Update(t *testing.T) {
	ctx := context.Background()
	f := newStackFixture(t)

	stack, err := f.service.Create(ctx, f.category.ID, "PostgreSQL", "")
	require.NoError(t, err)

	updated, err := f.service.Update(ctx, stack.ID, catalog.UpdateTechStackInput{
		Name:             "PostgreSQL",
		Description:      "Battle-tested relational database",
		DefaultVersion:   "16.4",
		DocumentationURL: "https://www.postgresql.org/docs/",
	})
	require.NoError(t, err)

	assert.Equal(t, "16.4", updated.DefaultVersion)
	assert.Equal(t, "https://www.postgresql.org/docs/", updated.DocumentationURL)
}

func TestTechStackService_AddParameter_RoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newStackFixture(t)

	stack, err := f.service.Create(ctx, f.category.ID, "PostgreSQL", "")
	require.NoError(t, err)

	_, err = f.service.AddParameter(ctx, stack.ID, catalog.ParameterInput{
		Name:          "ssl_mode",
		Description:   "TLS negotiation mode",
		Type:          domain.ValueTypeChoice,
		IsRequired:    true,
		AllowedValues: []string{"disable", "require", "verify-full"},
		DefaultValue:  "require",
		DisplayOrder:  1,
	})
	require.NoError(t, err)

	reloaded, err := f.service.GetWithParameters(ctx, stack.ID)
	require.NoError(t, err)
	require.Equal(t, 1, reloaded.ParameterCount())

	param, ok := reloaded.Parameter("ssl_mode")
	require.True(t, ok)
	assert.Equal(t, domain.ValueTypeChoice, param.Type)
	assert.True(t, param.IsRequired)
	assert.Equal(t, "require", param.DefaultValue)
	assert.Equal(t, []string{"disable", "require", "verify-full"}, param.AllowedValues())
}

func TestTechStackService_AddParameter_DefaultOutsideAllowedValues(t *testing.T) {
	ctx := context.Background()
	f := newStackFixture(t)

	stack, err := f.service.Create(ctx, f.category.ID, "PostgreSQL", "")
	require.NoError(t, err)

	_, err = f.service.AddParameter(ctx, stack.ID, catalog.ParameterInput{
		Name:          "ssl_mode",
		Type:          domain.ValueTypeChoice,
		AllowedValues: []string{"disable", "require"},
		DefaultValue:  "prefer",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidValue)
}

func TestTechStackService_AddParameter_DuplicateName(t *testing.T) {
	ctx := context.Background()
	f := newStackFixture(t)

	stack, err := f.service.Create(ctx, f.category.ID, "PostgreSQL", "")
	require.NoError(t, err)

	_, err = f.service.AddParameter(ctx, stack.ID, numberParam("pool_size"))
	require.NoError(t, err)

	// Parameter names collide case-insensitively within a stack.
	_, err = f.service.AddParameter(ctx, stack.ID, numberParam("Pool_Size"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateName)
}

func TestTechStackService_UpdateParameter_TypeImmutable(t *testing.T) {
	ctx := context.Background()
	f := newStackFixture(t)

	stack, err := f.service.Create(ctx, f.category.ID, "PostgreSQL", "")
	require.NoError(t, err)
	_, err = f.service.AddParameter(ctx, stack.ID, numberParam("pool_size"))
	require.NoError(t, err)

	_, err = f.service.UpdateParameter(ctx, stack.ID, "pool_size", catalog.ParameterInput{
		Name: "pool_size",
		Type: domain.ValueTypeText,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)
}

func TestTechStackService_UpdateParameter_RenameCollision(t *testing.T) {
	ctx := context.Background()
	f := newStackFixture(t)

	stack, err := f.service.Create(ctx, f.category.ID, "PostgreSQL", "")
	require.NoError(t, err)
	_, err = f.service.AddParameter(ctx, stack.ID, numberParam("pool_size"))
	require.NoError(t, err)
	_, err = f.service.AddParameter(ctx, stack.ID, numberParam("max_connections"))
	require.NoError(t, err)

	_, err = f.service.UpdateParameter(ctx, stack.ID, "max_connections", catalog.ParameterInput{
		Name: "pool_size",
		Type: domain.ValueTypeNumber,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateName)
}

func TestTechStackService_UpdateParameter_ChangesSettings(t *testing.T) {
	ctx := context.Background()
	f := newStackFixture(t)

	stack, err := f.service.Create(ctx, f.category.ID, "PostgreSQL", "")
	require.NoError(t, err)
	_, err = f.service.AddParameter(ctx, stack.ID, numberParam("pool_size"))
	require.NoError(t, err)

	updated, err := f.service.UpdateParameter(ctx, stack.ID, "pool_size", catalog.ParameterInput{
		Name:         "pool_size",
		Description:  "Maximum pooled connections",
		Type:         domain.ValueTypeNumber,
		IsRequired:   true,
		DefaultValue: "25",
	})
	require.NoError(t, err)

	param, ok := updated.Parameter("pool_size")
	require.True(t, ok)
	assert.True(t, param.IsRequired)
	assert.Equal(t, "25", param.DefaultValue)
	assert.Equal(t, "Maximum pooled connections", param.Description)
}

func TestTechStackService_RemoveParameter(t *testing.T) {
	ctx := context.Background()
	f := newStackFixture(t)

	stack, err := f.service.Create(ctx, f.category.ID, "PostgreSQL", "")
	require.NoError(t, err)
	_, err = f.service.AddParameter(ctx, stack.ID, numberParam("pool_size"))
	require.NoError(t, err)

	updated, err := f.service.RemoveParameter(ctx, stack.ID, "pool_size")
	require.NoError(t, err)
	assert.Equal(t, 0, updated.ParameterCount())

	_, err = f.service.RemoveParameter(ctx, stack.ID, "pool_size")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTechStackService_Delete_ReferencedByProfile(t *testing.T) {
	ctx := context.Background()
	f := newStackFixture(t)

	stack, err := f.service.Create(ctx, f.category.ID, "PostgreSQL", "")
	require.NoError(t, err)

	profile, err := domain.NewProjectProfile("Checkout Service", "")
	require.NoError(t, err)
	reloaded, err := f.service.GetWithParameters(ctx, stack.ID)
	require.NoError(t, err)
	require.NoError(t, profile.AddTechStack(reloaded, nil))
	require.NoError(t, f.profiles.Create(ctx, profile))

	err = f.service.Delete(ctx, stack.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEntityInUse)
}

func TestTechStackService_Delete_Unreferenced(t *testing.T) {
	ctx := context.Background()
	f := newStackFixture(t)

	stack, err := f.service.Create(ctx, f.category.ID, "PostgreSQL", "")
	require.NoError(t, err)
	_, err = f.service.AddParameter(ctx, stack.ID, numberParam("pool_size"))
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(ctx, stack.ID))

	_, err = f.service.Get(ctx, stack.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
