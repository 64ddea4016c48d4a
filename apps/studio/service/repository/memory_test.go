package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antinvestor/blueprint/apps/studio/service/repository"
	"github.com/antinvestor/blueprint/internal/domain"
)

func seedStack(t *testing.T, repo *repository.MemoryTechStackRepository) *domain.TechStack {
	t.Helper()
	ctx := context.Background()

	stack, err := domain.NewTechStack("cat-1", "PostgreSQL", "Relational database")
	require.NoError(t, err)

	sslMode, err := domain.NewParameterDefinition("ssl_mode", "TLS mode", domain.ValueTypeChoice, true)
	require.NoError(t, err)
	require.NoError(t, sslMode.SetAllowedValues([]string{"disable", "require", "verify-full"}))
	require.NoError(t, sslMode.SetDefaultValue("require"))
	require.NoError(t, stack.AddParameter(sslMode))

	poolSize, err := domain.NewParameterDefinition("pool_size", "Connections", domain.ValueTypeNumber, false)
	require.NoError(t, err)
	require.NoError(t, stack.AddParameter(poolSize))

	require.NoError(t, repo.Create(ctx, stack))
	require.NoError(t, repo.Save(ctx, stack))
	return stack
}

func TestMemoryTechStackRepository_ParameterRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryTechStackRepository()
	stack := seedStack(t, repo)

	// GetByID stays shallow; only GetWithParameters loads definitions.
	shallow, err := repo.GetByID(ctx, stack.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, shallow.ParameterCount())

	loaded, err := repo.GetWithParameters(ctx, stack.ID)
	require.NoError(t, err)
	require.Equal(t, 2, loaded.ParameterCount())

	sslMode, ok := loaded.Parameter("ssl_mode")
	require.True(t, ok)
	assert.Equal(t, domain.ValueTypeChoice, sslMode.Type)
	assert.True(t, sslMode.IsRequired)
	assert.Equal(t, "require", sslMode.DefaultValue)
	assert.Equal(t, []string{"disable", "require", "verify-full"}, sslMode.AllowedValues())

	poolSize, ok := loaded.Parameter("pool_size")
	require.True(t, ok)
	assert.Equal(t, domain.ValueTypeNumber, poolSize.Type)
	assert.False(t, poolSize.IsRequired)
}

func TestMemoryTechStackRepository_SaveReplacesParameters(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryTechStackRepository()
	stack := seedStack(t, repo)

	loaded, err := repo.GetWithParameters(ctx, stack.ID)
	require.NoError(t, err)
	require.NoError(t, loaded.RemoveParameter("pool_size"))
	require.NoError(t, repo.Save(ctx, loaded))

	reloaded, err := repo.GetWithParameters(ctx, stack.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.ParameterCount())
	_, ok := reloaded.Parameter("pool_size")
	assert.False(t, ok)
}

func TestMemoryTechStackRepository_ExistsByNameScoping(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryTechStackRepository()

	stack, err := domain.NewTechStack("cat-1", "PostgreSQL", "")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, stack))

	exists, err := repo.ExistsByName(ctx, "cat-1", "PostgreSQL")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByName(ctx, "cat-2", "PostgreSQL")
	require.NoError(t, err)
	assert.False(t, exists, "a different category must not see the name")

	// Empty category scopes the lookup to the whole catalog.
	exists, err = repo.ExistsByName(ctx, "", "PostgreSQL")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByName(ctx, "cat-1", "postgresql")
	require.NoError(t, err)
	assert.False(t, exists, "name matching is exact")
}

func TestMemoryProfileRepository_AggregateRoundTrip(t *testing.T) {
	ctx := context.Background()
	stackRepo := repository.NewMemoryTechStackRepository()
	profileRepo := repository.NewMemoryProfileRepository()

	stack := seedStack(t, stackRepo)
	withParams, err := stackRepo.GetWithParameters(ctx, stack.ID)
	require.NoError(t, err)

	profile, err := domain.NewProjectProfile("Checkout Service", "Payments")
	require.NoError(t, err)
	require.NoError(t, profile.AddTechStack(withParams, map[string]string{
		"ssl_mode":  "verify-full",
		"pool_size": "25",
	}))
	require.NoError(t, profile.AddArchitecturePattern("pattern-1"))
	require.NoError(t, profile.AddEngineeringRule("rule-1"))
	require.NoError(t, profile.AddEngineeringRule("rule-2"))
	require.NoError(t, profileRepo.Create(ctx, profile))

	loaded, err := profileRepo.GetWithDetails(ctx, profile.ID)
	require.NoError(t, err)

	refs := loaded.TechStacks()
	require.Len(t, refs, 1)
	assert.Equal(t, stack.ID, refs[0].TechStackID)

	sslMode, ok := refs[0].Value("ssl_mode")
	require.True(t, ok)
	assert.Equal(t, "verify-full", sslMode.Raw())
	assert.Equal(t, domain.ValueTypeChoice, sslMode.Type())

	poolSize, ok := refs[0].Value("pool_size")
	require.True(t, ok)
	assert.Equal(t, "25", poolSize.Raw())
	assert.Equal(t, domain.ValueTypeNumber, poolSize.Type())

	assert.Equal(t, []string{"pattern-1"}, loaded.ArchitecturePatternIDs())
	assert.ElementsMatch(t, []string{"rule-1", "rule-2"}, loaded.EngineeringRuleIDs())
}

func TestMemoryProfileRepository_SaveReplacesReferences(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryProfileRepository()

	profile, err := domain.NewProjectProfile("Checkout Service", "")
	require.NoError(t, err)
	require.NoError(t, profile.AddEngineeringRule("rule-1"))
	require.NoError(t, repo.Create(ctx, profile))

	loaded, err := repo.GetWithDetails(ctx, profile.ID)
	require.NoError(t, err)
	require.NoError(t, loaded.RemoveEngineeringRule("rule-1"))
	require.NoError(t, loaded.AddEngineeringRule("rule-2"))
	require.NoError(t, repo.Save(ctx, loaded))

	reloaded, err := repo.GetWithDetails(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"rule-2"}, reloaded.EngineeringRuleIDs())
}

func TestMemoryProfileRepository_CountReferencingTechStack(t *testing.T) {
	ctx := context.Background()
	stackRepo := repository.NewMemoryTechStackRepository()
	profileRepo := repository.NewMemoryProfileRepository()
	stack := seedStack(t, stackRepo)

	withParams, err := stackRepo.GetWithParameters(ctx, stack.ID)
	require.NoError(t, err)

	for _, name := range []string{"First", "Second"} {
		profile, profileErr := domain.NewProjectProfile(name, "")
		require.NoError(t, profileErr)
		require.NoError(t, profile.AddTechStack(withParams, map[string]string{"ssl_mode": "require"}))
		require.NoError(t, profileRepo.Create(ctx, profile))
	}
	unrelated, err := domain.NewProjectProfile("Third", "")
	require.NoError(t, err)
	require.NoError(t, profileRepo.Create(ctx, unrelated))

	count, err := profileRepo.CountReferencingTechStack(ctx, stack.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestMemoryCategoryRepository_ListOrdering(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryCategoryRepository()

	seed := func(name string, order int, active bool) {
		category, err := domain.NewCategory(name, "", order)
		require.NoError(t, err)
		if !active {
			category.Deactivate()
		}
		require.NoError(t, repo.Create(ctx, category))
	}
	seed("Frontend", 2, true)
	seed("Cache", 0, true)
	seed("Backend", 0, true)
	seed("Legacy", 1, false)

	active, err := repo.List(ctx, false)
	require.NoError(t, err)
	names := make([]string, 0, len(active))
	for _, category := range active {
		names = append(names, category.Name)
	}
	// Display order wins; names break ties.
	assert.Equal(t, []string{"Backend", "Cache", "Frontend"}, names)

	all, err := repo.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestMemoryAIResponseRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryAIResponseRepository()
	base := time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)

	seed := func(offset time.Duration, terminal bool) *domain.AIResponse {
		response, err := domain.NewAIResponse("generate something", "category_generation")
		require.NoError(t, err)
		response.RequestedAt = base.Add(offset)
		if terminal {
			require.NoError(t, response.MarkValidated(domain.ValidatedBySystem))
		}
		require.NoError(t, repo.Create(ctx, response))
		return response
	}
	oldest := seed(0, true)
	middle := seed(time.Hour, false)
	newest := seed(2*time.Hour, false)

	all, err := repo.List(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, newest.ID, all[0].ID)
	assert.Equal(t, middle.ID, all[1].ID)
	assert.Equal(t, oldest.ID, all[2].ID)

	validated, err := repo.List(ctx, domain.ResponseStatusValidated, 0)
	require.NoError(t, err)
	require.Len(t, validated, 1)
	assert.Equal(t, oldest.ID, validated[0].ID)

	limited, err := repo.List(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, newest.ID, limited[0].ID)
}

func TestMemoryRepositories_NotFound(t *testing.T) {
	ctx := context.Background()

	_, err := repository.NewMemoryCategoryRepository().GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repository.NewMemoryTechStackRepository().GetWithParameters(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repository.NewMemoryProfileRepository().GetWithDetails(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repository.NewMemoryAIResponseRepository().GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = repository.NewMemoryRuleRepository().Delete(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
