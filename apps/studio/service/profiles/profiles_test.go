package profiles_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antinvestor/blueprint/apps/studio/service/profiles"
	"github.com/antinvestor/blueprint/apps/studio/service/repository"
	"github.com/antinvestor/blueprint/internal/domain"
)

// profileFixture seeds a small catalog: one category, one tech stack with a
// required choice parameter and an optional defaulted number parameter, one
// pattern and one rule.
type profileFixture struct {
	service *profiles.ProfileService
	stack   *domain.TechStack
	pattern *domain.ArchitecturePattern
	rule    *domain.EngineeringRule
}

func newProfileFixture(t *testing.T) *profileFixture {
	t.Helper()
	ctx := context.Background()

	profileRepo := repository.NewMemoryProfileRepository()
	categoryRepo := repository.NewMemoryCategoryRepository()
	stackRepo := repository.NewMemoryTechStackRepository()
	patternRepo := repository.NewMemoryPatternRepository()
	ruleRepo := repository.NewMemoryRuleRepository()

	category, err := domain.NewCategory("Database", "Data storage", 0)
	require.NoError(t, err)
	require.NoError(t, categoryRepo.Create(ctx, category))

	stack, err := domain.NewTechStack(category.ID, "PostgreSQL", "Relational database")
	require.NoError(t, err)

	sslMode, err := domain.NewParameterDefinition("ssl_mode", "TLS mode", domain.ValueTypeChoice, true)
	require.NoError(t, err)
	require.NoError(t, sslMode.SetAllowedValues([]string{"disable", "require"}))
	require.NoError(t, stack.AddParameter(sslMode))

	poolSize, err := domain.NewParameterDefinition("pool_size", "Connections", domain.ValueTypeNumber, false)
	require.NoError(t, err)
	require.NoError(t, poolSize.SetDefaultValue("10"))
	require.NoError(t, stack.AddParameter(poolSize))

	require.NoError(t, stackRepo.Create(ctx, stack))
	// Create stores the bare record; Save persists the parameter rows.
	require.NoError(t, stackRepo.Save(ctx, stack))

	pattern, err := domain.NewArchitecturePattern(
		"Hexagonal Architecture", "Ports and adapters", "Keep IO behind interfaces", 3, true, true)
	require.NoError(t, err)
	require.NoError(t, patternRepo.Create(ctx, pattern))

	rule, err := domain.NewEngineeringRule(
		"mandatory-code-review", "Second pair of eyes", "Catches defects early",
		domain.RuleSeverityError, domain.RuleScopeGlobal, true)
	require.NoError(t, err)
	require.NoError(t, ruleRepo.Create(ctx, rule))

	return &profileFixture{
		service: profiles.NewProfileService(profileRepo, categoryRepo, stackRepo, patternRepo, ruleRepo),
		stack:   stack,
		pattern: pattern,
		rule:    rule,
	}
}

// completeProfile assembles a profile that passes the artifact gate.
func (f *profileFixture) completeProfile(t *testing.T) *domain.ProjectProfile {
	t.Helper()
	ctx := context.Background()

	profile, err := f.service.Create(ctx, "Checkout Service", "Payment checkout backend")
	require.NoError(t, err)

	_, err = f.service.AddTechStack(ctx, profile.ID, f.stack.ID, map[string]string{"ssl_mode": "require"})
	require.NoError(t, err)
	_, err = f.service.AddPattern(ctx, profile.ID, f.pattern.ID)
	require.NoError(t, err)
	_, err = f.service.AddRule(ctx, profile.ID, f.rule.ID)
	require.NoError(t, err)

	updated, err := f.service.Update(ctx, profile.ID, profiles.UpdateProfileInput{
		Name:           "Checkout Service",
		Description:    "Payment checkout backend",
		ProjectName:    "checkout-svc",
		TargetTeamSize: 5,
	})
	require.NoError(t, err)
	return updated
}

func TestProfileService_Create(t *testing.T) {
	ctx := context.Background()
	f := newProfileFixture(t)

	profile, err := f.service.Create(ctx, "Checkout Service", "Payments")
	require.NoError(t, err)

	assert.NotEmpty(t, profile.ID)
	assert.False(t, profile.IsValid(), "a fresh profile must not pass the artifact gate")
}

func TestProfileService_AddTechStack_ResolvesValues(t *testing.T) {
	ctx := context.Background()
	f := newProfileFixture(t)

	profile, err := f.service.Create(ctx, "Checkout Service", "")
	require.NoError(t, err)

	updated, err := f.service.AddTechStack(ctx, profile.ID, f.stack.ID,
		map[string]string{"ssl_mode": "require"})
	require.NoError(t, err)

	refs := updated.TechStacks()
	require.Len(t, refs, 1)

	sslMode, ok := refs[0].Value("ssl_mode")
	require.True(t, ok)
	assert.Equal(t, "require", sslMode.Raw())
	assert.Equal(t, domain.ValueTypeChoice, sslMode.Type())

	// The optional parameter falls back to its configured default.
	poolSize, ok := refs[0].Value("pool_size")
	require.True(t, ok)
	assert.Equal(t, "10", poolSize.Raw())

	stored, err := f.service.Get(ctx, profile.ID)
	require.NoError(t, err)
	assert.True(t, stored.HasTechStack(f.stack.ID))
}

func TestProfileService_AddTechStack_MissingRequired(t *testing.T) {
	ctx := context.Background()
	f := newProfileFixture(t)

	profile, err := f.service.Create(ctx, "Checkout Service", "")
	require.NoError(t, err)

	_, err = f.service.AddTechStack(ctx, profile.ID, f.stack.ID, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingRequiredParameter)

	stored, err := f.service.Get(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.TechStackCount(), "failed attach must not persist")
}

func TestProfileService_AddTechStack_UndeclaredParameter(t *testing.T) {
	ctx := context.Background()
	f := newProfileFixture(t)

	profile, err := f.service.Create(ctx, "Checkout Service", "")
	require.NoError(t, err)

	_, err = f.service.AddTechStack(ctx, profile.ID, f.stack.ID,
		map[string]string{"ssl_mode": "require", "replicas": "3"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidValue)
}

func TestProfileService_AddTechStack_InvalidChoice(t *testing.T) {
	ctx := context.Background()
	f := newProfileFixture(t)

	profile, err := f.service.Create(ctx, "Checkout Service", "")
	require.NoError(t, err)

	_, err = f.service.AddTechStack(ctx, profile.ID, f.stack.ID,
		map[string]string{"ssl_mode": "prefer"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidValue)
}

func TestProfileService_AddTechStack_DuplicateReference(t *testing.T) {
	ctx := context.Background()
	f := newProfileFixture(t)

	profile, err := f.service.Create(ctx, "Checkout Service", "")
	require.NoError(t, err)

	_, err = f.service.AddTechStack(ctx, profile.ID, f.stack.ID,
		map[string]string{"ssl_mode": "require"})
	require.NoError(t, err)

	_, err = f.service.AddTechStack(ctx, profile.ID, f.stack.ID,
		map[string]string{"ssl_mode": "disable"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateReference)
}

func TestProfileService_AddTechStack_UnknownStack(t *testing.T) {
	ctx := context.Background()
	f := newProfileFixture(t)

	profile, err := f.service.Create(ctx, "Checkout Service", "")
	require.NoError(t, err)

	_, err = f.service.AddTechStack(ctx, profile.ID, "missing", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProfileService_AddPattern_UnknownPattern(t *testing.T) {
	ctx := context.Background()
	f := newProfileFixture(t)

	profile, err := f.service.Create(ctx, "Checkout Service", "")
	require.NoError(t, err)

	_, err = f.service.AddPattern(ctx, profile.ID, "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProfileService_Validate_ReportsEveryGap(t *testing.T) {
	ctx := context.Background()
	f := newProfileFixture(t)

	profile, err := f.service.Create(ctx, "Checkout Service", "")
	require.NoError(t, err)

	report, err := f.service.Validate(ctx, profile.ID)
	require.NoError(t, err)

	assert.False(t, report.IsValid)
	assert.Len(t, report.Missing, 3)
}

func TestProfileService_Validate_CompleteProfile(t *testing.T) {
	ctx := context.Background()
	f := newProfileFixture(t)
	profile := f.completeProfile(t)

	report, err := f.service.Validate(ctx, profile.ID)
	require.NoError(t, err)

	assert.True(t, report.IsValid)
	assert.Empty(t, report.Missing)
}

func TestProfileService_BuildRenderInput_GateRefusesIncomplete(t *testing.T) {
	ctx := context.Background()
	f := newProfileFixture(t)

	profile, err := f.service.Create(ctx, "Checkout Service", "")
	require.NoError(t, err)

	_, err = f.service.BuildRenderInput(ctx, profile.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)
}

func TestProfileService_BuildRenderInput_ResolvesReferences(t *testing.T) {
	ctx := context.Background()
	f := newProfileFixture(t)
	profile := f.completeProfile(t)

	input, err := f.service.BuildRenderInput(ctx, profile.ID)
	require.NoError(t, err)

	assert.Equal(t, "Checkout Service", input.ProfileName)
	assert.Equal(t, "checkout-svc", input.ProjectName)
	assert.Equal(t, 5, input.TargetTeamSize)
	assert.False(t, input.GeneratedAt.IsZero())

	require.Len(t, input.TechStacks, 1)
	stackEntry := input.TechStacks[0]
	assert.Equal(t, "PostgreSQL", stackEntry.Name)
	assert.Equal(t, "Database", stackEntry.CategoryName)
	require.Len(t, stackEntry.Values, 2)

	require.Len(t, input.Patterns, 1)
	assert.Equal(t, "Hexagonal Architecture", input.Patterns[0].Name)
	assert.Equal(t, 3, input.Patterns[0].ComplexityLevel)

	require.Len(t, input.Rules, 1)
	assert.Equal(t, "mandatory-code-review", input.Rules[0].Name)
	assert.Equal(t, "error", input.Rules[0].Severity)
	assert.True(t, input.Rules[0].IsEnforced)
}

func TestProfileService_RemoveTechStack_ReopensGate(t *testing.T) {
	ctx := context.Background()
	f := newProfileFixture(t)
	profile := f.completeProfile(t)

	_, err := f.service.RemoveTechStack(ctx, profile.ID, f.stack.ID)
	require.NoError(t, err)

	report, err := f.service.Validate(ctx, profile.ID)
	require.NoError(t, err)
	assert.False(t, report.IsValid)
	assert.Contains(t, report.Missing, "at least one tech stack")
}

func TestProfileService_Update(t *testing.T) {
	ctx := context.Background()
	f := newProfileFixture(t)

	profile, err := f.service.Create(ctx, "Checkout Service", "old")
	require.NoError(t, err)

	updated, err := f.service.Update(ctx, profile.ID, profiles.UpdateProfileInput{
		Name:           "Checkout Platform",
		Description:    "new",
		ProjectName:    "checkout",
		TargetTeamSize: 8,
	})
	require.NoError(t, err)

	assert.Equal(t, "Checkout Platform", updated.Name)
	assert.Equal(t, 8, updated.TargetTeamSize)

	stored, err := f.service.Get(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, "Checkout Platform", stored.Name)
	assert.Equal(t, "checkout", stored.ProjectName)
}

func TestProfileService_Update_NegativeTeamSize(t *testing.T) {
	ctx := context.Background()
	f := newProfileFixture(t)

	profile, err := f.service.Create(ctx, "Checkout Service", "")
	require.NoError(t, err)

	_, err = f.service.Update(ctx, profile.ID, profiles.UpdateProfileInput{
		Name:           "Checkout Service",
		TargetTeamSize: -1,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestProfileService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newProfileFixture(t)
	profile := f.completeProfile(t)

	require.NoError(t, f.service.Delete(ctx, profile.ID))

	_, err := f.service.Get(ctx, profile.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
