package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTechStack(t *testing.T) *TechStack {
	t.Helper()
	stack, err := NewTechStack("cat-backend", "PostgreSQL", "Relational database")
	require.NoError(t, err)
	return stack
}

func newTestParameter(t *testing.T, name string, valueType ValueType, required bool) *ParameterDefinition {
	t.Helper()
	param, err := NewParameterDefinition(name, "", valueType, required)
	require.NoError(t, err)
	return param
}

func TestNewTechStack_RequiresCategory(t *testing.T) {
	_, err := NewTechStack("", "PostgreSQL", "")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestTechStack_AddParameter(t *testing.T) {
	stack := newTestTechStack(t)
	param := newTestParameter(t, "version", ValueTypeVersion, true)

	require.NoError(t, stack.AddParameter(param))

	assert.Equal(t, stack.ID, param.TechStackID)
	assert.Equal(t, 1, stack.ParameterCount())

	found, ok := stack.Parameter("version")
	require.True(t, ok)
	assert.Equal(t, param.ID, found.ID)
}

func TestTechStack_AddParameterDuplicateNameCaseInsensitive(t *testing.T) {
	stack := newTestTechStack(t)
	require.NoError(t, stack.AddParameter(newTestParameter(t, "Version", ValueTypeVersion, true)))

	err := stack.AddParameter(newTestParameter(t, "version", ValueTypeText, false))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateName)
	assert.Equal(t, 1, stack.ParameterCount())
}

func TestTechStack_AddParameterNil(t *testing.T) {
	stack := newTestTechStack(t)

	err := stack.AddParameter(nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestTechStack_RemoveParameter(t *testing.T) {
	stack := newTestTechStack(t)
	require.NoError(t, stack.AddParameter(newTestParameter(t, "version", ValueTypeVersion, true)))

	require.NoError(t, stack.RemoveParameter("VERSION"))
	assert.Equal(t, 0, stack.ParameterCount())

	err := stack.RemoveParameter("version")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTechStack_RequiredParameters(t *testing.T) {
	stack := newTestTechStack(t)
	require.NoError(t, stack.AddParameter(newTestParameter(t, "version", ValueTypeVersion, true)))
	require.NoError(t, stack.AddParameter(newTestParameter(t, "pool_size", ValueTypeNumber, false)))
	require.NoError(t, stack.AddParameter(newTestParameter(t, "ssl_mode", ValueTypeChoice, true)))

	required := stack.RequiredParameters()

	require.Len(t, required, 2)
	assert.Equal(t, "version", required[0].Name)
	assert.Equal(t, "ssl_mode", required[1].Name)
}

func TestTechStack_ParametersCopied(t *testing.T) {
	stack := newTestTechStack(t)
	require.NoError(t, stack.AddParameter(newTestParameter(t, "version", ValueTypeVersion, true)))

	params := stack.Parameters()
	params[0] = nil

	_, ok := stack.Parameter("version")
	assert.True(t, ok, "mutating the returned slice must not affect the stack")
}

func TestTechStack_SetDefaultVersion(t *testing.T) {
	stack := newTestTechStack(t)

	require.NoError(t, stack.SetDefaultVersion("16.4"))
	assert.Equal(t, "16.4", stack.DefaultVersion)

	err := stack.SetDefaultVersion("stable")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidValue)

	require.NoError(t, stack.SetDefaultVersion(""))
	assert.Empty(t, stack.DefaultVersion)
}

func TestTechStack_SetDocumentationURL(t *testing.T) {
	stack := newTestTechStack(t)

	require.NoError(t, stack.SetDocumentationURL("https://www.postgresql.org/docs/"))

	for _, invalid := range []string{"not a url", "ftp://example.com", "https://"} {
		err := stack.SetDocumentationURL(invalid)
		assert.ErrorIs(t, err, ErrInvalidArgument, "url %q should be rejected", invalid)
	}

	require.NoError(t, stack.SetDocumentationURL(""))
	assert.Empty(t, stack.DocumentationURL)
}

func TestCategory_Lifecycle(t *testing.T) {
	category, err := NewCategory("Backend", "Server side technologies", 1)
	require.NoError(t, err)
	assert.True(t, category.IsActive)
	assert.False(t, category.IsAIGenerated)

	category.Deactivate()
	assert.False(t, category.IsActive)

	category.Activate()
	assert.True(t, category.IsActive)

	category.MarkAIGenerated()
	assert.True(t, category.IsAIGenerated)

	_, err = NewCategory("", "", 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
