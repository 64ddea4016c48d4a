package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTypedValue_AcceptsValidInputPerType(t *testing.T) {
	tests := []struct {
		name      string
		valueType ValueType
		raw       string
	}{
		{"plain text", ValueTypeText, "PostgreSQL"},
		{"integer number", ValueTypeNumber, "5432"},
		{"decimal number", ValueTypeNumber, "3.14"},
		{"negative number", ValueTypeNumber, "-1"},
		{"boolean true", ValueTypeBoolean, "true"},
		{"boolean false", ValueTypeBoolean, "false"},
		{"choice", ValueTypeChoice, "REST"},
		{"full version", ValueTypeVersion, "14.2.1"},
		{"partial version", ValueTypeVersion, "14.2"},
		{"major only version", ValueTypeVersion, "14"},
		{"prerelease version", ValueTypeVersion, "1.0.0-rc.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := NewTypedValue(tt.valueType, tt.raw)

			require.NoError(t, err)
			assert.Equal(t, tt.valueType, value.Type())
			assert.Equal(t, tt.raw, value.Raw())
		})
	}
}

func TestNewTypedValue_RejectsInvalidInputPerType(t *testing.T) {
	tests := []struct {
		name      string
		valueType ValueType
		raw       string
	}{
		{"empty text", ValueTypeText, ""},
		{"whitespace text", ValueTypeText, "   "},
		{"non numeric", ValueTypeNumber, "fourteen"},
		{"empty number", ValueTypeNumber, ""},
		{"boolean word", ValueTypeBoolean, "yes"},
		{"empty boolean", ValueTypeBoolean, ""},
		{"empty choice", ValueTypeChoice, ""},
		{"non version", ValueTypeVersion, "latest"},
		{"version with spaces", ValueTypeVersion, "1 . 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTypedValue(tt.valueType, tt.raw)

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidValue)
		})
	}
}

func TestNewTypedValue_UnknownTypeRejected(t *testing.T) {
	_, err := NewTypedValue(ValueType("timestamp"), "2024-01-01")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestTypedValue_RawPreservedExactly(t *testing.T) {
	// The stored representation must survive unchanged so a profile renders
	// the same value the operator entered.
	value, err := NewVersionValue("14.2")
	require.NoError(t, err)
	assert.Equal(t, "14.2", value.Raw())

	text, err := NewTextValue("  padded  ")
	require.NoError(t, err)
	assert.Equal(t, "  padded  ", text.Raw())
}

func TestTypedValue_JSONRoundTrip(t *testing.T) {
	original, err := NewNumberValue("3.5")
	require.NoError(t, err)

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"number","value":"3.5"}`, string(data))

	var decoded TypedValue
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, original.Equal(decoded))
}

func TestTypedValue_UnmarshalRevalidates(t *testing.T) {
	var decoded TypedValue
	err := json.Unmarshal([]byte(`{"type":"number","value":"abc"}`), &decoded)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestTypedValue_Equal(t *testing.T) {
	a, err := NewBooleanValue("true")
	require.NoError(t, err)
	b, err := NewBooleanValue("true")
	require.NoError(t, err)
	c, err := NewTextValue("true")
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c), "same raw but different type must not be equal")
}

func TestParseValueType(t *testing.T) {
	parsed, err := ParseValueType(" Version ")
	require.NoError(t, err)
	assert.Equal(t, ValueTypeVersion, parsed)

	_, err = ParseValueType("enum")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
