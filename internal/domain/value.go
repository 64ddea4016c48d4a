package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ValueType tags a parameter value with its parsing and validation rules.
type ValueType string

const (
	ValueTypeText    ValueType = "text"
	ValueTypeNumber  ValueType = "number"
	ValueTypeBoolean ValueType = "boolean"
	ValueTypeChoice  ValueType = "choice"
	ValueTypeVersion ValueType = "version"
)

// ParseValueType converts untrusted input into a ValueType.
func ParseValueType(s string) (ValueType, error) {
	switch t := ValueType(strings.ToLower(strings.TrimSpace(s))); t {
	case ValueTypeText, ValueTypeNumber, ValueTypeBoolean, ValueTypeChoice, ValueTypeVersion:
		return t, nil
	default:
		return "", fmt.Errorf("%w: unknown value type %q", ErrInvalidArgument, s)
	}
}

// String returns the type tag.
func (t ValueType) String() string {
	return string(t)
}

// IsValid reports whether the type tag is one of the known types.
func (t ValueType) IsValid() bool {
	switch t {
	case ValueTypeText, ValueTypeNumber, ValueTypeBoolean, ValueTypeChoice, ValueTypeVersion:
		return true
	}
	return false
}

// TypedValue is an immutable, type-tagged parameter value. The zero value is
// not usable; construct through the typed factories or NewTypedValue. Two
// values are equal when both type and raw payload match.
type TypedValue struct {
	valueType ValueType
	raw       string
}

// NewTypedValue dispatches to the factory matching t.
func NewTypedValue(t ValueType, raw string) (TypedValue, error) {
	switch t {
	case ValueTypeText:
		return NewTextValue(raw)
	case ValueTypeNumber:
		return NewNumberValue(raw)
	case ValueTypeBoolean:
		return NewBooleanValue(raw)
	case ValueTypeChoice:
		return NewChoiceValue(raw)
	case ValueTypeVersion:
		return NewVersionValue(raw)
	default:
		return TypedValue{}, fmt.Errorf("%w: unknown value type %q", ErrInvalidArgument, t)
	}
}

// NewTextValue creates a text value from a non-empty string.
func NewTextValue(raw string) (TypedValue, error) {
	if strings.TrimSpace(raw) == "" {
		return TypedValue{}, fmt.Errorf("%w: text value must not be empty", ErrInvalidValue)
	}
	return TypedValue{valueType: ValueTypeText, raw: raw}, nil
}

// NewNumberValue creates a number value from a parseable decimal string.
func NewNumberValue(raw string) (TypedValue, error) {
	if _, err := strconv.ParseFloat(raw, 64); err != nil {
		return TypedValue{}, fmt.Errorf("%w: %q is not a number", ErrInvalidValue, raw)
	}
	return TypedValue{valueType: ValueTypeNumber, raw: raw}, nil
}

// NewBooleanValue creates a boolean value from a parseable true/false string.
func NewBooleanValue(raw string) (TypedValue, error) {
	if _, err := strconv.ParseBool(raw); err != nil {
		return TypedValue{}, fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, raw)
	}
	return TypedValue{valueType: ValueTypeBoolean, raw: raw}, nil
}

// NewChoiceValue creates an enumerated-choice value from a non-empty string.
// Membership in the allowed set is the owning parameter definition's concern.
func NewChoiceValue(raw string) (TypedValue, error) {
	if strings.TrimSpace(raw) == "" {
		return TypedValue{}, fmt.Errorf("%w: choice value must not be empty", ErrInvalidValue)
	}
	return TypedValue{valueType: ValueTypeChoice, raw: raw}, nil
}

// NewVersionValue creates a version value from a semver-parseable string.
// Partial versions such as "14" or "14.2" are accepted.
func NewVersionValue(raw string) (TypedValue, error) {
	if _, err := semver.NewVersion(strings.TrimSpace(raw)); err != nil {
		return TypedValue{}, fmt.Errorf("%w: %q is not a version", ErrInvalidValue, raw)
	}
	return TypedValue{valueType: ValueTypeVersion, raw: raw}, nil
}

// Type returns the value's type tag.
func (v TypedValue) Type() ValueType {
	return v.valueType
}

// Raw returns the string-encoded payload.
func (v TypedValue) Raw() string {
	return v.raw
}

// String implements fmt.Stringer.
func (v TypedValue) String() string {
	return v.raw
}

// IsZero reports whether the value is the unusable zero value.
func (v TypedValue) IsZero() bool {
	return v.valueType == "" && v.raw == ""
}

// Equal reports structural equality.
func (v TypedValue) Equal(other TypedValue) bool {
	return v.valueType == other.valueType && v.raw == other.raw
}

type typedValueJSON struct {
	Type  ValueType `json:"type"`
	Value string    `json:"value"`
}

// MarshalJSON implements json.Marshaler.
func (v TypedValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(typedValueJSON{Type: v.valueType, Value: v.raw})
}

// UnmarshalJSON implements json.Unmarshaler. The payload is re-validated
// through the matching factory.
func (v *TypedValue) UnmarshalJSON(data []byte) error {
	var tv typedValueJSON
	if err := json.Unmarshal(data, &tv); err != nil {
		return err
	}

	parsed, err := NewTypedValue(tv.Type, tv.Value)
	if err != nil {
		return err
	}

	*v = parsed
	return nil
}
