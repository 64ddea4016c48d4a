package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for business-rule failures. Callers attach the offending
// identifier with fmt.Errorf("%w: ...") and classify with errors.Is.
var (
	ErrInvalidArgument          = errors.New("invalid argument")
	ErrInvalidValue             = errors.New("invalid value")
	ErrDuplicateName            = errors.New("duplicate name")
	ErrDuplicateReference       = errors.New("duplicate reference")
	ErrMissingRequiredParameter = errors.New("missing required parameter")
	ErrNotFound                 = errors.New("not found")
	ErrInvalidOperation         = errors.New("invalid operation")
	ErrInvalidTransition        = errors.New("invalid status transition")
	ErrEntityInUse              = errors.New("entity is referenced")
	ErrProviderFailure          = errors.New("ai provider failure")
	ErrParseFailure             = errors.New("ai response parse failure")
)

// requireName validates a required name field against a length cap.
func requireName(name, what string, maxLen int) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: %s name is required", ErrInvalidArgument, what)
	}
	if len(name) > maxLen {
		return fmt.Errorf("%w: %s name must be %d characters or less", ErrInvalidArgument, what, maxLen)
	}
	return nil
}

// requireMaxLen validates an optional text field against a length cap.
func requireMaxLen(value, what string, maxLen int) error {
	if len(value) > maxLen {
		return fmt.Errorf("%w: %s must be %d characters or less", ErrInvalidArgument, what, maxLen)
	}
	return nil
}
