// Package handlers exposes the studio over HTTP. Every endpoint answers
// with the uniform envelope {success, value | errors}; business-rule
// failures map onto status codes through the domain sentinels and never
// surface as panics.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/pitabwire/util"

	"github.com/antinvestor/blueprint/apps/studio/service/repository"
	"github.com/antinvestor/blueprint/internal/domain"
)

// maxBodyBytes caps request bodies; catalog payloads are small.
const maxBodyBytes = 1 << 20

// envelope is the uniform response shape.
type envelope struct {
	Success bool     `json:"success"`
	Value   any      `json:"value,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// writeValue writes a success envelope.
func writeValue(w http.ResponseWriter, statusCode int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Value: value})
}

// writeError writes a failure envelope with the status derived from the
// error's domain sentinel.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		util.Log(r.Context()).WithError(err).Error("request failed",
			"method", r.Method,
			"path", r.URL.Path)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: false, Errors: []string{err.Error()}})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateName),
		errors.Is(err, domain.ErrDuplicateReference),
		errors.Is(err, domain.ErrEntityInUse),
		errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrInvalidValue),
		errors.Is(err, domain.ErrMissingRequiredParameter),
		errors.Is(err, domain.ErrInvalidOperation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrParseFailure):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrProviderFailure):
		return http.StatusBadGateway
	case errors.Is(err, repository.ErrDatabaseUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody reads a size-capped JSON request body into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("%w: request body exceeds %d bytes", domain.ErrInvalidArgument, maxBodyBytes)
		}
		return fmt.Errorf("%w: failed to read request body", domain.ErrInvalidArgument)
	}

	if err = json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %s", domain.ErrInvalidArgument, err.Error())
	}
	return nil
}

// includeInactive reads the shared list query flag.
func includeInactive(r *http.Request) bool {
	return r.URL.Query().Get("include_inactive") == "true"
}
