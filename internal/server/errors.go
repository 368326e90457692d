package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/frezix0/TodoReact/internal/store"
)

// ErrorCode is the machine-readable error_code of an error response.
type ErrorCode string

// Error codes written in the error envelope.
const (
	CodeValidation       ErrorCode = "validation_error"
	CodeBadRequest       ErrorCode = "bad_request"
	CodeNotFound         ErrorCode = "not_found"
	CodeConflict         ErrorCode = "conflict"
	CodeMethodNotAllowed ErrorCode = "method_not_allowed"
	CodeInternal         ErrorCode = "internal_error"
)

// APIError is an error that knows its HTTP status and envelope fields.
type APIError struct {
	Status  int
	Code    ErrorCode
	Message string
	Fields  map[string]string
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Err.Error())
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *APIError) Unwrap() error {
	return e.Err
}

// NewValidationError reports invalid input with a per-field message map.
func NewValidationError(fields map[string]string) *APIError {
	return &APIError{
		Status:  http.StatusUnprocessableEntity,
		Code:    CodeValidation,
		Message: "Validation failed",
		Fields:  fields,
	}
}

// NewBadRequestError reports a request the server cannot act on.
func NewBadRequestError(message string, err error) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: CodeBadRequest, Message: message, Err: err}
}

// NewNotFoundError reports a missing resource, e.g. "Todo not found".
func NewNotFoundError(resource string, err error) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    CodeNotFound,
		Message: resource + " not found",
		Err:     err,
	}
}

// NewConflictError reports a uniqueness conflict.
func NewConflictError(message string, err error) *APIError {
	return &APIError{Status: http.StatusConflict, Code: CodeConflict, Message: message, Err: err}
}

// NewInternalError hides err behind a generic message.
func NewInternalError(err error) *APIError {
	return &APIError{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	ErrorCode ErrorCode         `json:"error_code"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// toAPIError converts store sentinels and unknown errors into an APIError.
// resource names the entity in not-found messages.
func toAPIError(err error, resource string) *APIError {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, store.ErrCategoryMissing):
		return NewBadRequestError("Category not found", err)
	case errors.Is(err, store.ErrNotFound):
		return NewNotFoundError(resource, err)
	case errors.Is(err, store.ErrDuplicate):
		return NewConflictError(resource+" already exists", err)
	default:
		return NewInternalError(err)
	}
}

// writeError writes err as an error envelope, logging server faults.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, resource string) {
	apiErr := toAPIError(err, resource)

	if apiErr.Status >= http.StatusInternalServerError {
		s.log.WithFields(logrus.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
		}).WithError(err).Error("request failed")
	}

	writeJSON(w, apiErr.Status, errorResponse{
		Success:   false,
		Message:   apiErr.Message,
		ErrorCode: apiErr.Code,
		Errors:    apiErr.Fields,
	})
}
