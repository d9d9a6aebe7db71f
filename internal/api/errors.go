package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/moolen/casa/internal/analysis"
	"github.com/moolen/casa/internal/config"
	"github.com/moolen/casa/internal/period"
	"github.com/moolen/casa/internal/service"
)

// ErrorResponse is the JSON body of every error
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ErrorCode represents error codes used in API responses
type ErrorCode string

const (
	ErrorCodeInvalidRequest   ErrorCode = "INVALID_REQUEST"
	ErrorCodeInvalidPeriod    ErrorCode = "INVALID_PERIOD"
	ErrorCodeInvalidConfig    ErrorCode = "INVALID_CONFIG"
	ErrorCodeInvalidData      ErrorCode = "INVALID_DATA"
	ErrorCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrorCodeNoDataset        ErrorCode = "NO_DATASET"
	ErrorCodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
	ErrorCodeInternalError    ErrorCode = "INTERNAL_ERROR"
)

// APIError represents an API error with status code and message
type APIError struct {
	Code       ErrorCode
	StatusCode int
	Message    string
}

// NewAPIError creates a new API error
func NewAPIError(code ErrorCode, statusCode int, message string) *APIError {
	return &APIError{Code: code, StatusCode: statusCode, Message: message}
}

// Error returns the error message
func (e *APIError) Error() string {
	return e.Message
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string, args ...interface{}) *APIError {
	return NewAPIError(ErrorCodeInvalidRequest, http.StatusBadRequest, fmt.Sprintf(message, args...))
}

// NewNotFoundError creates a not found error
func NewNotFoundError(message string, args ...interface{}) *APIError {
	return NewAPIError(ErrorCodeNotFound, http.StatusNotFound, fmt.Sprintf(message, args...))
}

// NewInternalServerError creates an internal server error
func NewInternalServerError(message string, args ...interface{}) *APIError {
	return NewAPIError(ErrorCodeInternalError, http.StatusInternalServerError, fmt.Sprintf(message, args...))
}

// FromError maps domain errors onto API errors. Unknown errors become 500s.
func FromError(err error) *APIError {
	var apiErr *APIError
	var analysisCfgErr *analysis.ConfigError
	var settingsErr *config.ConfigError

	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, period.ErrInvalidLabel):
		return NewAPIError(ErrorCodeInvalidPeriod, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUnknownPeriod):
		return NewAPIError(ErrorCodeNotFound, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNoDataset):
		return NewAPIError(ErrorCodeNoDataset, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, analysis.ErrUnknownThresholdMethod),
		errors.As(err, &analysisCfgErr),
		errors.As(err, &settingsErr):
		return NewAPIError(ErrorCodeInvalidConfig, http.StatusBadRequest, err.Error())
	case analysis.IsStructuralError(err):
		return NewAPIError(ErrorCodeInvalidData, http.StatusUnprocessableEntity, err.Error())
	default:
		return NewInternalServerError("%v", err)
	}
}
