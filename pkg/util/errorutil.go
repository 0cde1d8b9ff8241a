package util

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// Error codes surfaced to API callers.
const (
	CodeValidationFailed         = "VALIDATION_FAILED"
	CodeInvalidInput             = "INVALID_INPUT"
	CodeNotFound                 = "NOT_FOUND"
	CodeUnauthorized             = "UNAUTHORIZED"
	CodeForbidden                = "FORBIDDEN"
	CodeConflict                 = "CONFLICT"
	CodeUpstreamUnavailable      = "UPSTREAM_UNAVAILABLE"
	CodeUpstreamValidationFailed = "UPSTREAM_VALIDATION_FAILED"
	CodeCancelled                = "CANCELLED"
	CodeInternal                 = "INTERNAL_ERROR"
)

// StatusClientClosedRequest is the non-standard status for requests the caller abandoned.
const StatusClientClosedRequest = 499

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

// NewInvalidInput reports a caller payload rejected before any external effect.
func NewInvalidInput(message string, details map[string]any, err error) error {
	return &DomainError{
		Code:       CodeInvalidInput,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    details,
		Err:        err,
	}
}

// NewUpstreamUnavailable reports a transport failure talking to an external provider.
func NewUpstreamUnavailable(provider string, err error) error {
	return &DomainError{
		Code:       CodeUpstreamUnavailable,
		Message:    fmt.Sprintf("%s unavailable", provider),
		HTTPStatus: http.StatusServiceUnavailable,
		Details:    map[string]any{"provider": provider},
		Err:        err,
	}
}

// NewUpstreamValidationFailure reports a provider reply that does not match its contract.
func NewUpstreamValidationFailure(provider string, details map[string]any, err error) error {
	if details == nil {
		details = map[string]any{}
	}
	details["provider"] = provider
	return &DomainError{
		Code:       CodeUpstreamValidationFailed,
		Message:    fmt.Sprintf("%s returned an invalid response", provider),
		HTTPStatus: http.StatusBadGateway,
		Details:    details,
		Err:        err,
	}
}

// NewCancelled reports work abandoned because the caller's context ended.
func NewCancelled(err error) error {
	status := StatusClientClosedRequest
	if errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusGatewayTimeout
	}
	return &DomainError{
		Code:       CodeCancelled,
		Message:    "request cancelled",
		HTTPStatus: status,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
		return NewNotFound("resource", nil).(*DomainError)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return NewCancelled(err).(*DomainError)
	}
	return NewInternalError(err).(*DomainError)
}

func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}

// HasCode reports whether err carries the given DomainError code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		return false
	}
	return domainErr.Code == code
}
