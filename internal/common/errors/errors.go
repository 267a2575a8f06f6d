// Package errors provides standardized error handling for the client core.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Auth Gateway
	ErrCodeAuthNotConfigured ErrorCode = "AUTH_NOT_CONFIGURED"
	ErrCodeAuthFailed        ErrorCode = "AUTH_FAILED"

	// API Client
	ErrCodeInvalidResponse ErrorCode = "INVALID_RESPONSE"
	ErrCodeBackendError    ErrorCode = "BACKEND_ERROR"
	ErrCodeRequestFailed   ErrorCode = "REQUEST_FAILED"

	// Session Store
	ErrCodeSessionStorage ErrorCode = "SESSION_STORAGE_ERROR"

	// Payload validation
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Is makes errors.Is match on code, so callers can compare against a
// constructed sentinel without caring about details or timestamps.
func (e *StandardError) Is(target error) bool {
	var se *StandardError
	if !errors.As(target, &se) {
		return false
	}
	return e.Code == se.Code
}

// CodeOf extracts the ErrorCode from err, or "" when err is not a
// StandardError.
func CodeOf(err error) ErrorCode {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// NewAuthNotConfiguredError is returned before any network I/O when the
// identity provider lacks its minimum credentials.
func NewAuthNotConfiguredError() *StandardError {
	return &StandardError{
		Code:      ErrCodeAuthNotConfigured,
		Message:   "Identity provider is not configured. Set the VERIFIXIA_IDENTITY_* values.",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuthFailedError wraps a provider error code. Provider codes arrive as
// SCREAMING_SNAKE strings; separators are replaced with spaces so the message
// reads as the provider intended ("EMAIL EXISTS").
func NewAuthFailedError(providerCode string) *StandardError {
	if providerCode == "" {
		providerCode = "AUTH_FAILED"
	}
	return &StandardError{
		Code:      ErrCodeAuthFailed,
		Message:   strings.ReplaceAll(providerCode, "_", " "),
		Details:   providerCode,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidResponseError covers transport failures and non-JSON bodies.
func NewInvalidResponseError(err error) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &StandardError{
		Code:      ErrCodeInvalidResponse,
		Message:   "Invalid response from backend",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewBackendError covers explicit error bodies and bare non-2xx statuses.
func NewBackendError(status int, message string) *StandardError {
	if message == "" {
		message = fmt.Sprintf("Backend error: %d", status)
	}
	return &StandardError{
		Code:      ErrCodeBackendError,
		Message:   message,
		Details:   fmt.Sprintf("status: %d", status),
		Retryable: IsTransientHTTPStatus(status),
		Timestamp: time.Now().UTC(),
	}
}

// NewRequestFailedError covers failures before a response exists at all
// (request construction, file access for uploads).
func NewRequestFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRequestFailed,
		Message:   "Failed to build or send request",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionStorageError covers session persistence failures that are not
// absorbed by the store's fail-soft read path.
func NewSessionStorageError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionStorage,
		Message:   "Session storage failure",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationFailedError covers payloads rejected before they are sent.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Payload failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// IsTransientHTTPStatus returns true if the status code indicates a
// potentially transient error worth retrying.
func IsTransientHTTPStatus(status int) bool {
	switch status {
	case http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		http.StatusTooManyRequests:
		return true
	default:
		return false
	}
}
