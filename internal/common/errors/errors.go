// Package errors provides standardized error handling for the analysis pipeline.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	ErrCodeSanitizationFailed ErrorCode = "SANITIZATION_FAILED"
	ErrCodeSanitizerTimeout   ErrorCode = "SANITIZER_TIMEOUT"

	ErrCodeCoarseSearchFailed  ErrorCode = "COARSE_SEARCH_FAILED"
	ErrCodeCoarseSearchTimeout ErrorCode = "COARSE_SEARCH_TIMEOUT"
	ErrCodeNoConditionsFound   ErrorCode = "NO_CONDITIONS_FOUND"

	ErrCodeResearchFailed  ErrorCode = "RESEARCH_FAILED"
	ErrCodeResearchTimeout ErrorCode = "RESEARCH_TIMEOUT"

	ErrCodeClinicLookupFailed   ErrorCode = "CLINIC_LOOKUP_FAILED"
	ErrCodeLocationLookupFailed ErrorCode = "LOCATION_LOOKUP_FAILED"

	ErrCodeSessionNotFound    ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeSessionStoreFailed ErrorCode = "SESSION_STORE_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewValidationFailedError creates a non-retryable request validation error.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSanitizationFailedError creates a retryable sanitizer error. Callers are
// expected to fall back to local redaction instead of retrying.
func NewSanitizationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSanitizationFailed,
		Message:   "External sanitization service error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCoarseSearchFailedError creates a non-retryable coarse search error.
// There is no fallback for this step; the session moves to failed.
func NewCoarseSearchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCoarseSearchFailed,
		Message:   "Condition identification failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNoConditionsFoundError creates a business-rule error for an empty coarse
// search result.
func NewNoConditionsFoundError(symptomLength int) *StandardError {
	return &StandardError{
		Code:      ErrCodeNoConditionsFound,
		Message:   "No candidate conditions identified from symptoms",
		Details:   fmt.Sprintf("symptomLength: %d", symptomLength),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewResearchTimeoutError creates a per-item research timeout. Individual
// timeouts degrade the finding rather than failing the run.
func NewResearchTimeoutError(condition string) *StandardError {
	return &StandardError{
		Code:      ErrCodeResearchTimeout,
		Message:   "Deep research lookup timeout",
		Details:   fmt.Sprintf("condition: %s", condition),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewClinicLookupFailedError creates an error for the clinic collaborator.
// The step degrades to an empty clinic list on this error.
func NewClinicLookupFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeClinicLookupFailed,
		Message:   "Clinic discovery service error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionNotFoundError creates a non-retryable lookup error.
func NewSessionNotFoundError(sessionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionNotFound,
		Message:   "Session not found",
		Details:   fmt.Sprintf("sessionId: %s", sessionID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionStoreFailedError creates a retryable storage error. Store failures
// are fatal to the owning pipeline run.
func NewSessionStoreFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionStoreFailed,
		Message:   "Session store error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return &StandardError{
		Code:      "BUSINESS_RULE_VIOLATION",
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeSanitizationFailed,
		ErrCodeSessionStoreFailed,
		ErrCodeClinicLookupFailed,
		ErrCodeResearchFailed:
		return true
	default:
		return false
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "SANITIZ"):
		return "REDACTION"
	case strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "CONDITIONS") || strings.Contains(codeStr, "RESEARCH"):
		return "AI"
	case strings.Contains(codeStr, "CLINIC") || strings.Contains(codeStr, "LOCATION"):
		return "DISCOVERY"
	case strings.Contains(codeStr, "SESSION"):
		return "STORAGE"
	default:
		return "OTHER"
	}
}
