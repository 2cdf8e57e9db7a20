// Package errors provides standardized error handling for the listing service
// and its Camunda job workers.
package errors

import (
	stderrors "errors"
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
	ErrCodeInvalidSearchInput ErrorCode = "INVALID_SEARCH_INPUT"

	ErrCodeProviderRequestFailed ErrorCode = "PROVIDER_REQUEST_FAILED"
	ErrCodeProviderTimeout       ErrorCode = "PROVIDER_TIMEOUT"
	ErrCodeProviderRateLimited   ErrorCode = "PROVIDER_RATE_LIMITED"
	ErrCodeProviderNotConfigured ErrorCode = "PROVIDER_NOT_CONFIGURED"

	ErrCodeJournalWriteFailed       ErrorCode = "JOURNAL_WRITE_FAILED"
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithCause records err as the wrapped cause of e.
func (e *StandardError) WithCause(err error) *StandardError {
	e.cause = err
	if e.Details == "" && err != nil {
		e.Details = err.Error()
	}
	return e
}

// WithMetadata returns e after setting key on its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

func newError(code ErrorCode, message string, cause error, retryable bool, details string) *StandardError {
	if details == "" && cause != nil {
		details = cause.Error()
	}
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func NewInvalidSearchInputError(details string) *StandardError {
	return newError(ErrCodeInvalidSearchInput, "Invalid search input", nil, false, details)
}

func NewProviderRequestFailedError(provider string, err error) *StandardError {
	return newError(ErrCodeProviderRequestFailed, fmt.Sprintf("Search provider '%s' request failed", provider), err, true, "").
		WithMetadata("provider", provider)
}

func NewProviderTimeoutError(provider string, err error) *StandardError {
	return newError(ErrCodeProviderTimeout, fmt.Sprintf("Search provider '%s' timeout", provider), err, true, "").
		WithMetadata("provider", provider)
}

// NewProviderRateLimitedError reports a throttled provider. retryAfter is
// omitted from the details when unknown.
func NewProviderRateLimitedError(provider string, retryAfter time.Duration) *StandardError {
	details := ""
	if retryAfter > 0 {
		details = fmt.Sprintf("retryAfter: %s", retryAfter)
	}
	return newError(ErrCodeProviderRateLimited, fmt.Sprintf("Search provider '%s' rate limited", provider), nil, true, details).
		WithMetadata("provider", provider)
}

func NewProviderNotConfiguredError(kind string) *StandardError {
	return newError(ErrCodeProviderNotConfigured, "Search provider not configured", nil, false,
		fmt.Sprintf("kind: %s", kind))
}

func NewJournalWriteFailedError(err error) *StandardError {
	return newError(ErrCodeJournalWriteFailed, "Search run journal write failed", err, true, "")
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err, true, "")
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the codes modelled on BPMN
// boundary events.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidSearchInput:       "INVALID_SEARCH_INPUT",
	ErrCodeProviderRequestFailed:    "PROVIDER_REQUEST_FAILED",
	ErrCodeProviderTimeout:          "PROVIDER_TIMEOUT",
	ErrCodeProviderRateLimited:      "PROVIDER_RATE_LIMITED",
	ErrCodeProviderNotConfigured:    "PROVIDER_NOT_CONFIGURED",
	ErrCodeJournalWriteFailed:       "JOURNAL_WRITE_FAILED",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeProviderRequestFailed,
		ErrCodeJournalWriteFailed,
		ErrCodeDatabaseConnectionFailed:
		return 3

	case ErrCodeProviderTimeout,
		ErrCodeProviderRateLimited:
		return 2

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandardError finds a StandardError in err's chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// CodeOf returns the code of the first StandardError in err's chain, or
// ErrCodeInternal.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr.Code
	}
	return ErrCodeInternal
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "PROVIDER"):
		return "PROVIDER"
	case strings.Contains(codeStr, "JOURNAL") || strings.Contains(codeStr, "DATABASE"):
		return "DATABASE"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
