// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidInput         ErrorCode = "INVALID_INPUT"
	ErrCodeClassificationFailed ErrorCode = "CLASSIFICATION_FAILED"

	ErrCodeGuidanceLookupFailed ErrorCode = "GUIDANCE_LOOKUP_FAILED"
	ErrCodeSearchTimeout        ErrorCode = "SEARCH_TIMEOUT"

	ErrCodeContactLookupFailed    ErrorCode = "CONTACT_LOOKUP_FAILED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeDispatchFailed         ErrorCode = "DISPATCH_FAILED"

	ErrCodeDatabaseInsertFailed ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeCacheUnavailable     ErrorCode = "CACHE_UNAVAILABLE"

	ErrCodeContactNotFound      ErrorCode = "CONTACT_NOT_FOUND"
	ErrCodeVerificationFailed   ErrorCode = "VERIFICATION_FAILED"
	ErrCodeVerificationNoTarget ErrorCode = "VERIFICATION_NO_TARGET"

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
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

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

func newError(code ErrorCode, message string, cause error, retryable bool) *StandardError {
	details := ""
	if cause != nil {
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

func NewInvalidInputError(details string) *StandardError {
	e := newError(ErrCodeInvalidInput, "Job input failed validation", nil, false)
	e.Details = details
	return e
}

func NewGuidanceLookupFailedError(err error) *StandardError {
	return newError(ErrCodeGuidanceLookupFailed, "Guidance lookup failed", err, true)
}

func NewSearchTimeoutError(index string) *StandardError {
	e := newError(ErrCodeSearchTimeout, "Guidance search timed out", nil, true)
	e.Details = fmt.Sprintf("index: %s", index)
	return e
}

func NewContactLookupFailedError(err error) *StandardError {
	return newError(ErrCodeContactLookupFailed, "Failed to load emergency contacts", err, true)
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	e := newError(ErrCodeNotificationSendFailed, "Notification delivery failed", err, true)
	e.Metadata = map[string]interface{}{"channel": channel}
	return e
}

func NewDispatchFailedError(err error) *StandardError {
	return newError(ErrCodeDispatchFailed, "Emergency dispatch publish failed", err, true)
}

func NewDatabaseInsertFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseInsertFailed, "Failed to persist record", err, true)
}

func NewCacheUnavailableError(err error) *StandardError {
	return newError(ErrCodeCacheUnavailable, "Cache unavailable", err, true)
}

func NewContactNotFoundError(contactID string) *StandardError {
	e := newError(ErrCodeContactNotFound, "Emergency contact not found", nil, false)
	e.Details = fmt.Sprintf("contactId: %s", contactID)
	return e
}

func NewVerificationFailedError(err error) *StandardError {
	return newError(ErrCodeVerificationFailed, "Contact verification failed", err, true)
}

func NewVerificationNoTargetError(channel string) *StandardError {
	e := newError(ErrCodeVerificationNoTarget, "Contact has no address for channel", nil, false)
	e.Details = fmt.Sprintf("channel: %s", channel)
	return e
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err, false)
}

var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidInput:           "INVALID_INPUT",
	ErrCodeClassificationFailed:   "CLASSIFICATION_FAILED",
	ErrCodeGuidanceLookupFailed:   "GUIDANCE_LOOKUP_FAILED",
	ErrCodeSearchTimeout:          "SEARCH_TIMEOUT",
	ErrCodeContactLookupFailed:    "CONTACT_LOOKUP_FAILED",
	ErrCodeNotificationSendFailed: "NOTIFICATION_SEND_FAILED",
	ErrCodeDispatchFailed:         "DISPATCH_FAILED",
	ErrCodeDatabaseInsertFailed:   "DATABASE_INSERT_FAILED",
	ErrCodeCacheUnavailable:       "CACHE_UNAVAILABLE",
	ErrCodeContactNotFound:        "CONTACT_NOT_FOUND",
	ErrCodeVerificationFailed:     "VERIFICATION_FAILED",
	ErrCodeVerificationNoTarget:   "VERIFICATION_NO_TARGET",
}

// GetRetryCount returns how many times Zeebe should retry a job failing with code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeContactLookupFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeDispatchFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeGuidanceLookupFailed,
		ErrCodeVerificationFailed:
		return 3

	case ErrCodeSearchTimeout,
		ErrCodeCacheUnavailable:
		return 2

	default:
		return 0
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "INPUT"):
		return "VALIDATION"
	case strings.Contains(codeStr, "GUIDANCE") || strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "CONTACT") || strings.Contains(codeStr, "VERIFICATION"):
		return "CONTACTS"
	case strings.Contains(codeStr, "NOTIFICATION") || strings.Contains(codeStr, "DISPATCH"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "CACHE"):
		return "STORAGE"
	default:
		return "INTERNAL"
	}
}
