// Package errors provides standardized error handling for BPMN workflow integration.
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
	ErrCodeParseError                  ErrorCode = "PARSE_ERROR"
	ErrCodeApplicationValidationFailed ErrorCode = "APPLICATION_VALIDATION_FAILED"
	ErrCodeCreditEvaluationFailed      ErrorCode = "CREDIT_EVALUATION_FAILED"
	ErrCodePolicyInvalid               ErrorCode = "POLICY_INVALID"

	ErrCodeDecisionPublishFailed ErrorCode = "DECISION_PUBLISH_FAILED"
	ErrCodePublishTimeout        ErrorCode = "PUBLISH_TIMEOUT"

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
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// AsStandardError unwraps err to a *StandardError if one is in its chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
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

// NewParseError creates a non-retryable error for undecodable job variables.
func NewParseError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeParseError,
		Message:   "Job variables could not be decoded",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewApplicationValidationFailedError creates a non-retryable application validation error.
func NewApplicationValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeApplicationValidationFailed,
		Message:   "Application data validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCreditEvaluationFailedError wraps an unexpected pipeline fault. It is a
// defect, so retrying the same input would fail the same way.
func NewCreditEvaluationFailedError(applicantID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCreditEvaluationFailed,
		Message:   "Credit evaluation failed",
		Details:   fmt.Sprintf("applicantId: %s, error: %s", applicantID, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewPolicyInvalidError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePolicyInvalid,
		Message:   "Credit policy is invalid",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDecisionPublishFailedError creates a retryable publish error.
func NewDecisionPublishFailedError(decisionID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDecisionPublishFailed,
		Message:   "Decision event delivery failed",
		Details:   fmt.Sprintf("decisionId: %s, error: %s", decisionID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewPublishTimeoutError creates a retryable publish timeout error.
func NewPublishTimeoutError(decisionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodePublishTimeout,
		Message:   "Decision event publish timeout",
		Details:   fmt.Sprintf("decisionId: %s", decisionID),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the error codes caught by
// boundary events in the credit process.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeParseError:                  "INVALID_APPLICATION",
	ErrCodeApplicationValidationFailed: "INVALID_APPLICATION",
	ErrCodeCreditEvaluationFailed:      "CREDIT_EVALUATION_FAILED",
	ErrCodePolicyInvalid:               "CREDIT_EVALUATION_FAILED",
	ErrCodeDecisionPublishFailed:       "DECISION_PUBLISH_FAILED",
	ErrCodePublishTimeout:              "DECISION_PUBLISH_FAILED",
	ErrCodeInternal:                    "INTERNAL_ERROR",
}

// GetRetryCount returns the recommended retry count for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDecisionPublishFailed:
		return 3
	case ErrCodePublishTimeout:
		return 2
	default:
		return 0 // input and policy errors fail the same way on every attempt
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

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "PARSE") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "EVALUATION") || strings.Contains(codeStr, "POLICY"):
		return "CREDIT"
	case strings.Contains(codeStr, "PUBLISH"):
		return "NOTIFICATION"
	default:
		return "OTHER"
	}
}
