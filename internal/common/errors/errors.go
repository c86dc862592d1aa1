// Package errors provides standardized error handling for the export and publish pipeline
// and its BPMN workflow integration.
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

// Pipeline errors
const (
	ErrCodeMalformedContent         ErrorCode = "MALFORMED_CONTENT"
	ErrCodeProvisionFailed          ErrorCode = "PROVISION_FAILED"
	ErrCodeFilePushFailed           ErrorCode = "FILE_PUSH_FAILED"
	ErrCodeDeploymentRejected       ErrorCode = "DEPLOYMENT_REJECTED"
	ErrCodeDeploymentPollTimeout    ErrorCode = "DEPLOYMENT_POLL_TIMEOUT"
	ErrCodeArchiveGenerationFailed  ErrorCode = "ARCHIVE_GENERATION_FAILED"
	ErrCodeContentGenerationFailed  ErrorCode = "CONTENT_GENERATION_FAILED"
	ErrCodeContentGenerationTimeout ErrorCode = "CONTENT_GENERATION_TIMEOUT"
)

// Request / access errors
const (
	ErrCodeInvalidRequest    ErrorCode = "INVALID_REQUEST"
	ErrCodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	ErrCodeCredentialMissing ErrorCode = "CREDENTIAL_MISSING"
	ErrCodeProjectNotFound   ErrorCode = "PROJECT_NOT_FOUND"
)

// Infrastructure errors
const (
	ErrCodeStoreUnavailable       ErrorCode = "STORE_UNAVAILABLE"
	ErrCodeServiceUnavailable     ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
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

// Is matches another *StandardError by code, so errors.Is(err, &StandardError{Code: X}) works.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
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

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// NewMalformedContentError reports generated content that failed shape validation.
func NewMalformedContentError(violations []string) *StandardError {
	return newError(ErrCodeMalformedContent,
		"Generated content is malformed",
		strings.Join(violations, "; "),
		false,
	).WithMetadata("violations", violations)
}

// NewProvisionFailedError carries the remote service message verbatim.
func NewProvisionFailedError(remoteMessage string) *StandardError {
	return newError(ErrCodeProvisionFailed, remoteMessage, "repository creation failed", false)
}

// NewFilePushFailedError records one file that could not be written.
func NewFilePushFailedError(path, reason string) *StandardError {
	return newError(ErrCodeFilePushFailed,
		fmt.Sprintf("Failed to push %s", path),
		reason,
		false,
	).WithMetadata("path", path)
}

// NewDeploymentRejectedError carries the remote service message verbatim.
func NewDeploymentRejectedError(remoteMessage string) *StandardError {
	if strings.TrimSpace(remoteMessage) == "" {
		remoteMessage = "Deployment failed"
	}
	return newError(ErrCodeDeploymentRejected, remoteMessage, "deployment request rejected", false)
}

func NewDeploymentPollTimeoutError(deploymentID string, attempts int) *StandardError {
	return newError(ErrCodeDeploymentPollTimeout,
		"Deployment did not reach a final state in time",
		fmt.Sprintf("deploymentId: %s, attempts: %d", deploymentID, attempts),
		false,
	)
}

// NewArchiveGenerationFailedError wraps an archive writer failure. The message stays generic.
func NewArchiveGenerationFailedError(err error) *StandardError {
	return newError(ErrCodeArchiveGenerationFailed, "Failed to generate archive", err.Error(), false)
}

func NewContentGenerationFailedError(err error) *StandardError {
	return newError(ErrCodeContentGenerationFailed, "Content generation API error", err.Error(), true)
}

func NewContentGenerationTimeoutError() *StandardError {
	return newError(ErrCodeContentGenerationTimeout, "Content generation timeout", "generation call exceeded its deadline", true)
}

func NewInvalidRequestError(details string) *StandardError {
	return newError(ErrCodeInvalidRequest, "Invalid request", details, false)
}

func NewUnauthorizedError(details string) *StandardError {
	return newError(ErrCodeUnauthorized, "Not authorized", details, false)
}

func NewCredentialMissingError(provider string) *StandardError {
	return newError(ErrCodeCredentialMissing,
		fmt.Sprintf("No %s credential available", provider),
		fmt.Sprintf("provider: %s", provider),
		false,
	)
}

func NewProjectNotFoundError(projectID string) *StandardError {
	return newError(ErrCodeProjectNotFound, "Project not found", fmt.Sprintf("projectId: %s", projectID), false)
}

func NewStoreUnavailableError(store string, err error) *StandardError {
	return newError(ErrCodeStoreUnavailable, fmt.Sprintf("Store '%s' unavailable", store), err.Error(), true)
}

// NewServiceUnavailableError reports a transient failure of an upstream dependency.
func NewServiceUnavailableError(service string, err error) *StandardError {
	return newError(ErrCodeServiceUnavailable, fmt.Sprintf("Service '%s' unavailable", service), err.Error(), true)
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed,
		"Notification send error",
		fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		true,
	)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the error codes modelled in the BPMN processes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeMalformedContent:         "MALFORMED_CONTENT",
	ErrCodeProvisionFailed:          "PROVISION_FAILED",
	ErrCodeFilePushFailed:           "FILE_PUSH_FAILED",
	ErrCodeDeploymentRejected:       "DEPLOYMENT_REJECTED",
	ErrCodeDeploymentPollTimeout:    "DEPLOYMENT_POLL_TIMEOUT",
	ErrCodeArchiveGenerationFailed:  "ARCHIVE_GENERATION_FAILED",
	ErrCodeContentGenerationFailed:  "CONTENT_GENERATION_FAILED",
	ErrCodeContentGenerationTimeout: "CONTENT_GENERATION_FAILED",
	ErrCodeInvalidRequest:           "INVALID_REQUEST",
	ErrCodeUnauthorized:             "UNAUTHORIZED",
	ErrCodeCredentialMissing:        "UNAUTHORIZED",
	ErrCodeProjectNotFound:          "PROJECT_NOT_FOUND",
	ErrCodeStoreUnavailable:         "STORE_UNAVAILABLE",
	ErrCodeServiceUnavailable:       "SERVICE_UNAVAILABLE",
	ErrCodeNotificationSendFailed:   "NOTIFICATION_SEND_FAILED",
}

// GetRetryCount returns the recommended retry count for a code.
// Publish operations are never retried; a second attempt could duplicate remote state.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeStoreUnavailable, ErrCodeServiceUnavailable, ErrCodeNotificationSendFailed:
		return 3
	case ErrCodeContentGenerationFailed, ErrCodeContentGenerationTimeout:
		return 1
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

// ==========================
// 5. Utility Functions
// ==========================

// AsStandardError unwraps err to a *StandardError, or wraps it as INTERNAL_ERROR.
func AsStandardError(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false)
}

// HasCode reports whether err is a StandardError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	return stderrors.As(err, &stdErr) && stdErr.Code == code
}

// UserMessage turns a terminal pipeline error into a single human-readable message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	stdErr := AsStandardError(err)
	switch stdErr.Code {
	case ErrCodeProvisionFailed:
		return "Repository creation failed: " + stdErr.Message
	case ErrCodeDeploymentRejected:
		return "Deployment failed: " + stdErr.Message
	case ErrCodeArchiveGenerationFailed:
		return "Could not generate the download archive. Please try again."
	case ErrCodeMalformedContent:
		return "The generated content is incomplete and cannot be exported."
	case ErrCodeCredentialMissing, ErrCodeUnauthorized:
		return "Please connect your account before publishing."
	case ErrCodeInternal:
		return "Something went wrong. Please try again."
	default:
		return stdErr.Message
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "PROVISION") || strings.Contains(codeStr, "PUSH"):
		return "REPOSITORY"
	case strings.Contains(codeStr, "DEPLOYMENT"):
		return "DEPLOYMENT"
	case strings.Contains(codeStr, "ARCHIVE"):
		return "ARCHIVE"
	case strings.Contains(codeStr, "CONTENT"):
		return "CONTENT"
	case strings.Contains(codeStr, "UNAUTHORIZED") || strings.Contains(codeStr, "CREDENTIAL"):
		return "AUTH"
	case strings.Contains(codeStr, "STORE") || strings.Contains(codeStr, "NOT_FOUND"):
		return "STORAGE"
	case strings.Contains(codeStr, "SERVICE"):
		return "EXTERNAL"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
