// Package errors provides structured error handling for ScanPro operations.
// It defines error codes, error types, and provides utilities for creating
// and handling errors with context and structured information.
package errors

import (
	"fmt"
)

// ErrorCode represents different types of errors that can occur.
type ErrorCode string

const (
	// General errors.
	CodeUnknown       ErrorCode = "UNKNOWN"
	CodeValidation    ErrorCode = "VALIDATION"
	CodeConfiguration ErrorCode = "CONFIGURATION"
	CodeTimeout       ErrorCode = "TIMEOUT"
	CodeCanceled      ErrorCode = "CANCELED"
	CodePermission    ErrorCode = "PERMISSION"

	// Network and scanning errors.
	CodeNetworkUnreachable ErrorCode = "NETWORK_UNREACHABLE"
	CodeHostUnreachable    ErrorCode = "HOST_UNREACHABLE"
	CodeResolveFailed      ErrorCode = "RESOLVE_FAILED"
	CodeScanFailed         ErrorCode = "SCAN_FAILED"
	CodeScanUnsupported    ErrorCode = "SCAN_UNSUPPORTED"
	CodeTargetInvalid      ErrorCode = "TARGET_INVALID"

	// Scan job errors.
	CodeJobNotFound  ErrorCode = "JOB_NOT_FOUND"
	CodeJobRunning   ErrorCode = "JOB_RUNNING"
	CodeJobFinished  ErrorCode = "JOB_FINISHED"
	CodeJobQueueFull ErrorCode = "JOB_QUEUE_FULL"

	// File system and report errors.
	CodeFileNotFound    ErrorCode = "FILE_NOT_FOUND"
	CodeFilePermission  ErrorCode = "FILE_PERMISSION"
	CodeDirectoryCreate ErrorCode = "DIRECTORY_CREATE"
	CodeReportFormat    ErrorCode = "REPORT_FORMAT"

	// Service errors.
	CodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	CodeServiceTimeout     ErrorCode = "SERVICE_TIMEOUT"
	CodeRateLimited        ErrorCode = "RATE_LIMITED"

	// Resource errors.
	CodeNotFound ErrorCode = "NOT_FOUND"
	CodeConflict ErrorCode = "CONFLICT"
)

// ScanError represents an error that occurred during scanning operations.
type ScanError struct {
	Code      ErrorCode
	Message   string
	Target    string
	Operation string
	Cause     error
	Context   map[string]interface{}
}

// Error implements the error interface.
func (e *ScanError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("[%s] %s (target: %s)", e.Code, e.Message, e.Target)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ScanError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error.
func (e *ScanError) WithContext(key string, value interface{}) *ScanError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewScanError creates a new scan error with the specified code and message.
func NewScanError(code ErrorCode, message string) *ScanError {
	return &ScanError{
		Code:    code,
		Message: message,
		Context: make(map[string]interface{}),
	}
}

// NewScanErrorWithTarget creates a scan error for a specific target.
func NewScanErrorWithTarget(code ErrorCode, message, target string) *ScanError {
	return &ScanError{
		Code:    code,
		Message: message,
		Target:  target,
		Context: make(map[string]interface{}),
	}
}

// WrapScanError wraps an existing error as a scan error.
func WrapScanError(code ErrorCode, message string, err error) *ScanError {
	return &ScanError{
		Code:    code,
		Message: message,
		Cause:   err,
		Context: make(map[string]interface{}),
	}
}

// WrapScanErrorWithTarget wraps an error with target information.
func WrapScanErrorWithTarget(code ErrorCode, message, target string, err error) *ScanError {
	return &ScanError{
		Code:    code,
		Message: message,
		Target:  target,
		Cause:   err,
		Context: make(map[string]interface{}),
	}
}

// JobError represents scan job lifecycle errors.
type JobError struct {
	Code    ErrorCode
	Message string
	JobID   string
	State   string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *JobError) Error() string {
	if e.JobID != "" {
		return fmt.Sprintf("[%s] %s (job: %s)", e.Code, e.Message, e.JobID)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *JobError) Unwrap() error {
	return e.Cause
}

// WithState adds the job state at the time of the error.
func (e *JobError) WithState(state string) *JobError {
	e.State = state
	return e
}

// NewJobError creates a new job error.
func NewJobError(code ErrorCode, message string) *JobError {
	return &JobError{
		Code:    code,
		Message: message,
		Context: make(map[string]interface{}),
	}
}

// NewJobErrorWithID creates a job error for a specific job.
func NewJobErrorWithID(code ErrorCode, message, jobID string) *JobError {
	return &JobError{
		Code:    code,
		Message: message,
		JobID:   jobID,
		Context: make(map[string]interface{}),
	}
}

// WrapJobError wraps an existing error as a job error.
func WrapJobError(code ErrorCode, message string, err error) *JobError {
	return &JobError{
		Code:    code,
		Message: message,
		Cause:   err,
		Context: make(map[string]interface{}),
	}
}

// ReportError represents report generation and writing errors.
type ReportError struct {
	Code    ErrorCode
	Message string
	Path    string
	Format  string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *ReportError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("[%s] %s (path: %s)", e.Code, e.Message, e.Path)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *ReportError) Unwrap() error {
	return e.Cause
}

// NewReportError creates a new report error.
func NewReportError(code ErrorCode, message string) *ReportError {
	return &ReportError{
		Code:    code,
		Message: message,
		Context: make(map[string]interface{}),
	}
}

// WrapReportError wraps an existing error as a report error.
func WrapReportError(code ErrorCode, message string, err error) *ReportError {
	return &ReportError{
		Code:    code,
		Message: message,
		Cause:   err,
		Context: make(map[string]interface{}),
	}
}

// ConfigError represents configuration-related errors.
type ConfigError struct {
	Code    ErrorCode
	Message string
	Field   string
	Value   interface{}
	Cause   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// NewConfigError creates a new configuration error.
func NewConfigError(code ErrorCode, message string) *ConfigError {
	return &ConfigError{
		Code:    code,
		Message: message,
	}
}

// NewConfigFieldError creates a configuration error for a specific field.
func NewConfigFieldError(code ErrorCode, message, field string, value interface{}) *ConfigError {
	return &ConfigError{
		Code:    code,
		Message: message,
		Field:   field,
		Value:   value,
	}
}

// WrapConfigError wraps an existing error as a configuration error.
func WrapConfigError(code ErrorCode, message string, err error) *ConfigError {
	return &ConfigError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Utility functions for common error operations

// IsCode checks if an error has a specific error code.
func IsCode(err error, code ErrorCode) bool {
	switch e := err.(type) {
	case *ScanError:
		return e.Code == code
	case *JobError:
		return e.Code == code
	case *ReportError:
		return e.Code == code
	case *ConfigError:
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error if it has one.
func GetCode(err error) ErrorCode {
	switch e := err.(type) {
	case *ScanError:
		return e.Code
	case *JobError:
		return e.Code
	case *ReportError:
		return e.Code
	case *ConfigError:
		return e.Code
	}
	return CodeUnknown
}

// IsNotFound determines if an error indicates a missing resource.
func IsNotFound(err error) bool {
	code := GetCode(err)
	switch code {
	case CodeNotFound, CodeFileNotFound, CodeJobNotFound:
		return true
	default:
		return false
	}
}

// IsConflict determines if an error indicates a resource conflict.
func IsConflict(err error) bool {
	code := GetCode(err)
	switch code {
	case CodeConflict, CodeJobRunning:
		return true
	default:
		return false
	}
}

// IsRetryable determines if an error indicates a retryable condition.
func IsRetryable(err error) bool {
	code := GetCode(err)
	switch code {
	case CodeTimeout, CodeNetworkUnreachable, CodeServiceTimeout, CodeRateLimited, CodeJobQueueFull:
		return true
	default:
		return false
	}
}

// IsFatal determines if an error indicates a fatal condition that should stop execution.
func IsFatal(err error) bool {
	code := GetCode(err)
	switch code {
	case CodePermission, CodeConfiguration, CodeScanUnsupported:
		return true
	default:
		return false
	}
}

// Common error creation functions

// ErrInvalidTarget creates an error for invalid scan targets.
func ErrInvalidTarget(target string) *ScanError {
	return NewScanErrorWithTarget(CodeTargetInvalid, "Invalid target specification", target)
}

// ErrScanTimeout creates an error for scan timeouts.
func ErrScanTimeout(target string) *ScanError {
	return NewScanErrorWithTarget(CodeTimeout, "Scan operation timed out", target)
}

// ErrHostUnreachable creates an error for unreachable hosts.
func ErrHostUnreachable(target string) *ScanError {
	return NewScanErrorWithTarget(CodeHostUnreachable, "Host is unreachable", target)
}

// ErrResolveFailed creates an error for hostname resolution failures.
func ErrResolveFailed(target string, err error) *ScanError {
	return WrapScanErrorWithTarget(CodeResolveFailed, "Hostname resolution failed", target, err)
}

// ErrScanTypeUnsupported creates an error for scan types the engine cannot perform.
func ErrScanTypeUnsupported(scanType string) *ScanError {
	return NewScanError(CodeScanUnsupported,
		fmt.Sprintf("Scan type %q is not supported; only tcp_connect is available", scanType))
}

// ErrJobNotFound creates an error for unknown scan job IDs.
func ErrJobNotFound(jobID string) *JobError {
	return NewJobErrorWithID(CodeJobNotFound, "Scan job not found", jobID)
}

// ErrJobStillRunning creates an error for results requested before a job finishes.
func ErrJobStillRunning(jobID string) *JobError {
	return NewJobErrorWithID(CodeJobRunning, "Scan job is still running", jobID)
}

// ErrJobAlreadyFinished creates an error for stop requests on completed jobs.
func ErrJobAlreadyFinished(jobID string) *JobError {
	return NewJobErrorWithID(CodeJobFinished, "Scan job already finished", jobID)
}

// ErrJobQueueFull creates an error for submissions rejected by a saturated worker pool.
func ErrJobQueueFull(err error) *JobError {
	return WrapJobError(CodeJobQueueFull, "Scan job queue is full", err)
}

// ErrReportWrite creates an error for report output failures.
func ErrReportWrite(path string, err error) *ReportError {
	e := WrapReportError(CodeFilePermission, "Failed to write report", err)
	e.Path = path
	return e
}

// ErrConfigInvalid creates an error for invalid configuration.
func ErrConfigInvalid(field string, value interface{}) *ConfigError {
	return NewConfigFieldError(CodeValidation, "Invalid configuration value", field, value)
}

// ErrConfigMissing creates an error for missing required configuration.
func ErrConfigMissing(field string) *ConfigError {
	return NewConfigFieldError(CodeConfiguration, "Required configuration field missing", field, nil)
}

// ErrNotFound creates a generic not-found error for a resource type.
func ErrNotFound(resource string) *ScanError {
	return NewScanError(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

// ErrNotFoundWithID creates a not-found error for a specific resource ID.
func ErrNotFoundWithID(resource, id string) *ScanError {
	return NewScanError(CodeNotFound, fmt.Sprintf("%s with ID %s not found", resource, id))
}

// ErrConflict creates a generic conflict error for a resource type.
func ErrConflict(resource string) *ScanError {
	return NewScanError(CodeConflict, fmt.Sprintf("%s already exists or conflict detected", resource))
}

// ErrConflictWithReason creates a conflict error with an explanation.
func ErrConflictWithReason(resource, reason string) *ScanError {
	return NewScanError(CodeConflict, fmt.Sprintf("%s conflict: %s", resource, reason))
}
