package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrInvalidMode  ErrorCode = "INVALID_MODE"

	// Context errors
	ErrContextDecode ErrorCode = "CONTEXT_DECODE"
	ErrReplayLoad    ErrorCode = "REPLAY_LOAD"

	// Template errors
	ErrNoTemplate        ErrorCode = "NO_TEMPLATE"
	ErrUndefinedVariable ErrorCode = "UNDEFINED_VARIABLE"
	ErrTemplateSyntax    ErrorCode = "TEMPLATE_SYNTAX"
	ErrUnknownExtension  ErrorCode = "UNKNOWN_EXTENSION"

	// Generation errors
	ErrOutputDirExists ErrorCode = "OUTPUT_DIR_EXISTS"
	ErrHookFailed      ErrorCode = "HOOK_FAILED"

	// Repository acquisition errors
	ErrRepoNotFound    ErrorCode = "REPO_NOT_FOUND"
	ErrCloneFailed     ErrorCode = "CLONE_FAILED"
	ErrVCSNotInstalled ErrorCode = "VCS_NOT_INSTALLED"
	ErrUnknownRepoType ErrorCode = "UNKNOWN_REPO_TYPE"
	ErrInvalidZip      ErrorCode = "INVALID_ZIP"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess   ErrorCode = "FILE_ACCESS"
	ErrFileCreate   ErrorCode = "FILE_CREATE"
	ErrFileWrite    ErrorCode = "FILE_WRITE"
	ErrDirCreate    ErrorCode = "DIR_CREATE"
)

// PastryError represents a structured error with code and details
type PastryError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *PastryError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *PastryError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *PastryError) Is(target error) bool {
	var targetErr *PastryError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new PastryError with the given code and message
func New(code ErrorCode, message string) *PastryError {
	return &PastryError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new PastryError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *PastryError {
	return &PastryError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a PastryError
func Wrap(err error, code ErrorCode, message string) *PastryError {
	if err == nil {
		return nil
	}
	return &PastryError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *PastryError {
	if err == nil {
		return nil
	}
	return &PastryError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *PastryError) WithDetail(key string, value interface{}) *PastryError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *PastryError) WithDetails(details map[string]interface{}) *PastryError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var pastryErr *PastryError
	if errors.As(err, &pastryErr) {
		return pastryErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a PastryError
func GetErrorCode(err error) ErrorCode {
	var pastryErr *PastryError
	if errors.As(err, &pastryErr) {
		return pastryErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a PastryError
func GetErrorDetails(err error) map[string]interface{} {
	var pastryErr *PastryError
	if errors.As(err, &pastryErr) {
		return pastryErr.Details
	}
	return nil
}
