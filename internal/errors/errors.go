package errors

import (
	"errors"
	"fmt"
)

// Codes carried by the tracker's domain errors.
const (
	CodeInvalidTask            = "INVALID_TASK"
	CodeInvalidFolder          = "INVALID_FOLDER"
	CodeDuplicateFolderName    = "DUPLICATE_FOLDER_NAME"
	CodeAlreadyTracking        = "ALREADY_TRACKING"
	CodeNotTracking            = "NOT_TRACKING"
	CodeStoreWriteFailed       = "STORE_WRITE_FAILED"
	CodeTaskInUse              = "TASK_IN_USE"
	CodeDefaultFolderProtected = "DEFAULT_FOLDER_PROTECTED"
)

// Sentinels for errors.Is comparisons; only Type and Code are compared.
var (
	ErrInvalidTask            = &AppError{Type: ErrorTypeNotFound, Code: CodeInvalidTask}
	ErrInvalidFolder          = &AppError{Type: ErrorTypeNotFound, Code: CodeInvalidFolder}
	ErrDuplicateFolderName    = &AppError{Type: ErrorTypeConflict, Code: CodeDuplicateFolderName}
	ErrAlreadyTracking        = &AppError{Type: ErrorTypeConflict, Code: CodeAlreadyTracking}
	ErrNotTracking            = &AppError{Type: ErrorTypeConflict, Code: CodeNotTracking}
	ErrStoreWriteFailed       = &AppError{Type: ErrorTypeDatabase, Code: CodeStoreWriteFailed}
	ErrTaskInUse              = &AppError{Type: ErrorTypeConflict, Code: CodeTaskInUse}
	ErrDefaultFolderProtected = &AppError{Type: ErrorTypePermission, Code: CodeDefaultFolderProtected}
)

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
		Code:    "VALIDATION_FAILED",
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string, identifier string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, identifier),
		Code:    "NOT_FOUND",
		Context: map[string]interface{}{
			"resource":   resource,
			"identifier": identifier,
		},
	}
}

// NewDatabaseError creates a new database error
func NewDatabaseError(operation string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeDatabase,
		Message: fmt.Sprintf("database operation failed: %s", operation),
		Code:    "DATABASE_ERROR",
		Cause:   cause,
		Context: map[string]interface{}{
			"operation": operation,
		},
	}
}

// NewInvalidInputError creates a new invalid input error
func NewInvalidInputError(field string, value interface{}, reason string) *AppError {
	return &AppError{
		Type:    ErrorTypeInvalidInput,
		Message: fmt.Sprintf("invalid input for %s: %s", field, reason),
		Code:    "INVALID_INPUT",
		Context: map[string]interface{}{
			"field":  field,
			"value":  value,
			"reason": reason,
		},
	}
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(operation string, timeout interface{}) *AppError {
	return &AppError{
		Type:    ErrorTypeTimeout,
		Message: fmt.Sprintf("operation timed out: %s", operation),
		Code:    "TIMEOUT",
		Context: map[string]interface{}{
			"operation": operation,
			"timeout":   timeout,
		},
	}
}

// NewPermissionError creates a new permission error
func NewPermissionError(operation string, resource string) *AppError {
	return &AppError{
		Type:    ErrorTypePermission,
		Message: fmt.Sprintf("permission denied for %s on %s", operation, resource),
		Code:    "PERMISSION_DENIED",
		Context: map[string]interface{}{
			"operation": operation,
			"resource":  resource,
		},
	}
}

// NewInvalidTaskError reports a task id that does not exist.
func NewInvalidTaskError(taskID int64) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: fmt.Sprintf("task not found: %d", taskID),
		Code:    CodeInvalidTask,
		Context: map[string]interface{}{"task_id": taskID},
	}
}

// NewInvalidFolderError reports a folder id that does not exist.
func NewInvalidFolderError(folderID int64) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: fmt.Sprintf("folder not found: %d", folderID),
		Code:    CodeInvalidFolder,
		Context: map[string]interface{}{"folder_id": folderID},
	}
}

// NewDuplicateFolderNameError creates a conflict for a folder name already in use
func NewDuplicateFolderNameError(name string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeConflict,
		Message: fmt.Sprintf("a folder named %q already exists", name),
		Code:    CodeDuplicateFolderName,
		Cause:   cause,
		Context: map[string]interface{}{"name": name},
	}
}

// NewAlreadyTrackingError is returned by start while a tracking period is active.
func NewAlreadyTrackingError(taskID int64) *AppError {
	return &AppError{
		Type:    ErrorTypeConflict,
		Message: fmt.Sprintf("already tracking task %d; stop it first", taskID),
		Code:    CodeAlreadyTracking,
		Context: map[string]interface{}{"task_id": taskID},
	}
}

// NewNotTrackingError is returned by stop while nothing is tracked.
func NewNotTrackingError() *AppError {
	return &AppError{
		Type:    ErrorTypeConflict,
		Message: "tracking is not active",
		Code:    CodeNotTracking,
		Context: make(map[string]interface{}),
	}
}

// NewStoreWriteFailedError wraps a session write that failed after retrying.
func NewStoreWriteFailedError(operation string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeDatabase,
		Message: fmt.Sprintf("failed to persist session: %s", operation),
		Code:    CodeStoreWriteFailed,
		Cause:   cause,
		Context: map[string]interface{}{"operation": operation},
	}
}

// NewTaskInUseError refuses deleting the task that is currently tracked.
func NewTaskInUseError(taskID int64) *AppError {
	return &AppError{
		Type:    ErrorTypeConflict,
		Message: fmt.Sprintf("task %d is being tracked; stop tracking before deleting it", taskID),
		Code:    CodeTaskInUse,
		Context: map[string]interface{}{"task_id": taskID},
	}
}

// NewDefaultFolderProtectedError refuses deleting the default folder.
func NewDefaultFolderProtectedError() *AppError {
	return &AppError{
		Type:    ErrorTypePermission,
		Message: "the default folder cannot be deleted",
		Code:    CodeDefaultFolderProtected,
		Context: make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with additional context
func WrapError(err error, errorType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
		Code:    errorType.String(),
		Cause:   err,
		Context: make(map[string]interface{}),
	}
}

// IsAppError checks if the error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsErrorType checks if the error is of the specified type
func IsErrorType(err error, errorType ErrorType) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.IsType(errorType)
	}
	return false
}

// GetUserMessage returns the reason string shown to API and CLI callers.
// System errors never expose their cause.
func GetUserMessage(err error) string {
	if appErr, ok := AsAppError(err); ok {
		switch appErr.Type {
		case ErrorTypeValidation, ErrorTypeNotFound, ErrorTypeInvalidInput,
			ErrorTypePermission, ErrorTypeConflict:
			return appErr.Message
		case ErrorTypeDatabase:
			if appErr.Code == CodeStoreWriteFailed {
				return "Failed to record the session. It will be retried."
			}
			return "A database error occurred. Please try again."
		case ErrorTypeTimeout:
			return "The operation timed out. Please try again."
		default:
			return "An unexpected error occurred. Please try again."
		}
	}
	return err.Error()
}

// GetErrorCode returns the error code for the error
func GetErrorCode(err error) string {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return "UNKNOWN_ERROR"
}

// GetHTTPStatus returns the response status for err; unknown errors are 500.
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Type.HTTPStatus()
	}
	return ErrorType(-1).HTTPStatus()
}

// ShouldLogError determines if an error should be logged based on its type
func ShouldLogError(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		switch appErr.Type {
		case ErrorTypeValidation, ErrorTypeNotFound, ErrorTypeInvalidInput, ErrorTypeConflict:
			return false // caller errors
		default:
			return true
		}
	}
	return true
}
