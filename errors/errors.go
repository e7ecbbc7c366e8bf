package errors

import (
	stderrors "errors"
	"fmt"
)

// Application error types organized by category for better error handling

type ErrorType string

// Domain/Business Logic Errors - errors related to business rules and validation
const (
	ValidationError ErrorType = "VALIDATION_ERROR"
	NotFoundError   ErrorType = "NOT_FOUND_ERROR"
)

// Infrastructure Errors - errors related to external systems and services
const (
	TimeoutError         ErrorType = "TIMEOUT_ERROR"
	NetworkError         ErrorType = "NETWORK_ERROR"
	ExternalAPIError     ErrorType = "EXTERNAL_API_ERROR"
	InvalidResponseError ErrorType = "INVALID_RESPONSE_ERROR"
	DatabaseError        ErrorType = "DATABASE_ERROR"
	NotificationError    ErrorType = "NOTIFICATION_ERROR"
)

// System/Configuration Errors - errors related to system setup and configuration
const (
	ConfigurationError ErrorType = "CONFIGURATION_ERROR"
)

type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(errorType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
	}
}

func Wrap(errorType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// Domain/Business Logic Error Constructors
func NewValidationError(message string) *AppError {
	return New(ValidationError, message)
}

func NewNotFoundError(message string) *AppError {
	return New(NotFoundError, message)
}

// Infrastructure Error Constructors
func NewTimeoutError(message string, cause error) *AppError {
	return Wrap(TimeoutError, message, cause)
}

func NewNetworkError(message string, cause error) *AppError {
	return Wrap(NetworkError, message, cause)
}

func NewExternalAPIError(message string, cause error) *AppError {
	return Wrap(ExternalAPIError, message, cause)
}

func NewInvalidResponseError(message string) *AppError {
	return New(InvalidResponseError, message)
}

func NewDatabaseError(message string, cause error) *AppError {
	return Wrap(DatabaseError, message, cause)
}

func NewNotificationError(message string, cause error) *AppError {
	return Wrap(NotificationError, message, cause)
}

// System/Configuration Error Constructors
func NewConfigurationError(message string, cause error) *AppError {
	return Wrap(ConfigurationError, message, cause)
}

// IsType reports whether err is an AppError of the given type anywhere in
// its chain.
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// IsNotFound reports whether err represents a semantic "place not found"
// result. Not-found is a business outcome, not a transient fault, and must
// never be routed through retry loops.
func IsNotFound(err error) bool {
	return IsType(err, NotFoundError)
}

// IsTimeout reports whether err represents an exceeded per-attempt deadline.
func IsTimeout(err error) bool {
	return IsType(err, TimeoutError)
}

// IsValidation reports whether err represents rejected caller input.
func IsValidation(err error) bool {
	return IsType(err, ValidationError)
}
