package errors

import (
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// HasCode reports whether err is an AppError carrying the given code.
func HasCode(err error, code string) bool {
	return GetCode(err) == code
}

// Predefined error codes
const (
	CodeSheetNotFound      = "SHEET_NOT_FOUND"
	CodeInvalidAddress     = "INVALID_ADDRESS"
	CodeUnsupportedFormat  = "UNSUPPORTED_FORMAT"
	CodeBackendUnavailable = "BACKEND_UNAVAILABLE"
	CodeIOFailure          = "IO_FAILURE"
	CodeConfigInvalid      = "CONFIG_INVALID"
	CodeExternalService    = "EXTERNAL_SERVICE_ERROR"
	CodeValidationError    = "VALIDATION_ERROR"
	CodeInternalError      = "INTERNAL_ERROR"
)

// Common error constructors

func SheetNotFound(sheetName string) *AppError {
	return New(CodeSheetNotFound, fmt.Sprintf("sheet %q not found in workbook", sheetName))
}

func InvalidAddress(text string) *AppError {
	return New(CodeInvalidAddress, fmt.Sprintf("invalid cell address %q", text))
}

func UnsupportedFormat(ext string) *AppError {
	return New(CodeUnsupportedFormat, fmt.Sprintf("unsupported file format %q (supported: .xlsx, .xls, .xlsb)", ext))
}

// BackendUnavailable names the underlying format dependency so a caller
// can report actionable remediation. It is distinct from a parse failure.
func BackendUnavailable(dependency string, cause error) *AppError {
	return &AppError{
		Code:    CodeBackendUnavailable,
		Message: fmt.Sprintf("format backend %s could not be initialized", dependency),
		Cause:   cause,
	}
}

func IOFailure(path string, cause error) *AppError {
	return &AppError{
		Code:    CodeIOFailure,
		Message: fmt.Sprintf("failed to read %s", path),
		Cause:   cause,
	}
}

func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func ValidationError(message string) *AppError {
	return New(CodeValidationError, message)
}

func ExternalServiceError(service string, cause error) *AppError {
	return &AppError{
		Code:    CodeExternalService,
		Message: fmt.Sprintf("%s service error", service),
		Cause:   cause,
	}
}
