package printer

import (
	"fmt"

	"github.com/okvist/printlink/internal/linkflow"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeNetwork indicates a transport-level error (connection refused,
	// unreachable host, timeout)
	ErrTypeNetwork ErrorType = iota
	// ErrTypeAuth indicates the printer rejected the supplied credentials
	ErrTypeAuth
	// ErrTypeHTTP indicates an unexpected HTTP status code
	ErrTypeHTTP
	// ErrTypeParse indicates a malformed response body
	ErrTypeParse
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeAuth:
		return "Authentication Error"
	case ErrTypeHTTP:
		return "HTTP Error"
	case ErrTypeParse:
		return "Parse Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// DeviceError represents an error that occurred while talking to a printer
type DeviceError struct {
	Type       ErrorType // Category of error
	Message    string    // Human-readable error message
	StatusCode int       // HTTP status code (if applicable)
	Err        error     // Underlying error (if any)
}

// Error implements the error interface
func (e *DeviceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *DeviceError) Unwrap() error {
	return e.Err
}

// Is maps error categories onto the linkflow sentinels so the setup flow
// can classify failures with errors.Is.
func (e *DeviceError) Is(target error) bool {
	switch target {
	case linkflow.ErrCannotConnect:
		return e.Type == ErrTypeNetwork
	case linkflow.ErrInvalidAuth:
		return e.Type == ErrTypeAuth
	}
	return false
}

// NewNetworkError creates a network-level DeviceError
func NewNetworkError(message string, err error) *DeviceError {
	return &DeviceError{Type: ErrTypeNetwork, Message: message, Err: err}
}

// NewAuthError creates an authentication DeviceError
func NewAuthError(message string, statusCode int) *DeviceError {
	return &DeviceError{Type: ErrTypeAuth, Message: message, StatusCode: statusCode}
}

// NewHTTPError creates a DeviceError for an unexpected status code
func NewHTTPError(statusCode int, message string) *DeviceError {
	return &DeviceError{Type: ErrTypeHTTP, Message: message, StatusCode: statusCode}
}

// NewParseError creates a DeviceError for a malformed response
func NewParseError(message string, err error) *DeviceError {
	return &DeviceError{Type: ErrTypeParse, Message: message, Err: err}
}

// IsAuthError reports whether err is a credential rejection
func IsAuthError(err error) bool {
	if devErr, ok := err.(*DeviceError); ok {
		return devErr.Type == ErrTypeAuth
	}
	return false
}

// IsNetworkError reports whether err is a transport-level failure
func IsNetworkError(err error) bool {
	if devErr, ok := err.(*DeviceError); ok {
		return devErr.Type == ErrTypeNetwork
	}
	return false
}
