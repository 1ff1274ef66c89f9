package domain

import (
	"errors"
	"fmt"
)

// Error types for domain-specific errors
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeRead       ErrorType = "read"
	ErrorTypeDecode     ErrorType = "decode"
	ErrorTypeRender     ErrorType = "render"
	ErrorTypeEngine     ErrorType = "engine"
	ErrorTypeProvider   ErrorType = "provider"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeCancelled  ErrorType = "cancelled"
)

// DomainError represents a domain-specific error with context.
// Message is always safe to show to a user; Err carries the upstream cause.
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewError creates a new domain error
func NewError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func ValidationError(message string, err error) *DomainError {
	return NewError(ErrorTypeValidation, message, err)
}

func ReadError(message string, err error) *DomainError {
	return NewError(ErrorTypeRead, message, err)
}

func DecodeError(message string, err error) *DomainError {
	return NewError(ErrorTypeDecode, message, err)
}

func RenderError(message string, err error) *DomainError {
	return NewError(ErrorTypeRender, message, err)
}

func EngineError(message string, err error) *DomainError {
	return NewError(ErrorTypeEngine, message, err)
}

func ProviderError(message string, err error) *DomainError {
	return NewError(ErrorTypeProvider, message, err)
}

func ConfigError(message string, err error) *DomainError {
	return NewError(ErrorTypeConfig, message, err)
}

func CancelledError(message string, err error) *DomainError {
	return NewError(ErrorTypeCancelled, message, err)
}

// IsType reports whether err (or anything it wraps) is a DomainError of the given type.
func IsType(err error, errType ErrorType) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Type == errType
	}
	return false
}

// UserMessage returns the user-facing message carried by err, or fallback
// when err is not a DomainError.
func UserMessage(err error, fallback string) string {
	var de *DomainError
	if errors.As(err, &de) && de.Message != "" {
		return de.Message
	}
	return fallback
}
