package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error kinds for schema storage and extraction. Callers match these with
// errors.Is; wrapping sites add context with fmt.Errorf("...: %w", err).
var (
	ErrSchemaNotFound      = errors.New("schema not found")
	ErrCannotModifyBuiltIn = errors.New("built-in schemas cannot be modified")
	ErrSaveFailed          = errors.New("save failed")
	ErrLoadFailed          = errors.New("load failed")
	ErrInvalidSchema       = errors.New("invalid schema")
	ErrNoSchemaAssigned    = errors.New("no schema assigned to document")
	ErrNoDocumentPath      = errors.New("document has no path")
	ErrOCRFailed           = errors.New("text recognition failed")
	ErrNoFieldsExtracted   = errors.New("no fields extracted")
	ErrEmptyText           = errors.New("empty text")
	ErrNoEntitiesFound     = errors.New("no entities found")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
