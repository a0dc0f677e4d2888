package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

var statusByType = map[ErrorType]int{
	ErrorTypeValidation:   http.StatusBadRequest,
	ErrorTypeNotFound:     http.StatusNotFound,
	ErrorTypeUnauthorized: http.StatusUnauthorized,
	ErrorTypeForbidden:    http.StatusForbidden,
	ErrorTypeConflict:     http.StatusConflict,
	ErrorTypeInternal:     http.StatusInternalServerError,
}

type ErrorCode string

// Field-level codes travel in ValidationErrors; the rest are AppError codes.
const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidEmail     ErrorCode = "INVALID_EMAIL"
	ErrCodeInvalidAmount    ErrorCode = "INVALID_AMOUNT"
	ErrCodeInvalidStatus    ErrorCode = "INVALID_STATUS"
	ErrCodeInvalidReference ErrorCode = "INVALID_REFERENCE"
	ErrCodeInvalidHierarchy ErrorCode = "INVALID_HIERARCHY"
	ErrCodeInvalidOwner     ErrorCode = "INVALID_OWNER"

	ErrCodeRecordNotFound    ErrorCode = "RECORD_NOT_FOUND"
	ErrCodeDuplicateRecord   ErrorCode = "DUPLICATE_RECORD"
	ErrCodeRecordInUse       ErrorCode = "RECORD_IN_USE"
	ErrCodeUnauthorizedUser  ErrorCode = "UNAUTHORIZED_ACCESS"
	ErrCodeAccessLevelTooLow ErrorCode = "ACCESS_LEVEL_TOO_LOW"
	ErrCodeInternal          ErrorCode = "INTERNAL_ERROR"

	ErrCodeSessionMissing ErrorCode = "SESSION_MISSING"
	ErrCodeInvalidToken   ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired   ErrorCode = "TOKEN_EXPIRED"
)

// AppError is what services return and what handlers render as
// {"error": {...}}. Cause is logged, never sent.
type AppError struct {
	Type       ErrorType
	Code       ErrorCode
	Message    string
	Details    any
	StatusCode int
	Cause      error
}

func newAppError(t ErrorType, code ErrorCode, message string) *AppError {
	return &AppError{Type: t, Code: code, Message: message, StatusCode: statusByType[t]}
}

func (e *AppError) Error() string {
	if fields := e.fieldErrors(); len(fields) > 0 {
		return fields[0].Message
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Cause }

func (e *AppError) fieldErrors() []ValidationError {
	if v, ok := e.Details.(ValidationErrors); ok {
		return v.Errors
	}
	return nil
}

// GetDetailedMessage joins every field message, falling back to Message.
func (e *AppError) GetDetailedMessage() string {
	fields := e.fieldErrors()
	if len(fields) == 0 {
		return e.Message
	}
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return newAppError(ErrorTypeValidation, code, message)
}

// NewValidationFieldError reports a single bad field. The specific code goes
// into the details; the top-level code is always VALIDATION_FAILED.
func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return newAppError(ErrorTypeValidation, ErrCodeValidationFailed, "Validation failed").
		WithDetails(ValidationErrors{Errors: []ValidationError{{Field: field, Message: message, Code: string(code)}}})
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return newAppError(ErrorTypeNotFound, code, message)
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return newAppError(ErrorTypeUnauthorized, code, message)
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return newAppError(ErrorTypeForbidden, code, message)
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return newAppError(ErrorTypeConflict, code, message)
}

func NewInternalError(message string, cause error) *AppError {
	return newAppError(ErrorTypeInternal, ErrCodeInternal, message).WithCause(cause)
}

var (
	ErrSessionMissing    = NewUnauthorizedError("Session is missing", ErrCodeSessionMissing)
	ErrInvalidToken      = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired      = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
	ErrAccessLevelTooLow = NewForbiddenError("Access level too low for this operation", ErrCodeAccessLevelTooLow)
)

// TranslateDBError maps a repository error onto the AppError taxonomy. The
// gorm connection must be opened with TranslateError enabled so driver errors
// surface as gorm sentinels. AppErrors pass through untouched.
func TranslateDBError(err error, entity string) error {
	if err == nil {
		return nil
	}
	if _, ok := IsAppError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NewNotFoundError(entity+" not found", ErrCodeRecordNotFound).WithCause(err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return NewConflictError(entity+" already exists", ErrCodeDuplicateRecord).WithCause(err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return NewValidationError(fmt.Sprintf("%s references a record that does not exist or is still referenced", entity), ErrCodeInvalidReference).WithCause(err)
	}
	return NewInternalError(entity+" query failed", err)
}

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, any) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType `json:"type"`
		Code    ErrorCode `json:"code"`
		Message string    `json:"message"`
		Details any       `json:"details,omitempty"`
	}{e.Type, e.Code, e.Message, e.Details})
}
