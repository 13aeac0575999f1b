package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeInvalidState ErrorType = "INVALID_STATE"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidStatus    ErrorCode = "INVALID_STATUS"
	ErrCodeInvalidRole      ErrorCode = "INVALID_ROLE"
	ErrCodeInvalidDriver    ErrorCode = "INVALID_DRIVER"
	ErrCodeInvalidVehicle   ErrorCode = "INVALID_VEHICLE"
	ErrCodeInvalidRequest   ErrorCode = "INVALID_REQUEST"

	ErrCodeUserNotFound         ErrorCode = "USER_NOT_FOUND"
	ErrCodeDriverNotFound       ErrorCode = "DRIVER_NOT_FOUND"
	ErrCodeVehicleNotFound      ErrorCode = "VEHICLE_NOT_FOUND"
	ErrCodeTripNotFound         ErrorCode = "TRIP_NOT_FOUND"
	ErrCodeFuelLogNotFound      ErrorCode = "FUEL_LOG_NOT_FOUND"
	ErrCodeMaintenanceNotFound  ErrorCode = "MAINTENANCE_REQUEST_NOT_FOUND"
	ErrCodeNotificationNotFound ErrorCode = "NOTIFICATION_NOT_FOUND"
	ErrCodeFeedbackNotFound     ErrorCode = "FEEDBACK_NOT_FOUND"
	ErrCodeNoApprovedFuelLogs   ErrorCode = "NO_APPROVED_FUEL_LOGS"

	ErrCodeTripNotPending        ErrorCode = "TRIP_NOT_PENDING"
	ErrCodeFuelLogNotPending     ErrorCode = "FUEL_LOG_NOT_PENDING"
	ErrCodeMaintenanceNotPending ErrorCode = "MAINTENANCE_REQUEST_NOT_PENDING"
	ErrCodeMaintenanceNotActive  ErrorCode = "MAINTENANCE_REQUEST_NOT_APPROVED"

	ErrCodeDriverAlreadyAssigned ErrorCode = "DRIVER_ALREADY_ASSIGNED"
	ErrCodePlateNumberTaken      ErrorCode = "PLATE_NUMBER_TAKEN"
	ErrCodeEmailTaken            ErrorCode = "EMAIL_TAKEN"

	ErrCodeRoleNotAllowed     ErrorCode = "ROLE_NOT_ALLOWED"
	ErrCodeNotAssignedDriver  ErrorCode = "NOT_ASSIGNED_DRIVER"
	ErrCodeNotRecipient       ErrorCode = "NOT_NOTIFICATION_RECIPIENT"
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	ErrCodeMissingCredentials ErrorCode = "MISSING_CREDENTIALS"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on type and code so a fresh error built with the same
// constructor compares equal to a package-level sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// WithCause returns a copy of e carrying cause. Sentinels stay untouched.
func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
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
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

// NewInvalidStateError reports a transition attempted from a status that forbids it.
func NewInvalidStateError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidState,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       ErrCodeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NewConflictError is reported as 400 like the other client-side failures.
func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

var (
	ErrInvalidCredentials = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
	ErrMissingCredentials = NewUnauthorizedError("Authorization header required", ErrCodeMissingCredentials)
	ErrRoleNotAllowed     = NewForbiddenError("Access denied for this role", ErrCodeRoleNotAllowed)
	ErrInvalidDecision    = NewValidationError("Invalid status", ErrCodeInvalidStatus)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// ErrorTypeOf reports the taxonomy bucket of err; anything that is not an
// AppError is internal.
func ErrorTypeOf(err error) ErrorType {
	if appErr, ok := IsAppError(err); ok {
		return appErr.Type
	}
	return ErrorTypeInternal
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
