// AngelaMos | 2026
// errors.go

package core

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound      = errors.New("resource not found")
	ErrDuplicateKey  = errors.New("duplicate key")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenInvalid  = errors.New("token invalid")
	ErrTokenRevoked  = errors.New("token revoked")
	ErrIntegrity     = errors.New("referenced by other records")
	ErrInvalidAction = errors.New("invalid action")

	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError carries a message meant for the person who filled the form.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

type AppError struct {
	Err        error
	Message    string
	StatusCode int
	Code       string
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(err error, message string, status int, code string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		StatusCode: status,
		Code:       code,
	}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func UnauthorizedError(message string) *AppError {
	if message == "" {
		message = "authentication required"
	}
	return NewAppError(ErrUnauthorized, message, http.StatusUnauthorized, "UNAUTHORIZED")
}

func ForbiddenError(message string) *AppError {
	if message == "" {
		message = "access denied"
	}
	return NewAppError(ErrForbidden, message, http.StatusForbidden, "FORBIDDEN")
}

func NotFoundError(resource string) *AppError {
	return NewAppError(
		ErrNotFound,
		fmt.Sprintf("%s not found", resource),
		http.StatusNotFound,
		"NOT_FOUND",
	)
}

func DuplicateError(field string) *AppError {
	return NewAppError(
		ErrDuplicateKey,
		fmt.Sprintf("%s already exists", field),
		http.StatusConflict,
		"DUPLICATE",
	)
}

func ValidationFailed(message string) *AppError {
	return NewAppError(ErrInvalidInput, message, http.StatusBadRequest, "VALIDATION_ERROR")
}

func IntegrityError(message string) *AppError {
	return NewAppError(ErrIntegrity, message, http.StatusConflict, "INTEGRITY_VIOLATION")
}

func InvalidActionError(message string) *AppError {
	return NewAppError(ErrInvalidAction, message, http.StatusBadRequest, "INVALID_ACTION")
}

func InvalidTransitionError(message string) *AppError {
	return NewAppError(ErrInvalidTransition, message, http.StatusConflict, "INVALID_TRANSITION")
}

func TokenExpiredError() *AppError {
	return NewAppError(ErrTokenExpired, "token has expired", http.StatusGone, "TOKEN_EXPIRED")
}

func TokenInvalidError() *AppError {
	return NewAppError(ErrTokenInvalid, "token is invalid", http.StatusBadRequest, "TOKEN_INVALID")
}

func TokenRevokedError() *AppError {
	return NewAppError(ErrTokenRevoked, "token has been revoked", http.StatusUnauthorized, "TOKEN_REVOKED")
}

func SessionExpiredError() *AppError {
	return NewAppError(ErrTokenExpired, "session has expired", http.StatusUnauthorized, "SESSION_EXPIRED")
}

func SessionInvalidError() *AppError {
	return NewAppError(ErrTokenInvalid, "session is invalid", http.StatusUnauthorized, "SESSION_INVALID")
}

// ToAppError converts domain errors into their HTTP representation. Unknown
// errors become nil so the caller can fall back to a 500.
func ToAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return ValidationFailed(vErr.Error())
	}

	switch {
	case errors.Is(err, ErrInvalidInput):
		return ValidationFailed("invalid input")
	case errors.Is(err, ErrDuplicateKey):
		return DuplicateError("record")
	case errors.Is(err, ErrNotFound), IsMalformedKey(err):
		return NotFoundError("resource")
	case errors.Is(err, ErrUnauthorized):
		return UnauthorizedError("")
	case errors.Is(err, ErrForbidden):
		return ForbiddenError("")
	case errors.Is(err, ErrTokenExpired):
		return TokenExpiredError()
	case errors.Is(err, ErrTokenRevoked):
		return TokenRevokedError()
	case errors.Is(err, ErrTokenInvalid):
		return TokenInvalidError()
	case errors.Is(err, ErrIntegrity):
		return IntegrityError("record is still referenced and cannot be deleted")
	case errors.Is(err, ErrInvalidAction):
		return InvalidActionError("invalid action")
	case errors.Is(err, ErrInvalidTransition):
		return InvalidTransitionError("status change not allowed from the current state")
	case IsUniqueViolation(err):
		return DuplicateError("record")
	case IsForeignKeyViolation(err):
		return IntegrityError("record is still referenced and cannot be deleted")
	}

	return nil
}
