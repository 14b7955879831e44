// Package apperror defines the error taxonomy shared by the service, handler and
// backend layers.
//
// Two families of errors live here:
//   - AppError wraps one of the sentinel errors below. These are detected locally
//     (validation, auth, ownership) and carry a message that is safe to show.
//   - BackendError is a raw failure reported by the auth/data backend. It carries
//     the backend's own vocabulary (SQLSTATE, PostgREST and auth codes) and must
//     go through the Normalizer before anything reaches a client.
package apperror

import (
	"errors"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

type AppError struct {
	Err     error             // sentinel, matched with errors.Is
	Message string            // human-readable message
	Field   string            // optional: first field causing the error
	Fields  map[string]string // optional: every invalid field and its message
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(message string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: message,
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Invalid builds a validation error from a complete field error set. The first
// field/message pair is what single-message responses surface.
func Invalid(fields map[string]string, firstField string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: fields[firstField],
		Field:   firstField,
		Fields:  fields,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized means no authenticated identity could be resolved.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// BackendError is an error reported by the auth/data backend: a code, a message
// and optional details, in the backend's own vocabulary.
type BackendError struct {
	Code    string
	Message string
	Details string
}

func (e *BackendError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return e.Code + ": " + e.Message
}

// Backend builds a BackendError.
func Backend(code, message string) *BackendError {
	return &BackendError{Code: code, Message: message}
}

// Backend error codes produced by the stores and the auth service.
const (
	CodeNoRows             = "PGRST116"
	CodeRLS                = "42501"
	CodeUniqueViolation    = "23505"
	CodeForeignKey         = "23503"
	CodeNotNull            = "23502"
	CodeStringTooLong      = "22001"
	CodeInvalidText        = "22P02"
	CodeCheckViolation     = "23514"
	CodeUndefinedColumn    = "42703"
	CodeInvalidCredentials = "invalid_credentials"
	CodeEmailNotConfirmed  = "email_not_confirmed"
	CodeUserExists         = "user_already_exists"
	CodeWeakPassword       = "weak_password"
	CodePasswordTooLong    = "password_too_long"
	CodeInvalidEmail       = "invalid_email"
	CodeSignupDisabled     = "signup_disabled"
	CodeUserNotFound       = "user_not_found"
	CodeSessionExpired     = "session_expired"
	CodeFlowStateNotFound  = "flow_state_not_found"
	CodeNotConfigured      = "backend_not_configured"
)

// NoRows is what a single-row read or write reports when nothing matched.
func NoRows() *BackendError {
	return &BackendError{
		Code:    CodeNoRows,
		Message: "JSON object requested, multiple (or no) rows returned",
		Details: "The result contains 0 rows",
	}
}

// RowLevelSecurity reports a write rejected by a row policy on table.
func RowLevelSecurity(table string) *BackendError {
	return &BackendError{
		Code:    CodeRLS,
		Message: `new row violates row-level security policy for table "` + table + `"`,
	}
}

// CodeOf returns the backend code carried by err, or "".
func CodeOf(err error) string {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

func IsNoRows(err error) bool {
	return CodeOf(err) == CodeNoRows
}

// IsRLS reports whether err was a row-level authorization rejection.
func IsRLS(err error) bool {
	return CodeOf(err) == CodeRLS
}
