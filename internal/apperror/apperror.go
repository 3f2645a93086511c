// Package apperror defines the application's typed error taxonomy.
//
// WHY SENTINEL ERRORS + A WRAPPER STRUCT?
// Callers need two different things from an error:
//  1. WHICH KIND it is (to branch on — e.g. map to an HTTP status, or retry)
//  2. WHAT HAPPENED in human terms (to show or log)
//
// The sentinels (ErrNotFound, ErrAccountLocked, …) answer (1) via errors.Is;
// the AppError wrapper carries (2). Services wrap with fmt.Errorf("…: %w", err)
// freely — errors.Is walks the whole chain, so the kind survives wrapping.
//
// The HTTP mapping for each kind lives in the handler layer
// (internal/handler/response.go), NOT here. This package must stay
// protocol-agnostic so the service layer can be reused behind any transport.
package apperror

import (
	"errors"
	"fmt"
)

// Error kinds. One sentinel per failure kind the service layer can produce.
var (
	ErrValidation         = errors.New("validation error")
	ErrNotFound           = errors.New("not found")
	ErrDuplicateUsername  = errors.New("duplicate username")
	ErrDuplicateEmail     = errors.New("duplicate email")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountPending     = errors.New("account pending confirmation")
	ErrAccountLocked      = errors.New("account locked")
	ErrInvalidToken       = errors.New("invalid token")
	ErrForbidden          = errors.New("forbidden")
)

type AppError struct {
	Err     error  // sentinel identifying the kind
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// NotFoundBy is NotFound for lookups keyed by something other than the id
// (username, email). The message names the actual key, so a failed email
// lookup doesn't claim "not found with id alice@example.com".
func NotFoundBy(resource, key, value string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with %s %s", resource, key, value),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func DuplicateUsername(username string) *AppError {
	return &AppError{
		Err:     ErrDuplicateUsername,
		Message: fmt.Sprintf("username %q is already taken", username),
		Field:   "username",
	}
}

func DuplicateEmail(email string) *AppError {
	return &AppError{
		Err:     ErrDuplicateEmail,
		Message: fmt.Sprintf("email %q is already registered", email),
		Field:   "email",
	}
}

// InvalidCredentials deliberately carries a single fixed message.
// "Unknown username" and "wrong password" must be indistinguishable to the
// caller — a distinct message would let an attacker enumerate accounts.
func InvalidCredentials() *AppError {
	return &AppError{
		Err:     ErrInvalidCredentials,
		Message: "invalid username/email or password",
	}
}

func AccountPending() *AppError {
	return &AppError{
		Err:     ErrAccountPending,
		Message: "account is awaiting email confirmation",
	}
}

func AccountLocked() *AppError {
	return &AppError{
		Err:     ErrAccountLocked,
		Message: "account is temporarily locked after too many failed logins",
	}
}

// InvalidToken covers every token failure mode: malformed, bad signature,
// unparseable payload, expired. Collapsing them is intentional — the caller
// learns only that the token is unusable, never why.
func InvalidToken(message string) *AppError {
	if message == "" {
		message = "token is invalid or expired"
	}
	return &AppError{
		Err:     ErrInvalidToken,
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
