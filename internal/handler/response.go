package handler

// RESPONSE HELPERS:
// These functions standardise how we send JSON responses and errors.
//
// WHY HELPERS?
// Without helpers, every handler repeats the same boilerplate:
//   w.Header().Set("Content-Type", "application/json")
//   w.WriteHeader(statusCode)
//   json.NewEncoder(w).Encode(data)
//
// With helpers, handlers are cleaner and more consistent:
//   writeJSON(w, http.StatusOK, data)
//   writeError(w, err)
//
// CONSISTENT ERROR FORMAT:
// Every error response from our API has the same shape:
//   {"error": "account_locked", "message": "account is temporarily locked"}
//
// This makes it easy for the frontend to parse errors — it always knows
// what fields to expect, regardless of whether it's a 400, 423, or 500.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tasnim/quizhub/internal/apperror"
)

// ErrorResponse is the standard error format returned by all API endpoints.
// Having a struct ensures consistent JSON shape across all error responses.
type ErrorResponse struct {
	Error   string `json:"error"`   // Machine-readable error type (e.g., "not_found")
	Message string `json:"message"` // Human-readable description
}

// writeJSON sends a JSON response with the given status code.
//
// HEADER ORDER MATTERS:
// You MUST set headers and status code BEFORE writing the body.
// Once you call w.Write() (which Encode does internally), the headers are sent.
// Any header changes after that are silently ignored.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// If encoding fails, the headers are already sent — we can only log it.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to the appropriate HTTP status code and sends it.
//
// ERROR MAPPING:
// This is where domain errors (from the service layer) get translated to HTTP.
// The service layer returns apperror.ErrInvalidCredentials, apperror.ErrAccountLocked,
// etc.; this function maps those to 401, 423, and so on. The service layer itself
// never sees an HTTP status code.
//
// THE FULL TABLE:
//
//	ErrValidation          → 400 Bad Request
//	ErrInvalidToken        → 401 Unauthorized
//	ErrInvalidCredentials  → 401 Unauthorized
//	ErrAccountPending      → 403 Forbidden
//	ErrForbidden           → 403 Forbidden
//	ErrNotFound            → 404 Not Found
//	ErrDuplicateUsername   → 409 Conflict
//	ErrDuplicateEmail      → 409 Conflict
//	ErrAccountLocked       → 423 Locked
//	anything else          → 500 Internal Server Error
//
// errors.Is() UNWRAPPING:
// errors.Is(err, target) walks the entire error chain (via Unwrap())
// to see if `target` appears anywhere. This works because:
//
//	service returns: fmt.Errorf("logging in: %w", apperror.AccountLocked())
//	which wraps:     AppError{Err: ErrAccountLocked, Message: "..."}
//	errors.Is walks: outer error → AppError → ErrAccountLocked ✓ match!
func writeError(w http.ResponseWriter, err error) {
	// Try to extract our AppError for the human-readable message
	var appErr *apperror.AppError

	// errors.As() is like errors.Is() but extracts the error value.
	// It walks the chain and fills appErr if it finds an *AppError.
	if errors.As(err, &appErr) {
		// We have a typed application error — map it to HTTP
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest // 400
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrInvalidToken):
			status = http.StatusUnauthorized // 401
			errorType = "invalid_token"
		case errors.Is(err, apperror.ErrInvalidCredentials):
			status = http.StatusUnauthorized // 401
			errorType = "invalid_credentials"
		case errors.Is(err, apperror.ErrAccountPending):
			status = http.StatusForbidden // 403
			errorType = "account_pending"
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden // 403
			errorType = "forbidden"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound // 404
			errorType = "not_found"
		case errors.Is(err, apperror.ErrDuplicateUsername):
			status = http.StatusConflict // 409
			errorType = "duplicate_username"
		case errors.Is(err, apperror.ErrDuplicateEmail):
			status = http.StatusConflict // 409
			errorType = "duplicate_email"
		case errors.Is(err, apperror.ErrAccountLocked):
			// 423 Locked comes from WebDAV but fits perfectly: the resource
			// (the account) exists and your request was understood, it's just
			// temporarily refusing operations.
			status = http.StatusLocked
			errorType = "account_locked"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
		})
		return
	}

	// Unknown error — return a generic 500
	// NEVER expose internal error details to the client in production!
	// The raw error message might contain SQL queries, file paths, or other sensitive info.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}
