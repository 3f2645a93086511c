package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/tasnim/quizhub/internal/apperror"
	"github.com/tasnim/quizhub/internal/auth"
	"github.com/tasnim/quizhub/internal/service"
)

// AccountHandler exposes the account lifecycle over HTTP.
//
// HANDLER RESPONSIBILITIES:
//   - HandleRegister        → create a pending account
//   - HandleLogin           → verify credentials, issue the JWT cookie
//   - HandleLogout          → clear the JWT cookie
//   - HandleMe              → return the logged-in account's profile
//   - HandleUpdateMe        → partial profile update
//   - HandleConfirmEmail    → redeem an email confirmation token
//   - HandlePasswordReset / HandlePasswordResetConfirm → the reset flow
//
// Handlers only translate HTTP ⇄ service calls. Every business rule — lockout,
// uniqueness, status gates — lives in service.AccountService.
type AccountHandler struct {
	accounts *service.AccountService
	logger   *slog.Logger
}

// NewAccountHandler creates an AccountHandler. All dependencies are injected
// here; the handler has no knowledge of how they're constructed.
func NewAccountHandler(accounts *service.AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		logger:   logger,
	}
}

// decodeJSON decodes a request body into dst, translating malformed JSON into
// a validation error so the client gets a 400 instead of a 500.
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.ValidationFailed("body", "request body must be valid JSON")
	}
	return nil
}

// HandleRegister creates a new account.
//
// HTTP: POST /api/auth/register
//
// The response is 201 with the public profile. The account starts in
// "pending" status and cannot log in until the email is confirmed.
func (h *AccountHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	profile, err := h.accounts.Register(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, profile)
}

// HandleLogin verifies credentials and issues a session.
//
// HTTP: POST /api/auth/login
//
// The JWT goes into an HttpOnly cookie rather than the response body.
// HttpOnly = JavaScript cannot read this cookie (XSS protection).
// SameSite=Lax = cookie is sent on top-level navigations but not cross-site POSTs.
// Secure should be true in production (HTTPS only). We leave it false for local dev.
//
// The cookie lifetime matches the token lifetime — a cookie that outlives its
// token just produces confusing 401s, and one that dies earlier wastes the token.
func (h *AccountHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in service.LoginInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.accounts.Login(r.Context(), in)
	if err != nil {
		// Failed logins are worth a log line: a burst of them against one
		// identifier is the lockout machinery earning its keep.
		h.logger.Info("login rejected", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    result.Token,
		Path:     "/",
		MaxAge:   int(auth.TokenTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		// Secure: true, // Uncomment in production (requires HTTPS)
	})

	writeJSON(w, http.StatusOK, result.Profile)
}

// HandleLogout clears the JWT cookie, effectively logging the user out.
//
// HTTP: POST /api/auth/logout
//
// WHY POST AND NOT GET?
// Logout is a state-changing operation. Using GET would be vulnerable to
// CSRF and to browsers pre-fetching the URL. POST ensures intentional action.
//
// Since we're stateless (JWT), "logout" just means deleting the client-side
// cookie. The token remains technically valid until it expires, but without
// the cookie the browser can't send it.
func (h *AccountHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // tells the browser to delete the cookie immediately
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleMe returns the currently authenticated account's profile.
//
// HTTP: GET /api/me
// Auth: Required (RequireAuth middleware sets the claims in context)
//
// This is useful for the frontend to:
//   - Know who is logged in (to show the username/avatar)
//   - Check authentication state on app load
func (h *AccountHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	// Auth middleware has already validated the JWT and set the claims in
	// context; the missing-claims branch should never fire on this route.
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apperror.InvalidToken(""))
		return
	}

	profile, err := h.accounts.GetProfile(r.Context(), claims.Subject)
	if err != nil {
		h.logger.Error("HandleMe: profile lookup failed",
			slog.String("accountID", claims.Subject),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// HandleUpdateMe applies a partial update to the logged-in account's profile.
//
// HTTP: PATCH /api/me
// Auth: Required
//
// PATCH SEMANTICS:
// Only the fields present in the body change. `{"avatarUrl": "..."}` updates
// the avatar and nothing else; the username and email stay as they were.
// That's why the input struct uses pointer fields — nil means "not sent".
func (h *AccountHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apperror.InvalidToken(""))
		return
	}

	var in service.UpdateProfileInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	profile, err := h.accounts.UpdateProfile(r.Context(), claims.Subject, in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// HandleConfirmEmail redeems an email confirmation token.
//
// HTTP: POST /api/auth/confirm
func (h *AccountHandler) HandleConfirmEmail(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Token string `json:"token"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	if err := h.accounts.ConfirmEmail(r.Context(), in.Token); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "email confirmed"})
}

// HandlePasswordReset starts the password reset flow for an email address.
//
// HTTP: POST /api/auth/password-reset
func (h *AccountHandler) HandlePasswordReset(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	if err := h.accounts.RequestPasswordReset(r.Context(), in.Email); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "password reset email sent"})
}

// HandlePasswordResetConfirm redeems a reset token and sets a new password.
//
// HTTP: POST /api/auth/password-reset/confirm
func (h *AccountHandler) HandlePasswordResetConfirm(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	if err := h.accounts.ResetPassword(r.Context(), in.Token, in.NewPassword); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}
