// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the store
//
// AccountService is the heart of the app: the account lifecycle state machine.
// It orchestrates the repository, the credential codec (auth.PasswordService),
// the token codec (auth.TokenService), and the mailer. Handlers never touch
// those directly.
//
// DEPENDENCY INJECTION:
// The service takes repository.AccountRepository (an interface), NOT a
// concrete store. In production that's the memory or sqlite backend; in tests
// it's whatever the test wants. The clock and the ID generator are injected as
// functions for the same reason — the lockout window tests would be unrunnable
// against the real clock.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/tasnim/quizhub/internal/apperror"
	"github.com/tasnim/quizhub/internal/auth"
	"github.com/tasnim/quizhub/internal/mailer"
	"github.com/tasnim/quizhub/internal/model"
	"github.com/tasnim/quizhub/internal/repository"
)

// Lockout policy.
//
// Three consecutive failed password checks lock the account; the lock holds
// for 30 minutes, measured from the LAST failure. The window is evaluated
// lazily at the next login attempt — there is no background sweeper flipping
// accounts back to active, so a locked account that nobody touches simply
// stays locked in storage until someone tries again.
const (
	MaxFailedLogins = 3
	LockoutWindow   = 30 * time.Minute
)

// AccountService handles the account lifecycle business logic.
type AccountService struct {
	accounts repository.AccountRepository
	creds    *auth.PasswordService
	tokens   *auth.TokenService
	mail     mailer.Mailer
	logger   *slog.Logger

	// Injected collaborators, overridable in tests:
	// now is the clock; newID generates record identifiers.
	now   func() time.Time
	newID func() string

	// mu serializes every check-then-write sequence (uniqueness pre-check +
	// create/update, and the login read-modify-write). The repository makes
	// individual operations atomic; this mutex makes the SEQUENCES atomic.
	// Without it, two concurrent registrations for the same username could
	// both pass the duplicate check and both insert.
	mu sync.Mutex
}

// NewAccountService creates an AccountService with all required dependencies.
// Call this in server.go when wiring the dependency graph.
func NewAccountService(
	accounts repository.AccountRepository,
	creds *auth.PasswordService,
	tokens *auth.TokenService,
	mail mailer.Mailer,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		accounts: accounts,
		creds:    creds,
		tokens:   tokens,
		mail:     mail,
		logger:   logger,
		now:      time.Now,
		newID:    func() string { return xid.New().String() },
	}
}

// LoginResult bundles the profile and the issued token so the handler can set
// the cookie and respond in one step.
type LoginResult struct {
	Profile model.Profile
	Token   string
}

// Register creates a new account in pending status.
//
// FLOW:
//  1. Validate shape and content (delegated to the input's ozzo rules)
//  2. Check username and email uniqueness (case-insensitive, under s.mu)
//  3. Hash the password, create the record: status=pending, 0 failed attempts
//  4. Fire the confirmation email (not awaited) and return the public profile
//
// The new account CANNOT log in yet — login rejects pending accounts until
// email confirmation flips them to active.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*model.Profile, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("registering account: %w", invalidInput(err))
	}

	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)

	tier := in.Tier
	if tier == "" {
		tier = model.TierNovice
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Uniqueness pre-checks. Both lookups are case-insensitive: "QuizMaster"
	// and "quizmaster" are the same name.
	if _, err := s.accounts.FindByUsername(ctx, username); err == nil {
		return nil, fmt.Errorf("registering account: %w", apperror.DuplicateUsername(username))
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("registering account: checking username: %w", err)
	}
	if _, err := s.accounts.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("registering account: %w", apperror.DuplicateEmail(email))
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("registering account: checking email: %w", err)
	}

	now := s.now()
	account := &model.Account{
		ID:             s.newID(),
		Username:       username,
		Email:          email,
		CredentialHash: s.creds.Hash(in.Password),
		Tier:           tier,
		AvatarURL:      strings.TrimSpace(in.AvatarURL),
		Status:         model.StatusPending,
		FailedAttempts: 0,
		CreatedAt:      now,
		ModifiedAt:     now,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		s.logger.Error("failed to create account",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("registering account: %w", err)
	}

	s.logger.Info("account registered",
		slog.String("accountID", account.ID),
		slog.String("username", account.Username),
		slog.String("tier", string(account.Tier)),
	)

	// Fire-and-forget: registration succeeds whether or not the email goes out.
	go s.mail.SendConfirmation(context.WithoutCancel(ctx), account.Email, account.Username)

	profile := account.Profile()
	return &profile, nil
}

// Login authenticates an account by username or email and issues a token.
//
// IDENTIFIER RESOLUTION — USERNAME WINS:
// The identifier is looked up as a username first, then as an email, and the
// FIRST lookup that matches is used. This is a deliberate tie-break, not an
// accident of scan order: if someone's email happens to equal a different
// account's username, the username owner is the one who resolves. Documented
// here so nobody "fixes" it.
//
// LOCKOUT STATE MACHINE (per attempt, in order):
//  1. No account resolves           → invalid credentials
//  2. Locked, window still open     → account locked (counter untouched)
//  3. Locked, window elapsed        → unlock (active, counter reset), CONTINUE —
//     unlocking never bypasses the password check
//  4. Pending                       → account pending, regardless of password
//     (a pending account can never learn whether its password was right)
//  5. Wrong password                → counter+1 and stamp; on the 3rd strike
//     the status flips to locked and the failure surfaces as account locked,
//     NOT invalid credentials
//  6. Correct password              → counter reset, stamp cleared, token issued
//
// A successful login does NOT touch ModifiedAt — logging in is not a profile
// modification.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("logging in: %w", invalidInput(err))
	}
	identifier := strings.TrimSpace(in.Identifier)

	s.mu.Lock()
	defer s.mu.Unlock()

	account, err := s.resolveIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			// Unknown identifier and wrong password look identical to the caller.
			return nil, fmt.Errorf("logging in: %w", apperror.InvalidCredentials())
		}
		return nil, fmt.Errorf("logging in: resolving %q: %w", identifier, err)
	}

	now := s.now()

	if account.Status == model.StatusLocked {
		// Lazily evaluate the lockout window against the last failure.
		if account.LastFailedAt != nil && now.Sub(*account.LastFailedAt) < LockoutWindow {
			return nil, fmt.Errorf("logging in: %w", apperror.AccountLocked())
		}

		// Window elapsed: unlock and fall through to the password check.
		zero := 0
		active := model.StatusActive
		account, err = s.accounts.Update(ctx, account.ID, repository.AccountPatch{
			Status:            &active,
			FailedAttempts:    &zero,
			ClearLastFailedAt: true,
		})
		if err != nil {
			return nil, fmt.Errorf("logging in: unlocking account: %w", err)
		}
		s.logger.Info("account auto-unlocked", slog.String("accountID", account.ID))
	}

	if account.Status == model.StatusPending {
		return nil, fmt.Errorf("logging in: %w", apperror.AccountPending())
	}

	if !s.creds.Verify(in.Password, account.CredentialHash) {
		return nil, s.recordFailedAttempt(ctx, account, now)
	}

	// Success: reset the failure bookkeeping (ModifiedAt stays put).
	if account.FailedAttempts > 0 || account.LastFailedAt != nil {
		zero := 0
		if _, err := s.accounts.Update(ctx, account.ID, repository.AccountPatch{
			FailedAttempts:    &zero,
			ClearLastFailedAt: true,
		}); err != nil {
			return nil, fmt.Errorf("logging in: resetting failure counter: %w", err)
		}
	}

	token, err := s.tokens.Generate(account.ID, account.Username, account.Tier)
	if err != nil {
		return nil, fmt.Errorf("logging in: issuing token for account %s: %w", account.ID, err)
	}

	s.logger.Info("login succeeded",
		slog.String("accountID", account.ID),
		slog.String("username", account.Username),
	)

	return &LoginResult{
		Profile: account.Profile(),
		Token:   token,
	}, nil
}

// resolveIdentifier looks the identifier up as a username, then as an email.
func (s *AccountService) resolveIdentifier(ctx context.Context, identifier string) (*model.Account, error) {
	account, err := s.accounts.FindByUsername(ctx, identifier)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}
	return s.accounts.FindByEmail(ctx, identifier)
}

// recordFailedAttempt bumps the failure counter and stamps the failure time.
// The third consecutive strike locks the account — and that attempt's error
// is ACCOUNT LOCKED, not invalid credentials, so the caller knows the rules
// changed mid-conversation.
func (s *AccountService) recordFailedAttempt(ctx context.Context, account *model.Account, now time.Time) error {
	attempts := account.FailedAttempts + 1
	patch := repository.AccountPatch{
		FailedAttempts: &attempts,
		LastFailedAt:   &now,
	}

	locked := attempts >= MaxFailedLogins
	if locked {
		status := model.StatusLocked
		patch.Status = &status
	}

	if _, err := s.accounts.Update(ctx, account.ID, patch); err != nil {
		return fmt.Errorf("logging in: recording failed attempt: %w", err)
	}

	if locked {
		s.logger.Warn("account locked after repeated failures",
			slog.String("accountID", account.ID),
			slog.Int("attempts", attempts),
		)
		return fmt.Errorf("logging in: %w", apperror.AccountLocked())
	}

	s.logger.Info("login failed",
		slog.String("accountID", account.ID),
		slog.Int("attempts", attempts),
	)
	return fmt.Errorf("logging in: %w", apperror.InvalidCredentials())
}

// GetProfile returns the public projection of an account.
// Fails with the not-found kind if the id is absent.
func (s *AccountService) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "account ID is required")
	}

	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, err // already a proper apperror
	}

	profile := account.Profile()
	return &profile, nil
}

// UpdateProfile applies a partial update to an account.
//
// For username/email, uniqueness is re-checked ONLY when the field is present
// AND differs from the current value — re-submitting your own unchanged email
// must not conflict with yourself. Changing only the letter case of your own
// username is allowed for the same reason (the match it finds is you).
//
// Tier and avatar changes pass through without extra checks; ModifiedAt is
// bumped on every successful update.
func (s *AccountService) UpdateProfile(ctx context.Context, id string, in UpdateProfileInput) (*model.Profile, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("updating profile: %w", invalidInput(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patch := repository.AccountPatch{
		Tier:      in.Tier,
		AvatarURL: in.AvatarURL,
	}

	if in.Username != nil && *in.Username != account.Username {
		username := strings.TrimSpace(*in.Username)
		if other, err := s.accounts.FindByUsername(ctx, username); err == nil && other.ID != id {
			return nil, fmt.Errorf("updating profile: %w", apperror.DuplicateUsername(username))
		} else if err != nil && !errors.Is(err, apperror.ErrNotFound) {
			return nil, fmt.Errorf("updating profile: checking username: %w", err)
		}
		patch.Username = &username
	}

	if in.Email != nil && *in.Email != account.Email {
		email := strings.TrimSpace(*in.Email)
		if other, err := s.accounts.FindByEmail(ctx, email); err == nil && other.ID != id {
			return nil, fmt.Errorf("updating profile: %w", apperror.DuplicateEmail(email))
		} else if err != nil && !errors.Is(err, apperror.ErrNotFound) {
			return nil, fmt.Errorf("updating profile: checking email: %w", err)
		}
		patch.Email = &email
	}

	now := s.now()
	patch.ModifiedAt = &now

	updated, err := s.accounts.Update(ctx, id, patch)
	if err != nil {
		s.logger.Error("failed to update profile",
			slog.String("accountID", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating profile: %w", err)
	}

	s.logger.Info("profile updated", slog.String("accountID", id))

	profile := updated.Profile()
	return &profile, nil
}

// ConfirmEmail would flip a pending account to active, given a confirmation
// token. The issuance side of that channel was never built — registration
// fires a "would send confirmation email" log and nothing more — so there is
// no token this method could ever accept. It fails unconditionally until the
// channel exists.
//
// TODO: design the confirmation token channel (issue on register, single-use,
// short TTL) and wire this up.
func (s *AccountService) ConfirmEmail(ctx context.Context, token string) error {
	return fmt.Errorf("confirming email: %w", apperror.InvalidToken("confirmation tokens are not yet issued"))
}

// RequestPasswordReset resolves the account by email and triggers the reset
// notification. Fails with the not-found kind if no account owns the email.
//
// The mailer call is fire-and-forget: the operation's success means "the
// request was accepted", not "the email was delivered".
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return apperror.ValidationFailed("email", "email is required")
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("requesting password reset: %w", err)
	}

	s.logger.Info("password reset requested", slog.String("accountID", account.ID))
	go s.mail.SendPasswordReset(context.WithoutCancel(ctx), account.Email, account.Username)

	return nil
}

// ResetPassword would set a new password, given a reset token. Same situation
// as ConfirmEmail: RequestPasswordReset never mints a token, so nothing this
// method receives can ever be valid. Fails unconditionally.
func (s *AccountService) ResetPassword(ctx context.Context, token, newPassword string) error {
	return fmt.Errorf("resetting password: %w", apperror.InvalidToken("reset tokens are not yet issued"))
}
