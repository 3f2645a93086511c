package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/tasnim/quizhub/internal/apperror"
	"github.com/tasnim/quizhub/internal/auth"
	"github.com/tasnim/quizhub/internal/model"
	"github.com/tasnim/quizhub/internal/repository"
	"github.com/tasnim/quizhub/internal/repository/memory"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// fakeClock is a manually-advanced clock. The lockout window tests would be
// unrunnable against the real clock (nobody waits 30 minutes in CI), so the
// service's `now` hook points here instead.
type fakeClock struct {
	current time.Time
}

func (c *fakeClock) now() time.Time {
	return c.current
}

func (c *fakeClock) advance(d time.Duration) {
	c.current = c.current.Add(d)
}

// chanMailer reports dispatches on channels so tests can observe the
// fire-and-forget sends without racing the goroutine that makes them.
type chanMailer struct {
	confirmations chan string
	resets        chan string
}

func newChanMailer() *chanMailer {
	return &chanMailer{
		confirmations: make(chan string, 8),
		resets:        make(chan string, 8),
	}
}

func (m *chanMailer) SendConfirmation(ctx context.Context, email, username string) {
	m.confirmations <- email
}

func (m *chanMailer) SendPasswordReset(ctx context.Context, email, username string) {
	m.resets <- email
}

// newTestAccountService wires an AccountService against the real in-memory
// store, a fixed clock, and a channel-backed mailer.
func newTestAccountService(t *testing.T) (*AccountService, *memory.AccountStore, *fakeClock, *chanMailer) {
	t.Helper()

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	creds, err := auth.NewPasswordService("test-pepper-at-least-16-chars")
	if err != nil {
		t.Fatalf("NewPasswordService: %v", err)
	}

	store := memory.NewAccountStore()
	mail := newChanMailer()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	svc := NewAccountService(store, creds, tokens, mail, logger)

	clock := &fakeClock{current: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	svc.now = clock.now

	return svc, store, clock, mail
}

func validRegisterInput(username, email string) RegisterInput {
	return RegisterInput{
		Username: username,
		Email:    email,
		Password: "correct horse battery",
		Tier:     model.TierNovice,
	}
}

// registerActive registers an account and flips it straight to active via the
// store, standing in for the (stubbed) email confirmation step.
func registerActive(t *testing.T, svc *AccountService, store *memory.AccountStore, username, email string) *model.Profile {
	t.Helper()

	profile, err := svc.Register(context.Background(), validRegisterInput(username, email))
	if err != nil {
		t.Fatalf("Register(%s): %v", username, err)
	}

	active := model.StatusActive
	if _, err := store.Update(context.Background(), profile.ID, repository.AccountPatch{Status: &active}); err != nil {
		t.Fatalf("activating %s: %v", username, err)
	}
	return profile
}

// =========================================================================
// REGISTER TESTS
// =========================================================================

func TestRegister_Success(t *testing.T) {
	svc, store, _, mail := newTestAccountService(t)

	profile, err := svc.Register(context.Background(), RegisterInput{
		Username:  "quizmaster",
		Email:     "qm@example.com",
		Password:  "correct horse battery",
		Tier:      model.TierExperienced,
		AvatarURL: "https://cdn.example.com/qm.png",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// Fresh accounts start pending with a clean lockout slate
	if profile.Status != model.StatusPending {
		t.Errorf("Status = %q, want %q", profile.Status, model.StatusPending)
	}
	if profile.Tier != model.TierExperienced {
		t.Errorf("Tier = %q, want %q", profile.Tier, model.TierExperienced)
	}
	if profile.ID == "" {
		t.Error("profile.ID should be set")
	}

	stored, err := store.GetByID(context.Background(), profile.ID)
	if err != nil {
		t.Fatalf("store.GetByID: %v", err)
	}
	if stored.FailedAttempts != 0 {
		t.Errorf("FailedAttempts = %d, want 0", stored.FailedAttempts)
	}
	if stored.LastFailedAt != nil {
		t.Errorf("LastFailedAt = %v, want nil", stored.LastFailedAt)
	}
	// The stored digest is never the plaintext
	if stored.CredentialHash == "correct horse battery" || stored.CredentialHash == "" {
		t.Error("CredentialHash should be a non-empty digest")
	}

	// Confirmation email fired (fire-and-forget, so wait briefly)
	select {
	case email := <-mail.confirmations:
		if email != "qm@example.com" {
			t.Errorf("confirmation sent to %q, want %q", email, "qm@example.com")
		}
	case <-time.After(2 * time.Second):
		t.Error("confirmation email was never dispatched")
	}
}

func TestRegister_DefaultsTierToNovice(t *testing.T) {
	svc, _, _, _ := newTestAccountService(t)

	in := validRegisterInput("quizmaster", "qm@example.com")
	in.Tier = ""
	profile, err := svc.Register(context.Background(), in)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if profile.Tier != model.TierNovice {
		t.Errorf("Tier = %q, want %q", profile.Tier, model.TierNovice)
	}
}

func TestRegister_ValidationFailures(t *testing.T) {
	svc, _, _, _ := newTestAccountService(t)

	tests := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"username too short", func(in *RegisterInput) { in.Username = "ab" }},
		{"username bad characters", func(in *RegisterInput) { in.Username = "no spaces!" }},
		{"email invalid", func(in *RegisterInput) { in.Email = "not-an-email" }},
		{"password too short", func(in *RegisterInput) { in.Password = "short" }},
		{"administrator tier forbidden", func(in *RegisterInput) { in.Tier = model.TierAdministrator }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validRegisterInput("quizmaster", "qm@example.com")
			tt.mutate(&in)

			_, err := svc.Register(context.Background(), in)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("Register() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestRegister_DuplicateUsername_CaseInsensitive(t *testing.T) {
	svc, _, _, _ := newTestAccountService(t)

	if _, err := svc.Register(context.Background(), validRegisterInput("QuizMaster", "first@example.com")); err != nil {
		t.Fatalf("first Register(): %v", err)
	}

	// Differs only by case — still a duplicate
	_, err := svc.Register(context.Background(), validRegisterInput("quizmaster", "second@example.com"))
	if !errors.Is(err, apperror.ErrDuplicateUsername) {
		t.Errorf("Register() error = %v, want ErrDuplicateUsername", err)
	}
}

func TestRegister_DuplicateEmail_CaseInsensitive(t *testing.T) {
	svc, _, _, _ := newTestAccountService(t)

	if _, err := svc.Register(context.Background(), validRegisterInput("first_user", "Shared@Example.com")); err != nil {
		t.Fatalf("first Register(): %v", err)
	}

	_, err := svc.Register(context.Background(), validRegisterInput("second_user", "shared@example.com"))
	if !errors.Is(err, apperror.ErrDuplicateEmail) {
		t.Errorf("Register() error = %v, want ErrDuplicateEmail", err)
	}
}

// =========================================================================
// LOGIN TESTS — credential checks and identifier resolution
// =========================================================================

func TestLogin_Success(t *testing.T) {
	svc, store, _, _ := newTestAccountService(t)
	profile := registerActive(t, svc, store, "quizmaster", "qm@example.com")

	result, err := svc.Login(context.Background(), LoginInput{
		Identifier: "quizmaster",
		Password:   "correct horse battery",
	})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if result.Token == "" {
		t.Error("Login() returned empty token")
	}
	if result.Profile.ID != profile.ID {
		t.Errorf("Profile.ID = %q, want %q", result.Profile.ID, profile.ID)
	}
}

func TestLogin_ByEmail(t *testing.T) {
	svc, store, _, _ := newTestAccountService(t)
	registerActive(t, svc, store, "quizmaster", "qm@example.com")

	_, err := svc.Login(context.Background(), LoginInput{
		Identifier: "qm@example.com",
		Password:   "correct horse battery",
	})
	if err != nil {
		t.Fatalf("Login() by email error = %v", err)
	}
}

func TestLogin_TokenCarriesClaims(t *testing.T) {
	svc, store, _, _ := newTestAccountService(t)
	profile := registerActive(t, svc, store, "quizmaster", "qm@example.com")

	result, err := svc.Login(context.Background(), LoginInput{
		Identifier: "quizmaster",
		Password:   "correct horse battery",
	})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	tokens, _ := auth.NewTokenService("test-secret-at-least-16-chars!!")
	claims, err := tokens.Validate(result.Token)
	if err != nil {
		t.Fatalf("Validate() on issued token error = %v", err)
	}
	if claims.Subject != profile.ID {
		t.Errorf("claims.Subject = %q, want %q", claims.Subject, profile.ID)
	}
	if claims.Username != "quizmaster" {
		t.Errorf("claims.Username = %q, want %q", claims.Username, "quizmaster")
	}
	if claims.Tier != model.TierNovice {
		t.Errorf("claims.Tier = %q, want %q", claims.Tier, model.TierNovice)
	}
}

func TestLogin_UnknownIdentifier(t *testing.T) {
	svc, _, _, _ := newTestAccountService(t)

	_, err := svc.Login(context.Background(), LoginInput{
		Identifier: "nobody",
		Password:   "whatever-password",
	})
	if !errors.Is(err, apperror.ErrInvalidCredentials) {
		t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, store, _, _ := newTestAccountService(t)
	registerActive(t, svc, store, "quizmaster", "qm@example.com")

	_, err := svc.Login(context.Background(), LoginInput{
		Identifier: "quizmaster",
		Password:   "wrong password!!",
	})
	if !errors.Is(err, apperror.ErrInvalidCredentials) {
		t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
	}
}

func TestLogin_UsernameWinsOverEmail(t *testing.T) {
	// If one account's username equals another account's email, the username
	// owner resolves — username lookup runs first and wins. The registration
	// validator would never let a username look like an email, so the
	// colliding records are planted directly in the store.
	svc, store, _, _ := newTestAccountService(t)

	creds, _ := auth.NewPasswordService("test-pepper-at-least-16-chars")
	now := time.Now()

	byUsername := &model.Account{
		ID:             "acct-username",
		Username:       "collide",
		Email:          "owner@example.com",
		CredentialHash: creds.Hash("username-owner-pw"),
		Tier:           model.TierNovice,
		Status:         model.StatusActive,
		CreatedAt:      now,
		ModifiedAt:     now,
	}
	byEmail := &model.Account{
		ID:             "acct-email",
		Username:       "someone_else",
		Email:          "collide", // matches the other account's username
		CredentialHash: creds.Hash("email-owner-pw"),
		Tier:           model.TierNovice,
		Status:         model.StatusActive,
		CreatedAt:      now,
		ModifiedAt:     now,
	}
	for _, acct := range []*model.Account{byUsername, byEmail} {
		if err := store.Create(context.Background(), acct); err != nil {
			t.Fatalf("store.Create(%s): %v", acct.ID, err)
		}
	}

	// The username owner's password works for identifier "collide"...
	result, err := svc.Login(context.Background(), LoginInput{
		Identifier: "collide",
		Password:   "username-owner-pw",
	})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if result.Profile.ID != "acct-username" {
		t.Errorf("resolved account = %q, want %q (username takes precedence)", result.Profile.ID, "acct-username")
	}

	// ...and the email owner's password does not, because their record never resolves.
	_, err = svc.Login(context.Background(), LoginInput{
		Identifier: "collide",
		Password:   "email-owner-pw",
	})
	if !errors.Is(err, apperror.ErrInvalidCredentials) {
		t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
	}
}

// =========================================================================
// LOGIN TESTS — status gates
// =========================================================================

func TestLogin_PendingAccount_CorrectPassword(t *testing.T) {
	svc, _, _, _ := newTestAccountService(t)

	if _, err := svc.Register(context.Background(), validRegisterInput("quizmaster", "qm@example.com")); err != nil {
		t.Fatalf("Register(): %v", err)
	}

	// A pending account can never be told whether its password was right —
	// even the correct password gets ErrAccountPending.
	_, err := svc.Login(context.Background(), LoginInput{
		Identifier: "quizmaster",
		Password:   "correct horse battery",
	})
	if !errors.Is(err, apperror.ErrAccountPending) {
		t.Errorf("Login() error = %v, want ErrAccountPending", err)
	}
}

// =========================================================================
// LOGIN TESTS — lockout state machine
// =========================================================================

// failLogin performs one wrong-password attempt and returns the error.
func failLogin(t *testing.T, svc *AccountService, identifier string) error {
	t.Helper()
	_, err := svc.Login(context.Background(), LoginInput{
		Identifier: identifier,
		Password:   "definitely-wrong!",
	})
	if err == nil {
		t.Fatal("Login() with a wrong password should fail")
	}
	return err
}

func TestLogin_ThirdStrikeLocks(t *testing.T) {
	svc, store, _, _ := newTestAccountService(t)
	profile := registerActive(t, svc, store, "quizmaster", "qm@example.com")

	// Strikes one and two: still just invalid credentials
	for i := 0; i < 2; i++ {
		if err := failLogin(t, svc, "quizmaster"); !errors.Is(err, apperror.ErrInvalidCredentials) {
			t.Fatalf("strike %d error = %v, want ErrInvalidCredentials", i+1, err)
		}
	}

	// Strike three: the account locks, and THIS attempt already reports it
	if err := failLogin(t, svc, "quizmaster"); !errors.Is(err, apperror.ErrAccountLocked) {
		t.Fatalf("strike 3 error = %v, want ErrAccountLocked", err)
	}

	stored, _ := store.GetByID(context.Background(), profile.ID)
	if stored.Status != model.StatusLocked {
		t.Errorf("Status = %q, want %q", stored.Status, model.StatusLocked)
	}
	if stored.FailedAttempts != 3 {
		t.Errorf("FailedAttempts = %d, want 3", stored.FailedAttempts)
	}
	if stored.LastFailedAt == nil {
		t.Error("LastFailedAt should be set after a failure")
	}
}

func TestLogin_LockedInsideWindow(t *testing.T) {
	svc, store, clock, _ := newTestAccountService(t)
	profile := registerActive(t, svc, store, "quizmaster", "qm@example.com")

	for i := 0; i < 3; i++ {
		failLogin(t, svc, "quizmaster")
	}

	clock.advance(29 * time.Minute)

	// Inside the 30-minute window even the CORRECT password is rejected,
	// and the counter stays where it was.
	_, err := svc.Login(context.Background(), LoginInput{
		Identifier: "quizmaster",
		Password:   "correct horse battery",
	})
	if !errors.Is(err, apperror.ErrAccountLocked) {
		t.Fatalf("Login() error = %v, want ErrAccountLocked", err)
	}

	stored, _ := store.GetByID(context.Background(), profile.ID)
	if stored.FailedAttempts != 3 {
		t.Errorf("FailedAttempts = %d, want 3 (unchanged by a blocked attempt)", stored.FailedAttempts)
	}
	if stored.Status != model.StatusLocked {
		t.Errorf("Status = %q, want still %q", stored.Status, model.StatusLocked)
	}
}

func TestLogin_UnlockAfterWindow_CorrectPassword(t *testing.T) {
	svc, store, clock, _ := newTestAccountService(t)
	profile := registerActive(t, svc, store, "quizmaster", "qm@example.com")

	for i := 0; i < 3; i++ {
		failLogin(t, svc, "quizmaster")
	}

	clock.advance(30*time.Minute + time.Second)

	result, err := svc.Login(context.Background(), LoginInput{
		Identifier: "quizmaster",
		Password:   "correct horse battery",
	})
	if err != nil {
		t.Fatalf("Login() after window error = %v", err)
	}
	if result.Token == "" {
		t.Error("Login() returned empty token")
	}

	stored, _ := store.GetByID(context.Background(), profile.ID)
	if stored.Status != model.StatusActive {
		t.Errorf("Status = %q, want %q", stored.Status, model.StatusActive)
	}
	if stored.FailedAttempts != 0 {
		t.Errorf("FailedAttempts = %d, want 0", stored.FailedAttempts)
	}
	if stored.LastFailedAt != nil {
		t.Errorf("LastFailedAt = %v, want nil", stored.LastFailedAt)
	}
}

func TestLogin_UnlockDoesNotBypassPasswordCheck(t *testing.T) {
	svc, store, clock, _ := newTestAccountService(t)
	profile := registerActive(t, svc, store, "quizmaster", "qm@example.com")

	for i := 0; i < 3; i++ {
		failLogin(t, svc, "quizmaster")
	}

	clock.advance(31 * time.Minute)

	// The window elapsed, so the account unlocks — but the password is still
	// wrong, so this is a fresh strike one on an active account.
	if err := failLogin(t, svc, "quizmaster"); !errors.Is(err, apperror.ErrInvalidCredentials) {
		t.Fatalf("post-unlock wrong password error = %v, want ErrInvalidCredentials", err)
	}

	stored, _ := store.GetByID(context.Background(), profile.ID)
	if stored.Status != model.StatusActive {
		t.Errorf("Status = %q, want %q (unlocked, then one fresh failure)", stored.Status, model.StatusActive)
	}
	if stored.FailedAttempts != 1 {
		t.Errorf("FailedAttempts = %d, want 1", stored.FailedAttempts)
	}
}

func TestLogin_SuccessResetsCounterMidStreak(t *testing.T) {
	svc, store, _, _ := newTestAccountService(t)
	profile := registerActive(t, svc, store, "quizmaster", "qm@example.com")

	// Two strikes, then a success — the streak must reset completely
	failLogin(t, svc, "quizmaster")
	failLogin(t, svc, "quizmaster")

	if _, err := svc.Login(context.Background(), LoginInput{
		Identifier: "quizmaster",
		Password:   "correct horse battery",
	}); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	stored, _ := store.GetByID(context.Background(), profile.ID)
	if stored.FailedAttempts != 0 {
		t.Errorf("FailedAttempts = %d, want 0 after success", stored.FailedAttempts)
	}
	if stored.LastFailedAt != nil {
		t.Errorf("LastFailedAt = %v, want nil after success", stored.LastFailedAt)
	}
}

func TestLogin_SuccessDoesNotBumpModifiedAt(t *testing.T) {
	svc, store, _, _ := newTestAccountService(t)
	profile := registerActive(t, svc, store, "quizmaster", "qm@example.com")

	before, _ := store.GetByID(context.Background(), profile.ID)

	if _, err := svc.Login(context.Background(), LoginInput{
		Identifier: "quizmaster",
		Password:   "correct horse battery",
	}); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	after, _ := store.GetByID(context.Background(), profile.ID)
	if !after.ModifiedAt.Equal(before.ModifiedAt) {
		t.Errorf("ModifiedAt = %v, want %v — logging in is not a profile modification",
			after.ModifiedAt, before.ModifiedAt)
	}
}

// =========================================================================
// PROFILE TESTS
// =========================================================================

func TestGetProfile(t *testing.T) {
	svc, store, _, _ := newTestAccountService(t)
	profile := registerActive(t, svc, store, "quizmaster", "qm@example.com")

	got, err := svc.GetProfile(context.Background(), profile.ID)
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
	if got.Username != "quizmaster" {
		t.Errorf("Username = %q, want %q", got.Username, "quizmaster")
	}
}

func TestGetProfile_NotFound(t *testing.T) {
	svc, _, _, _ := newTestAccountService(t)

	_, err := svc.GetProfile(context.Background(), "nonexistent-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetProfile() error = %v, want ErrNotFound", err)
	}
}

func TestUpdateProfile_Success(t *testing.T) {
	svc, store, clock, _ := newTestAccountService(t)
	profile := registerActive(t, svc, store, "quizmaster", "qm@example.com")

	clock.advance(time.Hour)

	avatar := "https://cdn.example.com/new.png"
	tier := model.TierExperienced
	updated, err := svc.UpdateProfile(context.Background(), profile.ID, UpdateProfileInput{
		AvatarURL: &avatar,
		Tier:      &tier,
	})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}

	if updated.AvatarURL != avatar {
		t.Errorf("AvatarURL = %q, want %q", updated.AvatarURL, avatar)
	}
	if updated.Tier != model.TierExperienced {
		t.Errorf("Tier = %q, want %q", updated.Tier, model.TierExperienced)
	}
	// Unlike login, a profile update IS a modification
	if !updated.ModifiedAt.After(profile.ModifiedAt) {
		t.Errorf("ModifiedAt = %v, want after %v", updated.ModifiedAt, profile.ModifiedAt)
	}
}

func TestUpdateProfile_NotFound(t *testing.T) {
	svc, _, _, _ := newTestAccountService(t)

	username := "newname"
	_, err := svc.UpdateProfile(context.Background(), "nonexistent-id", UpdateProfileInput{Username: &username})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateProfile() error = %v, want ErrNotFound", err)
	}
}

func TestUpdateProfile_DuplicateEmail_LeavesBothUntouched(t *testing.T) {
	svc, store, _, _ := newTestAccountService(t)
	alice := registerActive(t, svc, store, "alice", "alice@example.com")
	bob := registerActive(t, svc, store, "bob", "bob@example.com")

	taken := "alice@example.com"
	_, err := svc.UpdateProfile(context.Background(), bob.ID, UpdateProfileInput{Email: &taken})
	if !errors.Is(err, apperror.ErrDuplicateEmail) {
		t.Fatalf("UpdateProfile() error = %v, want ErrDuplicateEmail", err)
	}

	// Neither account moved
	storedBob, _ := store.GetByID(context.Background(), bob.ID)
	if storedBob.Email != "bob@example.com" {
		t.Errorf("bob.Email = %q, want unchanged", storedBob.Email)
	}
	if !storedBob.ModifiedAt.Equal(bob.ModifiedAt) {
		t.Error("bob.ModifiedAt changed on a failed update")
	}
	storedAlice, _ := store.GetByID(context.Background(), alice.ID)
	if storedAlice.Email != "alice@example.com" {
		t.Errorf("alice.Email = %q, want unchanged", storedAlice.Email)
	}
}

func TestUpdateProfile_DuplicateUsername(t *testing.T) {
	svc, store, _, _ := newTestAccountService(t)
	registerActive(t, svc, store, "alice", "alice@example.com")
	bob := registerActive(t, svc, store, "bob", "bob@example.com")

	taken := "ALICE" // case-insensitive collision
	_, err := svc.UpdateProfile(context.Background(), bob.ID, UpdateProfileInput{Username: &taken})
	if !errors.Is(err, apperror.ErrDuplicateUsername) {
		t.Errorf("UpdateProfile() error = %v, want ErrDuplicateUsername", err)
	}
}

func TestUpdateProfile_OwnValueIsNotADuplicate(t *testing.T) {
	svc, store, _, _ := newTestAccountService(t)
	profile := registerActive(t, svc, store, "quizmaster", "qm@example.com")

	// Re-casing your own username finds yourself in the uniqueness check —
	// which is fine, because it's you.
	recased := "QuizMaster"
	updated, err := svc.UpdateProfile(context.Background(), profile.ID, UpdateProfileInput{Username: &recased})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if updated.Username != "QuizMaster" {
		t.Errorf("Username = %q, want %q", updated.Username, "QuizMaster")
	}
}

// =========================================================================
// CONFIRMATION / RESET TESTS
// =========================================================================

func TestConfirmEmail_AlwaysInvalidToken(t *testing.T) {
	svc, _, _, _ := newTestAccountService(t)

	// The confirmation token channel doesn't exist yet, so no token — not
	// even a well-formed one — can succeed.
	err := svc.ConfirmEmail(context.Background(), "any-token-at-all")
	if !errors.Is(err, apperror.ErrInvalidToken) {
		t.Errorf("ConfirmEmail() error = %v, want ErrInvalidToken", err)
	}
}

func TestResetPassword_AlwaysInvalidToken(t *testing.T) {
	svc, _, _, _ := newTestAccountService(t)

	err := svc.ResetPassword(context.Background(), "any-token", "new-password-123")
	if !errors.Is(err, apperror.ErrInvalidToken) {
		t.Errorf("ResetPassword() error = %v, want ErrInvalidToken", err)
	}
}

func TestRequestPasswordReset_DispatchesMail(t *testing.T) {
	svc, store, _, mail := newTestAccountService(t)
	registerActive(t, svc, store, "quizmaster", "qm@example.com")

	if err := svc.RequestPasswordReset(context.Background(), "qm@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset() error = %v", err)
	}

	select {
	case email := <-mail.resets:
		if email != "qm@example.com" {
			t.Errorf("reset sent to %q, want %q", email, "qm@example.com")
		}
	case <-time.After(2 * time.Second):
		t.Error("reset email was never dispatched")
	}
}

func TestRequestPasswordReset_UnknownEmail(t *testing.T) {
	svc, _, _, _ := newTestAccountService(t)

	err := svc.RequestPasswordReset(context.Background(), "nobody@example.com")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("RequestPasswordReset() error = %v, want ErrNotFound", err)
	}
}
