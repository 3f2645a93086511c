// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// Tier is the access-level classification of an account.
//
// Tier is about WHAT an account may do; Status (below) is about WHETHER the
// account may do anything at all right now. The two are independent axes —
// an administrator can be locked out, a novice can be active.
type Tier string

const (
	TierNovice        Tier = "novice"
	TierExperienced   Tier = "experienced"
	TierAdministrator Tier = "administrator"
)

// SelfRegistrable reports whether an account may select this tier at
// registration time. Administrator accounts are provisioned out of band,
// never through the public registration endpoint.
func (t Tier) SelfRegistrable() bool {
	return t == TierNovice || t == TierExperienced
}

// Status is the lifecycle state of an account.
//
// STATE MACHINE:
//
//	pending --email confirmation--> active
//	active  --3 failed logins-----> locked
//	locked  --30 min + any login--> active (failure counter reset)
//
// StatusInactive is a reachable value with no transition in this core — it is
// reserved for administrative deactivation tooling.
type Status string

const (
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusLocked   Status = "locked"
)

// Account represents a registered user account.
//
// WHY `json:"-"` ON SOME FIELDS?
// The credential hash and the lockout bookkeeping must never leave the server,
// not even by accident. Tagging them `json:"-"` means that even if someone
// serialises a full *Account in a handler, those fields are dropped. The
// intended external shape is Profile (see Account.Profile below) — the tags
// are the safety net, not the design.
//
// WHY LastFailedAt *time.Time (a pointer)?
// "Never failed" and "failed at the zero time" are different facts. A nil
// pointer expresses absence directly; the lockout window arithmetic in the
// service depends on being able to clear it back to nil after a successful
// login or an automatic unlock.
type Account struct {
	ID             string     `json:"id"`
	Username       string     `json:"username"` // unique, case-insensitive
	Email          string     `json:"email"`    // unique, case-insensitive
	CredentialHash string     `json:"-"`        // output of auth.PasswordService, never exposed
	Tier           Tier       `json:"tier"`
	AvatarURL      string     `json:"avatarUrl"` // optional; empty string means "no avatar"
	Status         Status     `json:"status"`
	FailedAttempts int        `json:"-"` // consecutive failed logins since the last reset
	LastFailedAt   *time.Time `json:"-"` // nil unless a failure happened since the last reset
	CreatedAt      time.Time  `json:"createdAt"`
	ModifiedAt     time.Time  `json:"modifiedAt"`
}

// Profile is the public projection of an Account — the subset that is safe to
// return to clients. It deliberately has no credential or lockout fields, so a
// handler holding a Profile simply cannot leak them.
type Profile struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Tier       Tier      `json:"tier"`
	AvatarURL  string    `json:"avatarUrl"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// Profile returns the public projection of the account.
func (a *Account) Profile() Profile {
	return Profile{
		ID:         a.ID,
		Username:   a.Username,
		Email:      a.Email,
		Tier:       a.Tier,
		AvatarURL:  a.AvatarURL,
		Status:     a.Status,
		CreatedAt:  a.CreatedAt,
		ModifiedAt: a.ModifiedAt,
	}
}
