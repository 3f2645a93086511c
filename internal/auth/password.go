// Package auth — password hashing utilities.
//
// WHY A DETERMINISTIC DIGEST (AND NOT BCRYPT)?
// The account core's credential contract is: Hash(p) is a pure one-way
// function, and Verify(p, digest) recomputes and compares. Determinism is part
// of the contract — the same password always maps to the same digest — which
// rules out bcrypt/argon2-style hashing where every call salts differently.
//
// What we do instead:
//
//	digest = hex( SHA3-256( pepper || plaintext ) )
//
//   - SHA3-256 is a one-way function; the digest cannot be reversed.
//   - The pepper is a server-side secret mixed into every digest. A leaked
//     database alone is not enough to run a dictionary attack — the attacker
//     also needs the pepper, which never leaves process configuration.
//   - Verification is equality of recomputed digests, compared in constant
//     time so response timing leaks nothing about how many bytes matched.
//
// KNOWN TRADE-OFF:
// There is no per-record salt and no tunable work factor. Two accounts with
// the same password share a digest, and SHA3 is fast. Substituting a salted,
// memory-hard KDF would break the deterministic contract (and every stored
// digest), so it is a deliberate migration, not a drop-in change.
package auth

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/sha3"
)

// PasswordService computes and verifies credential digests.
//
// It's a struct (not free functions) so the pepper is injected configuration,
// never a package-level literal. Tests construct it with a fixed pepper to get
// reproducible digests.
type PasswordService struct {
	pepper []byte
}

// NewPasswordService creates a PasswordService with the given pepper.
// The pepper should be at least 16 bytes of random data in production.
// Example: CREDENTIAL_PEPPER=$(openssl rand -hex 32)
func NewPasswordService(pepper string) (*PasswordService, error) {
	if len(pepper) < 16 {
		return nil, errors.New("auth: credential pepper must be at least 16 characters")
	}
	return &PasswordService{pepper: []byte(pepper)}, nil
}

// Hash computes the digest for a plaintext password.
//
// The output is a 64-character lowercase hex string. Store it directly —
// Verify recomputes the same digest from the candidate password.
//
// Deterministic: Hash(p) returns the same digest on every call. Callers
// (and tests) rely on this.
func (p *PasswordService) Hash(plaintext string) string {
	h := sha3.New256()
	h.Write(p.pepper)
	h.Write([]byte(plaintext))
	return hex.EncodeToString(h.Sum(nil))
}

// Verify reports whether the plaintext password matches a stored digest.
//
// TIMING SAFETY:
// subtle.ConstantTimeCompare examines every byte regardless of where the
// first mismatch is, so an attacker can't tell from response time whether
// they got the first byte right.
func (p *PasswordService) Verify(plaintext, digest string) bool {
	computed := p.Hash(plaintext)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1
}
