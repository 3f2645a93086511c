// Package auth provides JWT token generation and validation for the QuizHub API.
//
// AUTHENTICATION FLOW OVERVIEW:
// 1. User registers → account is created in "pending" status
// 2. User logs in with username/email + password
// 3. Server verifies credentials (and the lockout state machine lets them through)
// 4. Server issues a JWT access token, stores it in an HttpOnly cookie
// 5. On subsequent API calls, middleware reads the cookie, validates the JWT,
//    and sets the claims in the request context
//
// WHY JWT?
// JWT (JSON Web Token) is stateless — the server doesn't need to store session
// data. All the information needed (account ID, username, tier, expiry) is
// inside the signed token. The signature ensures nobody can tamper with it
// without the secret key.
//
// JWT STRUCTURE (three base64-encoded parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: algorithm + token type → {"alg":"HS256","typ":"JWT"}
//	- Payload: claims (data) → {"sub":"accountID","username":...,"tier":...,"iat":...,"exp":...}
//	- Signature: HMAC-SHA256(header+"."+payload, secretKey)
//
// The server can verify the signature without any DB lookup — just the secret.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tasnim/quizhub/internal/apperror"
	"github.com/tasnim/quizhub/internal/model"
)

// TokenTTL is the fixed lifetime of every issued token.
//
// It is deliberately NOT caller-configurable: every token the app issues
// expires exactly 24 hours after issuance, so a captured token has a bounded
// useful life and clients know exactly how long a session lasts.
const TokenTTL = 24 * time.Hour

const issuer = "quizhub"

// TokenService handles JWT creation and validation.
//
// It holds the HMAC secret key used to sign and verify tokens.
// The same secret must be used for both operations — keep it safe, rotate it
// periodically in production.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// Claims is the JWT payload. It embeds jwt.RegisteredClaims which includes
// standard fields like Issuer, Subject, ExpiresAt, IssuedAt.
//
// We use "sub" (Subject) to store the internal account ID — the standard JWT
// claim for identifying who the token belongs to. Username and tier ride
// along so the middleware can authorise without a store lookup.
type Claims struct {
	Username string     `json:"username"`
	Tier     model.Tier `json:"tier"`
	jwt.RegisteredClaims
}

// Generate creates and signs a new JWT access token for the given account.
//
// Token lifetime: TokenTTL (24 hours), measured from time.Now().
//
// Signing algorithm: HS256 (HMAC-SHA256)
// - Symmetric: same key for signing and verifying
// - Fast and simple — good for single-server deployments
// - Alternative RS256 for asymmetric (multi-server key rotation)
func (s *TokenService) Generate(accountID, username string, tier model.Tier) (string, error) {
	return s.GenerateWithDuration(accountID, username, tier, TokenTTL)
}

// GenerateWithDuration creates a token with a custom expiry duration.
// Used in tests to mint already-expired tokens; production code goes through
// Generate so the 24-hour lifetime stays fixed.
func (s *TokenService) GenerateWithDuration(accountID, username string, tier model.Tier, d time.Duration) (string, error) {
	now := time.Now()

	c := Claims{
		Username: username,
		Tier:     tier,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	// jwt.NewWithClaims creates an unsigned token with the given algorithm.
	// SignedString(key) signs it and returns the complete JWT string.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string and returns its claims.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Token splits into exactly three parts and parses
//   - Signature is valid (wasn't tampered with)
//   - Token is not expired (ExpiresAt is in the future)
//   - Issuer matches "quizhub" (prevents tokens from other apps)
//   - Algorithm is HS256 (prevents algorithm confusion attacks)
//
// EVERY failure collapses to the same apperror.ErrInvalidToken kind. Malformed,
// tampered, and expired tokens are indistinguishable to callers — surfacing
// the difference would only help an attacker probe the token format.
//
// ALGORITHM CONFUSION ATTACK:
// Without checking the algorithm, an attacker could send a token signed with
// "none" and the library might accept it. Passing jwt.WithValidMethods prevents this.
func (s *TokenService) Validate(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&Claims{},
		func(token *jwt.Token) (any, error) {
			// Reject tokens that aren't signed with HS256
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("auth: %w", apperror.InvalidToken(""))
	}

	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: %w", apperror.InvalidToken(""))
	}

	if c.Subject == "" {
		return nil, fmt.Errorf("auth: %w", apperror.InvalidToken(""))
	}

	return c, nil
}
