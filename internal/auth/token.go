// Package auth provides the signed access tokens that gate blob operations
// and internal service-to-service cascade calls.
//
// These are NOT end-user credentials; users authenticate with their stored
// password through the AuthGate. A token here is a capability: it names one
// subject (a blob id or a user id) and proves the holder was handed access
// to exactly that subject by this server. Blob URLs returned from short
// creation embed such a token, and the delete cascade mints one when it
// calls into the blob layer.
//
// JWT STRUCTURE (three base64-encoded parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: algorithm + token type → {"alg":"HS256","typ":"JWT"}
//	- Payload: claims → {"sub":"<subject>","iss":"tukano"}
//	- Signature: HMAC-SHA256(header+"."+payload, secretKey)
//
// The signature is verifiable with the secret alone, no store lookup.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "tukano"

// TokenService mints and verifies subject-bound tokens.
//
// It holds the HMAC secret key used to sign and verify. The same secret must
// be used for both operations; keep it safe, rotate it periodically in
// production.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: TUKANO_TOKEN_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: token secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims is the JWT payload. It embeds jwt.RegisteredClaims which includes
// standard fields like Issuer, Subject, ExpiresAt, IssuedAt.
type claims struct {
	jwt.RegisteredClaims
}

// Mint creates a non-expiring token bound to the given subject.
//
// Blob tokens are embedded in the BlobURL stored on each short record, and
// shorts live until explicitly deleted, so an expiring token would break
// downloads of any short older than its lifetime. Revocation happens by
// deleting the short (and with it the blob), not by expiring the token.
func (s *TokenService) Mint(subject string) (string, error) {
	return s.mint(subject, 0)
}

// MintTTL creates a token that expires after d. Used for the internal
// cascade calls, which mint a fresh token per operation.
func (s *TokenService) MintTTL(subject string, d time.Duration) (string, error) {
	return s.mint(subject, d)
}

func (s *TokenService) mint(subject string, d time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("auth: token subject must not be empty")
	}
	now := time.Now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  subject,
			IssuedAt: jwt.NewNumericDate(now),
			Issuer:   issuer,
		},
	}
	// Zero means no expiry (Mint). Any other duration, including a negative
	// one, sets the claim; a token asked to be bounded must never come back
	// eternal.
	if d != 0 {
		c.ExpiresAt = jwt.NewNumericDate(now.Add(d))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Subject parses and verifies a token, returning the subject it is bound to.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid (wasn't tampered with)
//   - Token is not expired, when it carries an expiry
//   - Issuer matches (prevents tokens from other apps)
//   - Algorithm is HS256 (prevents algorithm confusion attacks)
func (s *TokenService) Subject(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", errors.New("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", errors.New("auth: invalid token claims")
	}
	if c.Subject == "" {
		return "", errors.New("auth: token has no subject")
	}
	return c.Subject, nil
}

// IsValid reports whether the token verifies AND is bound to the given
// subject. This is the only check the blob layer performs before touching
// storage.
func (s *TokenService) IsValid(tokenStr, subject string) bool {
	got, err := s.Subject(tokenStr)
	return err == nil && got == subject
}
