// Package auth provides password hashing, signed-token issuance and
// verification, and the HTTP middleware that guards authenticated routes.
package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"golang.org/x/crypto/bcrypt"
)

// Tokens issues and verifies HS256-signed tokens carrying a user ID in the
// subject claim.
type Tokens struct {
	secret     []byte
	ttl        time.Duration
	bcryptCost int
}

func NewTokens(secret string, ttl time.Duration, bcryptCost int) *Tokens {
	return &Tokens{
		secret:     []byte(secret),
		ttl:        ttl,
		bcryptCost: bcryptCost,
	}
}

// Issue returns a signed token for the user, expiring after the configured
// TTL.
func (t *Tokens) Issue(userID uint) (string, error) {
	now := time.Now()
	tok, err := jwt.NewBuilder().
		Subject(strconv.FormatUint(uint64(userID), 10)).
		IssuedAt(now).
		Expiration(now.Add(t.ttl)).
		Build()
	if err != nil {
		return "", fmt.Errorf("build token: %w", err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, t.secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return string(signed), nil
}

// Verify checks the signature and expiry and returns the embedded user ID.
func (t *Tokens) Verify(tokenString string) (uint, error) {
	tok, err := jwt.Parse([]byte(tokenString),
		jwt.WithKey(jwa.HS256, t.secret),
		jwt.WithValidate(true),
	)
	if err != nil {
		return 0, fmt.Errorf("invalid token: %w", err)
	}

	userID, err := strconv.ParseUint(tok.Subject(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid token subject: %w", err)
	}
	return uint(userID), nil
}

// HashPassword returns the one-way bcrypt hash of a plaintext password.
func (t *Tokens) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), t.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext matches the stored hash.
func (t *Tokens) CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
