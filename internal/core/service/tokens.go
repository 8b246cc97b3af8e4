package service

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Jooy-edu/jooy-auth/internal/core/domain"
)

// Token purposes. A token minted for one purpose is rejected everywhere
// else.
const (
	purposeAccess   = "access"
	purposeVerify   = "verify"
	purposeRecovery = "recovery"
)

// TokenIssuer mints and parses the three token kinds used by the platform:
// access tokens (sessions), email verification tokens, and password
// recovery tokens. All are HS256 JWTs with a purpose claim.
type TokenIssuer struct {
	secret      []byte
	accessTTL   time.Duration
	verifyTTL   time.Duration
	recoveryTTL time.Duration
}

// TokenClaims is the decoded payload of any platform token.
type TokenClaims struct {
	UserID    string
	Email     string
	TokenID   string
	Purpose   string
	ExpiresAt time.Time
}

func NewTokenIssuer(secret string, accessTTL, verifyTTL, recoveryTTL time.Duration) *TokenIssuer {
	if accessTTL <= 0 {
		accessTTL = 24 * time.Hour
	}
	if verifyTTL <= 0 {
		verifyTTL = 48 * time.Hour
	}
	if recoveryTTL <= 0 {
		recoveryTTL = time.Hour
	}
	return &TokenIssuer{
		secret:      []byte(secret),
		accessTTL:   accessTTL,
		verifyTTL:   verifyTTL,
		recoveryTTL: recoveryTTL,
	}
}

// IssueAccess mints a session token for the user.
func (t *TokenIssuer) IssueAccess(userID, email string) (token, tokenID string, expiresAt time.Time, err error) {
	return t.issue(userID, email, purposeAccess, t.accessTTL)
}

// IssueVerification mints an email verification token.
func (t *TokenIssuer) IssueVerification(userID, email string) (string, error) {
	token, _, _, err := t.issue(userID, email, purposeVerify, t.verifyTTL)
	return token, err
}

// IssueRecovery mints a password recovery token.
func (t *TokenIssuer) IssueRecovery(userID, email string) (string, error) {
	token, _, _, err := t.issue(userID, email, purposeRecovery, t.recoveryTTL)
	return token, err
}

func (t *TokenIssuer) issue(userID, email, purpose string, ttl time.Duration) (string, string, time.Time, error) {
	tokenID := newTokenID()
	expiresAt := time.Now().UTC().Add(ttl)
	claims := jwt.MapClaims{
		"sub":     userID,
		"email":   email,
		"jti":     tokenID,
		"purpose": purpose,
		"exp":     expiresAt.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, tokenID, expiresAt, nil
}

// Parse validates signature, expiry, and purpose. Expired or malformed
// tokens fail with domain.ErrSessionExpired: the caller cannot act on them
// either way, and the distinction would only leak token internals.
func (t *TokenIssuer) Parse(token, expectedPurpose string) (*TokenClaims, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (interface{}, error) {
		if tok.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return t.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, domain.ErrSessionExpired
	}

	purpose, _ := claims["purpose"].(string)
	if purpose != expectedPurpose {
		return nil, domain.ErrSessionExpired
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	tokenID, _ := claims["jti"].(string)
	exp, _ := claims["exp"].(float64)

	return &TokenClaims{
		UserID:    sub,
		Email:     email,
		TokenID:   tokenID,
		Purpose:   purpose,
		ExpiresAt: time.Unix(int64(exp), 0).UTC(),
	}, nil
}

// newTokenID returns a random identifier in the format JA-XXXXXXXXXXXXXXXX.
func newTokenID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		// fallback: use current nanoseconds
		return fmt.Sprintf("JA-%016X", time.Now().UnixNano())
	}
	return fmt.Sprintf("JA-%016X", b)
}
