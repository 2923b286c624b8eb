package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "zenclass"

// TokenCodec issues and verifies the signed bearer credentials exchanged
// with clients. A credential is an HS256 JWT carrying the account email as
// subject plus issued-at and expiry timestamps. Nothing is kept server-side:
// expiry is the only revocation mechanism.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// CodecOption configures TokenCodec behavior.
type CodecOption func(*TokenCodec)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) CodecOption {
	return func(c *TokenCodec) {
		if fn != nil {
			c.now = fn
		}
	}
}

// NewTokenCodec constructs a codec keyed by the server secret. ttl is the
// default lifetime applied by Issue when the caller passes no explicit one.
func NewTokenCodec(secret string, ttl time.Duration, opts ...CodecOption) (*TokenCodec, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("auth: signing secret is not configured")
	}
	if ttl <= 0 {
		return nil, errors.New("auth: token ttl must be greater than zero")
	}
	c := &TokenCodec{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue signs a credential for the subject, valid from issuedAt until
// issuedAt+ttl. Pure: same inputs plus secret always produce equivalent
// claims (only the jti differs).
func (c *TokenCodec) Issue(subject string, issuedAt time.Time, ttl time.Duration) (string, error) {
	subject = NormalizeEmail(subject)
	if subject == "" {
		return "", errors.New("auth: subject is required")
	}
	if ttl <= 0 {
		ttl = c.ttl
	}
	issuedAt = issuedAt.UTC()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		ID:        uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the embedded subject.
// A failed credential maps to exactly one of ErrTokenMalformed,
// ErrTokenExpired or ErrInvalidSignature. An expired token reports
// ErrTokenExpired even when its signature does not match: the parser stops
// at the signature check, so the expiry is re-read from the unverified
// claims to keep the outcome unambiguous.
func (c *TokenCodec) Verify(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrTokenMalformed
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)
	claims := &jwt.RegisteredClaims{}
	_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		if c.expiredUnverified(token) {
			return "", ErrTokenExpired
		}
		return "", ErrInvalidSignature
	default:
		return "", ErrTokenMalformed
	}

	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return "", ErrTokenMalformed
	}
	return subject, nil
}

// expiredUnverified reports whether the token's encoded expiry is in the
// past, ignoring the signature. Used only to pick the right failure kind.
func (c *TokenCodec) expiredUnverified(token string) bool {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && c.now().After(claims.ExpiresAt.Time)
}
