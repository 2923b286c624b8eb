package auth

import "errors"

var (
	ErrNotFound       = errors.New("auth: user not found")
	ErrEmailTaken     = errors.New("auth: email already in use")
	ErrBadCredentials = errors.New("auth: bad credentials")
	ErrInvalidInput   = errors.New("auth: invalid input")
)

// Credential verification failures. Verify reports exactly one of these per
// failed token; the HTTP filter collapses all of them into an unauthenticated
// request.
var (
	ErrTokenMalformed   = errors.New("auth: token malformed")
	ErrTokenExpired     = errors.New("auth: token expired")
	ErrInvalidSignature = errors.New("auth: token signature invalid")
)
