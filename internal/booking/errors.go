package booking

import "errors"

var (
	ErrSessionNotFound = errors.New("booking: session not found")
	ErrUserNotFound    = errors.New("booking: user not found")
	ErrTeacherNotFound = errors.New("booking: teacher not found")
	ErrAlreadyMember   = errors.New("booking: user already participates")
	ErrNotAMember      = errors.New("booking: user does not participate")
	ErrVersionConflict = errors.New("booking: session was modified concurrently")
	ErrInvalidInput    = errors.New("booking: invalid input")
)
