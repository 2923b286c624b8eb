package auth

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Service implements login and registration on top of the user store, the
// pluggable password hasher and the token codec.
type Service struct {
	users  UserStore
	hasher Hasher
	codec  *TokenCodec
	now    func() time.Time
}

func NewService(users UserStore, hasher Hasher, codec *TokenCodec) *Service {
	return &Service{users: users, hasher: hasher, codec: codec, now: time.Now}
}

// Login verifies the submitted credentials and issues a fresh token. Unknown
// email and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, ErrBadCredentials
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil, ErrBadCredentials
		}
		return "", nil, err
	}
	if !s.hasher.Matches(password, user.PasswordHash) {
		return "", nil, ErrBadCredentials
	}
	token, err := s.codec.Issue(user.Email, s.now(), 0)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Register creates a new account with a hashed password.
func (s *Service) Register(ctx context.Context, email, firstName, lastName, password string) (*User, error) {
	email = NormalizeEmail(email)
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if email == "" || firstName == "" || lastName == "" || password == "" {
		return nil, ErrInvalidInput
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	user := &User{
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
