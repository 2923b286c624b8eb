package auth

import (
	"context"
	"strings"
	"time"
)

// User is the stored account record behind an authenticated identity.
type User struct {
	ID           int64
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Admin        bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserStore describes the persistence operations the auth subsystem needs.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Delete(ctx context.Context, id int64) error
}

// Resolver loads the full identity for a subject carried inside a
// credential. Every call goes to the store; the Admin flag is never cached,
// so a privilege change is visible on the very next request.
type Resolver struct {
	users UserStore
}

func NewResolver(users UserStore) *Resolver {
	return &Resolver{users: users}
}

// ResolveSubject returns the identity registered under the given email.
func (r *Resolver) ResolveSubject(ctx context.Context, subject string) (*User, error) {
	subject = NormalizeEmail(subject)
	if subject == "" {
		return nil, ErrNotFound
	}
	return r.users.FindByEmail(ctx, subject)
}

// NormalizeEmail lower-cases and trims an email so lookups and uniqueness
// checks agree on one canonical form.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
