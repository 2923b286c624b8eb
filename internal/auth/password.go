package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Hasher abstracts the password hashing scheme so login and registration
// never depend on a concrete algorithm.
type Hasher interface {
	Hash(raw string) (string, error)
	Matches(raw, hash string) bool
}

// BcryptHasher is the default Hasher.
type BcryptHasher struct {
	// Cost overrides bcrypt.DefaultCost when > 0.
	Cost int
}

func (h BcryptHasher) Hash(raw string) (string, error) {
	if raw == "" {
		return "", errors.New("auth: password is empty")
	}
	cost := h.Cost
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (h BcryptHasher) Matches(raw, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}
