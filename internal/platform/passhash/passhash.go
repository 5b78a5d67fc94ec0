// Package passhash wraps bcrypt for user password storage.
package passhash

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch is returned by Compare when the password does not match.
var ErrMismatch = errors.New("passhash: password mismatch")

const cost = bcrypt.DefaultCost

// Hash returns the bcrypt hash of a plain-text password.
func Hash(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("passhash: empty password")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("passhash: hash: %w", err)
	}
	return string(hashed), nil
}

// Compare checks a plain-text password against a stored hash.
func Compare(hashed, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatch
		}
		return fmt.Errorf("passhash: compare: %w", err)
	}
	return nil
}
