package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// ErrPasswordTooShort is returned for passwords under the minimum length.
var ErrPasswordTooShort = errors.New("password must be at least 6 characters long")

// ValidatePassword enforces the minimum password policy.
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return ErrPasswordTooShort
	}
	return nil
}

// HashPassword returns a bcrypt digest of the password.
func HashPassword(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// CheckPassword validates a password against a stored digest.
func CheckPassword(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
