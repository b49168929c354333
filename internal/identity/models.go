package identity

import (
	"errors"
	"time"
	"unicode"

	id "sisvita/pkg/domain"
)

// Identity is the authentication record: email plus credential.
// It is the arbiter of email uniqueness; profile records key off its id.
type Identity struct {
	ID            id.UserID
	Email         string
	PasswordHash  string
	DisplayName   string
	EmailVerified bool
	Active        bool
	CreatedAt     time.Time
}

// Distinguishable provider errors, per the registration contract.
var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password too weak")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

const minPasswordLength = 8

// ValidatePassword enforces the credential policy: at least eight
// characters with one letter and one digit.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return ErrWeakPassword
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return ErrWeakPassword
	}
	return nil
}
