package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword will generate a salted password hash. Two hashes of the same
// plaintext differ.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost())
	return string(h), err
}

// ComparePasswordAndHash will validate the given cleartext password against
// the stored hash. A malformed stored hash is a verification failure, never a
// panic; callers only ever observe ErrMismatchedHashAndPassword.
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		clone := ErrMismatchedHashAndPassword.Clone()
		if clone == nil {
			return ErrMismatchedHashAndPassword
		}
		clone.Source = ErrMismatchedHashAndPassword
		return clone.WithMetadata(map[string]any{"cause": err.Error()})
	}
	return nil
}

// bcryptAuthenticator adapts the package-level helpers to the
// PasswordAuthenticator interface.
type bcryptAuthenticator struct{}

func (bcryptAuthenticator) HashPassword(password string) (string, error) {
	return HashPassword(password)
}

func (bcryptAuthenticator) ComparePasswordAndHash(password, hash string) error {
	return ComparePasswordAndHash(password, hash)
}
