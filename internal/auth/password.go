package auth

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher decides how passwords are stored and compared.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(stored, plain string) bool
}

// NewPasswordHasher returns the hasher for a password_storage setting:
// "plaintext" keeps passwords as given, "bcrypt" hashes them.
func NewPasswordHasher(storage string) (PasswordHasher, error) {
	switch storage {
	case "", "plaintext":
		return plaintextHasher{}, nil
	case "bcrypt":
		return bcryptHasher{cost: bcrypt.DefaultCost}, nil
	default:
		return nil, fmt.Errorf("unknown password storage %q", storage)
	}
}

type plaintextHasher struct{}

func (plaintextHasher) Hash(plain string) (string, error) { return plain, nil }

func (plaintextHasher) Verify(stored, plain string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(plain)) == 1
}

type bcryptHasher struct{ cost int }

func (h bcryptHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (bcryptHasher) Verify(stored, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil
}
