package auth

import (
	"golang.org/x/crypto/bcrypt"

	"chirp/apperr"
)

// PasswordHasher produces and checks the opaque password hashes stored on
// user records.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type BcryptHasher struct{}

func (BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperr.Wrap(apperr.Transient, "hash password", err)
	}
	return string(hashed), nil
}

func (BcryptHasher) Compare(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return apperr.New(apperr.Unauthenticated, "invalid username or password")
	}
	return nil
}
