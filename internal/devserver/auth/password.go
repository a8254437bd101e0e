package auth

import (
	"errors"

	"github.com/dmitrijs2005/chirp/internal/common"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

// CheckPassword reports common.ErrUnauthorized when password does not match
// hash.
func CheckPassword(hash []byte, password string) error {
	err := bcrypt.CompareHashAndPassword(hash, []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return common.ErrUnauthorized
	}
	return err
}

// NewCSRFToken returns a fresh anti-forgery token for the XSRF-TOKEN cookie.
func NewCSRFToken() string {
	return uuid.NewString()
}
