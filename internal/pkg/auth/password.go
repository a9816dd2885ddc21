package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/yigit/achievement-portal/internal/pkg/apperrors"
)

// PasswordCost is the bcrypt work factor for student and admin passwords
const PasswordCost = 10

// MaxPasswordBytes is the longest password bcrypt accepts
const MaxPasswordBytes = 72

// HashPassword hashes a plaintext password. Passwords bcrypt cannot hash are
// reported as validation errors.
func HashPassword(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", apperrors.NewValidationError("password is too long", map[string]interface{}{
			"password": "must be at most 72 bytes",
		})
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperrors.NewValidationError("password is too long", nil)
	}
	return string(hash), err
}

// CheckPassword reports whether password matches the stored hash. A malformed
// hash never matches.
func CheckPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
