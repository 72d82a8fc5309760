package auth

import (
	"github.com/nbutton23/zxcvbn-go"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordScore is the lowest zxcvbn score (0-4) accepted for a new password.
const MinPasswordScore = 2

// HashPassword hashes a plaintext password using bcrypt with DefaultCost.
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

// CheckPassword compares a bcrypt hash with a candidate plaintext password.
func CheckPassword(hash, pw string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw))
}

// PasswordScore estimates password strength on zxcvbn's 0-4 scale.
func PasswordScore(pw string) int {
	return zxcvbn.PasswordStrength(pw, nil).Score
}
