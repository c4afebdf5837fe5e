package utils

import "golang.org/x/crypto/bcrypt"

// The reviewer dashboard has a single credential, stored as a bcrypt
// hash in REVIEWER_PASSWORD_HASH.

// HashPassword produces the hash to provision that credential with.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}

// CheckPassword compares the stored hash against a login attempt.
func CheckPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
