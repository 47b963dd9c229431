package auth

import "golang.org/x/crypto/bcrypt"

// bcryptCost matches the work factor the platform has always used for
// password digests.
const bcryptCost = 10

// HashPassword derives a salted one-way digest from the plaintext password.
// The plaintext is never persisted.
func HashPassword(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// CheckPassword reports whether the plaintext matches the stored digest.
// Mismatches are an expected boolean outcome, not an error.
func CheckPassword(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
