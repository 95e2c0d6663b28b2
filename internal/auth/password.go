// Package auth covers password hashing and browser session management.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a password with bcrypt at the default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword verifies a password against a stored hash. Besides bcrypt
// it accepts legacy unsalted sha256 hex digests, which older user files
// contain; those accounts are rehashed on their next successful login.
func CheckPassword(password, hash string) bool {
	if isLegacyDigest(hash) {
		sum := sha256.Sum256([]byte(password))
		digest := hex.EncodeToString(sum[:])
		return subtle.ConstantTimeCompare([]byte(digest), []byte(hash)) == 1
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// NeedsRehash reports whether the stored hash uses the legacy scheme.
func NeedsRehash(hash string) bool {
	return isLegacyDigest(hash)
}

// LegacyDigest computes the unsalted sha256 hex digest of a password,
// exposed for tests and migration tooling.
func LegacyDigest(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func isLegacyDigest(hash string) bool {
	if len(hash) != hex.EncodedLen(sha256.Size) {
		return false
	}
	_, err := hex.DecodeString(hash)
	return err == nil
}
